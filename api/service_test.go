// Copyright 2020 The go-vaultledger Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db/memdb"
	"github.com/vaultledger/go-vaultledger/swap"
	"github.com/vaultledger/go-vaultledger/tx"
	"github.com/vaultledger/go-vaultledger/vault"
)

type testServer struct {
	ctx    *ServiceContext
	server *httptest.Server
}

func newTestServer(t *testing.T) *testServer {
	store := memdb.New()
	ctx := &ServiceContext{
		AM:     account.NewManager(store),
		CM:     custody.NewManager(store),
		VM:     vault.NewManager(store),
		SM:     swap.NewManager(store),
		Engine: tx.NewEngine(store),
		Store:  store,
	}
	server := httptest.NewServer(NewHandler(ctx))
	t.Cleanup(server.Close)
	t.Cleanup(func() { store.Close() })
	return &testServer{ctx: ctx, server: server}
}

func (ts *testServer) post(t *testing.T, path string, body interface{}) (int, map[string]interface{}) {
	b, err := json.Marshal(body)
	require.Nil(t, err)

	resp, err := http.Post(ts.server.URL+path, "application/json", bytes.NewReader(b))
	require.Nil(t, err)
	defer resp.Body.Close()

	out := make(map[string]interface{})
	json.NewDecoder(resp.Body).Decode(&out)
	return resp.StatusCode, out
}

func (ts *testServer) get(t *testing.T, path string, out interface{}) int {
	resp, err := http.Get(ts.server.URL + path)
	require.Nil(t, err)
	defer resp.Body.Close()

	if out != nil {
		json.NewDecoder(resp.Body).Decode(out)
	}
	return resp.StatusCode
}

func sign(t *testing.T, seed string, digest []byte) string {
	signature, err := crypto.Sign(seed, digest)
	require.Nil(t, err)
	return signature
}

func TestServiceVaultFlow(t *testing.T) {
	ts := newTestServer(t)

	ownerID, ownerSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	assetID, err := crypto.GetAssetID()
	require.Nil(t, err)
	vaultID, err := crypto.GetVaultID()
	require.Nil(t, err)

	code, _ := ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: ownerID, Balance: 100})
	assert.Equal(t, http.StatusOK, code)

	issue := &IssueAssetRequest{AssetID: assetID, Holder: ownerID, Nonce: "n-issue"}
	issue.Signature = sign(t, ownerSeed, issue.Digest())
	code, _ = ts.post(t, "/v1/asset", issue)
	assert.Equal(t, http.StatusOK, code)

	cv := &CreateVaultRequest{Owner: ownerID, AssetID: assetID, VaultID: vaultID, Nonce: "n-vault"}
	cv.Signature = sign(t, ownerSeed, cv.Digest())
	code, out := ts.post(t, "/v1/vault", cv)
	assert.Equal(t, http.StatusOK, code)
	assert.NotEmpty(t, out["invocation"])

	la := &LockAssetRequest{Caller: ownerID, VaultID: vaultID, Nonce: "n-lock"}
	la.Signature = sign(t, ownerSeed, la.Digest())
	code, _ = ts.post(t, "/v1/vault/lock", la)
	assert.Equal(t, http.StatusOK, code)

	vr := VaultResponse{}
	code = ts.get(t, "/v1/vault/"+vaultID, &vr)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, ownerID, vr.Owner)
	assert.Equal(t, assetID, vr.AssetID)
	assert.True(t, vr.IsLocked)

	// locking twice is rejected even with a fresh request
	la2 := &LockAssetRequest{Caller: ownerID, VaultID: vaultID, Nonce: "n-lock-2"}
	la2.Signature = sign(t, ownerSeed, la2.Digest())
	code, out = ts.post(t, "/v1/vault/lock", la2)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "vault already locked", out["error"])
}

func TestServiceSwapFlow(t *testing.T) {
	ts := newTestServer(t)

	sellerID, sellerSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	buyerID, buyerSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	assetID, err := crypto.GetAssetID()
	require.Nil(t, err)
	swapID, err := crypto.GetSwapID()
	require.Nil(t, err)

	code, _ := ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: sellerID, Balance: 0})
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: buyerID, Balance: 150})
	assert.Equal(t, http.StatusOK, code)

	issue := &IssueAssetRequest{AssetID: assetID, Holder: sellerID, Nonce: "n-issue"}
	issue.Signature = sign(t, sellerSeed, issue.Digest())
	code, _ = ts.post(t, "/v1/asset", issue)
	assert.Equal(t, http.StatusOK, code)

	cs := &CreateSwapRequest{Seller: sellerID, AssetID: assetID, Price: 100, SwapID: swapID, Nonce: "n-swap"}
	cs.Signature = sign(t, sellerSeed, cs.Digest())
	code, _ = ts.post(t, "/v1/swap", cs)
	assert.Equal(t, http.StatusOK, code)

	sr := SwapResponse{}
	code = ts.get(t, "/v1/swap/"+swapID, &sr)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, sellerID, sr.Seller)
	assert.Equal(t, uint64(100), sr.Price)

	es := &ExecuteSwapRequest{Buyer: buyerID, SwapID: swapID, Nonce: "n-exec"}
	es.Signature = sign(t, buyerSeed, es.Digest())
	code, _ = ts.post(t, "/v1/swap/execute", es)
	assert.Equal(t, http.StatusOK, code)

	ar := AccountResponse{}
	code = ts.get(t, "/v1/account/"+buyerID, &ar)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(50), ar.Balance)

	code = ts.get(t, "/v1/account/"+sellerID, &ar)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, uint64(100), ar.Balance)
}

func TestServicePayment(t *testing.T) {
	ts := newTestServer(t)

	srcID, srcSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	dstID, _, err := crypto.GetAccountKeypair()
	require.Nil(t, err)

	code, _ := ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: srcID, Balance: 100})
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: dstID, Balance: 0})
	assert.Equal(t, http.StatusOK, code)

	p := &PaymentRequest{SrcAccountID: srcID, DstAccountID: dstID, Amount: 30, Nonce: "n-pay"}
	p.Signature = sign(t, srcSeed, p.Digest())
	code, _ = ts.post(t, "/v1/payment", p)
	assert.Equal(t, http.StatusOK, code)

	ar := AccountResponse{}
	ts.get(t, "/v1/account/"+srcID, &ar)
	assert.Equal(t, uint64(70), ar.Balance)
	ts.get(t, "/v1/account/"+dstID, &ar)
	assert.Equal(t, uint64(30), ar.Balance)
}

func TestServiceSignatureRejected(t *testing.T) {
	ts := newTestServer(t)

	ownerID, _, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	_, otherSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	assetID, err := crypto.GetAssetID()
	require.Nil(t, err)
	vaultID, err := crypto.GetVaultID()
	require.Nil(t, err)

	code, _ := ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: ownerID, Balance: 0})
	assert.Equal(t, http.StatusOK, code)

	// signed with the wrong key
	cv := &CreateVaultRequest{Owner: ownerID, AssetID: assetID, VaultID: vaultID, Nonce: "n-vault"}
	cv.Signature = sign(t, otherSeed, cv.Digest())
	code, out := ts.post(t, "/v1/vault", cv)
	assert.Equal(t, http.StatusUnauthorized, code)
	assert.NotEmpty(t, out["error"])

	code = ts.get(t, "/v1/vault/"+vaultID, nil)
	assert.Equal(t, http.StatusNotFound, code)
}

// A mutating request observed on the wire must not be replayable,
// the (signer, nonce) pair is consumed on first acceptance.
func TestServiceReplayRejected(t *testing.T) {
	ts := newTestServer(t)

	srcID, srcSeed, err := crypto.GetAccountKeypair()
	require.Nil(t, err)
	dstID, _, err := crypto.GetAccountKeypair()
	require.Nil(t, err)

	code, _ := ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: srcID, Balance: 100})
	assert.Equal(t, http.StatusOK, code)
	code, _ = ts.post(t, "/v1/account", &CreateAccountRequest{AccountID: dstID, Balance: 0})
	assert.Equal(t, http.StatusOK, code)

	p := &PaymentRequest{SrcAccountID: srcID, DstAccountID: dstID, Amount: 30, Nonce: "n-pay"}
	p.Signature = sign(t, srcSeed, p.Digest())
	code, _ = ts.post(t, "/v1/payment", p)
	assert.Equal(t, http.StatusOK, code)

	// the verbatim request is rejected and moves no money
	code, out := ts.post(t, "/v1/payment", p)
	assert.Equal(t, http.StatusConflict, code)
	assert.Equal(t, "request replayed", out["error"])

	ar := AccountResponse{}
	ts.get(t, "/v1/account/"+srcID, &ar)
	assert.Equal(t, uint64(70), ar.Balance)

	// a missing nonce is rejected before any verification
	q := &PaymentRequest{SrcAccountID: srcID, DstAccountID: dstID, Amount: 30}
	q.Signature = sign(t, srcSeed, q.Digest())
	code, _ = ts.post(t, "/v1/payment", q)
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestServiceNotFound(t *testing.T) {
	ts := newTestServer(t)

	vaultID, err := crypto.GetVaultID()
	require.Nil(t, err)
	swapID, err := crypto.GetSwapID()
	require.Nil(t, err)
	accountID, _, err := crypto.GetAccountKeypair()
	require.Nil(t, err)

	assert.Equal(t, http.StatusNotFound, ts.get(t, "/v1/vault/"+vaultID, nil))
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/v1/swap/"+swapID, nil))
	assert.Equal(t, http.StatusNotFound, ts.get(t, "/v1/account/"+accountID, nil))
}

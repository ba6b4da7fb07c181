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
	"net/http"

	restful "github.com/emicklei/go-restful"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/log"
	"github.com/vaultledger/go-vaultledger/swap"
	"github.com/vaultledger/go-vaultledger/tx"
	"github.com/vaultledger/go-vaultledger/tx/op"
	"github.com/vaultledger/go-vaultledger/vault"
)

// ServiceContext contains the shared managers the API routes
// operate on.
type ServiceContext struct {
	AM     *account.Manager
	CM     *custody.Manager
	VM     *vault.Manager
	SM     *swap.Manager
	Engine *tx.Engine
	Store  db.Database
}

type service struct {
	ctx *ServiceContext

	// (signer, nonce) pairs of accepted requests, a repeated pair
	// is a replay and is rejected
	seen *lru.Cache
}

// NewHandler registers the API routes and returns the HTTP handler
// serving them.
func NewHandler(ctx *ServiceContext) http.Handler {
	seen, err := lru.New(100000)
	if err != nil {
		log.Fatalf("create request nonce LRU cache failed: %v", err)
	}
	s := &service{ctx: ctx, seen: seen}

	ws := new(restful.WebService)
	ws.Path("/v1").
		Consumes(restful.MIME_JSON).
		Produces(restful.MIME_JSON)

	ws.Route(ws.POST("/account").To(s.createAccount))
	ws.Route(ws.POST("/asset").To(s.issueAsset))
	ws.Route(ws.POST("/payment").To(s.payment))
	ws.Route(ws.POST("/vault").To(s.createVault))
	ws.Route(ws.POST("/vault/lock").To(s.lockAsset))
	ws.Route(ws.POST("/swap").To(s.createSwap))
	ws.Route(ws.POST("/swap/execute").To(s.executeSwap))

	ws.Route(ws.GET("/account/{accountID}").To(s.getAccount))
	ws.Route(ws.GET("/vault/{vaultID}").To(s.getVault))
	ws.Route(ws.GET("/swap/{swapID}").To(s.getSwap))

	container := restful.NewContainer()
	container.Add(ws)

	return container
}

// statusOf maps an invocation error to the HTTP status reported to
// the client. Unknown errors are treated as storage failures.
func statusOf(err error) int {
	switch err {
	case op.ErrUnauthorized, custody.ErrTransferNotAuthorized:
		return http.StatusForbidden
	case vault.ErrVaultNotExist, swap.ErrSwapNotExist, account.ErrAccountNotExist:
		return http.StatusNotFound
	case op.ErrSlotOccupied, op.ErrAlreadyLocked, account.ErrAccountExists,
		custody.ErrAlreadyIssued, tx.ErrRecordBusy:
		return http.StatusConflict
	case op.ErrInsufficientFunds, custody.ErrAssetNotHeld,
		op.ErrInvalidPaymentAmount, op.ErrInvalidAccountID,
		account.ErrInvalidAccountID, vault.ErrInvalidVaultID,
		swap.ErrInvalidSwapID, custody.ErrInvalidAssetID,
		custody.ErrInvalidAccountID, account.ErrBalanceUnderflow,
		account.ErrBalanceOverflow:
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// verify checks the base58 ed25519 signature of the request digest
// against the signer's account key and consumes the request nonce.
// The signer of each mutating request is the account whose
// authority the invocation needs, the nonce is folded into the
// signed digest and each (signer, nonce) pair is accepted once.
func (s *service) verify(resp *restful.Response, signer, signature, nonce string, digest []byte) bool {
	if !crypto.IsValidTypedKey(signer, crypto.KeyTypeAccountID) {
		resp.WriteHeaderAndEntity(http.StatusBadRequest,
			InvocationResponse{Error: account.ErrInvalidAccountID.Error()})
		return false
	}
	if nonce == "" {
		resp.WriteHeaderAndEntity(http.StatusBadRequest,
			InvocationResponse{Error: "request nonce is missing"})
		return false
	}
	if !crypto.Verify(signer, signature, digest) {
		resp.WriteHeaderAndEntity(http.StatusUnauthorized,
			InvocationResponse{Error: "signature verification failed"})
		return false
	}
	// consume the nonce only after the signature checks out so a
	// forged request cannot burn a nonce of the real signer
	if found, _ := s.seen.ContainsOrAdd(signer+"|"+nonce, struct{}{}); found {
		resp.WriteHeaderAndEntity(http.StatusConflict,
			InvocationResponse{Error: "request replayed"})
		return false
	}
	return true
}

// submit runs the ops through the engine and writes the invocation
// outcome back to the client.
func (s *service) submit(resp *restful.Response, ops ...op.Op) {
	invocation, err := s.ctx.Engine.Submit(ops...)
	if err != nil {
		log.Errorw("invocation failed", "invocation", invocation, "err", err.Error())
		resp.WriteHeaderAndEntity(statusOf(err),
			InvocationResponse{Invocation: invocation, Error: err.Error()})
		return
	}
	resp.WriteEntity(InvocationResponse{Invocation: invocation})
}

func (s *service) createAccount(req *restful.Request, resp *restful.Response) {
	r := CreateAccountRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if err := s.ctx.AM.CreateAccount(s.ctx.Store, r.AccountID, r.Balance); err != nil {
		resp.WriteHeaderAndEntity(statusOf(err), InvocationResponse{Error: err.Error()})
		return
	}
	resp.WriteEntity(InvocationResponse{})
}

func (s *service) issueAsset(req *restful.Request, resp *restful.Response) {
	r := IssueAssetRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.Holder, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	if err := s.ctx.CM.Issue(s.ctx.Store, r.AssetID, r.Holder); err != nil {
		resp.WriteHeaderAndEntity(statusOf(err), InvocationResponse{Error: err.Error()})
		return
	}
	resp.WriteEntity(InvocationResponse{})
}

func (s *service) payment(req *restful.Request, resp *restful.Response) {
	r := PaymentRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.SrcAccountID, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	s.submit(resp, &op.Payment{
		AM:           s.ctx.AM,
		SrcAccountID: r.SrcAccountID,
		DstAccountID: r.DstAccountID,
		Amount:       r.Amount,
	})
}

func (s *service) createVault(req *restful.Request, resp *restful.Response) {
	r := CreateVaultRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.Owner, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	s.submit(resp, &op.CreateVault{
		VM:      s.ctx.VM,
		Owner:   r.Owner,
		AssetID: r.AssetID,
		VaultID: r.VaultID,
	})
}

func (s *service) lockAsset(req *restful.Request, resp *restful.Response) {
	r := LockAssetRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.Caller, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	s.submit(resp, &op.LockAsset{
		VM:      s.ctx.VM,
		CL:      s.ctx.CM,
		Caller:  r.Caller,
		VaultID: r.VaultID,
	})
}

func (s *service) createSwap(req *restful.Request, resp *restful.Response) {
	r := CreateSwapRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.Seller, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	s.submit(resp, &op.CreateSwap{
		SM:      s.ctx.SM,
		Seller:  r.Seller,
		AssetID: r.AssetID,
		Price:   r.Price,
		SwapID:  r.SwapID,
	})
}

func (s *service) executeSwap(req *restful.Request, resp *restful.Response) {
	r := ExecuteSwapRequest{}
	if err := req.ReadEntity(&r); err != nil {
		resp.WriteHeaderAndEntity(http.StatusBadRequest, InvocationResponse{Error: err.Error()})
		return
	}
	if !s.verify(resp, r.Buyer, r.Signature, r.Nonce, r.Digest()) {
		return
	}
	s.submit(resp, &op.ExecuteSwap{
		AM:     s.ctx.AM,
		SM:     s.ctx.SM,
		CL:     s.ctx.CM,
		Buyer:  r.Buyer,
		SwapID: r.SwapID,
	})
}

func (s *service) getAccount(req *restful.Request, resp *restful.Response) {
	accountID := req.PathParameter("accountID")
	acc, err := s.ctx.AM.GetAccount(s.ctx.Store, accountID)
	if err != nil {
		resp.WriteHeaderAndEntity(statusOf(err), InvocationResponse{Error: err.Error()})
		return
	}
	resp.WriteEntity(AccountResponse{AccountID: acc.AccountID, Balance: acc.Balance})
}

func (s *service) getVault(req *restful.Request, resp *restful.Response) {
	vaultID := req.PathParameter("vaultID")
	v, err := s.ctx.VM.GetVault(s.ctx.Store, vaultID)
	if err != nil {
		resp.WriteHeaderAndEntity(statusOf(err), InvocationResponse{Error: err.Error()})
		return
	}
	resp.WriteEntity(VaultResponse{
		VaultID:  vaultID,
		Owner:    v.Owner,
		AssetID:  v.AssetID,
		IsLocked: v.IsLocked,
	})
}

func (s *service) getSwap(req *restful.Request, resp *restful.Response) {
	swapID := req.PathParameter("swapID")
	sw, err := s.ctx.SM.GetSwap(s.ctx.Store, swapID)
	if err != nil {
		resp.WriteHeaderAndEntity(statusOf(err), InvocationResponse{Error: err.Error()})
		return
	}
	resp.WriteEntity(SwapResponse{
		SwapID:  swapID,
		AssetID: sw.AssetID,
		Seller:  sw.Seller,
		Price:   sw.Price,
	})
}

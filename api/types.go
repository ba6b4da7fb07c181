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

import "fmt"

// Every mutating request carries the base58 ed25519 signature of
// its canonical digest, produced with the signer's seed, and a
// client-chosen nonce folded into the digest. The service rejects
// a (signer, nonce) pair it has seen before, so an observed
// request cannot be replayed verbatim. The digest formats below
// are part of the client contract.

type CreateAccountRequest struct {
	AccountID string `json:"account_id"`
	Balance   uint64 `json:"balance"`
}

type IssueAssetRequest struct {
	AssetID   string `json:"asset_id"`
	Holder    string `json:"holder"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

func (r *IssueAssetRequest) Digest() []byte {
	return []byte(fmt.Sprintf("issue_asset|%s|%s|%s", r.AssetID, r.Holder, r.Nonce))
}

type PaymentRequest struct {
	SrcAccountID string `json:"src_account_id"`
	DstAccountID string `json:"dst_account_id"`
	Amount       uint64 `json:"amount"`
	Nonce        string `json:"nonce"`
	Signature    string `json:"signature"`
}

func (r *PaymentRequest) Digest() []byte {
	return []byte(fmt.Sprintf("payment|%s|%s|%d|%s", r.SrcAccountID, r.DstAccountID, r.Amount, r.Nonce))
}

type CreateVaultRequest struct {
	Owner     string `json:"owner"`
	AssetID   string `json:"asset_id"`
	VaultID   string `json:"vault_id"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

func (r *CreateVaultRequest) Digest() []byte {
	return []byte(fmt.Sprintf("create_vault|%s|%s|%s|%s", r.Owner, r.AssetID, r.VaultID, r.Nonce))
}

type LockAssetRequest struct {
	Caller    string `json:"caller"`
	VaultID   string `json:"vault_id"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

func (r *LockAssetRequest) Digest() []byte {
	return []byte(fmt.Sprintf("lock_asset|%s|%s|%s", r.Caller, r.VaultID, r.Nonce))
}

type CreateSwapRequest struct {
	Seller    string `json:"seller"`
	AssetID   string `json:"asset_id"`
	Price     uint64 `json:"price"`
	SwapID    string `json:"swap_id"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

func (r *CreateSwapRequest) Digest() []byte {
	return []byte(fmt.Sprintf("create_swap|%s|%s|%d|%s|%s", r.Seller, r.AssetID, r.Price, r.SwapID, r.Nonce))
}

type ExecuteSwapRequest struct {
	Buyer     string `json:"buyer"`
	SwapID    string `json:"swap_id"`
	Nonce     string `json:"nonce"`
	Signature string `json:"signature"`
}

func (r *ExecuteSwapRequest) Digest() []byte {
	return []byte(fmt.Sprintf("execute_swap|%s|%s|%s", r.Buyer, r.SwapID, r.Nonce))
}

// InvocationResponse reports the outcome of one invocation.
type InvocationResponse struct {
	Invocation string `json:"invocation"`
	Error      string `json:"error,omitempty"`
}

type VaultResponse struct {
	VaultID  string `json:"vault_id"`
	Owner    string `json:"owner"`
	AssetID  string `json:"asset_id"`
	IsLocked bool   `json:"is_locked"`
}

type SwapResponse struct {
	SwapID  string `json:"swap_id"`
	AssetID string `json:"asset_id"`
	Seller  string `json:"seller"`
	Price   uint64 `json:"price"`
}

type AccountResponse struct {
	AccountID string `json:"account_id"`
	Balance   uint64 `json:"balance"`
}

type HoldingResponse struct {
	AccountID string `json:"account_id"`
	AssetID   string `json:"asset_id"`
	Units     uint32 `json:"units"`
}

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

package op

import (
	"fmt"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/record"
	"github.com/vaultledger/go-vaultledger/swap"
)

// Operation for creating a new sale listing. The caller becomes
// the seller. A zero price is permitted and produces a free
// transfer on execution.
type CreateSwap struct {
	SM      *swap.Manager
	Seller  string
	AssetID string
	Price   uint64
	// client-allocated storage slot of the new record
	SwapID string
}

func (cs *CreateSwap) RecordKeys() []string {
	return []string{cs.SwapID}
}

func (cs *CreateSwap) Apply(dt db.Tx) error {
	if !crypto.IsValidTypedKey(cs.Seller, crypto.KeyTypeAccountID) {
		return fmt.Errorf("invalid seller accountID %s", cs.Seller)
	}
	if !crypto.IsValidTypedKey(cs.AssetID, crypto.KeyTypeAssetID) {
		return fmt.Errorf("invalid assetID %s", cs.AssetID)
	}

	exists, err := cs.SM.Exists(dt, cs.SwapID)
	if err != nil {
		return fmt.Errorf("check swap slot failed: %v", err)
	}
	if exists {
		return ErrSlotOccupied
	}

	s := &record.Swap{
		AssetID: cs.AssetID,
		Seller:  cs.Seller,
		Price:   cs.Price,
	}
	if err := cs.SM.SaveSwap(dt, cs.SwapID, s); err != nil {
		return fmt.Errorf("save swap failed: %v", err)
	}

	return nil
}

// Operation for executing a sale listing: the buyer pays the
// listing price and receives the asset unit in one atomic step.
// Either the buyer balance decreases by the price, the seller
// balance increases by the price and the asset moves from seller
// to buyer, or none of the three happen.
//
// The operation does not verify up front that the seller still
// holds the asset and does not mark the listing as fulfilled, once
// the unit is gone a repeated execution fails on the custody
// transfer and the staged payment is rolled back with it.
type ExecuteSwap struct {
	AM     *account.Manager
	SM     *swap.Manager
	CL     custody.Layer
	Buyer  string
	SwapID string
}

func (es *ExecuteSwap) RecordKeys() []string {
	return []string{es.SwapID, es.Buyer}
}

func (es *ExecuteSwap) Apply(dt db.Tx) error {
	s, err := es.SM.GetSwap(dt, es.SwapID)
	if err != nil {
		if err == swap.ErrSwapNotExist {
			return err
		}
		return fmt.Errorf("get swap failed: %v", err)
	}

	buyerAcc, err := es.AM.GetAccount(dt, es.Buyer)
	if err != nil {
		if err == account.ErrAccountNotExist {
			return err
		}
		return fmt.Errorf("get buyer account failed: %v", err)
	}

	if buyerAcc.Balance < s.Price {
		return ErrInsufficientFunds
	}

	// when the buyer executes their own listing the debit and the
	// credit land on the same account and net to zero, moving the
	// price through two loaded copies would double the balance
	if es.Buyer != s.Seller {
		sellerAcc, err := es.AM.GetAccount(dt, s.Seller)
		if err != nil {
			return fmt.Errorf("get seller account failed: %v", err)
		}

		// debit the buyer and credit the seller
		if err := es.AM.SubBalance(buyerAcc, s.Price); err != nil {
			return err
		}
		if err := es.AM.AddBalance(sellerAcc, s.Price); err != nil {
			return err
		}
		if err := es.AM.SaveAccount(dt, buyerAcc); err != nil {
			return fmt.Errorf("save buyer account failed: %v", err)
		}
		if err := es.AM.SaveAccount(dt, sellerAcc); err != nil {
			return fmt.Errorf("save seller account failed: %v", err)
		}
	}

	// move the asset unit from seller to buyer, a failure here
	// aborts the invocation and takes the staged payment with it
	if err := es.CL.Transfer(dt, s.AssetID, s.Seller, es.Buyer, s.Seller); err != nil {
		return err
	}

	return nil
}

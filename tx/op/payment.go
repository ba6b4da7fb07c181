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
	"errors"
	"fmt"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/db"
)

var (
	ErrInvalidPaymentAmount = errors.New("invalid payment amount")
	ErrInvalidAccountID     = errors.New("invalid accountID")
)

// Peer to peer payment in native currency, used to fund accounts
// from the master account. The currency ledger permits direct
// balance movement only as part of an atomic invocation, so the
// payment stages both sides against one transaction like every
// other operation.
type Payment struct {
	AM           *account.Manager
	SrcAccountID string
	DstAccountID string
	Amount       uint64
}

func (p *Payment) RecordKeys() []string {
	return []string{p.SrcAccountID, p.DstAccountID}
}

func (p *Payment) Apply(dt db.Tx) error {
	if p.Amount == 0 {
		return ErrInvalidPaymentAmount
	}
	if p.SrcAccountID == "" || p.DstAccountID == "" {
		return ErrInvalidAccountID
	}
	// an account never pays itself, sub and add on two loaded
	// copies of the same record would mint the amount
	if p.SrcAccountID == p.DstAccountID {
		return ErrInvalidAccountID
	}

	srcAcc, err := p.AM.GetAccount(dt, p.SrcAccountID)
	if err != nil {
		if err == account.ErrAccountNotExist {
			return err
		}
		return fmt.Errorf("get src account failed: %v", err)
	}
	dstAcc, err := p.AM.GetAccount(dt, p.DstAccountID)
	if err != nil {
		if err == account.ErrAccountNotExist {
			return err
		}
		return fmt.Errorf("get dst account failed: %v", err)
	}

	if err := p.AM.SubBalance(srcAcc, p.Amount); err != nil {
		return err
	}
	if err := p.AM.AddBalance(dstAcc, p.Amount); err != nil {
		return err
	}

	if err := p.AM.SaveAccount(dt, srcAcc); err != nil {
		return fmt.Errorf("save src account failed: %v", err)
	}
	if err := p.AM.SaveAccount(dt, dstAcc); err != nil {
		return fmt.Errorf("save dst account failed: %v", err)
	}

	return nil
}

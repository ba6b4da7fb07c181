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

// Package op implements the state transition operations of the
// escrow ledger. Every operation validates its preconditions in a
// fixed order before any mutation, the first violated precondition
// aborts the invocation, and all writes are staged against the
// supplied transaction so the invocation engine can commit them as
// a whole or roll them back.
package op

import (
	"errors"

	"github.com/vaultledger/go-vaultledger/db"
)

var (
	// the caller is not the designated owner or seller
	ErrUnauthorized = errors.New("caller not authorized")
	// lock requested on a vault that is already locked
	ErrAlreadyLocked = errors.New("vault already locked")
	// buyer balance is below the listing price
	ErrInsufficientFunds = errors.New("insufficient funds")
	// record creation targets an occupied storage slot
	ErrSlotOccupied = errors.New("storage slot already in use")
)

// Op is the interface with which the state transition
// operations comply.
type Op interface {
	// Apply stages the effects of the operation against the
	// supplied transaction.
	Apply(dt db.Tx) error
	// RecordKeys enumerates the records the operation declares,
	// used by the invocation engine to serialize writers.
	RecordKeys() []string
}

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

// Package custody tracks which account currently holds a given
// asset unit. The escrow core only ever calls the Transfer
// primitive through the Layer interface, the rest of the package
// is the bookkeeping behind it.
package custody

import (
	"errors"

	"github.com/vaultledger/go-vaultledger/db"
)

// The TransferError family, propagated verbatim to the caller of
// an escrow operation when the underlying asset transfer cannot
// be carried out.
var (
	ErrTransferNotAuthorized = errors.New("transfer not authorized by current holder")
	ErrAssetNotHeld          = errors.New("source account does not hold the asset")
)

// Layer is the custody transfer primitive. Transfer moves one unit
// of the asset between the custody accounts of from and to, it
// fails unless authority is the current holder of record of the
// unit in the from account.
type Layer interface {
	Transfer(dt db.Tx, assetID, from, to, authority string) error
}

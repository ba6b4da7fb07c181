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

// Package record defines the persistent ledger entities and their
// fixed-layout binary codec. Every identity field holds the base58
// string form of a typed 32-byte key, the codec persists the raw
// 32-byte hashes.
package record

// Vault is the custodial record binding one asset unit to its
// original owner and a lock flag. Owner and AssetID are set once at
// creation. IsLocked transitions false to true exactly once via the
// lock operation, there is no operation that sets it back to false,
// so a locked asset is permanently non-withdrawable under the
// current operation set.
type Vault struct {
	// identity of the account that deposited the asset
	Owner string
	// identity of the custodied asset unit
	AssetID string
	// lock status, initially false
	IsLocked bool
}

// Swap is a sale offer binding one asset unit to a seller and a
// price in native currency. Seller and Price are immutable after
// creation. The listing carries no fulfilled flag, so executing it
// again is only stopped by the custody layer once the seller no
// longer holds the asset. Known limitation, kept as-is.
type Swap struct {
	// identity of the asset being offered
	AssetID string
	// identity of the account entitled to receive payment
	Seller string
	// amount of native currency required to execute the swap,
	// zero is permitted and produces a free transfer
	Price uint64
}

// Account is a currency ledger record holding the non-negative
// native balance of one account.
type Account struct {
	AccountID string
	Balance   uint64
}

// Holding is a custody layer record tracking possession of one
// asset unit, an account holds zero or one units of a given asset.
type Holding struct {
	AccountID string
	AssetID   string
	Units     uint32
}

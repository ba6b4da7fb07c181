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

package tx

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db/memdb"
	"github.com/vaultledger/go-vaultledger/swap"
	"github.com/vaultledger/go-vaultledger/tx/op"
	"github.com/vaultledger/go-vaultledger/vault"
)

func TestEngineCommit(t *testing.T) {
	memorydb := memdb.New()
	vm := vault.NewManager(memorydb)
	engine := NewEngine(memorydb)

	owner, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	asset, err := crypto.GetAssetID()
	assert.Nil(t, err)
	vaultID, err := crypto.GetVaultID()
	assert.Nil(t, err)

	ikey, err := engine.Submit(&op.CreateVault{
		VM:      vm,
		Owner:   owner,
		AssetID: asset,
		VaultID: vaultID,
	})
	assert.Nil(t, err)
	assert.Equal(t, StatusCommitted, engine.GetStatus(ikey).Code)

	v, err := vm.GetVault(memorydb, vaultID)
	assert.Nil(t, err)
	assert.Equal(t, owner, v.Owner)
}

// A failing operation must leave no state behind, even when an
// earlier operation of the same invocation already staged writes.
func TestEngineRollback(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb)
	sm := swap.NewManager(memorydb)
	cm := custody.NewManager(memorydb)
	engine := NewEngine(memorydb)

	seller, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	buyer, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	asset, err := crypto.GetAssetID()
	assert.Nil(t, err)
	swapID, err := crypto.GetSwapID()
	assert.Nil(t, err)

	assert.Nil(t, am.CreateAccount(memorydb, seller, 0))
	assert.Nil(t, am.CreateAccount(memorydb, buyer, 500))

	// the listing creation commits, the execution fails on the
	// custody transfer because the seller holds nothing, and the
	// staged payment is rolled back
	ikey, err := engine.Submit(&op.CreateSwap{
		SM:      sm,
		Seller:  seller,
		AssetID: asset,
		Price:   100,
		SwapID:  swapID,
	})
	assert.Nil(t, err)
	assert.Equal(t, StatusCommitted, engine.GetStatus(ikey).Code)

	ikey, err = engine.Submit(&op.ExecuteSwap{
		AM:     am,
		SM:     sm,
		CL:     cm,
		Buyer:  buyer,
		SwapID: swapID,
	})
	assert.Equal(t, custody.ErrAssetNotHeld, err)
	status := engine.GetStatus(ikey)
	assert.Equal(t, StatusFailed, status.Code)
	assert.Equal(t, custody.ErrAssetNotHeld.Error(), status.Error)

	acc, err := am.GetAccount(memorydb, buyer)
	assert.Nil(t, err)
	assert.Equal(t, uint64(500), acc.Balance)
	acc, err = am.GetAccount(memorydb, seller)
	assert.Nil(t, err)
	assert.Equal(t, uint64(0), acc.Balance)
}

// A record staged by an earlier op and read back by a later op of
// the same invocation must vanish completely when the invocation
// rolls back, the manager caches may not keep a phantom of it.
func TestEngineRollbackLeavesNoPhantom(t *testing.T) {
	memorydb := memdb.New()
	am := account.NewManager(memorydb)
	sm := swap.NewManager(memorydb)
	cm := custody.NewManager(memorydb)
	engine := NewEngine(memorydb)

	seller, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	buyer, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	asset, err := crypto.GetAssetID()
	assert.Nil(t, err)
	swapID, err := crypto.GetSwapID()
	assert.Nil(t, err)

	assert.Nil(t, am.CreateAccount(memorydb, seller, 0))
	assert.Nil(t, am.CreateAccount(memorydb, buyer, 40))
	assert.Nil(t, cm.Issue(memorydb, asset, seller))

	// the execution reads the listing staged by the creation and
	// fails on the buyer balance, rolling the whole invocation back
	_, err = engine.Submit(
		&op.CreateSwap{
			SM:      sm,
			Seller:  seller,
			AssetID: asset,
			Price:   100,
			SwapID:  swapID,
		},
		&op.ExecuteSwap{
			AM:     am,
			SM:     sm,
			CL:     cm,
			Buyer:  buyer,
			SwapID: swapID,
		},
	)
	assert.Equal(t, op.ErrInsufficientFunds, err)

	// the listing never committed, so neither the store nor the
	// manager cache may know it
	_, err = sm.GetSwap(memorydb, swapID)
	assert.Equal(t, swap.ErrSwapNotExist, err)
	ok, err := sm.Exists(memorydb, swapID)
	assert.Nil(t, err)
	assert.Equal(t, false, ok)

	// the slot is still free for a committing retry
	_, err = engine.Submit(&op.CreateSwap{
		SM:      sm,
		Seller:  seller,
		AssetID: asset,
		Price:   100,
		SwapID:  swapID,
	})
	assert.Nil(t, err)
}

// A racing invocation against a held record is rejected outright.
func TestEngineRecordBusy(t *testing.T) {
	memorydb := memdb.New()
	vm := vault.NewManager(memorydb)
	engine := NewEngine(memorydb)

	owner, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	asset, err := crypto.GetAssetID()
	assert.Nil(t, err)
	vaultID, err := crypto.GetVaultID()
	assert.Nil(t, err)

	// simulate an in-flight invocation holding the record
	assert.Equal(t, true, engine.busy.Add(vaultID))

	_, err = engine.Submit(&op.CreateVault{
		VM:      vm,
		Owner:   owner,
		AssetID: asset,
		VaultID: vaultID,
	})
	assert.Equal(t, ErrRecordBusy, err)

	// once released the invocation goes through
	engine.busy.Remove(vaultID)
	_, err = engine.Submit(&op.CreateVault{
		VM:      vm,
		Owner:   owner,
		AssetID: asset,
		VaultID: vaultID,
	})
	assert.Nil(t, err)
}

func TestEngineNoOps(t *testing.T) {
	memorydb := memdb.New()
	engine := NewEngine(memorydb)

	_, err := engine.Submit()
	assert.Equal(t, ErrNoOps, err)
}

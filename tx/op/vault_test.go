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
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/db/memdb"
	"github.com/vaultledger/go-vaultledger/vault"
)

type vaultFixture struct {
	database db.Database
	vm       *vault.Manager
	cm       *custody.Manager
	owner    string
	other    string
	asset    string
	vaultID  string
}

func newVaultFixture(t *testing.T) *vaultFixture {
	memorydb := memdb.New()

	owner, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	other, _, err := crypto.GetAccountKeypair()
	assert.Nil(t, err)
	asset, err := crypto.GetAssetID()
	assert.Nil(t, err)
	vaultID, err := crypto.GetVaultID()
	assert.Nil(t, err)

	return &vaultFixture{
		database: memorydb,
		vm:       vault.NewManager(memorydb),
		cm:       custody.NewManager(memorydb),
		owner:    owner,
		other:    other,
		asset:    asset,
		vaultID:  vaultID,
	}
}

func (f *vaultFixture) apply(t *testing.T, o Op) error {
	dt, err := f.database.Begin()
	assert.Nil(t, err)
	if err := o.Apply(dt); err != nil {
		assert.Nil(t, dt.Rollback())
		return err
	}
	assert.Nil(t, dt.Commit())
	return nil
}

func TestCreateVaultOp(t *testing.T) {
	f := newVaultFixture(t)

	err := f.apply(t, &CreateVault{
		VM:      f.vm,
		Owner:   f.owner,
		AssetID: f.asset,
		VaultID: f.vaultID,
	})
	assert.Nil(t, err)

	v, err := f.vm.GetVault(f.database, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, f.owner, v.Owner)
	assert.Equal(t, f.asset, v.AssetID)
	assert.Equal(t, false, v.IsLocked)

	// a second creation against the same slot is rejected
	err = f.apply(t, &CreateVault{
		VM:      f.vm,
		Owner:   f.other,
		AssetID: f.asset,
		VaultID: f.vaultID,
	})
	assert.Equal(t, ErrSlotOccupied, err)
}

// Scenario: vault created by owner O for asset A, O locks it, a
// second lock attempt by O fails with AlreadyLocked.
func TestLockAssetOp(t *testing.T) {
	f := newVaultFixture(t)

	err := f.apply(t, &CreateVault{
		VM:      f.vm,
		Owner:   f.owner,
		AssetID: f.asset,
		VaultID: f.vaultID,
	})
	assert.Nil(t, err)

	// the owner holds the minted unit
	err = f.cm.Issue(f.database, f.asset, f.owner)
	assert.Nil(t, err)

	lock := &LockAsset{VM: f.vm, CL: f.cm, Caller: f.owner, VaultID: f.vaultID}
	err = f.apply(t, lock)
	assert.Nil(t, err)

	v, err := f.vm.GetVault(f.database, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, true, v.IsLocked)

	// the unit moved to the vault custody account
	custodyAcc, err := f.vm.CustodyAccountID(f.vaultID)
	assert.Nil(t, err)
	h, err := f.cm.GetHolding(f.database, custodyAcc, f.asset)
	assert.Nil(t, err)
	assert.Equal(t, uint32(1), h.Units)
	h, err = f.cm.GetHolding(f.database, f.owner, f.asset)
	assert.Nil(t, err)
	assert.Equal(t, uint32(0), h.Units)

	// the second lock always fails with AlreadyLocked,
	// regardless of custody state
	err = f.apply(t, lock)
	assert.Equal(t, ErrAlreadyLocked, err)
}

func TestLockAssetUnauthorized(t *testing.T) {
	f := newVaultFixture(t)

	err := f.apply(t, &CreateVault{
		VM:      f.vm,
		Owner:   f.owner,
		AssetID: f.asset,
		VaultID: f.vaultID,
	})
	assert.Nil(t, err)

	err = f.cm.Issue(f.database, f.asset, f.owner)
	assert.Nil(t, err)

	// a non-owner caller is rejected before any custody movement
	err = f.apply(t, &LockAsset{VM: f.vm, CL: f.cm, Caller: f.other, VaultID: f.vaultID})
	assert.Equal(t, ErrUnauthorized, err)

	v, err := f.vm.GetVault(f.database, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, false, v.IsLocked)
}

// A custody transfer failure aborts the lock with no partial
// state, is_locked stays false.
func TestLockAssetTransferFails(t *testing.T) {
	f := newVaultFixture(t)

	err := f.apply(t, &CreateVault{
		VM:      f.vm,
		Owner:   f.owner,
		AssetID: f.asset,
		VaultID: f.vaultID,
	})
	assert.Nil(t, err)

	// the owner never received the asset unit
	err = f.apply(t, &LockAsset{VM: f.vm, CL: f.cm, Caller: f.owner, VaultID: f.vaultID})
	assert.Equal(t, custody.ErrAssetNotHeld, err)

	v, err := f.vm.GetVault(f.database, f.vaultID)
	assert.Nil(t, err)
	assert.Equal(t, false, v.IsLocked)
}

func TestLockAssetVaultNotExist(t *testing.T) {
	f := newVaultFixture(t)

	err := f.apply(t, &LockAsset{VM: f.vm, CL: f.cm, Caller: f.owner, VaultID: f.vaultID})
	assert.NotNil(t, err)
}

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

// Package vault manages the custodial vault records. A vault binds
// one asset unit to its original owner, the record is created
// unlocked and can transition to locked exactly once. There is no
// destroy operation, a vault persists indefinitely.
package vault

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/log"
	"github.com/vaultledger/go-vaultledger/record"
)

var (
	ErrVaultNotExist  = errors.New("vault not exist")
	ErrInvalidVaultID = errors.New("invalid vaultID")
)

// Manager manages the vault records.
type Manager struct {
	database db.Database
	bucket   string

	// LRU cache for vaults, committed reads populate, writes invalidate
	vaults *lru.Cache
}

func NewManager(d db.Database) *Manager {
	vm := &Manager{
		database: d,
		bucket:   "VAULT",
	}
	err := vm.database.NewBucket(vm.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", vm.bucket, err)
	}
	cache, err := lru.New(10000)
	if err != nil {
		log.Fatalf("create vault manager LRU cache failed: %v", err)
	}
	vm.vaults = cache
	return vm
}

// Exists reports whether the storage slot of the vaultID is
// already occupied.
func (vm *Manager) Exists(getter db.Getter, vaultID string) (bool, error) {
	if !crypto.IsValidTypedKey(vaultID, crypto.KeyTypeVaultID) {
		return false, ErrInvalidVaultID
	}
	if vm.vaults.Contains(vaultID) {
		return true, nil
	}
	b, err := getter.Get(vm.bucket, []byte(vaultID))
	if err != nil {
		return false, fmt.Errorf("get vault %s failed: %v", vaultID, err)
	}
	return b != nil, nil
}

// Get vault information from vaultID.
func (vm *Manager) GetVault(getter db.Getter, vaultID string) (*record.Vault, error) {
	if v, ok := vm.vaults.Get(vaultID); ok {
		vc := *v.(*record.Vault)
		return &vc, nil
	}

	b, err := getter.Get(vm.bucket, []byte(vaultID))
	if err != nil {
		return nil, fmt.Errorf("get vault %s failed: %v", vaultID, err)
	}
	if b == nil {
		return nil, ErrVaultNotExist
	}

	v, err := record.DecodeVault(b)
	if err != nil {
		return nil, fmt.Errorf("vault %s decode failed: %v", vaultID, err)
	}

	// cache only records read from the committed store, a record
	// staged by a pending transaction must not outlive a rollback
	if _, pending := getter.(db.Tx); !pending {
		vm.vaults.Add(vaultID, v)
	}
	vc := *v

	return &vc, nil
}

// Save the vault record under the vaultID.
func (vm *Manager) SaveVault(putter db.Putter, vaultID string, v *record.Vault) error {
	vb, err := record.EncodeVault(v)
	if err != nil {
		return fmt.Errorf("encode vault failed: %v", err)
	}

	err = putter.Put(vm.bucket, []byte(vaultID), vb)
	if err != nil {
		return fmt.Errorf("save vault in db failed: %v", err)
	}

	vm.vaults.Remove(vaultID)

	return nil
}

// CustodyAccountID returns the accountID of the custody account
// controlled by the vault, the target of the lock transfer.
func (vm *Manager) CustodyAccountID(vaultID string) (string, error) {
	return crypto.VaultCustodyID(vaultID)
}

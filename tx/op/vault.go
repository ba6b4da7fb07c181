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

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/record"
	"github.com/vaultledger/go-vaultledger/vault"
)

// Operation for creating a new vault. The caller becomes the
// vault owner, the record starts unlocked. No existence check
// against the custody layer is performed at this step.
type CreateVault struct {
	VM      *vault.Manager
	Owner   string
	AssetID string
	// client-allocated storage slot of the new record
	VaultID string
}

func (cv *CreateVault) RecordKeys() []string {
	return []string{cv.VaultID}
}

func (cv *CreateVault) Apply(dt db.Tx) error {
	if !crypto.IsValidTypedKey(cv.Owner, crypto.KeyTypeAccountID) {
		return fmt.Errorf("invalid owner accountID %s", cv.Owner)
	}
	if !crypto.IsValidTypedKey(cv.AssetID, crypto.KeyTypeAssetID) {
		return fmt.Errorf("invalid assetID %s", cv.AssetID)
	}

	exists, err := cv.VM.Exists(dt, cv.VaultID)
	if err != nil {
		return fmt.Errorf("check vault slot failed: %v", err)
	}
	if exists {
		return ErrSlotOccupied
	}

	v := &record.Vault{
		Owner:    cv.Owner,
		AssetID:  cv.AssetID,
		IsLocked: false,
	}
	if err := cv.VM.SaveVault(dt, cv.VaultID, v); err != nil {
		return fmt.Errorf("save vault failed: %v", err)
	}

	return nil
}

// Operation for locking the custodied asset into the vault. The
// preconditions are checked in order, first failure wins: the
// caller must be the vault owner, then the vault must not be
// locked yet. On success the asset unit moves from the caller's
// custody account to the custody account controlled by the vault
// and the lock flag is set. A custody transfer failure aborts the
// whole invocation with the transfer error propagated verbatim,
// leaving the lock flag untouched.
type LockAsset struct {
	VM      *vault.Manager
	CL      custody.Layer
	Caller  string
	VaultID string
}

func (la *LockAsset) RecordKeys() []string {
	return []string{la.VaultID}
}

func (la *LockAsset) Apply(dt db.Tx) error {
	v, err := la.VM.GetVault(dt, la.VaultID)
	if err != nil {
		if err == vault.ErrVaultNotExist {
			return err
		}
		return fmt.Errorf("get vault failed: %v", err)
	}

	if la.Caller != v.Owner {
		return ErrUnauthorized
	}
	if v.IsLocked {
		return ErrAlreadyLocked
	}

	custodyAcc, err := la.VM.CustodyAccountID(la.VaultID)
	if err != nil {
		return fmt.Errorf("derive vault custody account failed: %v", err)
	}

	// no currency changes hands, only custody of the asset unit
	if err := la.CL.Transfer(dt, v.AssetID, la.Caller, custodyAcc, la.Caller); err != nil {
		return err
	}

	v.IsLocked = true
	if err := la.VM.SaveVault(dt, la.VaultID, v); err != nil {
		return fmt.Errorf("save vault failed: %v", err)
	}

	return nil
}

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

package custody

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
	ErrInvalidAssetID   = errors.New("invalid assetID")
	ErrInvalidAccountID = errors.New("invalid accountID")
	ErrAlreadyIssued    = errors.New("asset unit already issued")
)

// Manager is the db-backed custody layer implementation.
type Manager struct {
	database db.Database
	bucket   string

	// LRU cache for holdings, committed reads populate, writes invalidate
	holdings *lru.Cache
}

func NewManager(d db.Database) *Manager {
	cm := &Manager{
		database: d,
		bucket:   "CUSTODY",
	}
	err := cm.database.NewBucket(cm.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", cm.bucket, err)
	}
	cache, err := lru.New(10000)
	if err != nil {
		log.Fatalf("create custody manager LRU cache failed: %v", err)
	}
	cm.holdings = cache
	return cm
}

// Holdings are keyed by accountID plus assetID.
func holdingKey(accountID, assetID string) []byte {
	key := []byte(accountID)
	key = append(key, []byte(assetID)...)
	return key
}

// Issue records the output of the external minting procedure: the
// freshly minted asset unit is credited to the custody account of
// the supplied holder. The minting and metadata registration itself
// happens outside of this system.
func (cm *Manager) Issue(putter db.Putter, assetID, holder string) error {
	if !crypto.IsValidTypedKey(assetID, crypto.KeyTypeAssetID) {
		return ErrInvalidAssetID
	}
	if !crypto.IsValidTypedKey(holder, crypto.KeyTypeAccountID) {
		return ErrInvalidAccountID
	}

	if getter, ok := putter.(db.Getter); ok {
		holdings, err := cm.assetHoldings(getter, assetID)
		if err != nil {
			return err
		}
		if len(holdings) > 0 {
			return ErrAlreadyIssued
		}
	}

	return cm.saveHolding(putter, &record.Holding{
		AccountID: holder,
		AssetID:   assetID,
		Units:     1,
	})
}

// GetHolding loads the holding of the account for the asset, a
// missing record means the account holds zero units.
func (cm *Manager) GetHolding(getter db.Getter, accountID, assetID string) (*record.Holding, error) {
	key := holdingKey(accountID, assetID)

	if h, ok := cm.holdings.Get(string(key)); ok {
		hc := *h.(*record.Holding)
		return &hc, nil
	}

	b, err := getter.Get(cm.bucket, key)
	if err != nil {
		return nil, fmt.Errorf("get holding from db failed: %v", err)
	}
	if b == nil {
		return &record.Holding{AccountID: accountID, AssetID: assetID, Units: 0}, nil
	}

	holding, err := record.DecodeHolding(b)
	if err != nil {
		return nil, fmt.Errorf("decode holding failed: %v", err)
	}

	// cache only records read from the committed store, a record
	// staged by a pending transaction must not outlive a rollback
	if _, pending := getter.(db.Tx); !pending {
		cm.holdings.Add(string(key), holding)
	}
	hc := *holding

	return &hc, nil
}

func (cm *Manager) saveHolding(putter db.Putter, h *record.Holding) error {
	hb, err := record.EncodeHolding(h)
	if err != nil {
		return fmt.Errorf("encode holding failed: %v", err)
	}

	key := holdingKey(h.AccountID, h.AssetID)
	err = putter.Put(cm.bucket, key, hb)
	if err != nil {
		return fmt.Errorf("save holding in db failed: %v", err)
	}

	cm.holdings.Remove(string(key))

	return nil
}

// Load every holding of the supplied asset, used to check whether
// a unit has been issued before.
func (cm *Manager) assetHoldings(getter db.Getter, assetID string) ([]*record.Holding, error) {
	// holdings are keyed by account first so a full scan of the
	// bucket is needed, the bucket stays small enough in practice
	bs, err := getter.GetAll(cm.bucket, nil)
	if err != nil {
		return nil, fmt.Errorf("scan holdings failed: %v", err)
	}

	var holdings []*record.Holding
	for _, b := range bs {
		h, err := record.DecodeHolding(b)
		if err != nil {
			return nil, fmt.Errorf("decode holding failed: %v", err)
		}
		if h.AssetID == assetID && h.Units > 0 {
			holdings = append(holdings, h)
		}
	}
	return holdings, nil
}

// Transfer moves one unit of the asset from one custody account to
// another. It fails with ErrTransferNotAuthorized unless authority
// is the holder of record of the from account, and with
// ErrAssetNotHeld unless the from account holds a unit of the
// asset. Both failures leave the staged invocation untouched so
// the caller can roll the whole invocation back.
func (cm *Manager) Transfer(dt db.Tx, assetID, from, to, authority string) error {
	if !crypto.IsValidTypedKey(assetID, crypto.KeyTypeAssetID) {
		return ErrInvalidAssetID
	}
	if from == "" || to == "" {
		return ErrInvalidAccountID
	}

	// the custody account is controlled by its own identity, so
	// a transfer out of it must be authorized by that identity
	if authority != from {
		return ErrTransferNotAuthorized
	}

	src, err := cm.GetHolding(dt, from, assetID)
	if err != nil {
		return err
	}
	if src.Units == 0 {
		return ErrAssetNotHeld
	}

	dst, err := cm.GetHolding(dt, to, assetID)
	if err != nil {
		return err
	}

	src.Units = 0
	dst.Units = 1

	if err := cm.saveHolding(dt, src); err != nil {
		return err
	}
	if err := cm.saveHolding(dt, dst); err != nil {
		return err
	}

	return nil
}

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

// Package swap manages the sale listing records. A listing binds
// one asset unit to a seller and a fixed price, both immutable
// after creation. Executing a listing does not consume the record,
// see the note on record.Swap.
package swap

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
	ErrSwapNotExist  = errors.New("swap not exist")
	ErrInvalidSwapID = errors.New("invalid swapID")
)

// Manager manages the swap listing records.
type Manager struct {
	database db.Database
	bucket   string

	// LRU cache for listings, committed reads populate, writes invalidate
	swaps *lru.Cache
}

func NewManager(d db.Database) *Manager {
	sm := &Manager{
		database: d,
		bucket:   "SWAP",
	}
	err := sm.database.NewBucket(sm.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", sm.bucket, err)
	}
	cache, err := lru.New(10000)
	if err != nil {
		log.Fatalf("create swap manager LRU cache failed: %v", err)
	}
	sm.swaps = cache
	return sm
}

// Exists reports whether the storage slot of the swapID is
// already occupied.
func (sm *Manager) Exists(getter db.Getter, swapID string) (bool, error) {
	if !crypto.IsValidTypedKey(swapID, crypto.KeyTypeSwapID) {
		return false, ErrInvalidSwapID
	}
	if sm.swaps.Contains(swapID) {
		return true, nil
	}
	b, err := getter.Get(sm.bucket, []byte(swapID))
	if err != nil {
		return false, fmt.Errorf("get swap %s failed: %v", swapID, err)
	}
	return b != nil, nil
}

// Get listing information from swapID.
func (sm *Manager) GetSwap(getter db.Getter, swapID string) (*record.Swap, error) {
	if s, ok := sm.swaps.Get(swapID); ok {
		sc := *s.(*record.Swap)
		return &sc, nil
	}

	b, err := getter.Get(sm.bucket, []byte(swapID))
	if err != nil {
		return nil, fmt.Errorf("get swap %s failed: %v", swapID, err)
	}
	if b == nil {
		return nil, ErrSwapNotExist
	}

	s, err := record.DecodeSwap(b)
	if err != nil {
		return nil, fmt.Errorf("swap %s decode failed: %v", swapID, err)
	}

	// cache only records read from the committed store, a record
	// staged by a pending transaction must not outlive a rollback
	if _, pending := getter.(db.Tx); !pending {
		sm.swaps.Add(swapID, s)
	}
	sc := *s

	return &sc, nil
}

// Save the listing record under the swapID.
func (sm *Manager) SaveSwap(putter db.Putter, swapID string, s *record.Swap) error {
	sb, err := record.EncodeSwap(s)
	if err != nil {
		return fmt.Errorf("encode swap failed: %v", err)
	}

	err = putter.Put(sm.bucket, []byte(swapID), sb)
	if err != nil {
		return fmt.Errorf("save swap in db failed: %v", err)
	}

	sm.swaps.Remove(swapID)

	return nil
}

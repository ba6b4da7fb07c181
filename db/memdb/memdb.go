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

package memdb

import (
	"errors"
	"strings"
	"sync"

	"github.com/vaultledger/go-vaultledger/db"
)

var ErrClosed = errors.New("memdb is closed")

type memdb struct {
	db map[string][]byte
	sync.RWMutex
}

// New creates a memory-based key-value store which is mainly
// used for testing. Its transactions stage writes in memory and
// only apply them to the store on Commit, so tests can exercise
// the same commit-or-rollback contract as the file-backed store.
func New() db.Database {
	return &memdb{db: make(map[string][]byte)}
}

// Keys of different buckets share one map, the bucket name is
// folded into the key.
func makeKey(bucket string, key []byte) string {
	return bucket + "!" + string(key)
}

func (m *memdb) NewBucket(name string) error {
	return nil
}

// Put writes the key/value pair to database.
func (m *memdb) Put(bucket string, key, value []byte) error {
	m.Lock()
	defer m.Unlock()

	if m.db == nil {
		return ErrClosed
	}

	m.db[makeKey(bucket, key)] = value
	return nil
}

// Delete deletes the key from the database.
func (m *memdb) Delete(bucket string, key []byte) error {
	m.Lock()
	defer m.Unlock()

	if m.db == nil {
		return ErrClosed
	}

	delete(m.db, makeKey(bucket, key))
	return nil
}

// Get retrieves the value of the key from database. A missing
// key yields a nil value with no error, which matches the
// behaviour of the boltdb backend.
func (m *memdb) Get(bucket string, key []byte) ([]byte, error) {
	m.RLock()
	defer m.RUnlock()

	if m.db == nil {
		return nil, ErrClosed
	}

	return m.db[makeKey(bucket, key)], nil
}

// GetAll retrieves the values of the keys with prefix from database.
func (m *memdb) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	m.RLock()
	defer m.RUnlock()

	if m.db == nil {
		return nil, ErrClosed
	}

	prefix := makeKey(bucket, keyPrefix)

	var vals [][]byte
	for k, v := range m.db {
		if strings.HasPrefix(k, prefix) {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

// Close closes the underlying database.
func (m *memdb) Close() error {
	m.Lock()
	defer m.Unlock()

	m.db = nil
	return nil
}

// Begin returns a transaction which stages its writes until
// Commit is called.
func (m *memdb) Begin() (db.Tx, error) {
	m.RLock()
	defer m.RUnlock()

	if m.db == nil {
		return nil, ErrClosed
	}

	mtx := &memdbTx{
		db:      m,
		staged:  make(map[string][]byte),
		deleted: make(map[string]bool),
	}
	return mtx, nil
}

// memdbTx stages writes of one invocation, reads observe the
// staged state first so an invocation sees its own writes.
type memdbTx struct {
	db      *memdb
	staged  map[string][]byte
	deleted map[string]bool
	done    bool
}

var ErrTxDone = errors.New("memdb transaction already finished")

func (mtx *memdbTx) Get(bucket string, key []byte) ([]byte, error) {
	if mtx.done {
		return nil, ErrTxDone
	}

	k := makeKey(bucket, key)
	if mtx.deleted[k] {
		return nil, nil
	}
	if v, ok := mtx.staged[k]; ok {
		return v, nil
	}
	return mtx.db.Get(bucket, key)
}

func (mtx *memdbTx) GetAll(bucket string, keyPrefix []byte) ([][]byte, error) {
	if mtx.done {
		return nil, ErrTxDone
	}

	prefix := makeKey(bucket, keyPrefix)

	seen := make(map[string]bool)
	var vals [][]byte
	for k, v := range mtx.staged {
		if strings.HasPrefix(k, prefix) {
			vals = append(vals, v)
			seen[k] = true
		}
	}

	mtx.db.RLock()
	defer mtx.db.RUnlock()
	for k, v := range mtx.db.db {
		if strings.HasPrefix(k, prefix) && !seen[k] && !mtx.deleted[k] {
			vals = append(vals, v)
		}
	}
	return vals, nil
}

func (mtx *memdbTx) Put(bucket string, key, value []byte) error {
	if mtx.done {
		return ErrTxDone
	}

	k := makeKey(bucket, key)
	delete(mtx.deleted, k)
	mtx.staged[k] = value
	return nil
}

func (mtx *memdbTx) Delete(bucket string, key []byte) error {
	if mtx.done {
		return ErrTxDone
	}

	k := makeKey(bucket, key)
	delete(mtx.staged, k)
	mtx.deleted[k] = true
	return nil
}

// Rollback discards every staged write.
func (mtx *memdbTx) Rollback() error {
	if mtx.done {
		return ErrTxDone
	}

	mtx.done = true
	mtx.staged = nil
	mtx.deleted = nil
	return nil
}

// Commit applies every staged write to the store.
func (mtx *memdbTx) Commit() error {
	if mtx.done {
		return ErrTxDone
	}

	mtx.db.Lock()
	defer mtx.db.Unlock()

	if mtx.db.db == nil {
		return ErrClosed
	}

	for k := range mtx.deleted {
		delete(mtx.db.db, k)
	}
	for k, v := range mtx.staged {
		mtx.db.db[k] = v
	}

	mtx.done = true
	mtx.staged = nil
	mtx.deleted = nil
	return nil
}

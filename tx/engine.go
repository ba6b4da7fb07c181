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

// Package tx implements the invocation engine. An invocation is
// one request to execute operations against a fixed set of
// records, it is committed or aborted as a whole: the engine
// begins a database transaction, stages every operation against
// it and either commits everything or rolls everything back.
package tx

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"

	mapset "github.com/deckarep/golang-set"
	lru "github.com/hashicorp/golang-lru"

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/log"
	"github.com/vaultledger/go-vaultledger/tx/op"
)

var (
	// a declared record is held by another in-flight invocation,
	// the racing call is rejected outright
	ErrRecordBusy = errors.New("record held by another invocation")
	ErrNoOps      = errors.New("invocation declares no operations")
)

type StatusCode uint8

const (
	StatusUnknown StatusCode = iota
	StatusCommitted
	StatusFailed
)

// Status is the recorded outcome of one invocation.
type Status struct {
	Code  StatusCode
	Error string
}

// Engine serializes writers per record and applies invocations
// with all-or-nothing commit semantics. There are no retries and
// no partial success: a failed invocation reports its error and
// leaves all state unchanged.
type Engine struct {
	store db.Database

	// record keys of in-flight invocations, only one writer may
	// hold a given record at a time
	busy mapset.Set

	// invocation outcomes
	status *lru.Cache
}

func NewEngine(store db.Database) *Engine {
	e := &Engine{
		store: store,
		busy:  mapset.NewSet(),
	}
	cache, err := lru.New(1000)
	if err != nil {
		log.Fatalf("create invocation status LRU cache failed: %v", err)
	}
	e.status = cache
	return e
}

// Generate a unique invocation key.
func invocationKey() (string, error) {
	var nonce [32]byte
	if _, err := io.ReadFull(rand.Reader, nonce[:]); err != nil {
		return "", err
	}
	return crypto.SHA256Hash(nonce[:]), nil
}

// Acquire exclusivity on every declared record, releasing the
// partial acquisition when some record is already held.
func (e *Engine) acquire(keys []string) error {
	var held []string
	for _, k := range keys {
		if !e.busy.Add(k) {
			for _, h := range held {
				e.busy.Remove(h)
			}
			return ErrRecordBusy
		}
		held = append(held, k)
	}
	return nil
}

func (e *Engine) release(keys []string) {
	for _, k := range keys {
		e.busy.Remove(k)
	}
}

// Submit applies the operations of one invocation. Either every
// staged write commits or none takes effect, the first violated
// precondition aborts the invocation with its error surfaced to
// the caller unchanged. The returned key identifies the
// invocation for status queries.
func (e *Engine) Submit(ops ...op.Op) (string, error) {
	if len(ops) == 0 {
		return "", ErrNoOps
	}

	ikey, err := invocationKey()
	if err != nil {
		return "", fmt.Errorf("generate invocation key failed: %v", err)
	}

	// deduplicate the declared record set
	keySet := mapset.NewSet()
	for _, o := range ops {
		for _, k := range o.RecordKeys() {
			keySet.Add(k)
		}
	}
	var keys []string
	for k := range keySet.Iter() {
		keys = append(keys, k.(string))
	}

	if err := e.acquire(keys); err != nil {
		return ikey, err
	}
	defer e.release(keys)

	dt, err := e.store.Begin()
	if err != nil {
		return ikey, fmt.Errorf("begin invocation failed: %v", err)
	}

	for _, o := range ops {
		if err := o.Apply(dt); err != nil {
			if rerr := dt.Rollback(); rerr != nil {
				log.Errorf("rollback invocation %s failed: %v", ikey, rerr)
			}
			e.status.Add(ikey, &Status{Code: StatusFailed, Error: err.Error()})
			return ikey, err
		}
	}

	if err := dt.Commit(); err != nil {
		e.status.Add(ikey, &Status{Code: StatusFailed, Error: err.Error()})
		return ikey, fmt.Errorf("commit invocation failed: %v", err)
	}

	e.status.Add(ikey, &Status{Code: StatusCommitted})
	log.Debugw("invocation committed", "key", ikey, "records", keys)

	return ikey, nil
}

// GetStatus reports the recorded outcome of an invocation.
func (e *Engine) GetStatus(ikey string) *Status {
	if s, ok := e.status.Get(ikey); ok {
		return s.(*Status)
	}
	return &Status{Code: StatusUnknown}
}

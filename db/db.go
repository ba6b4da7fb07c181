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

package db

// Getter is the read-only subset of the database operations,
// record managers accept it so they can load records either from
// the database or from a pending transaction.
type Getter interface {
	Get(bucket string, key []byte) ([]byte, error)
	GetAll(bucket string, keyPrefix []byte) ([][]byte, error)
}

// Putter is the write-only subset of the database operations.
type Putter interface {
	Put(bucket string, key, value []byte) error
	Delete(bucket string, key []byte) error
}

// Database is the generic operation interface of the underlying
// record store, every backend should comply with it.
type Database interface {
	Getter
	Putter
	NewBucket(name string) error
	Close() error
	// Begin returns a writable transaction against which a whole
	// invocation is staged, the staged writes take effect on Commit
	// and are discarded as a whole on Rollback.
	Begin() (Tx, error)
}

// Tx is a writable database transaction, it is the unit of work of
// one invocation: either every staged write commits or none does.
type Tx interface {
	Getter
	Putter
	Rollback() error
	Commit() error
}

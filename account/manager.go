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

package account

import (
	"errors"
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru"

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/log"
	"github.com/vaultledger/go-vaultledger/record"
)

var (
	ErrAccountNotExist  = errors.New("account not exist")
	ErrAccountExists    = errors.New("account already exists")
	ErrInvalidAccountID = errors.New("invalid accountID")
	ErrBalanceOverflow  = errors.New("account balance overflow")
	ErrBalanceUnderflow = errors.New("account balance underflow")
)

// Manager manages the currency ledger accounts.
type Manager struct {
	database db.Database
	bucket   string

	// LRU cache for accounts, caches only committed reads,
	// writes invalidate so a rolled back invocation cannot
	// leave stale entries behind
	accounts *lru.Cache
}

func NewManager(d db.Database) *Manager {
	am := &Manager{
		database: d,
		bucket:   "ACCOUNT",
	}
	err := am.database.NewBucket(am.bucket)
	if err != nil {
		log.Fatalf("create db bucket %s failed: %v", am.bucket, err)
	}
	cache, err := lru.New(10000)
	if err != nil {
		log.Fatalf("create account manager LRU cache failed: %v", err)
	}
	am.accounts = cache
	return am
}

// Create the master account from the network seed and fund it with
// the initial native supply.
func (am *Manager) CreateMasterAccount(networkID []byte, balance uint64) (string, error) {
	pubKey, privKey, err := crypto.GetAccountKeypairFromSeed(networkID)
	if err != nil {
		return "", err
	}
	log.Infof("master private key (seed) is %s", privKey)

	err = am.CreateAccount(am.database, pubKey, balance)
	if err != nil && err != ErrAccountExists {
		return "", fmt.Errorf("create master account failed: %v", err)
	}

	return pubKey, nil
}

// Create a new account with initial balance.
func (am *Manager) CreateAccount(putter db.Putter, accountID string, balance uint64) error {
	if !crypto.IsValidTypedKey(accountID, crypto.KeyTypeAccountID) {
		return ErrInvalidAccountID
	}

	// reject a second creation against an existing account
	if getter, ok := putter.(db.Getter); ok {
		b, err := getter.Get(am.bucket, []byte(accountID))
		if err != nil {
			return fmt.Errorf("check account existence failed: %v", err)
		}
		if b != nil {
			return ErrAccountExists
		}
	}

	acc := &record.Account{
		AccountID: accountID,
		Balance:   balance,
	}

	accb, err := record.EncodeAccount(acc)
	if err != nil {
		return fmt.Errorf("encode account failed: %v", err)
	}

	// save the account in db
	err = putter.Put(am.bucket, []byte(acc.AccountID), accb)
	if err != nil {
		return fmt.Errorf("save account in db failed: %v", err)
	}

	am.accounts.Remove(acc.AccountID)

	return nil
}

// Get account information from accountID.
func (am *Manager) GetAccount(getter db.Getter, accountID string) (*record.Account, error) {
	// first check the LRU cache, if the account is in the cache
	// we return a copy of the account
	if acc, ok := am.accounts.Get(accountID); ok {
		a := *acc.(*record.Account)
		return &a, nil
	}

	// then check database
	b, err := getter.Get(am.bucket, []byte(accountID))
	if err != nil {
		return nil, fmt.Errorf("get account %s failed: %v", accountID, err)
	}
	if b == nil {
		return nil, ErrAccountNotExist
	}
	acc, err := record.DecodeAccount(b)
	if err != nil {
		return nil, fmt.Errorf("account %s decode failed: %v", accountID, err)
	}

	// cache the account, but only when it was read from the
	// committed store, a record staged by a pending transaction
	// must not outlive a rollback
	if _, pending := getter.(db.Tx); !pending {
		am.accounts.Add(accountID, acc)
	}
	accCopy := *acc

	return &accCopy, nil
}

// Update account information.
func (am *Manager) SaveAccount(putter db.Putter, acc *record.Account) error {
	accb, err := record.EncodeAccount(acc)
	if err != nil {
		return fmt.Errorf("encode account failed: %v", err)
	}

	// update account in db
	err = putter.Put(am.bucket, []byte(acc.AccountID), accb)
	if err != nil {
		return fmt.Errorf("save account in db failed: %v", err)
	}

	am.accounts.Remove(acc.AccountID)

	return nil
}

// Add balance to account and check balance overflow.
func (am *Manager) AddBalance(acc *record.Account, balance uint64) error {
	if acc.Balance > math.MaxUint64-balance {
		return ErrBalanceOverflow
	}

	acc.Balance += balance

	return nil
}

// Subtract balance from account and check balance underflow.
func (am *Manager) SubBalance(acc *record.Account, balance uint64) error {
	if acc.Balance < balance {
		return ErrBalanceUnderflow
	}

	acc.Balance -= balance

	return nil
}

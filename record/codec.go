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

package record

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/vaultledger/go-vaultledger/crypto"
)

// Persisted record sizes in bytes. The layout is fixed-width with
// big-endian integers: identities are the raw 32-byte key hashes,
// the lock flag is one byte, the price is an 8-byte unsigned
// integer.
const (
	VaultSize   = 32 + 32 + 1
	SwapSize    = 32 + 32 + 8
	AccountSize = 32 + 8
	HoldingSize = 32 + 32 + 4
)

var ErrCorruptedRecord = errors.New("corrupted record bytes")

// Extract the raw 32-byte hash of a base58 typed key string.
func keyHash(id string) ([32]byte, error) {
	k, err := crypto.DecodeKey(id)
	if err != nil {
		return [32]byte{}, fmt.Errorf("decode key %s failed: %v", id, err)
	}
	return k.Hash, nil
}

// Rebuild the base58 string form of a raw hash with the
// supplied key code.
func keyString(code crypto.KeyType, hash [32]byte) string {
	return crypto.EncodeKey(&crypto.Key{Code: code, Hash: hash})
}

// Encode the vault record to its fixed binary layout.
func EncodeVault(v *Vault) ([]byte, error) {
	owner, err := keyHash(v.Owner)
	if err != nil {
		return nil, err
	}
	asset, err := keyHash(v.AssetID)
	if err != nil {
		return nil, err
	}

	b := make([]byte, VaultSize)
	copy(b[0:32], owner[:])
	copy(b[32:64], asset[:])
	if v.IsLocked {
		b[64] = 1
	}
	return b, nil
}

// Decode the vault record from its fixed binary layout.
func DecodeVault(b []byte) (*Vault, error) {
	if len(b) != VaultSize {
		return nil, ErrCorruptedRecord
	}

	var owner, asset [32]byte
	copy(owner[:], b[0:32])
	copy(asset[:], b[32:64])

	v := &Vault{
		Owner:    keyString(crypto.KeyTypeAccountID, owner),
		AssetID:  keyString(crypto.KeyTypeAssetID, asset),
		IsLocked: b[64] == 1,
	}
	return v, nil
}

// Encode the swap record to its fixed binary layout.
func EncodeSwap(s *Swap) ([]byte, error) {
	asset, err := keyHash(s.AssetID)
	if err != nil {
		return nil, err
	}
	seller, err := keyHash(s.Seller)
	if err != nil {
		return nil, err
	}

	b := make([]byte, SwapSize)
	copy(b[0:32], asset[:])
	copy(b[32:64], seller[:])
	binary.BigEndian.PutUint64(b[64:72], s.Price)
	return b, nil
}

// Decode the swap record from its fixed binary layout.
func DecodeSwap(b []byte) (*Swap, error) {
	if len(b) != SwapSize {
		return nil, ErrCorruptedRecord
	}

	var asset, seller [32]byte
	copy(asset[:], b[0:32])
	copy(seller[:], b[32:64])

	s := &Swap{
		AssetID: keyString(crypto.KeyTypeAssetID, asset),
		Seller:  keyString(crypto.KeyTypeAccountID, seller),
		Price:   binary.BigEndian.Uint64(b[64:72]),
	}
	return s, nil
}

// Encode the account record to its fixed binary layout.
func EncodeAccount(a *Account) ([]byte, error) {
	id, err := keyHash(a.AccountID)
	if err != nil {
		return nil, err
	}

	b := make([]byte, AccountSize)
	copy(b[0:32], id[:])
	binary.BigEndian.PutUint64(b[32:40], a.Balance)
	return b, nil
}

// Decode the account record from its fixed binary layout.
func DecodeAccount(b []byte) (*Account, error) {
	if len(b) != AccountSize {
		return nil, ErrCorruptedRecord
	}

	var id [32]byte
	copy(id[:], b[0:32])

	a := &Account{
		AccountID: keyString(crypto.KeyTypeAccountID, id),
		Balance:   binary.BigEndian.Uint64(b[32:40]),
	}
	return a, nil
}

// Encode the holding record to its fixed binary layout.
func EncodeHolding(h *Holding) ([]byte, error) {
	acc, err := keyHash(h.AccountID)
	if err != nil {
		return nil, err
	}
	asset, err := keyHash(h.AssetID)
	if err != nil {
		return nil, err
	}

	b := make([]byte, HoldingSize)
	copy(b[0:32], acc[:])
	copy(b[32:64], asset[:])
	binary.BigEndian.PutUint32(b[64:68], h.Units)
	return b, nil
}

// Decode the holding record from its fixed binary layout.
func DecodeHolding(b []byte) (*Holding, error) {
	if len(b) != HoldingSize {
		return nil, ErrCorruptedRecord
	}

	var acc, asset [32]byte
	copy(acc[:], b[0:32])
	copy(asset[:], b[32:64])

	h := &Holding{
		AccountID: keyString(crypto.KeyTypeAccountID, acc),
		AssetID:   keyString(crypto.KeyTypeAssetID, asset),
		Units:     binary.BigEndian.Uint32(b[64:68]),
	}
	return h, nil
}

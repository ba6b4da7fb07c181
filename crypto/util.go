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

package crypto

import (
	"crypto/rand"
	"io"
)

// Generate a random typed record key, used by clients to allocate
// the storage slot of a new vault or swap record.
func getRandomKey(code KeyType) (string, error) {
	var h [32]byte
	_, err := io.ReadFull(rand.Reader, h[:])
	if err != nil {
		return "", err
	}
	k := &Key{Code: code, Hash: h}
	return EncodeKey(k), nil
}

// Generate a random vaultID.
func GetVaultID() (string, error) {
	return getRandomKey(KeyTypeVaultID)
}

// Generate a random swapID.
func GetSwapID() (string, error) {
	return getRandomKey(KeyTypeSwapID)
}

// Generate a random assetID, the identity of one minted
// asset unit tracked by the custody layer.
func GetAssetID() (string, error) {
	return getRandomKey(KeyTypeAssetID)
}

// Derive the accountID of the custody account controlled by the
// vault from the vaultID, the derivation is deterministic so the
// holder of record of a locked asset is always addressable.
func VaultCustodyID(vaultID string) (string, error) {
	vk, err := DecodeKey(vaultID)
	if err != nil {
		return "", err
	}
	h := SHA256HashBytes(vk.Hash[:])
	k := &Key{Code: KeyTypeAccountID, Hash: h}
	return EncodeKey(k), nil
}

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
	"testing"

	"github.com/stretchr/testify/assert"
)

var testData string = "vaultledger is awesome!"

// test generation of account keypair
func TestAccountKeypair(t *testing.T) {
	pubKey, seed, err := GetAccountKeypair()
	assert.Equal(t, nil, err)
	assert.Equal(t, true, IsValidTypedKey(pubKey, KeyTypeAccountID))
	assert.Equal(t, true, IsValidTypedKey(seed, KeyTypeSeed))
}

// test data signing and verification
func TestSignAndVerify(t *testing.T) {
	pubKey, seed, err := GetAccountKeypair()
	assert.Equal(t, nil, err)

	signature, err := Sign(seed, []byte(testData))
	assert.Equal(t, nil, err)
	assert.Equal(t, true, Verify(pubKey, signature, []byte(testData)))

	// signature should not verify against another keypair
	otherKey, _, err := GetAccountKeypair()
	assert.Equal(t, nil, err)
	assert.Equal(t, false, Verify(otherKey, signature, []byte(testData)))
}

// keypair from a fixed seed should be deterministic
func TestAccountKeypairFromSeed(t *testing.T) {
	seed := []byte("01234567890123456789012345678901")

	pk1, sd1, err := GetAccountKeypairFromSeed(seed)
	assert.Equal(t, nil, err)
	pk2, sd2, err := GetAccountKeypairFromSeed(seed)
	assert.Equal(t, nil, err)
	assert.Equal(t, pk1, pk2)
	assert.Equal(t, sd1, sd2)

	_, _, err = GetAccountKeypairFromSeed([]byte("short"))
	assert.NotEqual(t, nil, err)
}

// vault custody account derivation should be deterministic
func TestVaultCustodyID(t *testing.T) {
	vaultID, err := GetVaultID()
	assert.Equal(t, nil, err)

	c1, err := VaultCustodyID(vaultID)
	assert.Equal(t, nil, err)
	c2, err := VaultCustodyID(vaultID)
	assert.Equal(t, nil, err)
	assert.Equal(t, c1, c2)
	assert.Equal(t, true, IsValidTypedKey(c1, KeyTypeAccountID))
}

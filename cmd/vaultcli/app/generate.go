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

package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vaultledger/go-vaultledger/crypto"
	"github.com/vaultledger/go-vaultledger/log"
)

var genaccountidCmd = &cobra.Command{
	Use:   "genaccountid",
	Short: "Generate a random keypair for an account",
	Long: `Generate a random keypair for an account, the keypair contains the crypto
seed and the public key. The public key is the ID for the account.
The seed is used for signing requests from the account.`,
	Run: func(cmd *cobra.Command, args []string) {
		pub, seed, err := crypto.GetAccountKeypair()
		if err != nil {
			log.Fatalf("generate random account ID failed: %v", err)
		}
		fmt.Printf("AccountID: %s, Seed: %s\n", pub, seed)
	},
}

var genassetidCmd = &cobra.Command{
	Use:   "genassetid",
	Short: "Generate a random ID for an asset unit",
	Run: func(cmd *cobra.Command, args []string) {
		assetID, err := crypto.GetAssetID()
		if err != nil {
			log.Fatalf("generate random asset ID failed: %v", err)
		}
		fmt.Printf("AssetID: %s\n", assetID)
	},
}

var genvaultidCmd = &cobra.Command{
	Use:   "genvaultid",
	Short: "Generate a random ID for a vault record",
	Run: func(cmd *cobra.Command, args []string) {
		vaultID, err := crypto.GetVaultID()
		if err != nil {
			log.Fatalf("generate random vault ID failed: %v", err)
		}
		fmt.Printf("VaultID: %s\n", vaultID)
	},
}

var genswapidCmd = &cobra.Command{
	Use:   "genswapid",
	Short: "Generate a random ID for a swap listing",
	Run: func(cmd *cobra.Command, args []string) {
		swapID, err := crypto.GetSwapID()
		if err != nil {
			log.Fatalf("generate random swap ID failed: %v", err)
		}
		fmt.Printf("SwapID: %s\n", swapID)
	},
}

func init() {
	rootCmd.AddCommand(genaccountidCmd)
	rootCmd.AddCommand(genassetidCmd)
	rootCmd.AddCommand(genvaultidCmd)
	rootCmd.AddCommand(genswapidCmd)
}

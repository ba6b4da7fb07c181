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

var signCmd = &cobra.Command{
	Use:   "sign",
	Short: "Sign a request digest with a seed",
	Long: `Sign the canonical digest of an invocation request with the
provided seed and print the base58 signature to attach to the
request.`,
	Run: func(cmd *cobra.Command, args []string) {
		signature, err := crypto.Sign(seed, []byte(digest))
		if err != nil {
			log.Fatalf("sign digest failed: %v", err)
		}
		fmt.Printf("Signature: %s\n", signature)
	},
}

var (
	seed   string
	digest string
)

func init() {
	signCmd.Flags().StringVarP(&seed, "seed", "s", "", "seed of the signing account")
	signCmd.Flags().StringVarP(&digest, "digest", "d", "", "canonical request digest to sign")
	signCmd.MarkFlagRequired("seed")
	signCmd.MarkFlagRequired("digest")
	rootCmd.AddCommand(signCmd)
}

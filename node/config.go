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

package node

import (
	"crypto/sha256"
	"errors"

	"github.com/spf13/viper"
)

type Config struct {
	// network ID hash, the master account is derived from it
	NetworkID [32]byte
	// listen port of the http server
	Port string
	// database backend
	DBBackend string
	// database file path
	DBPath string
	// initial native supply credited to the master account
	MasterBalance uint64
}

func NewConfig(v *viper.Viper) (*Config, error) {
	if v.GetString("network_id") == "" {
		return nil, errors.New("network ID is missing")
	}
	if v.GetString("port") == "" {
		return nil, errors.New("network port is missing")
	}
	if v.GetString("db_backend") == "" {
		return nil, errors.New("db backend is empty")
	}
	if v.GetString("db_backend") != "boltdb" && v.GetString("db_backend") != "memdb" {
		return nil, errors.New("unknown db backend")
	}
	if v.GetString("db_backend") == "boltdb" && v.GetString("db_path") == "" {
		return nil, errors.New("db path is empty")
	}
	if v.GetInt64("master_balance") <= 0 {
		return nil, errors.New("master balance is missing")
	}

	c := Config{
		NetworkID:     sha256.Sum256([]byte(v.GetString("network_id"))),
		Port:          v.GetString("port"),
		DBBackend:     v.GetString("db_backend"),
		DBPath:        v.GetString("db_path"),
		MasterBalance: uint64(v.GetInt64("master_balance")),
	}

	return &c, nil
}

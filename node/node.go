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
	"net/http"

	"github.com/vaultledger/go-vaultledger/account"
	"github.com/vaultledger/go-vaultledger/api"
	"github.com/vaultledger/go-vaultledger/custody"
	"github.com/vaultledger/go-vaultledger/db"
	"github.com/vaultledger/go-vaultledger/db/boltdb"
	"github.com/vaultledger/go-vaultledger/db/memdb"
	"github.com/vaultledger/go-vaultledger/log"
	"github.com/vaultledger/go-vaultledger/swap"
	"github.com/vaultledger/go-vaultledger/tx"
	"github.com/vaultledger/go-vaultledger/vault"
)

// Node is the central controller of the escrow ledger, it owns the
// record store, the managers and the invocation engine and serves
// the invocation surface over http.
type Node struct {
	database db.Database

	config *Config

	// accountID of the master account
	masterID string

	am     *account.Manager
	cm     *custody.Manager
	vm     *vault.Manager
	sm     *swap.Manager
	engine *tx.Engine

	server *http.Server
}

// NewNode creates a Node which wires all the managers together.
func NewNode(conf *Config) *Node {
	// create database store
	var database db.Database
	switch conf.DBBackend {
	case "boltdb":
		database = boltdb.New(conf.DBPath)
	case "memdb":
		database = memdb.New()
	default:
		log.Fatalf("unknown db backend %s", conf.DBBackend)
	}

	am := account.NewManager(database)
	cm := custody.NewManager(database)
	vm := vault.NewManager(database)
	sm := swap.NewManager(database)
	engine := tx.NewEngine(database)

	// the master account is derived from the network ID, on a
	// restart the existing account is reused
	masterID, err := am.CreateMasterAccount(conf.NetworkID[:], conf.MasterBalance)
	if err != nil {
		log.Fatalf("create master account failed: %v", err)
	}
	log.Infow("master account ready", "accountID", masterID)

	n := &Node{
		database: database,
		config:   conf,
		masterID: masterID,
		am:       am,
		cm:       cm,
		vm:       vm,
		sm:       sm,
		engine:   engine,
	}

	handler := api.NewHandler(&api.ServiceContext{
		AM:     am,
		CM:     cm,
		VM:     vm,
		SM:     sm,
		Engine: engine,
		Store:  database,
	})
	n.server = &http.Server{
		Addr:    ":" + conf.Port,
		Handler: handler,
	}

	return n
}

// Start the node and serve the invocation surface, the call blocks
// until the server stops.
func (n *Node) Start() {
	log.Infow("start serving invocations", "port", n.config.Port)
	if err := n.server.ListenAndServe(); err != http.ErrServerClosed {
		log.Fatalf("http server failed: %v", err)
	}
}

// Stop the node and close the record store.
func (n *Node) Stop() {
	n.server.Close()
	n.database.Close()
	log.Sync()
}

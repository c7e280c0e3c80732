// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/storage"
)

// all test files live below this directory
const testingDirName = "testing"

func setup(t *testing.T) {
	removeFiles()

	logDirectory := filepath.Join(testingDirName, "log")
	if err := os.MkdirAll(logDirectory, 0o700); err != nil {
		t.Fatalf("mkdir error: %s", err)
	}

	logging := logger.Configuration{
		Directory: logDirectory,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); err != nil {
		t.Fatalf("logger initialise error: %s", err)
	}

	if err := blockclock.Initialise(2); err != nil {
		t.Fatalf("blockclock initialise error: %s", err)
	}
	if err := storage.Initialise(filepath.Join(testingDirName, "index.leveldb")); err != nil {
		t.Fatalf("storage initialise error: %s", err)
	}
	if err := blockstore.Initialise(filepath.Join(testingDirName, "blocks")); err != nil {
		t.Fatalf("blockstore initialise error: %s", err)
	}
	if err := index.Initialise(); err != nil {
		t.Fatalf("index initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	index.Finalise()
	blockstore.Finalise()
	storage.Finalise()
	blockclock.Finalise()
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"os"
	"testing"

	"github.com/fleetmetrics/fleetstored/storage"
)

// a database file for testing, removed between tests
const databaseFileName = "testing-index.leveldb"

func setup(t *testing.T) {
	removeFiles()
	err := storage.Initialise(databaseFileName)
	if err != nil {
		t.Fatalf("storage initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	storage.Finalise()
	removeFiles()
}

func removeFiles() {
	os.RemoveAll(databaseFileName)
}

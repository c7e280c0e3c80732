// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fleetmetrics/fleetstored/storage"
)

// helper to add to pool
func poolPut(t *testing.T, p *storage.PoolHandle, key string, data string) {
	err := p.Put([]byte(key), []byte(data))
	if err != nil {
		t.Fatalf("put: %q error: %s", key, err)
	}
}

// helper to remove from pool
func poolDelete(t *testing.T, p *storage.PoolHandle, key string) {
	err := p.Delete([]byte(key))
	if err != nil {
		t.Fatalf("delete: %q error: %s", key, err)
	}
}

func poolGet(t *testing.T, p *storage.PoolHandle, key string) []byte {
	value, err := p.Get([]byte(key))
	if err != nil {
		t.Fatalf("get: %q error: %s", key, err)
	}
	return value
}

// main pool test
func TestPool(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	poolPut(t, p, "key-one", "data-one")
	poolPut(t, p, "key-two", "data-two")
	poolPut(t, p, "key-remove-me", "to be deleted")
	poolDelete(t, p, "key-remove-me")
	poolPut(t, p, "key-one", "data-one(NEW)") // duplicate

	assert.Equal(t, []byte("data-one(NEW)"), poolGet(t, p, "key-one"), "wrong data")
	assert.Equal(t, []byte("data-two"), poolGet(t, p, "key-two"), "wrong data")
	assert.Nil(t, poolGet(t, p, "key-remove-me"), "deleted key still present")
	assert.Nil(t, poolGet(t, p, "key-never-stored"), "missing key present")

	ok, err := p.Has([]byte("key-two"))
	if err != nil {
		t.Fatalf("has error: %s", err)
	}
	assert.True(t, ok, "missing key")
}

// check that restarting database keeps data
func TestPoolPersists(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData
	poolPut(t, p, "key-persist", "still here")

	storage.Finalise()
	err := storage.Initialise(databaseFileName)
	if err != nil {
		t.Fatalf("reopen error: %s", err)
	}

	assert.Equal(t, []byte("still here"), poolGet(t, storage.Pool.TestData, "key-persist"), "data lost")
}

// pools must not see each other's keys
func TestPoolIsolation(t *testing.T) {
	setup(t)
	defer teardown(t)

	poolPut(t, storage.Pool.TestData, "same-key", "test data")
	assert.Nil(t, poolGet(t, storage.Pool.LastGood, "same-key"), "prefix leak")
}

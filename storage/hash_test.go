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

func TestHashFields(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	err := p.HashSet(ownerOne, "1_value", []byte("100"))
	if err != nil {
		t.Fatalf("hash set error: %s", err)
	}

	value, err := p.HashGet(ownerOne, "1_value")
	if err != nil {
		t.Fatalf("hash get error: %s", err)
	}
	assert.Equal(t, []byte("100"), value, "wrong value")

	value, err = p.HashGet(ownerOne, "1_status")
	if err != nil {
		t.Fatalf("hash get error: %s", err)
	}
	assert.Nil(t, value, "missing field present")

	err = p.HashDelete(ownerOne, "1_value")
	if err != nil {
		t.Fatalf("hash delete error: %s", err)
	}
	value, err = p.HashGet(ownerOne, "1_value")
	if err != nil {
		t.Fatalf("hash get error: %s", err)
	}
	assert.Nil(t, value, "deleted field present")
}

func TestHashMultiSet(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	err := p.HashSet(ownerOne, "1_timestamp", []byte("1699999990"))
	if err != nil {
		t.Fatalf("hash set error: %s", err)
	}

	err = p.HashMultiSet(ownerOne, map[string][]byte{
		"1_ticktime":  []byte("1700000000"),
		"1_status":    []byte("0"),
		"1_value":     []byte("100"),
		"1_scale":     []byte("0"),
		"1_timestamp": nil, // nil must delete
	})
	if err != nil {
		t.Fatalf("hash multi set error: %s", err)
	}

	fields, err := p.HashGetAll(ownerOne)
	if err != nil {
		t.Fatalf("hash get all error: %s", err)
	}

	expected := map[string][]byte{
		"1_ticktime": []byte("1700000000"),
		"1_status":   []byte("0"),
		"1_value":    []byte("100"),
		"1_scale":    []byte("0"),
	}
	assert.Equal(t, expected, fields, "wrong fields")
}

func TestHashOwnersSeparate(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	err := p.HashSet(ownerOne, "ticktime", []byte("1700000000"))
	if err != nil {
		t.Fatalf("hash set error: %s", err)
	}

	fields, err := p.HashGetAll(ownerTwo)
	if err != nil {
		t.Fatalf("hash get all error: %s", err)
	}
	assert.Empty(t, fields, "owner leak")
}

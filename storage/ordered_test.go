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

var (
	ownerOne = []byte{0x00, 0x00, 0x00, 0x01}
	ownerTwo = []byte{0x00, 0x00, 0x00, 0x02}
)

func addMember(t *testing.T, p *storage.PoolHandle, owner []byte, score uint64) {
	err := p.AddMember(owner, score)
	if err != nil {
		t.Fatalf("add member: %d error: %s", score, err)
	}
}

func TestOrderedSetMembership(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	addMember(t, p, ownerOne, 2023111411)
	addMember(t, p, ownerOne, 2023111400)
	addMember(t, p, ownerOne, 2023111411) // duplicate is a no-op

	ok, err := p.IsMember(ownerOne, 2023111411)
	if err != nil {
		t.Fatalf("is member error: %s", err)
	}
	assert.True(t, ok, "missing member")

	n, err := p.Cardinality(ownerOne)
	if err != nil {
		t.Fatalf("cardinality error: %s", err)
	}
	assert.Equal(t, 2, n, "wrong cardinality")

	err = p.RemoveMember(ownerOne, 2023111411)
	if err != nil {
		t.Fatalf("remove member error: %s", err)
	}
	ok, err = p.IsMember(ownerOne, 2023111411)
	if err != nil {
		t.Fatalf("is member error: %s", err)
	}
	assert.False(t, ok, "removed member still present")
}

func TestOrderedSetRanges(t *testing.T) {
	setup(t)
	defer teardown(t)

	p := storage.Pool.TestData

	scores := []uint64{2023111411, 2023111400, 2023111503, 2023111501, 2024010100}
	for _, score := range scores {
		addMember(t, p, ownerOne, score)
	}

	// a second owner must stay invisible
	addMember(t, p, ownerTwo, 1)
	addMember(t, p, ownerTwo, 2024020200)

	ascending, err := p.RangeAscending(ownerOne, 0)
	if err != nil {
		t.Fatalf("range error: %s", err)
	}
	assert.Equal(t, []uint64{2023111400, 2023111411, 2023111501, 2023111503, 2024010100}, ascending, "wrong ascending order")

	limited, err := p.RangeAscending(ownerOne, 2)
	if err != nil {
		t.Fatalf("range error: %s", err)
	}
	assert.Equal(t, []uint64{2023111400, 2023111411}, limited, "wrong limit")

	above, err := p.RangeAbove(ownerOne, 2023111411)
	if err != nil {
		t.Fatalf("range above error: %s", err)
	}
	assert.Equal(t, []uint64{2023111501, 2023111503, 2024010100}, above, "wrong range above")

	reverse, err := p.ReverseRangeAtOrBelow(ownerOne, 2023111502, 0)
	if err != nil {
		t.Fatalf("reverse range error: %s", err)
	}
	assert.Equal(t, []uint64{2023111501, 2023111411, 2023111400}, reverse, "wrong reverse range")

	reverseLimited, err := p.ReverseRangeAtOrBelow(ownerOne, 2024010100, 2)
	if err != nil {
		t.Fatalf("reverse range error: %s", err)
	}
	assert.Equal(t, []uint64{2024010100, 2023111503}, reverseLimited, "wrong reverse limit")

	first, ok, err := p.FirstScore(ownerOne)
	if err != nil {
		t.Fatalf("first score error: %s", err)
	}
	assert.True(t, ok, "missing first score")
	assert.Equal(t, uint64(2023111400), first, "wrong first score")

	_, ok, err = p.FirstScore([]byte{0x00, 0x00, 0x00, 0x09})
	if err != nil {
		t.Fatalf("first score error: %s", err)
	}
	assert.False(t, ok, "unexpected first score")
}

func TestOrderedSetEmptyOwner(t *testing.T) {
	setup(t)
	defer teardown(t)

	// the device set keys directly on score with no owner
	p := storage.Pool.TestData

	addMember(t, p, nil, 7)
	addMember(t, p, nil, 3)

	ascending, err := p.RangeAscending(nil, 0)
	if err != nil {
		t.Fatalf("range error: %s", err)
	}
	assert.Equal(t, []uint64{3, 7}, ascending, "wrong members")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"math"

	ldb_util "github.com/syndtr/goleveldb/leveldb/util"
)

const scoreLength = 8

// build the un-prefixed key for one member of an ordered set
func scoreKey(owner []byte, score uint64) []byte {
	key := make([]byte, len(owner)+scoreLength)
	copy(key, owner)
	binary.BigEndian.PutUint64(key[len(owner):], score)
	return key
}

// key range covering every member for one owner
func (p *PoolHandle) ownerRange(owner []byte) *ldb_util.Range {
	return ldb_util.BytesPrefix(p.prefixKey(owner))
}

// AddMember - add a score to an ordered set (ZADD)
//
// adding an existing member is a no-op
func (p *PoolHandle) AddMember(owner []byte, score uint64) error {
	value := make([]byte, scoreLength)
	binary.BigEndian.PutUint64(value, score)
	return p.Put(scoreKey(owner, score), value)
}

// RemoveMember - remove a score from an ordered set (ZREM)
func (p *PoolHandle) RemoveMember(owner []byte, score uint64) error {
	return p.Delete(scoreKey(owner, score))
}

// IsMember - check ordered set membership
func (p *PoolHandle) IsMember(owner []byte, score uint64) (bool, error) {
	return p.Has(scoreKey(owner, score))
}

// Cardinality - number of members for an owner (ZCARD)
func (p *PoolHandle) Cardinality(owner []byte) (int, error) {
	iter, err := p.iterate(p.ownerRange(owner))
	if err != nil {
		return 0, err
	}
	defer iter.Release()

	n := 0
	for iter.Next() {
		n += 1
	}
	return n, iter.Error()
}

// RangeAscending - members in score order, lowest first
//
// count limits the result, count <= 0 returns everything
func (p *PoolHandle) RangeAscending(owner []byte, count int) ([]uint64, error) {
	iter, err := p.iterate(p.ownerRange(owner))
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	scores := []uint64{}
	for iter.Next() {
		scores = append(scores, scoreFromKey(iter.Key()))
		if count > 0 && len(scores) >= count {
			break
		}
	}
	return scores, iter.Error()
}

// RangeAbove - members with score strictly greater than the minimum,
// lowest first (ZRANGEBYSCORE (min +inf)
func (p *PoolHandle) RangeAbove(owner []byte, minimum uint64) ([]uint64, error) {
	if minimum == math.MaxUint64 {
		return nil, nil
	}

	slice := p.ownerRange(owner)
	slice.Start = p.prefixKey(scoreKey(owner, minimum+1))

	iter, err := p.iterate(slice)
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	scores := []uint64{}
	for iter.Next() {
		scores = append(scores, scoreFromKey(iter.Key()))
	}
	return scores, iter.Error()
}

// ReverseRangeAtOrBelow - members with score at or below the maximum,
// highest first, limited to count entries (ZREVRANGEBYSCORE max -inf)
//
// count <= 0 returns everything
func (p *PoolHandle) ReverseRangeAtOrBelow(owner []byte, maximum uint64, count int) ([]uint64, error) {
	slice := p.ownerRange(owner)
	if maximum != math.MaxUint64 {
		slice.Limit = p.prefixKey(scoreKey(owner, maximum+1))
	}

	iter, err := p.iterate(slice)
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	scores := []uint64{}
	for ok := iter.Last(); ok; ok = iter.Prev() {
		scores = append(scores, scoreFromKey(iter.Key()))
		if count > 0 && len(scores) >= count {
			break
		}
	}
	return scores, iter.Error()
}

// FirstScore - the lowest score for an owner
//
// second result is false if the set is empty
func (p *PoolHandle) FirstScore(owner []byte) (uint64, bool, error) {
	iter, err := p.iterate(p.ownerRange(owner))
	if err != nil {
		return 0, false, err
	}
	defer iter.Release()

	if !iter.First() {
		return 0, false, iter.Error()
	}
	score := scoreFromKey(iter.Key())
	return score, true, iter.Error()
}

// the score is always the last 8 bytes of the full key
func scoreFromKey(key []byte) uint64 {
	return binary.BigEndian.Uint64(key[len(key)-scoreLength:])
}

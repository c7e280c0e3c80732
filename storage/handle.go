// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	ldb_util "github.com/syndtr/goleveldb/leveldb/util"

	"github.com/fleetmetrics/fleetstored/fault"
)

// PoolHandle - handle to one prefixed part of the database
type PoolHandle struct {
	prefix byte
}

// prepend the prefix onto the key
func (p *PoolHandle) prefixKey(key []byte) []byte {
	prefixedKey := make([]byte, 1, len(key)+1)
	prefixedKey[0] = p.prefix
	return append(prefixedKey, key...)
}

// Put - store a key/value bytes pair in the pool
func (p *PoolHandle) Put(key []byte, value []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return fault.NotInitialised
	}
	return poolData.db.Put(p.prefixKey(key), value, nil)
}

// Delete - remove a key from the pool
//
// deleting a missing key is not an error
func (p *PoolHandle) Delete(key []byte) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return fault.NotInitialised
	}
	return poolData.db.Delete(p.prefixKey(key), nil)
}

// Get - read a value for a given key
//
// returns nil with no error if the key is not present
func (p *PoolHandle) Get(key []byte) ([]byte, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return nil, fault.NotInitialised
	}
	value, err := poolData.db.Get(p.prefixKey(key), nil)
	if err == leveldb.ErrNotFound {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return value, nil
}

// Has - check if a key exists in the pool
func (p *PoolHandle) Has(key []byte) (bool, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return false, fault.NotInitialised
	}
	return poolData.db.Has(p.prefixKey(key), nil)
}

// write a prepared batch of updates in one atomic step
func (p *PoolHandle) write(batch *leveldb.Batch) error {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return fault.NotInitialised
	}
	return poolData.db.Write(batch, nil)
}

// iterator over a sub-range of the pool
//
// caller must Release the iterator; the database lock is not held so
// the iterator sees a consistent snapshot taken here
func (p *PoolHandle) iterate(slice *ldb_util.Range) (iterator.Iterator, error) {
	poolData.RLock()
	defer poolData.RUnlock()
	if poolData.db == nil {
		return nil, fault.NotInitialised
	}
	return poolData.db.NewIterator(slice, nil), nil
}

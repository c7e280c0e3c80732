// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/syndtr/goleveldb/leveldb"
)

// build the un-prefixed key for one field of a hash
func fieldKey(owner []byte, field string) []byte {
	key := make([]byte, len(owner), len(owner)+len(field))
	copy(key, owner)
	return append(key, field...)
}

// HashSet - store one field of a hash (HSET)
func (p *PoolHandle) HashSet(owner []byte, field string, value []byte) error {
	return p.Put(fieldKey(owner, field), value)
}

// HashGet - read one field of a hash (HGET)
//
// returns nil with no error if the field is not present
func (p *PoolHandle) HashGet(owner []byte, field string) ([]byte, error) {
	return p.Get(fieldKey(owner, field))
}

// HashDelete - remove one field of a hash (HDEL)
func (p *PoolHandle) HashDelete(owner []byte, field string) error {
	return p.Delete(fieldKey(owner, field))
}

// HashMultiSet - store several fields of a hash in one atomic write (HMSET)
//
// a nil value deletes the field
func (p *PoolHandle) HashMultiSet(owner []byte, fields map[string][]byte) error {
	batch := new(leveldb.Batch)
	for field, value := range fields {
		if value == nil {
			batch.Delete(p.prefixKey(fieldKey(owner, field)))
		} else {
			batch.Put(p.prefixKey(fieldKey(owner, field)), value)
		}
	}
	return p.write(batch)
}

// HashGetAll - read every field of a hash (HGETALL)
//
// an absent hash gives an empty map
func (p *PoolHandle) HashGetAll(owner []byte) (map[string][]byte, error) {
	iter, err := p.iterate(p.ownerRange(owner))
	if err != nil {
		return nil, err
	}
	defer iter.Release()

	fields := map[string][]byte{}
	for iter.Next() {
		key := iter.Key()
		field := string(key[1+len(owner):])

		value := make([]byte, len(iter.Value()))
		copy(value, iter.Value())
		fields[field] = value
	}
	return fields, iter.Error()
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage - maintain the index of devices, blocks and
// last-good-values in a single LevelDB database
//
// The database is split into pools, one for each kind of entry, by a
// one byte prefix on every key.  Two shapes of pool are used:
//
// ordered set
//
//	key:   prefix ++ owner ++ 8 byte big endian score
//	value: 8 byte big endian score
//
// LevelDB iterates keys in lexical order, so for a fixed owner the
// members come back in score order and reverse iteration gives the
// newest first.  The owner is empty for the device set and a 4 byte
// big endian device id for the per-device sets.
//
// hash
//
//	key:   prefix ++ owner ++ field name
//	value: field value
//
// equivalent to the redis commands the store was originally built on:
// ZADD/ZREM/ZRANGEBYSCORE/ZREVRANGE/ZCARD and HGET/HSET/HMSET/HGETALL
package storage

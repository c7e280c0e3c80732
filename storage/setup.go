// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"encoding/binary"
	"reflect"
	"sync"

	"github.com/syndtr/goleveldb/leveldb"
	ldb_opt "github.com/syndtr/goleveldb/leveldb/opt"

	"github.com/fleetmetrics/fleetstored/fault"
)

// exported storage pools
//
// note all must be exported (i.e. initial capital) or initialisation will panic
type pools struct {
	Devices  *PoolHandle `prefix:"D"`
	Blocks   *PoolHandle `prefix:"B"`
	Archived *PoolHandle `prefix:"A"`
	LastGood *PoolHandle `prefix:"L"`
	TestData *PoolHandle `prefix:"Z"`
}

// Pool - the set of exported pools
var Pool pools

// for database version
var versionKey = []byte{0x00, 'V', 'E', 'R', 'S', 'I', 'O', 'N'}

const currentDBVersion = 0x100

// holds the database handle
var poolData struct {
	sync.RWMutex
	db *leveldb.DB
}

// Initialise - open up the database connection
//
// this must be called before any pool is accessed
func Initialise(database string) error {
	poolData.Lock()
	defer poolData.Unlock()

	if poolData.db != nil {
		return fault.AlreadyInitialised
	}

	db, err := leveldb.OpenFile(database, nil)
	if err != nil {
		return err
	}

	err = checkVersion(db)
	if err != nil {
		db.Close()
		return err
	}

	poolData.db = db

	// this will be a struct type
	poolType := reflect.TypeOf(Pool)

	// get write access by using pointer + Elem()
	poolValue := reflect.ValueOf(&Pool).Elem()

	// scan each field
	for i := 0; i < poolType.NumField(); i += 1 {

		fieldInfo := poolType.Field(i)
		prefixTag := fieldInfo.Tag.Get("prefix")
		if len(prefixTag) != 1 {
			panic("storage pool: " + fieldInfo.Name + " has invalid prefix: " + prefixTag)
		}

		p := &PoolHandle{
			prefix: prefixTag[0],
		}
		newPool := reflect.ValueOf(p)
		poolValue.Field(i).Set(newPool)
	}

	return nil
}

// Finalise - close the database connection
func Finalise() {
	poolData.Lock()
	defer poolData.Unlock()

	if poolData.db == nil {
		return
	}
	poolData.db.Close()
	poolData.db = nil
}

// ensure new databases are stamped and old ones match
func checkVersion(db *leveldb.DB) error {
	versionValue, err := db.Get(versionKey, nil)
	if err == leveldb.ErrNotFound {
		version := make([]byte, 4)
		binary.BigEndian.PutUint32(version, currentDBVersion)
		return db.Put(versionKey, version, &ldb_opt.WriteOptions{Sync: true})
	}
	if err != nil {
		return err
	}
	if len(versionValue) != 4 || binary.BigEndian.Uint32(versionValue) != currentDBVersion {
		return fault.WrongDatabaseVersion
	}
	return nil
}

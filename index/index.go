// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package index - keep the ordered-set index coherent with the files
// the blockstore holds
//
// four entities per the original redis layout:
//
//	fm:devices      every device id ever stored
//	fm:blk:<devid>  live blocks for a device
//	fm:_blk:<devid> archived blocks for a device
//	fm:lgv:<devid>  last-good-value hash for a device
//
// realised as storage pools rather than literal redis keys
package index

import (
	"encoding/binary"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/storage"
)

// globals for this module
type indexData struct {
	sync.RWMutex

	log *logger.L

	// set once during initialise
	initialised bool
}

var globalData indexData

// Initialise - start the index keeper
//
// storage must already be initialised
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("index")
	globalData.log.Info("starting…")

	globalData.initialised = true
	return nil
}

// Finalise - shut down the index keeper
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}

	globalData.log.Info("shutting down…")
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

// the ordered-set owner / hash owner for one device
func deviceKey(devid uint32) []byte {
	owner := make([]byte, 4)
	binary.BigEndian.PutUint32(owner, devid)
	return owner
}

// Devices - every known device id, ascending
func Devices() ([]uint32, error) {
	scores, err := storage.Pool.Devices.RangeAscending(nil, 0)
	if err != nil {
		return nil, err
	}
	devices := make([]uint32, len(scores))
	for i, score := range scores {
		devices[i] = uint32(score)
	}
	return devices, nil
}

// AddDevice - record a device in the device set
func AddDevice(devid uint32) error {
	return storage.Pool.Devices.AddMember(nil, uint64(devid))
}

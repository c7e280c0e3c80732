// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"time"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/record"
)

// PutDeviceState - persist one device state and index it
//
// order matters: the file rename commits first, then the last-good
// value, then the block membership, then the device set.  an error
// short-circuits with no rollback; a record whose index update failed
// is an orphan until a later write of the same ticktime succeeds
func PutDeviceState(devid uint32, ticktime time.Time, state *record.DevState) error {
	newFile, err := blockstore.WriteState(devid, ticktime, state)
	if err != nil {
		return err
	}

	if err := UpdateLastGood(devid, state, ticktime); err != nil {
		return err
	}

	block := blockclock.Index(ticktime)
	if err := AddDeviceBlock(devid, block); err != nil {
		return err
	}

	if newFile {
		if err := AddDevice(devid); err != nil {
			return err
		}
	}

	globalData.RLock()
	log := globalData.log
	globalData.RUnlock()
	if log != nil {
		log.Debugf("put: devid: %d block: %d ticktime: %d", devid, block, ticktime.Unix())
	}
	return nil
}

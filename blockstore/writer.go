// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"time"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/record"
)

// WriteState - persist one device state under its ticktime
//
// the rename is the commit point: on any earlier failure the previous
// record for this ticktime, if any, is untouched
//
// returns true if no record existed for this ticktime before the call
func WriteState(devid uint32, ticktime time.Time, state *record.DevState) (bool, error) {
	globalData.RLock()
	initialised := globalData.initialised
	log := globalData.log
	globalData.RUnlock()

	if !initialised {
		return false, fault.NotInitialised
	}
	if ticktime.IsZero() {
		return false, fault.InvalidTicktime
	}

	buffer, err := record.Pack(state)
	if err != nil {
		return false, err
	}

	block := blockclock.Index(ticktime)
	path := RecordFile(devid, block, ticktime)
	temporary := path + temporarySuffix

	newFile := true
	if _, err := os.Stat(path); err == nil {
		newFile = false
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return false, err
	}

	if err := ioutil.WriteFile(temporary, buffer, 0o600); err != nil {
		return false, err
	}

	if err := os.Rename(temporary, path); err != nil {
		return false, err
	}

	log.Debugf("wrote: %q new: %v", path, newFile)
	return newFile, nil
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockstore - the on-disk home of device-state records
//
// records live under:
//
//	<dataRoot>/<block>/<devid>/<epoch seconds>.dat
//
// and archived blocks under:
//
//	<dataRoot>/archive/<devid>/<devid>-<block>.tgz
//
// directories are created lazily; records are written to a temporary
// file and renamed into place so a reader never sees a partial record
package blockstore

import (
	"os"
	"sync"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/fault"
)

// globals for this module
type blockstoreData struct {
	sync.RWMutex

	log      *logger.L
	dataRoot string

	// set once during initialise
	initialised bool
}

var globalData blockstoreData

// Initialise - set the data root directory, creating it if required
func Initialise(dataRoot string) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("blockstore")
	globalData.log.Info("starting…")

	if err := os.MkdirAll(dataRoot, 0o700); err != nil {
		return err
	}

	globalData.dataRoot = dataRoot
	globalData.initialised = true
	return nil
}

// Finalise - shut down the store
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

// DataRoot - the configured data root directory
func DataRoot() string {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.dataRoot
}

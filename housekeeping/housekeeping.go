// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package housekeeping - retention management for the block store
//
// each pass prunes future-dated blocks, then archives aged ones so
// that at most level1Blocks live blocks remain per device
package housekeeping

import (
	"math"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/archive"
	"github.com/fleetmetrics/fleetstored/background"
	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/index"
)

// Options - one housekeeping pass
//
// Level1Blocks is the number of live blocks to retain per device;
// zero or negative disables archival, pruning always runs
type Options struct {
	Level1Blocks int
}

// globals for this module
type housekeepingData struct {
	sync.RWMutex

	log       *logger.L
	interval  time.Duration
	options   Options
	processes *background.T

	// set once during initialise
	initialised bool
}

var globalData housekeepingData

// Initialise - start housekeeping
//
// a positive interval starts a background process running a pass at
// that cadence; zero leaves passes to explicit Run calls
func Initialise(interval time.Duration, options Options) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("housekeeping")
	globalData.log.Info("starting…")
	globalData.interval = interval
	globalData.options = options
	globalData.initialised = true

	if interval > 0 {
		globalData.processes = background.Start(background.Processes{periodic}, nil)
	}
	return nil
}

// Finalise - stop housekeeping
func Finalise() error {
	globalData.Lock()
	processes := globalData.processes
	globalData.processes = nil
	globalData.Unlock()

	processes.Stop()

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

// the background process: one pass per tick
func periodic(args interface{}, shutdown <-chan struct{}, done chan<- struct{}) {
	globalData.RLock()
	log := globalData.log
	interval := globalData.interval
	options := globalData.options
	globalData.RUnlock()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case <-ticker.C:
			if err := Run(options); err != nil {
				log.Errorf("pass error: %s", err)
			}
		}
	}
	done <- struct{}{}
}

// Run - one housekeeping pass over every device
func Run(options Options) error {
	globalData.RLock()
	initialised := globalData.initialised
	log := globalData.log
	globalData.RUnlock()

	if !initialised {
		return fault.NotInitialised
	}

	devices, err := index.Devices()
	if err != nil {
		return err
	}

	nowBlock := blockclock.Index(time.Now())

	for _, devid := range devices {
		if err := pruneFuture(log, devid, nowBlock); err != nil {
			return err
		}
	}

	if options.Level1Blocks > 0 {
		for _, devid := range devices {
			if err := archiveAged(log, devid, options.Level1Blocks); err != nil {
				return err
			}
		}
	}
	return nil
}

// drop any block indexed after the present
//
// a clock rollback or a restored test tree can leave future-dated
// records; they are removed rather than served
func pruneFuture(log *logger.L, devid uint32, nowBlock uint64) error {
	future, err := index.LiveBlocksAfter(devid, nowBlock)
	if err != nil {
		return err
	}

	for _, block := range future {
		log.Warnf("devid: %d prune future block: %d", devid, block)
		if err := index.RemoveDeviceBlockIndex(devid, block); err != nil {
			return err
		}
		if err := blockstore.RemoveDeviceBlock(devid, block); err != nil {
			return err
		}
	}
	return nil
}

// archive the oldest live blocks beyond the retention count
//
// first removes the copies of archived blocks that a projection
// materialised again, unless the block is also live
func archiveAged(log *logger.L, devid uint32, level1Blocks int) error {
	archived, err := index.ArchivedBlocksAtOrBefore(devid, math.MaxUint64, 0)
	if err != nil {
		return err
	}
	for _, block := range archived {
		live, err := index.IsBlockLive(devid, block)
		if err != nil {
			return err
		}
		if !live {
			if err := blockstore.RemoveDeviceBlock(devid, block); err != nil {
				return err
			}
		}
	}

	count, err := index.CountLiveBlocks(devid)
	if err != nil {
		return err
	}
	if count <= level1Blocks {
		return nil
	}

	aged, err := index.OldestLiveBlocks(devid, count-level1Blocks)
	if err != nil {
		return err
	}

	for _, block := range aged {
		log.Infof("devid: %d archive block: %d", devid, block)
		if err := archive.DeviceBlock(devid, block); err != nil {
			return err
		}
	}
	return nil
}

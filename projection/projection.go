// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package projection - reconstruct the freshest metric values for a
// device as of a reference instant
//
// the engine walks blocks backwards in time, live blocks first and
// archived blocks after, decoding records newest first and keeping the
// first observation seen for each wanted metric.  work is bounded by
// the travel limits; a record that cannot be read or decoded is logged
// and skipped, and a block that cannot be extracted or listed is logged
// and ends the walk over that list of blocks, neither failing the query
package projection

import (
	"sort"
	"sync"
	"time"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/archive"
	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/record"
)

// ArchiveTravelMax - archived blocks a projection may open; archives
// are slow so this is much tighter than the live limit
const ArchiveTravelMax = 2

// Value - one projected metric tagged with the ticktime it was stored under
type Value struct {
	Id        uint32 `json:"id"`
	Status    int32  `json:"status"`
	Value     int32  `json:"value"`
	Scale     int32  `json:"scale"`
	Timestamp uint32 `json:"timestamp,omitempty"`
	Ticktime  int64  `json:"ticktime"`
}

// globals for this module
type projectionData struct {
	sync.RWMutex

	log *logger.L

	// set once during initialise
	initialised bool
}

var globalData projectionData

// Initialise - start the projection engine
func Initialise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}

	globalData.log = logger.New("projection")
	globalData.initialised = true
	return nil
}

// Finalise - shut down the projection engine
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}
	globalData.log.Flush()
	globalData.initialised = false
	return nil
}

// book-keeping for one backward walk
type walk struct {
	log      *logger.L
	devid    uint32
	maxEpoch int64

	wanted   map[uint32]struct{} // empty means: single freshest record
	resolved map[uint32]struct{}
	values   []Value
}

// Metrics - project the freshest values at or before a reference instant
//
// with an id list: one entry per id that could be resolved inside the
// travel limits.  without: every metric of the single freshest record
func Metrics(devid uint32, at time.Time, metricIds []uint32) ([]Value, error) {
	globalData.RLock()
	initialised := globalData.initialised
	log := globalData.log
	globalData.RUnlock()

	if !initialised {
		return nil, fault.NotInitialised
	}

	w := &walk{
		log:      log,
		devid:    devid,
		maxEpoch: at.Unix(),
		wanted:   map[uint32]struct{}{},
		resolved: map[uint32]struct{}{},
		values:   []Value{},
	}
	for _, id := range metricIds {
		w.wanted[id] = struct{}{}
	}

	maxBlock := blockclock.Index(at)

	liveBlocks, err := index.LiveBlocksAtOrBefore(devid, maxBlock, blockclock.LiveTravelMax())
	if err != nil {
		return nil, err
	}
	if w.walkBlocks(liveBlocks, false) {
		return w.result(), nil
	}

	archivedBlocks, err := index.ArchivedBlocksAtOrBefore(devid, maxBlock, ArchiveTravelMax)
	if err != nil {
		return nil, err
	}
	w.walkBlocks(archivedBlocks, true)
	return w.result(), nil
}

// walk a list of blocks newest first; true when the query is satisfied
func (w *walk) walkBlocks(blocks []uint64, archived bool) bool {
	for _, block := range blocks {

		if archived {
			if err := archive.Extract(w.devid, block); err != nil {
				w.log.Errorf("devid: %d block: %d extract error: %s", w.devid, block, err)
				return false
			}
		}

		epochs, err := blockstore.ListBlock(w.devid, block)
		if err != nil {
			w.log.Errorf("devid: %d block: %d list error: %s", w.devid, block, err)
			return false
		}

		for _, epoch := range epochs {
			if epoch > w.maxEpoch {
				continue
			}

			data, err := blockstore.ReadRecord(w.devid, block, epoch)
			if err != nil {
				w.log.Errorf("devid: %d block: %d epoch: %d read error: %s", w.devid, block, epoch, err)
				continue
			}
			state, err := record.Unpack(data)
			if err != nil {
				w.log.Errorf("devid: %d block: %d epoch: %d unpack error: %s", w.devid, block, epoch, err)
				continue
			}

			if w.merge(state, epoch) {
				return true
			}
		}
	}
	return false
}

// fold one decoded record into the result; true when the query is satisfied
func (w *walk) merge(state *record.DevState, epoch int64) bool {
	for _, metric := range state.Metrics {
		if len(w.wanted) != 0 {
			if _, ok := w.wanted[metric.Id]; !ok {
				continue
			}
		}
		if _, ok := w.resolved[metric.Id]; ok {
			continue
		}

		w.resolved[metric.Id] = struct{}{}
		w.values = append(w.values, Value{
			Id:        metric.Id,
			Status:    metric.Status,
			Value:     metric.Value,
			Scale:     metric.Scale,
			Timestamp: metric.Timestamp,
			Ticktime:  epoch,
		})
	}

	if len(w.wanted) == 0 {
		// no id list: the single freshest record is the whole answer
		return true
	}
	return len(w.resolved) == len(w.wanted)
}

func (w *walk) result() []Value {
	sort.Slice(w.values, func(i, j int) bool { return w.values[i].Id < w.values[j].Id })
	return w.values
}

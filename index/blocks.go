// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"time"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/storage"
)

// AddDeviceBlock - record a live block for a device
func AddDeviceBlock(devid uint32, block uint64) error {
	return storage.Pool.Blocks.AddMember(deviceKey(devid), block)
}

// RemoveDeviceBlockIndex - forget a live block for a device
func RemoveDeviceBlockIndex(devid uint32, block uint64) error {
	return storage.Pool.Blocks.RemoveMember(deviceKey(devid), block)
}

// MarkDeviceBlockArchived - record an archived block for a device
func MarkDeviceBlockArchived(devid uint32, block uint64) error {
	return storage.Pool.Archived.AddMember(deviceKey(devid), block)
}

// IsBlockArchived - check the archived set
func IsBlockArchived(devid uint32, block uint64) (bool, error) {
	return storage.Pool.Archived.IsMember(deviceKey(devid), block)
}

// IsBlockLive - check the live set
func IsBlockLive(devid uint32, block uint64) (bool, error) {
	return storage.Pool.Blocks.IsMember(deviceKey(devid), block)
}

// CountLiveBlocks - number of live blocks for a device
func CountLiveBlocks(devid uint32) (int, error) {
	return storage.Pool.Blocks.Cardinality(deviceKey(devid))
}

// OldestLiveBlocks - the count lowest-indexed live blocks, oldest first
func OldestLiveBlocks(devid uint32, count int) ([]uint64, error) {
	if count <= 0 {
		return nil, fault.InvalidCount
	}
	return storage.Pool.Blocks.RangeAscending(deviceKey(devid), count)
}

// LiveBlocksAfter - live blocks strictly after a block index, oldest first
func LiveBlocksAfter(devid uint32, block uint64) ([]uint64, error) {
	return storage.Pool.Blocks.RangeAbove(deviceKey(devid), block)
}

// LiveBlocksAtOrBefore - live blocks at or before a block index,
// newest first, at most count of them
func LiveBlocksAtOrBefore(devid uint32, block uint64, count int) ([]uint64, error) {
	return storage.Pool.Blocks.ReverseRangeAtOrBelow(deviceKey(devid), block, count)
}

// ArchivedBlocksAtOrBefore - archived blocks at or before a block
// index, newest first, at most count of them
func ArchivedBlocksAtOrBefore(devid uint32, block uint64, count int) ([]uint64, error) {
	return storage.Pool.Archived.ReverseRangeAtOrBelow(deviceKey(devid), block, count)
}

// TimeSpan - the instants a device's stored data covers
//
// minimum is the start of the lowest block, archived or live; maximum
// is the last-good-value ticktime, or the minimum when no good value
// has been recorded yet
func TimeSpan(devid uint32) (time.Time, time.Time, error) {
	owner := deviceKey(devid)

	firstLive, okLive, err := storage.Pool.Blocks.FirstScore(owner)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	firstArchived, okArchived, err := storage.Pool.Archived.FirstScore(owner)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	var first uint64
	switch {
	case okLive && okArchived:
		first = firstLive
		if firstArchived < first {
			first = firstArchived
		}
	case okLive:
		first = firstLive
	case okArchived:
		first = firstArchived
	default:
		return time.Time{}, time.Time{}, fault.DeviceNotFound
	}

	minimum, err := blockclock.Start(first)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}

	tick, ok, err := lastGoodTicktime(devid)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	maximum := minimum
	if ok {
		maximum = time.Unix(tick, 0).UTC()
	}
	return minimum, maximum, nil
}

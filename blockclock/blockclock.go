// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blockclock - map instants to time-block indexes
//
// A block index is the integer YYYYMMDDHH' in UTC where
// HH' = hour / hoursPerBlock.  The width of a block is fixed for the
// lifetime of a store and is therefore global here.
package blockclock

import (
	"sync"
	"time"

	"github.com/fleetmetrics/fleetstored/fault"
)

// limits for the hours-per-block setting
const (
	MinimumHoursPerBlock = 1
	MaximumHoursPerBlock = 24
	DefaultHoursPerBlock = 2
)

// blocks a projection may open before giving up, expressed in hours
const liveTravelHours = 48

// globals for this module
type clockData struct {
	sync.RWMutex

	hoursPerBlock int

	// set once during initialise
	initialised bool
}

var globalData clockData

// Initialise - set the immutable block width
func Initialise(hoursPerBlock int) error {
	globalData.Lock()
	defer globalData.Unlock()

	if globalData.initialised {
		return fault.AlreadyInitialised
	}
	if hoursPerBlock < MinimumHoursPerBlock || hoursPerBlock > MaximumHoursPerBlock {
		return fault.InvalidHoursPerBlock
	}

	globalData.hoursPerBlock = hoursPerBlock
	globalData.initialised = true
	return nil
}

// Finalise - shut down the clock
func Finalise() error {
	globalData.Lock()
	defer globalData.Unlock()

	if !globalData.initialised {
		return fault.NotInitialised
	}
	globalData.initialised = false
	return nil
}

// HoursPerBlock - the configured block width
func HoursPerBlock() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return globalData.hoursPerBlock
}

// LiveTravelMax - number of live blocks a projection may open
func LiveTravelMax() int {
	globalData.RLock()
	defer globalData.RUnlock()
	return liveTravelHours / globalData.hoursPerBlock
}

// Index - the block index containing an instant
//
// total and monotone non-decreasing for a fixed hours-per-block
func Index(t time.Time) uint64 {
	globalData.RLock()
	hours := globalData.hoursPerBlock
	globalData.RUnlock()

	u := t.UTC()
	year, month, day := u.Date()
	return uint64(year)*1000000 +
		uint64(month)*10000 +
		uint64(day)*100 +
		uint64(u.Hour()/hours)
}

// Start - the first instant covered by a block index
func Start(block uint64) (time.Time, error) {
	globalData.RLock()
	hours := globalData.hoursPerBlock
	globalData.RUnlock()

	year := int(block / 1000000)
	month := int(block / 10000 % 100)
	day := int(block / 100 % 100)
	slot := int(block % 100)

	if month < 1 || month > 12 || day < 1 || day > 31 || slot*hours >= 24 {
		return time.Time{}, fault.InvalidBlockIndex
	}

	t := time.Date(year, time.Month(month), day, slot*hours, 0, 0, 0, time.UTC)

	// reject normalised overflow such as 31 February
	if t.Day() != day {
		return time.Time{}, fault.InvalidBlockIndex
	}
	return t, nil
}

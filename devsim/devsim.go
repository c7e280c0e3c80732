// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package devsim - synthesize device states for simulated fleets
//
// every device exposes a stable set of metric definitions derived from
// its id, so repeated runs against the same store produce continuous
// series; values do a bounded random walk around a per-metric base
package devsim

import (
	"math/rand"
	"strconv"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/fleetmetrics/fleetstored/record"
)

// a slow metric reports a capture time behind the record's own
const slowLagMaximum = 30 // seconds

// Definition - the shape of one simulated metric
type Definition struct {
	Id     uint32
	Slow   bool
	Base   int32
	Scale  int32
	Jitter int32
}

// definitions survive for the process lifetime; the store itself
// never caches, this is purely simulator state
var definitions = gocache.New(gocache.NoExpiration, 0)

// Definitions - the stable metric definitions for one device
func Definitions(devid uint32, count int) []Definition {
	key := strconv.FormatUint(uint64(devid), 10)
	if cached, ok := definitions.Get(key); ok {
		defs := cached.([]Definition)
		if len(defs) >= count {
			return defs[:count]
		}
	}

	// derive everything from the device id so the fleet is stable
	// across restarts
	generator := rand.New(rand.NewSource(int64(devid)))

	defs := make([]Definition, count)
	for i := range defs {
		defs[i] = Definition{
			Id:     uint32(i + 1),
			Slow:   generator.Intn(4) == 0,
			Base:   int32(generator.Intn(10000)),
			Scale:  int32(generator.Intn(5)) - 3,
			Jitter: int32(generator.Intn(50) + 1),
		}
	}

	definitions.Set(key, defs, gocache.NoExpiration)
	return defs
}

// Acquire - synthesize one device state
//
// ticktime is the caller's logical instant, acqtime the simulated
// wall-clock of the capture.  an empty id list acquires every metric
// the device defines
func Acquire(devid uint32, ticktime time.Time, acqtime time.Time, metricIds []uint32, metricsPerDevice int) *record.DevState {
	defs := Definitions(devid, metricsPerDevice)

	wanted := map[uint32]struct{}{}
	for _, id := range metricIds {
		wanted[id] = struct{}{}
	}

	state := &record.DevState{
		Devid:     devid,
		Timestamp: uint32(acqtime.Unix()),
		Metrics:   []*record.Metric{},
	}

	for _, def := range defs {
		if len(wanted) != 0 {
			if _, ok := wanted[def.Id]; !ok {
				continue
			}
		}

		metric := &record.Metric{
			Id:     def.Id,
			Status: 0,
			Value:  def.Base + rand.Int31n(2*def.Jitter+1) - def.Jitter,
			Scale:  def.Scale,
		}
		if def.Slow {
			metric.Timestamp = uint32(acqtime.Unix()) - uint32(rand.Intn(slowLagMaximum))
		}
		state.Metrics = append(state.Metrics, metric)
	}

	return state
}

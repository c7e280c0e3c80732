// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package devsim

import (
	"time"

	"github.com/bitmark-inc/logger"
	"golang.org/x/time/rate"

	"github.com/fleetmetrics/fleetstored/index"
)

// Fleet - a set of simulated devices acquired on a fixed cadence
//
// acquisitions inside one tick are spread out by a rate limiter so a
// large fleet does not burst all of its disk writes at the same instant
type Fleet struct {
	log              *logger.L
	devices          []uint32
	interval         time.Duration
	metricsPerDevice int
	limiter          *rate.Limiter
}

// NewFleet - create the acquisition driver for a device list
func NewFleet(devices []uint32, interval time.Duration, metricsPerDevice int) *Fleet {
	perSecond := float64(len(devices)) / interval.Seconds()

	return &Fleet{
		log:              logger.New("fleet"),
		devices:          devices,
		interval:         interval,
		metricsPerDevice: metricsPerDevice,
		limiter:          rate.NewLimiter(rate.Limit(perSecond), 1),
	}
}

// Run - background process: acquire the whole fleet once per tick
func (f *Fleet) Run(args interface{}, shutdown <-chan struct{}, done chan<- struct{}) {
	f.log.Infof("starting… devices: %d interval: %s", len(f.devices), f.interval)

	ticker := time.NewTicker(f.interval)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-shutdown:
			break loop
		case tick := <-ticker.C:
			if !f.acquireAll(tick, shutdown) {
				break loop
			}
		}
	}

	f.log.Info("shutting down…")
	done <- struct{}{}
}

// one pass over the fleet; false when shut down mid-pass
func (f *Fleet) acquireAll(tick time.Time, shutdown <-chan struct{}) bool {

	// align the logical instant to the cadence
	ticktime := tick.Truncate(f.interval)

	for _, devid := range f.devices {
		reservation := f.limiter.Reserve()

		select {
		case <-shutdown:
			reservation.Cancel()
			return false
		case <-time.After(reservation.Delay()):
		}

		state := Acquire(devid, ticktime, time.Now(), nil, f.metricsPerDevice)
		if err := index.PutDeviceState(devid, ticktime, state); err != nil {
			f.log.Errorf("devid: %d put error: %s", devid, err)
		}
	}
	return true
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"strconv"
	"strings"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/configuration"
	"github.com/fleetmetrics/fleetstored/housekeeping"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/projection"
	"github.com/fleetmetrics/fleetstored/storage"
)

// bring the whole store up for one command; the returned function
// tears it down in reverse
func openStore(globals globalFlags) (*configuration.Configuration, func()) {
	if globals.config == "" {
		exitwithstatus.Message("Error: config file is required")
	}

	theConfiguration, err := configuration.GetConfiguration(globals.config)
	if err != nil {
		exitwithstatus.Message("Error: configuration %q error: %s", globals.config, err)
	}

	if err := logger.Initialise(theConfiguration.Logging); err != nil {
		exitwithstatus.Message("Error: logger setup failed: %s", err)
	}

	steps := []struct {
		name string
		up   func() error
	}{
		{"blockclock", func() error { return blockclock.Initialise(theConfiguration.HoursPerBlock) }},
		{"storage", func() error { return storage.Initialise(theConfiguration.IndexDatabase()) }},
		{"blockstore", func() error { return blockstore.Initialise(theConfiguration.DataRoot) }},
		{"index", index.Initialise},
		{"projection", projection.Initialise},
		{"housekeeping", func() error { return housekeeping.Initialise(0, housekeeping.Options{}) }},
	}
	for _, step := range steps {
		if err := step.up(); err != nil {
			exitwithstatus.Message("Error: %s initialise error: %s", step.name, err)
		}
	}

	return theConfiguration, func() {
		housekeeping.Finalise()
		projection.Finalise()
		index.Finalise()
		blockstore.Finalise()
		storage.Finalise()
		blockclock.Finalise()
		logger.Finalise()
	}
}

// accept RFC3339 or integer epoch seconds; empty means now
func parseTime(s string) (time.Time, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	if epoch, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(epoch, 0).UTC(), nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}

// comma separated metric ids; empty gives nil
func parseMetricIds(s string) ([]uint32, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]uint32, 0, len(parts))
	for _, part := range parts {
		id, err := strconv.ParseUint(strings.TrimSpace(part), 10, 32)
		if err != nil {
			return nil, err
		}
		ids = append(ids, uint32(id))
	}
	return ids, nil
}

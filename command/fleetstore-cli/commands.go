// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"io/ioutil"
	"os"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/urfave/cli"

	"github.com/fleetmetrics/fleetstored/devsim"
	"github.com/fleetmetrics/fleetstored/housekeeping"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/projection"
	"github.com/fleetmetrics/fleetstored/record"
)

func runAcquire(c *cli.Context, globals globalFlags) {
	devid := uint32(c.Uint("devid"))
	if devid == 0 {
		exitwithstatus.Message("Error: devid is required")
	}

	ticktime, err := parseTime(c.String("ticktime"))
	if err != nil {
		exitwithstatus.Message("Error: invalid ticktime: %s", err)
	}
	acqtime, err := parseTime(c.String("acqtime"))
	if err != nil {
		exitwithstatus.Message("Error: invalid acqtime: %s", err)
	}
	metricIds, err := parseMetricIds(c.String("metrics"))
	if err != nil {
		exitwithstatus.Message("Error: invalid metrics list: %s", err)
	}

	theConfiguration, teardown := openStore(globals)
	defer teardown()

	state := devsim.Acquire(devid, ticktime, acqtime, metricIds, theConfiguration.Fleet.MetricsPerDevice)

	if err := index.PutDeviceState(devid, ticktime, state); err != nil {
		exitwithstatus.Message("Error: put device state: %s", err)
	}

	if filename := c.String("json"); filename != "" {
		printJsonToFile(filename, state)
	}
	printJson("", state, globals.verbose)
}

func runPut(c *cli.Context, globals globalFlags) {
	devid := uint32(c.Uint("devid"))
	if devid == 0 {
		exitwithstatus.Message("Error: devid is required")
	}

	ticktime, err := parseTime(c.String("ticktime"))
	if err != nil {
		exitwithstatus.Message("Error: invalid ticktime: %s", err)
	}

	filename := c.String("file")
	if filename == "" {
		exitwithstatus.Message("Error: file is required")
	}

	var data []byte
	if filename == "-" {
		data, err = ioutil.ReadAll(os.Stdin)
	} else {
		data, err = ioutil.ReadFile(filename)
	}
	if err != nil {
		exitwithstatus.Message("Error: read %q error: %s", filename, err)
	}

	state := &record.DevState{}
	if err := json.Unmarshal(data, state); err != nil {
		exitwithstatus.Message("Error: decode %q error: %s", filename, err)
	}
	state.Devid = devid

	_, teardown := openStore(globals)
	defer teardown()

	if err := index.PutDeviceState(devid, ticktime, state); err != nil {
		exitwithstatus.Message("Error: put device state: %s", err)
	}
	printJson("stored", state, globals.verbose)
}

func runProject(c *cli.Context, globals globalFlags) {
	devid := uint32(c.Uint("devid"))
	if devid == 0 {
		exitwithstatus.Message("Error: devid is required")
	}

	at, err := parseTime(c.String("time"))
	if err != nil {
		exitwithstatus.Message("Error: invalid time: %s", err)
	}
	metricIds, err := parseMetricIds(c.String("metrics"))
	if err != nil {
		exitwithstatus.Message("Error: invalid metrics list: %s", err)
	}

	_, teardown := openStore(globals)
	defer teardown()

	values, err := projection.Metrics(devid, at, metricIds)
	if err != nil {
		exitwithstatus.Message("Error: projection: %s", err)
	}
	printJson("", values)
}

func runSpan(c *cli.Context, globals globalFlags) {
	devid := uint32(c.Uint("devid"))
	if devid == 0 {
		exitwithstatus.Message("Error: devid is required")
	}

	_, teardown := openStore(globals)
	defer teardown()

	minimum, maximum, err := index.TimeSpan(devid)
	if err != nil {
		exitwithstatus.Message("Error: time span: %s", err)
	}

	printJson("", struct {
		Min string `json:"min"`
		Max string `json:"max"`
	}{
		Min: minimum.Format(time.RFC3339),
		Max: maximum.Format(time.RFC3339),
	})
}

func runLastGood(c *cli.Context, globals globalFlags) {
	devid := uint32(c.Uint("devid"))
	if devid == 0 {
		exitwithstatus.Message("Error: devid is required")
	}

	_, teardown := openStore(globals)
	defer teardown()

	lastGood, err := index.LastGood(devid)
	if err != nil {
		exitwithstatus.Message("Error: last good value: %s", err)
	}
	printJson("", lastGood)
}

func runHousekeeping(c *cli.Context, globals globalFlags) {
	level1Blocks := c.Int("level1-blocks")

	_, teardown := openStore(globals)
	defer teardown()

	err := housekeeping.Run(housekeeping.Options{
		Level1Blocks: level1Blocks,
	})
	if err != nil {
		exitwithstatus.Message("Error: housekeeping: %s", err)
	}
	printJson("", struct {
		Level1Blocks int  `json:"level1_blocks"`
		Done         bool `json:"done"`
	}{
		Level1Blocks: level1Blocks,
		Done:         true,
	})
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/bitmark-inc/getoptions"
	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/background"
	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/configuration"
	"github.com/fleetmetrics/fleetstored/devsim"
	"github.com/fleetmetrics/fleetstored/housekeeping"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/storage"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

// main program
func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	flags := []getoptions.Option{
		{Long: "help", HasArg: getoptions.NO_ARGUMENT, Short: 'h'},
		{Long: "verbose", HasArg: getoptions.NO_ARGUMENT, Short: 'v'},
		{Long: "quiet", HasArg: getoptions.NO_ARGUMENT, Short: 'q'},
		{Long: "version", HasArg: getoptions.NO_ARGUMENT, Short: 'V'},
		{Long: "config-file", HasArg: getoptions.REQUIRED_ARGUMENT, Short: 'c'},
	}

	program, options, arguments, err := getoptions.GetOS(flags)
	if err != nil {
		exitwithstatus.Message("%s: getoptions error: %s", program, err)
	}

	if len(options["version"]) > 0 {
		exitwithstatus.Message("%s: version: %s", program, version)
	}

	if len(options["help"]) > 0 {
		exitwithstatus.Message("usage: %s [--help] [--verbose] [--quiet] --config-file=FILE", program)
	}

	if len(arguments) > 0 {
		exitwithstatus.Message("%s: extraneous arguments: %v", program, arguments)
	}

	if len(options["config-file"]) != 1 {
		exitwithstatus.Message("%s: only one config-file option is required, %d were detected", program, len(options["config-file"]))
	}

	// read options and parse the configuration file
	configurationFile := options["config-file"][0]
	theConfiguration, err := configuration.GetConfiguration(configurationFile)
	if err != nil {
		exitwithstatus.Message("%s: failed to read configuration from: %q  error: %s", program, configurationFile, err)
	}

	// start logging
	if err = logger.Initialise(theConfiguration.Logging); err != nil {
		exitwithstatus.Message("%s: logger setup failed with error: %s", program, err)
	}
	defer logger.Finalise()

	// create a logger channel for the main program
	log := logger.New("main")
	defer log.Info("finished")
	log.Info("starting…")
	log.Infof("version: %s", version)
	log.Debugf("theConfiguration: %v", theConfiguration)

	// ------------------
	// start of real main
	// ------------------

	// optional PID file
	// use if not running under a supervisor program like daemon(8)
	if theConfiguration.PidFile != "" {
		lockFile, err := os.OpenFile(theConfiguration.PidFile, os.O_WRONLY|os.O_EXCL|os.O_CREATE, os.ModeExclusive|0o600)
		if err != nil {
			if os.IsExist(err) {
				exitwithstatus.Message("%s: another instance is already running", program)
			}
			exitwithstatus.Message("%s: PID file: %q creation failed, error: %s", program, theConfiguration.PidFile, err)
		}
		fmt.Fprintf(lockFile, "%d\n", os.Getpid())
		lockFile.Close()
		defer os.Remove(theConfiguration.PidFile)
	}

	// the block width is immutable for the life of the store
	if err := blockclock.Initialise(theConfiguration.HoursPerBlock); err != nil {
		log.Criticalf("blockclock initialise error: %s", err)
		exitwithstatus.Message("%s: blockclock initialise error: %s", program, err)
	}
	defer blockclock.Finalise()

	log.Infof("index database: %s", theConfiguration.IndexDatabase())
	if err := storage.Initialise(theConfiguration.IndexDatabase()); err != nil {
		log.Criticalf("storage initialise error: %s", err)
		exitwithstatus.Message("%s: storage initialise error: %s", program, err)
	}
	defer storage.Finalise()

	log.Infof("data root: %s", theConfiguration.DataRoot)
	if err := blockstore.Initialise(theConfiguration.DataRoot); err != nil {
		log.Criticalf("blockstore initialise error: %s", err)
		exitwithstatus.Message("%s: blockstore initialise error: %s", program, err)
	}
	defer blockstore.Finalise()

	if err := index.Initialise(); err != nil {
		log.Criticalf("index initialise error: %s", err)
		exitwithstatus.Message("%s: index initialise error: %s", program, err)
	}
	defer index.Finalise()

	housekeepingInterval, err := time.ParseDuration(theConfiguration.Housekeeping.Interval)
	if err != nil {
		exitwithstatus.Message("%s: invalid housekeeping interval: %q  error: %s", program, theConfiguration.Housekeeping.Interval, err)
	}
	err = housekeeping.Initialise(housekeepingInterval, housekeeping.Options{
		Level1Blocks: theConfiguration.Housekeeping.Level1Blocks,
	})
	if err != nil {
		log.Criticalf("housekeeping initialise error: %s", err)
		exitwithstatus.Message("%s: housekeeping initialise error: %s", program, err)
	}
	defer housekeeping.Finalise()

	// simulated acquisition over the configured fleet
	var fleetProcesses *background.T
	if len(theConfiguration.Fleet.Devices) > 0 {
		acquireInterval, err := time.ParseDuration(theConfiguration.Fleet.Interval)
		if err != nil {
			exitwithstatus.Message("%s: invalid fleet interval: %q  error: %s", program, theConfiguration.Fleet.Interval, err)
		}

		devices := make([]uint32, len(theConfiguration.Fleet.Devices))
		for i, devid := range theConfiguration.Fleet.Devices {
			devices[i] = uint32(devid)
		}

		fleet := devsim.NewFleet(devices, acquireInterval, theConfiguration.Fleet.MetricsPerDevice)
		fleetProcesses = background.Start(background.Processes{fleet.Run}, nil)
		defer fleetProcesses.Stop()
	} else {
		log.Warn("no fleet configured, acquisition disabled")
	}

	// watch the configuration file for edits
	watcher, err := startConfigurationWatcher(configurationFile)
	if err != nil {
		log.Warnf("configuration watcher error: %s", err)
	} else {
		defer watcher.Close()
	}

	// wait for shutdown
	log.Info("waiting…")
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	sig := <-ch
	log.Infof("received signal: %v", sig)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua configuration file
//
// paths inside the file are relative to the data directory; the two
// environment variables FM_HOURS_PER_BLOCK and FM_LOG_CONSOLE override
// their file counterparts after parsing
package configuration

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/bitmark-inc/logger"

	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/fault"
)

// environment override names
const (
	EnvHoursPerBlock = "FM_HOURS_PER_BLOCK"
	EnvLogConsole    = "FM_LOG_CONSOLE"
)

// basic defaults (directories and files are relative to the data directory)
const (
	defaultDataRoot          = "blocks"
	defaultDatabaseDirectory = "data"
	defaultDatabaseName      = "fleetstore-index.leveldb"

	defaultLogDirectory = "log"
	defaultLogFile      = "fleetstored.log"
	defaultLogCount     = 10          //  number of log files retained
	defaultLogSize      = 1024 * 1024 // rotate when <logfile> exceeds this size

	defaultHousekeepingInterval = "1h"
	defaultAcquireInterval      = "10s"
	DefaultMetricsPerDevice     = 8
)

// DatabaseType - where the index database lives
type DatabaseType struct {
	Directory string `gluamapper:"directory" json:"directory"`
	Name      string `gluamapper:"name" json:"name"`
}

// HousekeepingType - retention settings
type HousekeepingType struct {
	Interval     string `gluamapper:"interval" json:"interval"`
	Level1Blocks int    `gluamapper:"level1_blocks" json:"level1_blocks"`
}

// FleetType - the simulated fleet the daemon acquires from
type FleetType struct {
	Devices          []int  `gluamapper:"devices" json:"devices"`
	Interval         string `gluamapper:"interval" json:"interval"`
	MetricsPerDevice int    `gluamapper:"metrics_per_device" json:"metrics_per_device"`
}

// Configuration - the daemon/CLI configuration
type Configuration struct {
	DataDirectory string `gluamapper:"data_directory" json:"data_directory"`
	PidFile       string `gluamapper:"pidfile" json:"pidfile"`

	HoursPerBlock int    `gluamapper:"hours_per_block" json:"hours_per_block"`
	DataRoot      string `gluamapper:"data_root" json:"data_root"`

	Database     DatabaseType         `gluamapper:"database" json:"database"`
	Housekeeping HousekeepingType     `gluamapper:"housekeeping" json:"housekeeping"`
	Fleet        FleetType            `gluamapper:"fleet" json:"fleet"`
	Logging      logger.Configuration `gluamapper:"logging" json:"logging"`
}

// IndexDatabase - full path of the LevelDB index
func (c *Configuration) IndexDatabase() string {
	return filepath.Join(c.Database.Directory, c.Database.Name)
}

// GetConfiguration - read, default, override and validate
func GetConfiguration(fileName string) (*Configuration, error) {

	fileName, err := filepath.Abs(filepath.Clean(fileName))
	if err != nil {
		return nil, err
	}

	// absolute path to the main directory
	dataDirectory, _ := filepath.Split(fileName)

	options := &Configuration{
		DataDirectory: dataDirectory,
		PidFile:       "", // no PidFile by default

		HoursPerBlock: blockclock.DefaultHoursPerBlock,
		DataRoot:      defaultDataRoot,

		Database: DatabaseType{
			Directory: defaultDatabaseDirectory,
			Name:      defaultDatabaseName,
		},

		Housekeeping: HousekeepingType{
			Interval:     defaultHousekeepingInterval,
			Level1Blocks: 0, // archival disabled unless configured
		},

		Fleet: FleetType{
			Interval:         defaultAcquireInterval,
			MetricsPerDevice: DefaultMetricsPerDevice,
		},

		Logging: logger.Configuration{
			Directory: defaultLogDirectory,
			File:      defaultLogFile,
			Size:      defaultLogSize,
			Count:     defaultLogCount,
			Levels: map[string]string{
				logger.DefaultTag: "error",
			},
		},
	}

	if err := ParseConfigurationFile(fileName, options); err != nil {
		return nil, err
	}

	if err := applyEnvironment(options); err != nil {
		return nil, err
	}

	if options.HoursPerBlock < blockclock.MinimumHoursPerBlock ||
		options.HoursPerBlock > blockclock.MaximumHoursPerBlock {
		return nil, fault.InvalidHoursPerBlock
	}

	// make directories absolute and create them
	if options.DataDirectory != "." {
		dataDirectory = options.DataDirectory
	}

	mustExpand := []*string{
		&options.DataRoot,
		&options.Database.Directory,
		&options.Logging.Directory,
	}
	for _, d := range mustExpand {
		*d = ensureAbsolute(dataDirectory, *d)
		if err := os.MkdirAll(*d, 0o700); err != nil {
			return nil, err
		}
	}

	if options.PidFile != "" {
		options.PidFile = ensureAbsolute(dataDirectory, options.PidFile)
	}

	return options, nil
}

// apply the environment overrides
func applyEnvironment(options *Configuration) error {
	if hours := os.Getenv(EnvHoursPerBlock); hours != "" {
		n, err := strconv.Atoi(hours)
		if err != nil {
			return fault.InvalidHoursPerBlock
		}
		options.HoursPerBlock = n
	}

	if os.Getenv(EnvLogConsole) != "" {
		options.Logging.Console = true
	}
	return nil
}

// ensureAbsolute - prepend the directory if the path is relative
func ensureAbsolute(directory string, path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Clean(filepath.Join(directory, path))
}

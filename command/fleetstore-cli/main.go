// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"os"

	"github.com/bitmark-inc/exitwithstatus"
	"github.com/urfave/cli"
)

// set by the linker: go build -ldflags "-X main.version=M.N" ./...
var version = "zero" // do not change this value

type globalFlags struct {
	verbose bool
	config  string
}

func main() {
	// ensure exit handler is first
	defer exitwithstatus.Handler()

	globals := globalFlags{}

	app := cli.NewApp()
	app.Name = "fleetstore-cli"
	app.Usage = "store and query device states"
	app.Version = version
	app.HideVersion = true
	app.Flags = []cli.Flag{
		cli.BoolFlag{
			Name:        "verbose, v",
			Usage:       " verbose result",
			Destination: &globals.verbose,
		},
		cli.StringFlag{
			Name:        "config, c",
			Value:       "",
			Usage:       "*fleetstore config file",
			Destination: &globals.config,
		},
	}
	app.Commands = []cli.Command{
		{
			Name:      "acquire",
			Usage:     "synthesize one device state and store it",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "devid, d",
					Usage: "*device id",
				},
				cli.StringFlag{
					Name:  "ticktime, t",
					Value: "",
					Usage: " logical instant, RFC3339 or epoch seconds [now]",
				},
				cli.StringFlag{
					Name:  "acqtime, a",
					Value: "",
					Usage: " acquisition wall-clock, RFC3339 or epoch seconds [now]",
				},
				cli.StringFlag{
					Name:  "metrics, m",
					Value: "",
					Usage: " comma separated metric ids [all]",
				},
				cli.StringFlag{
					Name:  "json, j",
					Value: "",
					Usage: " also write the stored state as JSON to this file",
				},
			},
			Action: func(c *cli.Context) error {
				runAcquire(c, globals)
				return nil
			},
		},
		{
			Name:      "put",
			Usage:     "store a device state given as JSON",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "devid, d",
					Usage: "*device id",
				},
				cli.StringFlag{
					Name:  "ticktime, t",
					Value: "",
					Usage: " logical instant, RFC3339 or epoch seconds [now]",
				},
				cli.StringFlag{
					Name:  "file, f",
					Value: "",
					Usage: "*JSON file holding the device state, \"-\" for stdin",
				},
			},
			Action: func(c *cli.Context) error {
				runPut(c, globals)
				return nil
			},
		},
		{
			Name:      "project",
			Usage:     "latest metric values at or before an instant",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "devid, d",
					Usage: "*device id",
				},
				cli.StringFlag{
					Name:  "time, t",
					Value: "",
					Usage: " reference instant, RFC3339 or epoch seconds [now]",
				},
				cli.StringFlag{
					Name:  "metrics, m",
					Value: "",
					Usage: " comma separated metric ids [single freshest record]",
				},
			},
			Action: func(c *cli.Context) error {
				runProject(c, globals)
				return nil
			},
		},
		{
			Name:      "span",
			Usage:     "the instants a device's stored data covers",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "devid, d",
					Usage: "*device id",
				},
			},
			Action: func(c *cli.Context) error {
				runSpan(c, globals)
				return nil
			},
		},
		{
			Name:      "lastgood",
			Usage:     "last-good-value hash of a device",
			ArgsUsage: "\n   (* = required)",
			Flags: []cli.Flag{
				cli.UintFlag{
					Name:  "devid, d",
					Usage: "*device id",
				},
			},
			Action: func(c *cli.Context) error {
				runLastGood(c, globals)
				return nil
			},
		},
		{
			Name:  "housekeeping",
			Usage: "prune future-dated blocks and archive aged ones",
			Flags: []cli.Flag{
				cli.IntFlag{
					Name:  "level1-blocks, n",
					Usage: " live blocks to retain per device [0 = keep all]",
				},
			},
			Action: func(c *cli.Context) error {
				runHousekeeping(c, globals)
				return nil
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		exitwithstatus.Message("Error: %s", err)
	}
}

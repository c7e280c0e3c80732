// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package main

import (
	"encoding/json"
	"fmt"
	"io/ioutil"

	"github.com/bitmark-inc/exitwithstatus"
)

func printJson(title string, message interface{}, print ...bool) {

	// check optional verbose flag
	if len(print) != 0 {
		if !print[0] {
			return
		}
	}
	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		exitwithstatus.Message("Error: printjson marshal error: %s", err)
	}

	if title == "" {
		fmt.Printf("%s\n", b)
	} else {
		fmt.Printf("%s:\n%s\n", title, b)
	}
}

// output a JSON block to a file
func printJsonToFile(filename string, message interface{}) {

	b, err := json.MarshalIndent(message, "", "  ")
	if err != nil {
		exitwithstatus.Message("Error: printjson marshal error: %s", err)
	}
	if err := ioutil.WriteFile(filename, append(b, '\n'), 0o600); err != nil {
		exitwithstatus.Message("Error: printjson write %q error: %s", filename, err)
	}
}

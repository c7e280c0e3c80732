// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package archive - package aged device blocks into compressed
// tarballs and bring them back on demand
//
// an archive holds the <block>/<devid>/ subtree relative to the data
// root, so extraction back under the data root recreates the live
// layout exactly
package archive

import (
	"os"

	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/index"
)

// DeviceBlock - move one live device block into its archive
//
// at-least-once semantics: if the index update or directory removal
// fails after the tarball is written, a retry overwrites the tarball
// and completes the remaining steps
func DeviceBlock(devid uint32, block uint64) error {
	if err := Pack(devid, block); err != nil {
		return err
	}

	if err := index.RemoveDeviceBlockIndex(devid, block); err != nil {
		return err
	}
	if err := os.RemoveAll(blockstore.DeviceBlockDirectory(devid, block)); err != nil {
		return err
	}

	return index.MarkDeviceBlockArchived(devid, block)
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

import (
	"fmt"
	"path/filepath"
	"strconv"
	"time"
)

// suffixes for record files
const (
	RecordSuffix    = ".dat"
	temporarySuffix = ".tmp"
	archiveSuffix   = ".tgz"
)

const archiveDirectoryName = "archive"

// BlockDirectory - directory holding every device's records for one block
func BlockDirectory(block uint64) string {
	return filepath.Join(DataRoot(), strconv.FormatUint(block, 10))
}

// DeviceBlockDirectory - directory holding one device's records for one block
func DeviceBlockDirectory(devid uint32, block uint64) string {
	return filepath.Join(BlockDirectory(block), strconv.FormatUint(uint64(devid), 10))
}

// RecordFile - full path of the record stored at a ticktime
//
// the filename is the ticktime truncated to whole seconds, so a second
// write at the same ticktime replaces the first
func RecordFile(devid uint32, block uint64, ticktime time.Time) string {
	name := strconv.FormatInt(ticktime.Unix(), 10) + RecordSuffix
	return filepath.Join(DeviceBlockDirectory(devid, block), name)
}

// ArchiveDirectory - directory holding one device's archived blocks
func ArchiveDirectory(devid uint32) string {
	return filepath.Join(DataRoot(), archiveDirectoryName, strconv.FormatUint(uint64(devid), 10))
}

// ArchiveFile - full path of the archive for one device block
func ArchiveFile(devid uint32, block uint64) string {
	name := fmt.Sprintf("%d-%d%s", devid, block, archiveSuffix)
	return filepath.Join(ArchiveDirectory(devid), name)
}

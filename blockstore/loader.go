// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockstore

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// ListBlock - epochs of every record a device holds in one block,
// newest first
//
// a missing directory gives an empty list, not an error; files that
// are not record files are ignored
func ListBlock(devid uint32, block uint64) ([]int64, error) {
	entries, err := ioutil.ReadDir(DeviceBlockDirectory(devid, block))
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	epochs := []int64{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, RecordSuffix) {
			continue
		}
		epoch, err := strconv.ParseInt(strings.TrimSuffix(name, RecordSuffix), 10, 64)
		if err != nil {
			continue
		}
		epochs = append(epochs, epoch)
	}

	sort.Slice(epochs, func(i, j int) bool { return epochs[i] > epochs[j] })
	return epochs, nil
}

// ReadRecord - raw bytes of one record file
func ReadRecord(devid uint32, block uint64, epoch int64) ([]byte, error) {
	name := strconv.FormatInt(epoch, 10) + RecordSuffix
	return ioutil.ReadFile(filepath.Join(DeviceBlockDirectory(devid, block), name))
}

// RemoveDeviceBlock - recursively delete a device's live directory for
// one block
func RemoveDeviceBlock(devid uint32, block uint64) error {
	return os.RemoveAll(DeviceBlockDirectory(devid, block))
}

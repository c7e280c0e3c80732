// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/bitmark-inc/logger"
	"github.com/stretchr/testify/assert"

	"github.com/fleetmetrics/fleetstored/archive"
	"github.com/fleetmetrics/fleetstored/blockclock"
	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/index"
	"github.com/fleetmetrics/fleetstored/record"
	"github.com/fleetmetrics/fleetstored/storage"
)

// all test files live below this directory
const testingDirName = "testing"

// 2023-11-14 22:13:20 UTC, block 2023111411 at two hours per block
var ticktimeOne = time.Unix(1700000000, 0).UTC()

const blockOne = uint64(2023111411)

func setup(t *testing.T) {
	removeFiles()

	logDirectory := filepath.Join(testingDirName, "log")
	if err := os.MkdirAll(logDirectory, 0o700); err != nil {
		t.Fatalf("mkdir error: %s", err)
	}

	logging := logger.Configuration{
		Directory: logDirectory,
		File:      "testing.log",
		Size:      1048576,
		Count:     10,
		Console:   false,
		Levels: map[string]string{
			logger.DefaultTag: "critical",
		},
	}
	if err := logger.Initialise(logging); err != nil {
		t.Fatalf("logger initialise error: %s", err)
	}

	if err := blockclock.Initialise(2); err != nil {
		t.Fatalf("blockclock initialise error: %s", err)
	}
	if err := storage.Initialise(filepath.Join(testingDirName, "index.leveldb")); err != nil {
		t.Fatalf("storage initialise error: %s", err)
	}
	if err := blockstore.Initialise(filepath.Join(testingDirName, "blocks")); err != nil {
		t.Fatalf("blockstore initialise error: %s", err)
	}
	if err := index.Initialise(); err != nil {
		t.Fatalf("index initialise error: %s", err)
	}
}

func teardown(t *testing.T) {
	index.Finalise()
	blockstore.Finalise()
	storage.Finalise()
	blockclock.Finalise()
	logger.Finalise()
	removeFiles()
}

func removeFiles() {
	os.RemoveAll(testingDirName)
}

func seedRecords(t *testing.T, devid uint32) []int64 {
	epochs := []int64{}
	for i := 0; i < 3; i += 1 {
		tick := ticktimeOne.Add(time.Duration(i) * 10 * time.Second)
		state := &record.DevState{
			Devid:     devid,
			Timestamp: uint32(tick.Unix()),
			Metrics:   []*record.Metric{{Id: 1, Value: int32(i)}},
		}
		if err := index.PutDeviceState(devid, tick, state); err != nil {
			t.Fatalf("put error: %s", err)
		}
		epochs = append(epochs, tick.Unix())
	}
	return epochs
}

func TestPackAndExtract(t *testing.T) {
	setup(t)
	defer teardown(t)

	seedRecords(t, 7)

	if err := archive.Pack(7, blockOne); err != nil {
		t.Fatalf("pack error: %s", err)
	}
	if _, err := os.Stat(blockstore.ArchiveFile(7, blockOne)); err != nil {
		t.Fatalf("archive file missing: %s", err)
	}

	// wipe the live copy and bring it back
	if err := blockstore.RemoveDeviceBlock(7, blockOne); err != nil {
		t.Fatalf("remove error: %s", err)
	}
	if err := archive.Extract(7, blockOne); err != nil {
		t.Fatalf("extract error: %s", err)
	}

	epochs, err := blockstore.ListBlock(7, blockOne)
	if err != nil {
		t.Fatalf("list error: %s", err)
	}
	assert.Equal(t, []int64{1700000020, 1700000010, 1700000000}, epochs, "wrong records")

	// records decode after the round trip
	data, err := blockstore.ReadRecord(7, blockOne, 1700000020)
	if err != nil {
		t.Fatalf("read error: %s", err)
	}
	state, err := record.Unpack(data)
	if err != nil {
		t.Fatalf("unpack error: %s", err)
	}
	assert.Equal(t, int32(2), state.Metrics[0].Value, "wrong value")
}

func TestDeviceBlock(t *testing.T) {
	setup(t)
	defer teardown(t)

	seedRecords(t, 4)

	if err := archive.DeviceBlock(4, blockOne); err != nil {
		t.Fatalf("archive error: %s", err)
	}

	// live directory and index entry are gone
	_, err := os.Stat(blockstore.DeviceBlockDirectory(4, blockOne))
	assert.True(t, os.IsNotExist(err), "live directory remains")

	live, err := index.IsBlockLive(4, blockOne)
	if err != nil {
		t.Fatalf("is block live error: %s", err)
	}
	assert.False(t, live, "block still live")

	archived, err := index.IsBlockArchived(4, blockOne)
	if err != nil {
		t.Fatalf("is block archived error: %s", err)
	}
	assert.True(t, archived, "block not archived")

	if _, err := os.Stat(blockstore.ArchiveFile(4, blockOne)); err != nil {
		t.Fatalf("archive file missing: %s", err)
	}
}

// archiving twice must not fail: the tarball is overwritten
func TestDeviceBlockRetry(t *testing.T) {
	setup(t)
	defer teardown(t)

	seedRecords(t, 4)

	if err := archive.Pack(4, blockOne); err != nil {
		t.Fatalf("pack error: %s", err)
	}
	if err := archive.DeviceBlock(4, blockOne); err != nil {
		t.Fatalf("archive error: %s", err)
	}

	archived, err := index.IsBlockArchived(4, blockOne)
	if err != nil {
		t.Fatalf("is block archived error: %s", err)
	}
	assert.True(t, archived, "block not archived")
}

func TestPackMissingBlock(t *testing.T) {
	setup(t)
	defer teardown(t)

	err := archive.Pack(4, blockOne)
	assert.Error(t, err, "pack of missing block succeeded")
}

// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"io/ioutil"
	"os"
	"path/filepath"
	"strconv"

	"github.com/fleetmetrics/fleetstored/blockstore"
)

// Pack - write the tarball for one live device block
//
// an existing tarball for the same (devid, block) is overwritten
func Pack(devid uint32, block uint64) error {
	source := blockstore.DeviceBlockDirectory(devid, block)
	entries, err := ioutil.ReadDir(source)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(blockstore.ArchiveDirectory(devid), 0o700); err != nil {
		return err
	}

	file, err := os.OpenFile(blockstore.ArchiveFile(devid, block), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return err
	}

	compressor := gzip.NewWriter(file)
	archiver := tar.NewWriter(compressor)

	// member names are relative to the data root
	base := filepath.Join(strconv.FormatUint(block, 10), strconv.FormatUint(uint64(devid), 10))

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		header, err := tar.FileInfoHeader(entry, "")
		if err != nil {
			file.Close()
			return err
		}
		header.Name = filepath.ToSlash(filepath.Join(base, entry.Name()))

		if err := archiver.WriteHeader(header); err != nil {
			file.Close()
			return err
		}

		data, err := ioutil.ReadFile(filepath.Join(source, entry.Name()))
		if err != nil {
			file.Close()
			return err
		}
		if _, err := archiver.Write(data); err != nil {
			file.Close()
			return err
		}
	}

	if err := archiver.Close(); err != nil {
		file.Close()
		return err
	}
	if err := compressor.Close(); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// copy a tar member out to a file
func writeMember(path string, reader io.Reader, mode os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return err
	}
	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, mode)
	if err != nil {
		return err
	}
	if _, err := io.Copy(file, reader); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

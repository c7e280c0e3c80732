// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package archive

import (
	"archive/tar"
	"compress/gzip"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fleetmetrics/fleetstored/blockstore"
	"github.com/fleetmetrics/fleetstored/fault"
)

// Extract - materialise an archived device block back under the data
// root
//
// the tarball is left in place; the index is not touched, so the block
// stays marked archived until a later housekeeping pass with archival
// enabled sweeps the materialised copy again
func Extract(devid uint32, block uint64) error {
	file, err := os.Open(blockstore.ArchiveFile(devid, block))
	if err != nil {
		return err
	}
	defer file.Close()

	decompressor, err := gzip.NewReader(file)
	if err != nil {
		return fault.ArchiveFormatInvalid
	}
	defer decompressor.Close()

	dataRoot := blockstore.DataRoot()
	unarchiver := tar.NewReader(decompressor)

	for {
		header, err := unarchiver.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fault.ArchiveFormatInvalid
		}

		switch header.Typeflag {
		case tar.TypeDir:
			continue
		case tar.TypeReg:
		default:
			continue
		}

		name := filepath.FromSlash(header.Name)
		if filepath.IsAbs(name) || strings.Contains(name, "..") {
			return fault.ArchivePathTraversal
		}

		mode := os.FileMode(header.Mode & 0o777)
		if err := writeMember(filepath.Join(dataRoot, name), unarchiver, mode); err != nil {
			return err
		}
	}
}

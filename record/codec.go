// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package record - the stored device-state record and its codec
//
// on disk a record is:
//
//	[ 4 byte big endian CRC-32 of payload ][ payload ]
//
// where the payload is the protobuf encoding of DevState
package record

import (
	"encoding/binary"
	"hash/crc32"

	proto "github.com/gogo/protobuf/proto"

	"github.com/fleetmetrics/fleetstored/fault"
)

// ChecksumLength - bytes of CRC prefixed to every record
const ChecksumLength = 4

// Pack - serialise and checksum a device state
func Pack(state *DevState) ([]byte, error) {
	if state == nil {
		return nil, fault.InvalidDevState
	}

	payload, err := proto.Marshal(state)
	if err != nil {
		return nil, fault.InvalidDevState
	}

	buffer := make([]byte, ChecksumLength+len(payload))
	binary.BigEndian.PutUint32(buffer[:ChecksumLength], crc32.ChecksumIEEE(payload))
	copy(buffer[ChecksumLength:], payload)
	return buffer, nil
}

// Unpack - verify the checksum and decode a stored record
func Unpack(buffer []byte) (*DevState, error) {
	if len(buffer) < ChecksumLength {
		return nil, fault.RecordTooShort
	}

	payload := buffer[ChecksumLength:]
	if binary.BigEndian.Uint32(buffer[:ChecksumLength]) != crc32.ChecksumIEEE(payload) {
		return nil, fault.ChecksumMismatch
	}

	state := &DevState{}
	if err := proto.Unmarshal(payload, state); err != nil {
		return nil, fault.UnpackFailed
	}
	return state, nil
}

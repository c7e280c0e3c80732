// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package record

import (
	"math"

	proto "github.com/gogo/protobuf/proto"
)

// Metric - one observed value inside a device state
//
// the real value is Value × 10^Scale; Timestamp is only set when the
// source observed the value asynchronously from the capture instant
type Metric struct {
	Id        uint32 `protobuf:"varint,1,opt,name=id,proto3" json:"id"`
	Status    int32  `protobuf:"varint,2,opt,name=status,proto3" json:"status"`
	Value     int32  `protobuf:"varint,3,opt,name=value,proto3" json:"value"`
	Scale     int32  `protobuf:"varint,4,opt,name=scale,proto3" json:"scale"`
	Timestamp uint32 `protobuf:"varint,5,opt,name=timestamp,proto3" json:"timestamp,omitempty"`
}

func (m *Metric) Reset()         { *m = Metric{} }
func (m *Metric) String() string { return proto.CompactTextString(m) }
func (*Metric) ProtoMessage()    {}

// DevState - a timestamped set of metrics published by one device
//
// Timestamp is the wall-clock of the capture; the ticktime a record is
// stored under is chosen by the caller and lives in the filename, not
// here
type DevState struct {
	Devid     uint32    `protobuf:"varint,1,opt,name=devid,proto3" json:"devid"`
	Timestamp uint32    `protobuf:"varint,2,opt,name=timestamp,proto3" json:"timestamp"`
	Metrics   []*Metric `protobuf:"bytes,3,rep,name=metrics,proto3" json:"metrics"`
}

func (m *DevState) Reset()         { *m = DevState{} }
func (m *DevState) String() string { return proto.CompactTextString(m) }
func (*DevState) ProtoMessage()    {}

func init() {
	proto.RegisterType((*DevState)(nil), "fleetstore.DevState")
	proto.RegisterType((*Metric)(nil), "fleetstore.DevState.Metric")
}

// RealValue - the metric value with its decimal scale applied
func (m *Metric) RealValue() float64 {
	return float64(m.Value) * math.Pow10(int(m.Scale))
}

// MetricById - find a metric in the state, nil if not present
func (m *DevState) MetricById(id uint32) *Metric {
	for _, metric := range m.Metrics {
		if metric.Id == id {
			return metric
		}
	}
	return nil
}

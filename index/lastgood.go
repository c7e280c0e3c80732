// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package index

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/fleetmetrics/fleetstored/fault"
	"github.com/fleetmetrics/fleetstored/record"
	"github.com/fleetmetrics/fleetstored/storage"
)

// hash field names inside fm:lgv:<devid>
const (
	globalTicktimeField = "ticktime"

	ticktimeSuffix  = "ticktime"
	statusSuffix    = "status"
	valueSuffix     = "value"
	scaleSuffix     = "scale"
	timestampSuffix = "timestamp"
)

// LastGoodMetric - freshest observation of one metric id
type LastGoodMetric struct {
	Id        uint32 `json:"id"`
	Ticktime  int64  `json:"ticktime"`
	Status    int32  `json:"status"`
	Value     int32  `json:"value"`
	Scale     int32  `json:"scale"`
	Timestamp uint32 `json:"timestamp,omitempty"`
}

// LastGoodValue - per-device last-good-value hash in usable form
type LastGoodValue struct {
	LastTicktime int64            `json:"lastTicktime"`
	Metrics      []LastGoodMetric `json:"metrics"`
}

func metricField(id uint32, suffix string) string {
	return strconv.FormatUint(uint64(id), 10) + "_" + suffix
}

// UpdateLastGood - fold one record into the last-good-value hash
//
// a metric is only overwritten when the incoming ticktime is strictly
// greater than the stored one, so at a tie the first write wins; the
// hash-wide ticktime uses >= so it is set exactly once per ticktime
//
// idempotent under replay of the same record
func UpdateLastGood(devid uint32, state *record.DevState, ticktime time.Time) error {
	owner := deviceKey(devid)
	tick := ticktime.Unix()
	tickValue := []byte(strconv.FormatInt(tick, 10))

	modified := false

	for _, metric := range state.Metrics {
		stored, err := storage.Pool.LastGood.HashGet(owner, metricField(metric.Id, ticktimeSuffix))
		if err != nil {
			return err
		}
		if stored != nil {
			previous, err := strconv.ParseInt(string(stored), 10, 64)
			if err != nil {
				return fault.InvalidLastGoodField
			}
			if previous >= tick {
				continue
			}
		}

		fields := map[string][]byte{
			metricField(metric.Id, ticktimeSuffix): tickValue,
			metricField(metric.Id, statusSuffix):   []byte(strconv.FormatInt(int64(metric.Status), 10)),
			metricField(metric.Id, valueSuffix):    []byte(strconv.FormatInt(int64(metric.Value), 10)),
			metricField(metric.Id, scaleSuffix):    []byte(strconv.FormatInt(int64(metric.Scale), 10)),

			// nil clears a timestamp left by an earlier slow observation
			metricField(metric.Id, timestampSuffix): nil,
		}
		if metric.Timestamp != 0 {
			fields[metricField(metric.Id, timestampSuffix)] = []byte(strconv.FormatUint(uint64(metric.Timestamp), 10))
		}

		if err := storage.Pool.LastGood.HashMultiSet(owner, fields); err != nil {
			return err
		}
		modified = true
	}

	if !modified {
		return nil
	}

	previous, ok, err := lastGoodTicktime(devid)
	if err != nil {
		return err
	}
	if !ok || tick >= previous {
		return storage.Pool.LastGood.HashSet(owner, globalTicktimeField, tickValue)
	}
	return nil
}

// the hash-wide ticktime, ok is false when never set
func lastGoodTicktime(devid uint32) (int64, bool, error) {
	stored, err := storage.Pool.LastGood.HashGet(deviceKey(devid), globalTicktimeField)
	if err != nil {
		return 0, false, err
	}
	if stored == nil {
		return 0, false, nil
	}
	tick, err := strconv.ParseInt(string(stored), 10, 64)
	if err != nil {
		return 0, false, fault.InvalidLastGoodField
	}
	return tick, true, nil
}

// LastGood - the decoded last-good-value hash for a device
//
// not-found when the device has never stored a good value
func LastGood(devid uint32) (*LastGoodValue, error) {
	fields, err := storage.Pool.LastGood.HashGetAll(deviceKey(devid))
	if err != nil {
		return nil, err
	}
	if len(fields) == 0 {
		return nil, fault.DeviceNotFound
	}

	result := &LastGoodValue{}
	metrics := map[uint32]*LastGoodMetric{}

	metricFor := func(id uint32) *LastGoodMetric {
		m, ok := metrics[id]
		if !ok {
			m = &LastGoodMetric{Id: id}
			metrics[id] = m
		}
		return m
	}

	for field, value := range fields {
		if field == globalTicktimeField {
			result.LastTicktime, err = strconv.ParseInt(string(value), 10, 64)
			if err != nil {
				return nil, fault.InvalidLastGoodField
			}
			continue
		}

		underscore := strings.IndexByte(field, '_')
		if underscore <= 0 {
			return nil, fault.InvalidLastGoodField
		}
		id, err := strconv.ParseUint(field[:underscore], 10, 32)
		if err != nil {
			return nil, fault.InvalidLastGoodField
		}
		number, err := strconv.ParseInt(string(value), 10, 64)
		if err != nil {
			return nil, fault.InvalidLastGoodField
		}

		m := metricFor(uint32(id))
		switch field[underscore+1:] {
		case ticktimeSuffix:
			m.Ticktime = number
		case statusSuffix:
			m.Status = int32(number)
		case valueSuffix:
			m.Value = int32(number)
		case scaleSuffix:
			m.Scale = int32(number)
		case timestampSuffix:
			m.Timestamp = uint32(number)
		default:
			return nil, fault.InvalidLastGoodField
		}
	}

	for _, m := range metrics {
		result.Metrics = append(result.Metrics, *m)
	}
	sort.Slice(result.Metrics, func(i, j int) bool {
		return result.Metrics[i].Id < result.Metrics[j].Id
	})
	return result, nil
}

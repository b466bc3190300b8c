// Copyright 2025 The Hostwatch Authors, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package monitor

import (
	"context"
	"fmt"
	"math"

	"hostwatch/monitor/alert"
	"hostwatch/monitor/collector"
	"hostwatch/monitor/exporter"
	"hostwatch/monitor/metric"
	"hostwatch/pkg/hwerrors"
)

// Inspection is the cheap half of a check: the headline samples and whether
// any of them breached.
type Inspection struct {
	Breached   bool
	Scope      string
	Samples    []metric.Sample
	Thresholds []alert.Threshold

	// detail carries check-specific data from Inspect to Summarize.
	detail any
}

// Check measures one aspect of the host. Summarize is only called for an
// inspection that breached and is allowed to fire, so expensive work like
// directory walks belongs there.
type Check interface {
	Kind() alert.Kind
	Inspect(ctx context.Context) (Inspection, error)
	Summarize(ctx context.Context, in Inspection) (metric.RankedSummary, error)
}

var (
	_ Check = (*DiskCheck)(nil)
	_ Check = (*MemoryCheck)(nil)
	_ Check = (*SensorCheck)(nil)
)

type DiskCheckConfig struct {
	Path        string
	FreePercent float64
	// MaxSize in bytes, 0 disables the used-size limit.
	MaxSize    uint64
	MaxEntries int
	Recursive  bool
}

// DiskCheck alerts when the free space of a filesystem drops below a
// percentage, or its used space grows past a fixed size.
type DiskCheck struct {
	src collector.DiskSource
	cfg DiskCheckConfig
}

func NewDiskCheck(src collector.DiskSource, cfg DiskCheckConfig) *DiskCheck {
	if cfg.Path == "" {
		cfg.Path = "/home"
	}
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 5
	}
	return &DiskCheck{src: src, cfg: cfg}
}

func (c *DiskCheck) Kind() alert.Kind { return alert.DiskSpace }

func (c *DiskCheck) Inspect(ctx context.Context) (Inspection, error) {
	u, err := c.src.Usage(ctx, c.cfg.Path)
	if err != nil {
		return Inspection{}, err
	}
	now := timeNow()
	free := u.FreePercent()
	exporter.DiskFreePercent.WithLabelValues(c.cfg.Path).Set(free)

	in := Inspection{
		Scope: c.cfg.Path,
		Samples: []metric.Sample{
			metric.NewSample(metric.Disk, "Total disk space", float64(u.Total), metric.Bytes, now),
			metric.NewSample(metric.Disk, "Used disk space", float64(u.Used), metric.Bytes, now),
			metric.NewSample(metric.Disk, "Used disk space percentage", u.UsedPercent(), metric.Percent, now),
			metric.NewSample(metric.Disk, "Free disk space", float64(u.Free), metric.Bytes, now),
			metric.NewSample(metric.Disk, "Free disk space percentage", free, metric.Percent, now),
		},
		detail: u,
	}

	freeLimit := alert.Threshold{
		Metric:     metric.Disk,
		Label:      "free disk space",
		Limit:      c.cfg.FreePercent,
		Comparison: alert.LessThan,
		Unit:       metric.Percent,
	}
	in.Thresholds = append(in.Thresholds, freeLimit)
	in.Breached = alert.Evaluate(free, freeLimit)

	if c.cfg.MaxSize > 0 {
		sizeLimit := alert.Threshold{
			Metric:     metric.Disk,
			Label:      "used disk space",
			Limit:      float64(c.cfg.MaxSize),
			Comparison: alert.GreaterThan,
			Unit:       metric.Bytes,
		}
		in.Thresholds = append(in.Thresholds, sizeLimit)
		in.Breached = in.Breached || alert.Evaluate(float64(u.Used), sizeLimit)
	}
	return in, nil
}

func (c *DiskCheck) Summarize(ctx context.Context, in Inspection) (metric.RankedSummary, error) {
	dirs, err := c.src.DirectorySizes(ctx, c.cfg.Path, c.cfg.Recursive)
	if err != nil {
		return metric.RankedSummary{}, err
	}
	if u, ok := in.detail.(collector.DiskUsage); ok && u.Total > 0 {
		for i := range dirs {
			dirs[i].Share = dirs[i].Magnitude / float64(u.Total) * 100
		}
	}
	return metric.Rank(dirs, c.cfg.MaxEntries), nil
}

type MemoryCheckConfig struct {
	UsedPercent float64
	MaxEntries  int
}

// MemoryCheck alerts on system memory usage and lists the heaviest users.
type MemoryCheck struct {
	src collector.MemorySource
	cfg MemoryCheckConfig
}

func NewMemoryCheck(src collector.MemorySource, cfg MemoryCheckConfig) *MemoryCheck {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10
	}
	return &MemoryCheck{src: src, cfg: cfg}
}

func (c *MemoryCheck) Kind() alert.Kind { return alert.Memory }

func (c *MemoryCheck) Inspect(ctx context.Context) (Inspection, error) {
	sys, err := c.src.System(ctx)
	if err != nil {
		return Inspection{}, err
	}
	now := timeNow()
	exporter.MemoryUsedPercent.Set(sys.UsedPercent)

	limit := alert.Threshold{
		Metric:     metric.Memory,
		Label:      "memory usage",
		Limit:      c.cfg.UsedPercent,
		Comparison: alert.GreaterThan,
		Unit:       metric.Percent,
	}
	return Inspection{
		Breached: alert.Evaluate(sys.UsedPercent, limit),
		Samples: []metric.Sample{
			metric.NewSample(metric.Memory, "Total Memory", float64(sys.Total), metric.Bytes, now),
			metric.NewSample(metric.Memory, "Used Memory", float64(sys.Used), metric.Bytes, now),
			metric.NewSample(metric.Memory, "Used Memory percentage", sys.UsedPercent, metric.Percent, now),
		},
		Thresholds: []alert.Threshold{limit},
		detail:     sys,
	}, nil
}

func (c *MemoryCheck) Summarize(ctx context.Context, in Inspection) (metric.RankedSummary, error) {
	users, err := c.src.ByUser(ctx)
	if err != nil {
		return metric.RankedSummary{}, err
	}
	var total float64
	if sys, ok := in.detail.(collector.SystemMemory); ok {
		total = float64(sys.Total)
	}

	ms := make([]metric.EntityMeasurement, 0, len(users))
	for _, u := range users {
		m := metric.EntityMeasurement{
			Identifier:     u.User,
			Magnitude:      float64(u.RSS),
			Unit:           metric.Bytes,
			Secondary:      float64(u.VMS),
			SecondaryLabel: "VMEM",
		}
		if total > 0 {
			m.Share = m.Magnitude / total * 100
		}
		ms = append(ms, m)
	}
	return metric.Rank(ms, c.cfg.MaxEntries), nil
}

type SensorCheckConfig struct {
	MaxCelsius float64
	MaxEntries int
}

// SensorCheck alerts when any temperature sensor runs hotter than the limit.
type SensorCheck struct {
	src collector.SensorSource
	cfg SensorCheckConfig
}

func NewSensorCheck(src collector.SensorSource, cfg SensorCheckConfig) *SensorCheck {
	if cfg.MaxEntries <= 0 {
		cfg.MaxEntries = 10
	}
	return &SensorCheck{src: src, cfg: cfg}
}

func (c *SensorCheck) Kind() alert.Kind { return alert.Temperature }

func (c *SensorCheck) limit() alert.Threshold {
	return alert.Threshold{
		Metric:     metric.Sensor,
		Label:      "temperature",
		Limit:      c.cfg.MaxCelsius,
		Comparison: alert.GreaterThan,
		Unit:       metric.Celsius,
	}
}

func (c *SensorCheck) Inspect(ctx context.Context) (Inspection, error) {
	readings, err := c.src.Readings(ctx)
	if err != nil {
		return Inspection{}, err
	}
	if len(readings) == 0 {
		return Inspection{}, hwerrors.ErrNoSensorData
	}
	now := timeNow()
	limit := c.limit()

	hottest := -1
	breached := false
	for i, r := range readings {
		if math.IsNaN(r.Celsius) || math.IsInf(r.Celsius, 0) {
			continue
		}
		if hottest < 0 || r.Celsius > readings[hottest].Celsius {
			hottest = i
		}
		breached = breached || alert.Evaluate(r.Celsius, limit)
	}
	if hottest < 0 {
		return Inspection{}, fmt.Errorf("%w: all %d readings unusable", hwerrors.ErrNoSensorData, len(readings))
	}
	top := readings[hottest]
	exporter.TemperatureMax.Set(top.Celsius)

	return Inspection{
		Breached: breached,
		Samples: []metric.Sample{
			metric.NewSample(metric.Sensor, "Highest temperature ("+top.Identifier()+")", top.Celsius, metric.Celsius, now),
		},
		Thresholds: []alert.Threshold{limit},
		detail:     readings,
	}, nil
}

func (c *SensorCheck) Summarize(_ context.Context, in Inspection) (metric.RankedSummary, error) {
	readings, _ := in.detail.([]collector.SensorReading)
	limit := c.limit()

	ms := make([]metric.EntityMeasurement, 0, len(readings))
	for _, r := range readings {
		if !alert.Evaluate(r.Celsius, limit) {
			continue
		}
		ms = append(ms, metric.EntityMeasurement{
			Identifier: r.Identifier(),
			Magnitude:  r.Celsius,
			Unit:       metric.Celsius,
		})
	}
	return metric.Rank(ms, c.cfg.MaxEntries), nil
}

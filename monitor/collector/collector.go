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

// Package collector reads raw host state: filesystem usage, memory usage by
// user and hardware temperatures. Every byte quantity it returns is in bytes.
package collector

import (
	"context"
	"math"

	"hostwatch/monitor/metric"
)

// DiskSource reports filesystem usage and the sizes of the directories under
// a path.
type DiskSource interface {
	Usage(ctx context.Context, path string) (DiskUsage, error)
	DirectorySizes(ctx context.Context, path string, recursive bool) ([]metric.EntityMeasurement, error)
}

// MemorySource reports system memory and its split across users.
type MemorySource interface {
	System(ctx context.Context) (SystemMemory, error)
	ByUser(ctx context.Context) ([]UserMemory, error)
}

// SensorSource reports every temperature reading the host exposes.
type SensorSource interface {
	Readings(ctx context.Context) ([]SensorReading, error)
}

type DiskUsage struct {
	Path  string
	Total uint64
	Used  uint64
	Free  uint64
}

// UsedPercent is used/total*100. It is NaN for a filesystem that reports
// no capacity, so it never breaches a threshold.
func (u DiskUsage) UsedPercent() float64 {
	if u.Total == 0 {
		return math.NaN()
	}
	return float64(u.Used) / float64(u.Total) * 100
}

// FreePercent is the complement of UsedPercent. Reserved blocks therefore
// count as free, which matches what df-style tools report as headroom.
func (u DiskUsage) FreePercent() float64 {
	if u.Total == 0 {
		return math.NaN()
	}
	return 100 - u.UsedPercent()
}

type SystemMemory struct {
	Total       uint64
	Used        uint64
	Available   uint64
	UsedPercent float64
}

// UserMemory is the summed resident and virtual size of one user's processes.
type UserMemory struct {
	User string
	RSS  uint64
	VMS  uint64
}

type SensorReading struct {
	Chip    string
	Label   string
	Celsius float64
}

// Identifier is "chip/label", or just the label when the chip is unknown.
func (r SensorReading) Identifier() string {
	if r.Chip == "" {
		return r.Label
	}
	return r.Chip + "/" + r.Label
}

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

// Package metric holds the measurement types shared by collectors and the
// alerting core, and the ranking used to build report summaries.
package metric

import (
	"fmt"
	"time"
)

// Kind is the metric domain a sample belongs to.
type Kind int

const (
	Disk Kind = iota
	Memory
	Sensor
)

func (k Kind) String() string {
	switch k {
	case Disk:
		return "disk"
	case Memory:
		return "memory"
	case Sensor:
		return "sensor"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Unit tags every value with its scale. Byte quantities are always bytes
// once they leave a collector.
type Unit int

const (
	Bytes Unit = iota
	Percent
	Celsius
)

func (u Unit) String() string {
	switch u {
	case Bytes:
		return "bytes"
	case Percent:
		return "percent"
	case Celsius:
		return "celsius"
	default:
		return fmt.Sprintf("unit(%d)", int(u))
	}
}

// BytesPerGB is the display divisor for byte quantities.
const BytesPerGB = 1e9

// Sample is one scalar observation. It is a value type and never mutated.
type Sample struct {
	Kind       Kind
	Label      string
	Value      float64
	Unit       Unit
	CapturedAt time.Time
}

func NewSample(kind Kind, label string, value float64, unit Unit, at time.Time) Sample {
	return Sample{Kind: kind, Label: label, Value: value, Unit: unit, CapturedAt: at}
}

// EntityMeasurement is the magnitude of one entity (a directory, a user,
// a sensor). Secondary and Share are carried for the report only and never
// take part in ranking.
type EntityMeasurement struct {
	Identifier string
	Magnitude  float64
	Unit       Unit

	Secondary      float64
	SecondaryLabel string
	Share          float64
}

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

package collector

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/shirou/gopsutil/v4/sensors"

	"hostwatch/pkg/log"
)

const (
	SourceLMSensors = "lm-sensors"
	SourceGopsutil  = "gopsutil"

	DefaultSensorsCommand = "sensors"
)

// NewSensorSource returns the source registered under name.
func NewSensorSource(name, command string) (SensorSource, error) {
	switch strings.ToLower(name) {
	case "", SourceLMSensors:
		return NewLMSensorsCollector(command), nil
	case SourceGopsutil:
		return NewGopsutilSensorsCollector(), nil
	default:
		return nil, fmt.Errorf("unknown sensors source %q", name)
	}
}

// LMSensorsCollector runs the lm-sensors command and parses its output.
type LMSensorsCollector struct {
	command string
	args    []string
}

// NewLMSensorsCollector splits command on whitespace; an empty command runs
// plain `sensors`.
func NewLMSensorsCollector(command string) *LMSensorsCollector {
	fields := strings.Fields(command)
	if len(fields) == 0 {
		fields = []string{DefaultSensorsCommand}
	}
	return &LMSensorsCollector{command: fields[0], args: fields[1:]}
}

func (c *LMSensorsCollector) Readings(ctx context.Context) ([]SensorReading, error) {
	out, err := exec.CommandContext(ctx, c.command, c.args...).Output()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", c.command, err)
	}
	return ParseSensorsText(string(out)), nil
}

// GopsutilSensorsCollector reads hwmon temperatures through gopsutil.
type GopsutilSensorsCollector struct {
	logger *log.Logger
}

func NewGopsutilSensorsCollector() *GopsutilSensorsCollector {
	return &GopsutilSensorsCollector{logger: log.GetLogger("sensor-collector")}
}

func (c *GopsutilSensorsCollector) Readings(ctx context.Context) ([]SensorReading, error) {
	temps, err := sensors.TemperaturesWithContext(ctx)
	if err != nil {
		// gopsutil reports unreadable sensors as warnings next to the good ones
		if len(temps) == 0 {
			return nil, fmt.Errorf("read temperatures: %w", err)
		}
		c.logger.Verbosef("partial temperature read: %v", err)
	}

	out := make([]SensorReading, 0, len(temps))
	for _, t := range temps {
		chip, label := splitSensorKey(t.SensorKey)
		out = append(out, SensorReading{Chip: chip, Label: label, Celsius: t.Temperature})
	}
	return out, nil
}

// splitSensorKey turns gopsutil's "coretemp_core_0" style keys into a chip
// and a label.
func splitSensorKey(key string) (string, string) {
	if i := strings.Index(key, "_"); i > 0 && i < len(key)-1 {
		return key[:i], key[i+1:]
	}
	return "", key
}

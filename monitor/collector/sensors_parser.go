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
	"math"
	"strconv"
	"strings"
)

const degreesC = "°C"

// ParseSensorsText extracts temperature readings from the text output of the
// lm-sensors `sensors` command.
//
// A line without a colon that is followed by an "Adapter:" line names the
// chip for the readings below it. For every "Label: value" line the first
// whitespace-separated token after the colon that ends in °C and parses as a
// finite decimal number is the reading. Lines without such a token are
// skipped.
func ParseSensorsText(text string) []SensorReading {
	var readings []SensorReading
	var chip string

	lines := strings.Split(text, "\n")
	for i, raw := range lines {
		line := strings.TrimRight(raw, "\r")
		if strings.TrimSpace(line) == "" {
			chip = ""
			continue
		}

		idx := strings.Index(line, ":")
		if idx < 0 {
			if i+1 < len(lines) && strings.HasPrefix(strings.TrimSpace(lines[i+1]), "Adapter:") {
				chip = strings.TrimSpace(line)
			}
			continue
		}

		label := strings.TrimSpace(line[:idx])
		if label == "" || label == "Adapter" {
			continue
		}
		c, ok := firstCelsius(line[idx+1:])
		if !ok {
			continue
		}
		readings = append(readings, SensorReading{Chip: chip, Label: label, Celsius: c})
	}
	return readings
}

func firstCelsius(s string) (float64, bool) {
	for _, tok := range strings.Fields(s) {
		pos := strings.Index(tok, degreesC)
		if pos <= 0 {
			continue
		}
		num := strings.TrimPrefix(tok[:pos], "+")
		if strings.ContainsAny(num, "xX") {
			continue
		}
		v, err := strconv.ParseFloat(num, 64)
		if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		return v, true
	}
	return 0, false
}

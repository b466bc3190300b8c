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

package alert

import (
	"math"

	"hostwatch/monitor/metric"
)

type Comparison int

const (
	GreaterThan Comparison = iota
	LessThan
)

// Word is the comparison as it reads in a report ("above 90.00%").
func (c Comparison) Word() string {
	if c == LessThan {
		return "below"
	}
	return "above"
}

// Threshold is a configured limit for one metric. Built once at startup.
type Threshold struct {
	Metric     metric.Kind
	Label      string
	Limit      float64
	Comparison Comparison
	Unit       metric.Unit
}

// Evaluate reports whether value breaches t. Non-finite inputs never breach.
func Evaluate(value float64, t Threshold) bool {
	if !finite(value) || !finite(t.Limit) {
		return false
	}
	switch t.Comparison {
	case GreaterThan:
		return value > t.Limit
	case LessThan:
		return value < t.Limit
	default:
		return false
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

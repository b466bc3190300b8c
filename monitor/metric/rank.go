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

package metric

import (
	"math"
	"sort"
)

// RankedSummary is ordered by Magnitude, largest first, and bounded by the
// maxEntries it was built with.
type RankedSummary []EntityMeasurement

// Rank returns the maxEntries largest measurements in descending order.
// Equal magnitudes keep their input order. Non-finite magnitudes are dropped.
// The input slice is not modified.
func Rank(measurements []EntityMeasurement, maxEntries int) RankedSummary {
	if maxEntries <= 0 || len(measurements) == 0 {
		return RankedSummary{}
	}

	ranked := make(RankedSummary, 0, len(measurements))
	for _, m := range measurements {
		if math.IsNaN(m.Magnitude) || math.IsInf(m.Magnitude, 0) {
			continue
		}
		ranked = append(ranked, m)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Magnitude > ranked[j].Magnitude
	})

	if len(ranked) > maxEntries {
		ranked = ranked[:maxEntries:maxEntries]
	}
	return ranked
}

// Identifiers lists the entity identifiers in rank order.
func (s RankedSummary) Identifiers() []string {
	ids := make([]string, len(s))
	for i, m := range s {
		ids[i] = m.Identifier
	}
	return ids
}

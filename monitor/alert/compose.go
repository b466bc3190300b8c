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
	"fmt"
	"strings"

	"hostwatch/monitor/metric"
)

// Finding is everything a report is built from: the samples that were
// evaluated, the thresholds they were evaluated against and the ranked
// summary of the entities behind them.
type Finding struct {
	Kind       Kind
	Scope      string
	Samples    []metric.Sample
	Thresholds []Threshold
	Summary    metric.RankedSummary
}

// Report is a composed alert ready for a notifier.
type Report struct {
	ID      string
	Kind    Kind
	Subject string
	Body    string
}

// Compose renders f. The summary is written in the order given.
func Compose(f Finding) Report {
	var b strings.Builder

	b.WriteString(headline(f.Kind, f.Scope))
	b.WriteString("\n\n")

	for _, s := range f.Samples {
		fmt.Fprintf(&b, "%s: %s\n", s.Label, FormatValue(s.Value, s.Unit))
	}
	for _, t := range f.Thresholds {
		b.WriteString(thresholdLine(t))
		b.WriteByte('\n')
	}

	b.WriteString("\n")
	b.WriteString(summaryTitle(f.Kind))
	b.WriteString(":\n")
	if len(f.Summary) == 0 {
		b.WriteString("(no data)\n")
	}
	for _, m := range f.Summary {
		b.WriteString(entryLine(m))
		b.WriteByte('\n')
	}

	return Report{
		Kind:    f.Kind,
		Subject: f.Kind.Subject(),
		Body:    b.String(),
	}
}

func headline(kind Kind, scope string) string {
	switch kind {
	case DiskSpace:
		if scope != "" {
			return fmt.Sprintf("Low disk space detected on %s:", scope)
		}
		return "Low disk space detected:"
	case Memory:
		return "High memory usage detected:"
	case Temperature:
		return "High temperature detected:"
	default:
		return "Threshold exceeded:"
	}
}

func summaryTitle(kind Kind) string {
	switch kind {
	case DiskSpace:
		return "Top directories consuming space"
	case Memory:
		return "Detailed User Memory Usage (sorted)"
	case Temperature:
		return "Sensors above threshold"
	default:
		return "Details"
	}
}

func thresholdLine(t Threshold) string {
	if t.Label == "" {
		return fmt.Sprintf("Threshold: %s %s", t.Comparison.Word(), FormatValue(t.Limit, t.Unit))
	}
	return fmt.Sprintf("Threshold: %s %s %s", t.Label, t.Comparison.Word(), FormatValue(t.Limit, t.Unit))
}

func entryLine(m metric.EntityMeasurement) string {
	line := fmt.Sprintf("%s: %s", m.Identifier, FormatValue(m.Magnitude, m.Unit))
	if m.Share > 0 {
		line += fmt.Sprintf(" (%s)", FormatValue(m.Share, metric.Percent))
	}
	if m.SecondaryLabel != "" {
		line += fmt.Sprintf(", %s: %s", m.SecondaryLabel, FormatValue(m.Secondary, m.Unit))
	}
	return line
}

// FormatValue renders v for a report: gigabytes and percentages with two
// decimals, temperatures with one.
func FormatValue(v float64, unit metric.Unit) string {
	switch unit {
	case metric.Bytes:
		return fmt.Sprintf("%.2f GB", v/metric.BytesPerGB)
	case metric.Percent:
		return fmt.Sprintf("%.2f%%", v)
	case metric.Celsius:
		return fmt.Sprintf("%.1f°C", v)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}

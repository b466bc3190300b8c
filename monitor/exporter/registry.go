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

package exporter

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// --- check cycles ---
	CheckRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_check_runs_total",
		Help: "Check cycles by alert kind and outcome",
	}, []string{"kind", "outcome"})

	DeliveryFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "hostwatch_delivery_failures_total",
		Help: "Failed deliveries per notifier",
	}, []string{"kind", "notifier"})

	CooldownRemaining = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_cooldown_remaining_seconds",
		Help: "Seconds until an alert kind may fire again, 0 when idle",
	}, []string{"kind"})

	// --- last observed host state ---
	DiskFreePercent = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "hostwatch_disk_free_percent",
		Help: "Free space of the monitored filesystem in percent",
	}, []string{"path"})

	MemoryUsedPercent = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hostwatch_memory_used_percent",
		Help: "Used system memory in percent",
	})

	TemperatureMax = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "hostwatch_temperature_max_celsius",
		Help: "Hottest sensor reading in degrees Celsius",
	})
)

func init() {
	prometheus.MustRegister(
		CheckRuns, DeliveryFailures, CooldownRemaining,
		DiskFreePercent, MemoryUsedPercent, TemperatureMax,
	)
}

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
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the hostwatch metrics to a Prometheus pushgateway. One-shot runs
// use it since nothing stays up long enough to be scraped.
func Push(ctx context.Context, url, job, instance string) error {
	p := push.New(url, job).
		Collector(CheckRuns).
		Collector(DeliveryFailures).
		Collector(CooldownRemaining).
		Collector(DiskFreePercent).
		Collector(MemoryUsedPercent).
		Collector(TemperatureMax)
	if instance != "" {
		p = p.Grouping("instance", instance)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics to %s: %w", url, err)
	}
	return nil
}

// Registry returns the registry the hostwatch metrics are registered with.
func Registry() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}

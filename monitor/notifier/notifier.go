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

// Package notifier delivers composed alert reports.
package notifier

import (
	"context"

	"hostwatch/monitor/alert"
)

// Notifier sends one report to one destination.
type Notifier interface {
	// Name identifies the notifier in logs and metrics.
	Name() string

	// Deliver returns nil only once the destination accepted the report.
	Deliver(ctx context.Context, r alert.Report) error
}

// Prober is implemented by notifiers that can check their destination is
// reachable without sending anything.
type Prober interface {
	Probe(ctx context.Context) error
}

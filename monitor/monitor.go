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

// Package monitor runs checks against the host and turns breaches into
// delivered, rate-limited alerts.
package monitor

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"hostwatch/monitor/alert"
	"hostwatch/monitor/exporter"
	"hostwatch/monitor/notifier"
	"hostwatch/pkg/log"
)

var timeNow = time.Now

const (
	DefaultCheckTimeout  = 30 * time.Second
	DefaultNotifyTimeout = 30 * time.Second
)

// Outcome is how a single check cycle ended.
type Outcome int

const (
	OutcomeClear Outcome = iota
	OutcomeSuppressed
	OutcomeFired
	OutcomeFailed
	OutcomeDeliveryFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeClear:
		return "clear"
	case OutcomeSuppressed:
		return "suppressed"
	case OutcomeFired:
		return "fired"
	case OutcomeFailed:
		return "failed"
	case OutcomeDeliveryFailed:
		return "delivery_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// CycleResult records the most recent cycle of one kind.
type CycleResult struct {
	Kind     alert.Kind
	Outcome  Outcome
	At       time.Time
	ReportID string
	Err      string
}

// Status is what the status endpoint serves.
type Status struct {
	Cooldowns []alert.CooldownStatus
	Last      []CycleResult
}

type Options struct {
	CheckTimeout  time.Duration
	NotifyTimeout time.Duration

	// Clock defaults to time.Now.
	Clock func() time.Time
	// NewID defaults to random UUIDs.
	NewID func() string
}

// Monitor owns the cooldown gate and the notifier, and runs check cycles
// against them.
type Monitor struct {
	gate          *alert.Gate
	notifier      notifier.Notifier
	checkTimeout  time.Duration
	notifyTimeout time.Duration
	now           func() time.Time
	newID         func() string
	logger        *log.Logger

	mu   sync.RWMutex
	last map[alert.Kind]CycleResult
}

func New(gate *alert.Gate, n notifier.Notifier, opts Options) *Monitor {
	m := &Monitor{
		gate:          gate,
		notifier:      n,
		checkTimeout:  opts.CheckTimeout,
		notifyTimeout: opts.NotifyTimeout,
		now:           opts.Clock,
		newID:         opts.NewID,
		logger:        log.GetLogger("monitor"),
		last:          make(map[alert.Kind]CycleResult),
	}
	if m.checkTimeout <= 0 {
		m.checkTimeout = DefaultCheckTimeout
	}
	if m.notifyTimeout <= 0 {
		m.notifyTimeout = DefaultNotifyTimeout
	}
	if m.now == nil {
		m.now = time.Now
	}
	if m.newID == nil {
		m.newID = uuid.NewString
	}
	return m
}

// RunCycle inspects c once and, if it breached and its kind is not cooling
// down, summarizes, composes and delivers an alert. The gate only moves
// forward after a successful delivery.
func (m *Monitor) RunCycle(ctx context.Context, c Check) (Outcome, error) {
	kind := c.Kind()
	outcome, reportID, err := m.runCycle(ctx, c)

	res := CycleResult{Kind: kind, Outcome: outcome, At: m.now(), ReportID: reportID}
	if err != nil {
		res.Err = err.Error()
	}
	m.mu.Lock()
	m.last[kind] = res
	m.mu.Unlock()

	exporter.CheckRuns.WithLabelValues(kind.String(), outcome.String()).Inc()
	m.exportCooldowns()

	switch outcome {
	case OutcomeFailed:
		m.logger.Errorf("%s check failed: %v", kind, err)
	case OutcomeDeliveryFailed:
		m.logger.Errorf("%s alert %s not delivered: %v", kind, reportID, err)
	case OutcomeFired:
		m.logger.Infof("%s alert %s delivered", kind, reportID)
	case OutcomeSuppressed:
		m.logger.Infof("%s threshold breached, alert suppressed by cooldown", kind)
	default:
		m.logger.Verbosef("%s within limits", kind)
	}
	return outcome, err
}

func (m *Monitor) runCycle(ctx context.Context, c Check) (Outcome, string, error) {
	kind := c.Kind()

	checkCtx, cancel := context.WithTimeout(ctx, m.checkTimeout)
	in, err := c.Inspect(checkCtx)
	cancel()
	if err != nil {
		return OutcomeFailed, "", fmt.Errorf("inspect %s: %w", kind, err)
	}
	if !in.Breached {
		return OutcomeClear, "", nil
	}

	release := m.gate.Hold(kind)
	defer release()

	if !m.gate.ShouldFire(kind, m.now()) {
		return OutcomeSuppressed, "", nil
	}

	checkCtx, cancel = context.WithTimeout(ctx, m.checkTimeout)
	summary, err := c.Summarize(checkCtx, in)
	cancel()
	if err != nil {
		// the alert still goes out, just without the breakdown
		m.logger.Warningf("%s summary unavailable: %v", kind, err)
	}

	report := alert.Compose(alert.Finding{
		Kind:       kind,
		Scope:      in.Scope,
		Samples:    in.Samples,
		Thresholds: in.Thresholds,
		Summary:    summary,
	})
	report.ID = m.newID()

	notifyCtx, cancel := context.WithTimeout(ctx, m.notifyTimeout)
	err = m.notifier.Deliver(notifyCtx, report)
	cancel()
	if err != nil {
		return OutcomeDeliveryFailed, report.ID, err
	}

	m.gate.RecordFired(kind, m.now())
	return OutcomeFired, report.ID, nil
}

func (m *Monitor) exportCooldowns() {
	for _, st := range m.gate.Snapshot(m.now()) {
		exporter.CooldownRemaining.WithLabelValues(st.Kind.String()).Set(st.Remaining.Seconds())
	}
}

// Status returns the cooldown state and the last cycle of every kind that ran.
func (m *Monitor) Status() Status {
	st := Status{Cooldowns: m.gate.Snapshot(m.now())}

	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, k := range alert.AllKinds {
		if r, ok := m.last[k]; ok {
			st.Last = append(st.Last, r)
		}
	}
	return st
}

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

package monitor

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"hostwatch/monitor/alert"
	"hostwatch/monitor/collector"
	"hostwatch/monitor/metric"
	"hostwatch/pkg/hwerrors"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type recordingNotifier struct {
	mu      sync.Mutex
	err     error
	reports []alert.Report
}

func (n *recordingNotifier) Name() string { return "recording" }

func (n *recordingNotifier) Deliver(_ context.Context, r alert.Report) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.reports = append(n.reports, r)
	return nil
}

func (n *recordingNotifier) count() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.reports)
}

type fakeDisk struct {
	usage    collector.DiskUsage
	usageErr error
	dirs     []metric.EntityMeasurement
	dirsErr  error

	mu        sync.Mutex
	dirsCalls int
}

func (d *fakeDisk) Usage(context.Context, string) (collector.DiskUsage, error) {
	return d.usage, d.usageErr
}

func (d *fakeDisk) DirectorySizes(context.Context, string, bool) ([]metric.EntityMeasurement, error) {
	d.mu.Lock()
	d.dirsCalls++
	d.mu.Unlock()
	return append([]metric.EntityMeasurement(nil), d.dirs...), d.dirsErr
}

type fakeMemory struct {
	sys   collector.SystemMemory
	users []collector.UserMemory
}

func (m *fakeMemory) System(context.Context) (collector.SystemMemory, error) { return m.sys, nil }

func (m *fakeMemory) ByUser(context.Context) ([]collector.UserMemory, error) { return m.users, nil }

type fakeSensors struct {
	readings []collector.SensorReading
	err      error
}

func (s *fakeSensors) Readings(context.Context) ([]collector.SensorReading, error) {
	return s.readings, s.err
}

func newTestMonitor(n *recordingNotifier, clock *fakeClock) *Monitor {
	ids := 0
	var mu sync.Mutex
	return New(alert.NewGate(nil), n, Options{
		Clock: clock.Now,
		NewID: func() string {
			mu.Lock()
			defer mu.Unlock()
			ids++
			return "report-" + string(rune('0'+ids))
		},
	})
}

func lowDisk() *fakeDisk {
	return &fakeDisk{
		usage: collector.DiskUsage{Path: "/home", Total: 100e9, Used: 95e9, Free: 5e9},
		dirs: []metric.EntityMeasurement{
			{Identifier: "/home/user1", Magnitude: 10e9, Unit: metric.Bytes},
			{Identifier: "/home/user2", Magnitude: 40e9, Unit: metric.Bytes},
			{Identifier: "/home/user3", Magnitude: 25e9, Unit: metric.Bytes},
		},
	}
}

func TestRunCycleDiskAlert(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})
	check := NewDiskCheck(lowDisk(), DiskCheckConfig{Path: "/home", FreePercent: 10, MaxEntries: 2})

	outcome, err := m.RunCycle(context.Background(), check)
	if err != nil || outcome != OutcomeFired {
		t.Fatalf("RunCycle() = %v, %v", outcome, err)
	}
	if n.count() != 1 {
		t.Fatalf("delivered %d reports", n.count())
	}
	r := n.reports[0]
	if r.Subject != "Disk Space Alert" {
		t.Errorf("subject = %q", r.Subject)
	}
	if r.ID != "report-1" {
		t.Errorf("id = %q", r.ID)
	}
	for _, want := range []string{"5.00%", "/home/user2: 40.00 GB (40.00%)", "/home/user3: 25.00 GB"} {
		if !strings.Contains(r.Body, want) {
			t.Errorf("body missing %q:\n%s", want, r.Body)
		}
	}
	if strings.Contains(r.Body, "/home/user1") {
		t.Errorf("summary not truncated:\n%s", r.Body)
	}
}

func TestRunCycleCooldown(t *testing.T) {
	n := &recordingNotifier{}
	clock := &fakeClock{now: t0}
	m := newTestMonitor(n, clock)
	check := NewMemoryCheck(&fakeMemory{
		sys: collector.SystemMemory{Total: 64e9, Used: 60e9, UsedPercent: 93.75},
	}, MemoryCheckConfig{UsedPercent: 90})

	steps := []struct {
		advance time.Duration
		want    Outcome
	}{
		{0, OutcomeFired},
		{10 * time.Minute, OutcomeSuppressed},
		{40 * time.Minute, OutcomeSuppressed},
		{11 * time.Minute, OutcomeFired},
	}
	for i, s := range steps {
		clock.Advance(s.advance)
		got, err := m.RunCycle(context.Background(), check)
		if err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		if got != s.want {
			t.Errorf("step %d: outcome = %v, want %v", i, got, s.want)
		}
	}
	if n.count() != 2 {
		t.Errorf("delivered %d reports, want 2", n.count())
	}
}

func TestRunCycleDeliveryFailureKeepsGateOpen(t *testing.T) {
	n := &recordingNotifier{err: errors.New("smtp down")}
	clock := &fakeClock{now: t0}
	m := newTestMonitor(n, clock)
	check := NewDiskCheck(lowDisk(), DiskCheckConfig{FreePercent: 10})

	got, err := m.RunCycle(context.Background(), check)
	if got != OutcomeDeliveryFailed || err == nil {
		t.Fatalf("RunCycle() = %v, %v", got, err)
	}
	if !m.gate.ShouldFire(alert.DiskSpace, clock.Now()) {
		t.Fatal("failed delivery advanced the gate")
	}

	n.mu.Lock()
	n.err = nil
	n.mu.Unlock()
	clock.Advance(time.Minute)
	if got, _ := m.RunCycle(context.Background(), check); got != OutcomeFired {
		t.Errorf("retry outcome = %v, want fired", got)
	}
}

func TestRunCycleClearAndFailed(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})

	healthy := &fakeDisk{usage: collector.DiskUsage{Total: 100, Used: 50, Free: 50}}
	got, err := m.RunCycle(context.Background(), NewDiskCheck(healthy, DiskCheckConfig{FreePercent: 10}))
	if got != OutcomeClear || err != nil {
		t.Errorf("healthy disk = %v, %v", got, err)
	}
	if healthy.dirsCalls != 0 {
		t.Error("directory scan ran without a breach")
	}

	broken := &fakeDisk{usageErr: errors.New("no such device")}
	got, err = m.RunCycle(context.Background(), NewDiskCheck(broken, DiskCheckConfig{FreePercent: 10}))
	if got != OutcomeFailed || err == nil {
		t.Errorf("broken disk = %v, %v", got, err)
	}

	if n.count() != 0 {
		t.Errorf("delivered %d reports", n.count())
	}
}

func TestRunCycleSuppressedSkipsSummary(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})
	disk := lowDisk()
	check := NewDiskCheck(disk, DiskCheckConfig{FreePercent: 10})

	m.RunCycle(context.Background(), check)
	m.RunCycle(context.Background(), check)
	if disk.dirsCalls != 1 {
		t.Errorf("directory scan ran %d times, want 1", disk.dirsCalls)
	}
}

func TestRunCycleSummaryErrorStillAlerts(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})
	disk := lowDisk()
	disk.dirsErr = errors.New("permission denied")

	got, err := m.RunCycle(context.Background(), NewDiskCheck(disk, DiskCheckConfig{FreePercent: 10}))
	if got != OutcomeFired || err != nil {
		t.Fatalf("RunCycle() = %v, %v", got, err)
	}
	if !strings.Contains(n.reports[0].Body, "(no data)") {
		t.Errorf("body:\n%s", n.reports[0].Body)
	}
}

func TestRunCycleConcurrentFiresOnce(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})
	check := NewSensorCheck(&fakeSensors{readings: []collector.SensorReading{{Label: "Core 0", Celsius: 95}}},
		SensorCheckConfig{MaxCelsius: 80})

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m.RunCycle(context.Background(), check)
		}()
	}
	wg.Wait()
	if n.count() != 1 {
		t.Errorf("delivered %d reports, want 1", n.count())
	}
}

func TestStatus(t *testing.T) {
	n := &recordingNotifier{}
	clock := &fakeClock{now: t0}
	m := newTestMonitor(n, clock)
	m.RunCycle(context.Background(), NewDiskCheck(lowDisk(), DiskCheckConfig{FreePercent: 10}))

	st := m.Status()
	if len(st.Last) != 1 || st.Last[0].Kind != alert.DiskSpace || st.Last[0].Outcome != OutcomeFired {
		t.Fatalf("last = %+v", st.Last)
	}
	for _, cd := range st.Cooldowns {
		if cd.Kind == alert.DiskSpace && !cd.Suppressed {
			t.Errorf("disk cooldown = %+v", cd)
		}
	}
}

func TestOutcomeString(t *testing.T) {
	if OutcomeDeliveryFailed.String() != "delivery_failed" || OutcomeClear.String() != "clear" {
		t.Error("unexpected outcome names")
	}
}

func TestSensorCheck(t *testing.T) {
	src := &fakeSensors{readings: []collector.SensorReading{
		{Chip: "coretemp", Label: "Core 0", Celsius: 75},
		{Chip: "coretemp", Label: "Core 1", Celsius: 91},
		{Chip: "nvme", Label: "Composite", Celsius: 84.5},
	}}
	c := NewSensorCheck(src, SensorCheckConfig{MaxCelsius: 80})

	in, err := c.Inspect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !in.Breached {
		t.Fatal("expected breach")
	}
	if in.Samples[0].Value != 91 {
		t.Errorf("hottest = %v", in.Samples[0].Value)
	}
	sum, err := c.Summarize(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	ids := sum.Identifiers()
	if len(ids) != 2 || ids[0] != "coretemp/Core 1" || ids[1] != "nvme/Composite" {
		t.Errorf("summary = %v", ids)
	}
}

func TestSensorCheckNoData(t *testing.T) {
	c := NewSensorCheck(&fakeSensors{}, SensorCheckConfig{MaxCelsius: 80})
	if _, err := c.Inspect(context.Background()); !errors.Is(err, hwerrors.ErrNoSensorData) {
		t.Errorf("Inspect() error = %v, want ErrNoSensorData", err)
	}
}

func TestMemoryCheckSummary(t *testing.T) {
	src := &fakeMemory{
		sys: collector.SystemMemory{Total: 64e9, Used: 60e9, UsedPercent: 93.75},
		users: []collector.UserMemory{
			{User: "user1", RSS: 10e9, VMS: 20e9},
			{User: "user2", RSS: 40e9, VMS: 80e9},
			{User: "user3", RSS: 25e9, VMS: 30e9},
		},
	}
	c := NewMemoryCheck(src, MemoryCheckConfig{UsedPercent: 90, MaxEntries: 2})
	in, err := c.Inspect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	sum, err := c.Summarize(context.Background(), in)
	if err != nil {
		t.Fatal(err)
	}
	if ids := sum.Identifiers(); len(ids) != 2 || ids[0] != "user2" || ids[1] != "user3" {
		t.Fatalf("summary = %v", ids)
	}
	if sum[0].Share != 62.5 || sum[0].Secondary != 80e9 {
		t.Errorf("user2 = %+v", sum[0])
	}
}

func TestDiskCheckMaxSize(t *testing.T) {
	src := &fakeDisk{usage: collector.DiskUsage{Total: 1000e9, Used: 600e9, Free: 400e9}}
	c := NewDiskCheck(src, DiskCheckConfig{FreePercent: 10, MaxSize: 500e9})
	in, err := c.Inspect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if !in.Breached {
		t.Error("used size above max_size should breach")
	}
	if len(in.Thresholds) != 2 {
		t.Errorf("thresholds = %+v", in.Thresholds)
	}
}

func TestDiskCheckZeroCapacity(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})

	src := &fakeDisk{usage: collector.DiskUsage{Path: "/mnt/empty"}}
	c := NewDiskCheck(src, DiskCheckConfig{Path: "/mnt/empty", FreePercent: 10})

	in, err := c.Inspect(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if in.Breached {
		t.Error("zero capacity filesystem breached the free space limit")
	}

	got, err := m.RunCycle(context.Background(), c)
	if got != OutcomeClear || err != nil {
		t.Errorf("RunCycle() = %v, %v, want clear", got, err)
	}
	if n.count() != 0 {
		t.Errorf("delivered %d reports", n.count())
	}
}

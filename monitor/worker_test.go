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
	"testing"
	"time"

	"hostwatch/monitor/alert"
	"hostwatch/monitor/collector"
)

func TestWorkerRunsChecksUntilCancelled(t *testing.T) {
	n := &recordingNotifier{}
	m := New(alert.NewGate(nil), n, Options{})
	disk := NewDiskCheck(lowDisk(), DiskCheckConfig{FreePercent: 10})
	mem := NewMemoryCheck(&fakeMemory{
		sys: collector.SystemMemory{Total: 64e9, Used: 60e9, UsedPercent: 93.75},
	}, MemoryCheckConfig{UsedPercent: 90})

	w := NewWorker(m, 10*time.Millisecond, disk, mem)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	deadline := time.After(2 * time.Second)
	for n.count() < 2 {
		select {
		case <-deadline:
			t.Fatalf("only %d reports delivered", n.count())
		case <-time.After(5 * time.Millisecond):
		}
	}
	// both kinds are now cooling down for an hour
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop")
	}
	if n.count() != 2 {
		t.Errorf("delivered %d reports, want 2", n.count())
	}
}

func TestNewWorkerDefaultInterval(t *testing.T) {
	w := NewWorker(nil, 0)
	if w.interval != DefaultInterval {
		t.Errorf("interval = %v", w.interval)
	}
}

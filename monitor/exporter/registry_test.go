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
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestCheckRunsCounter(t *testing.T) {
	c := CheckRuns.WithLabelValues("disk", "fired")
	before := testutil.ToFloat64(c)
	c.Inc()
	c.Inc()
	if got := testutil.ToFloat64(c) - before; got != 2 {
		t.Errorf("delta = %v, want 2", got)
	}
}

func TestGauges(t *testing.T) {
	DiskFreePercent.WithLabelValues("/home").Set(5)
	MemoryUsedPercent.Set(92.5)
	TemperatureMax.Set(81)

	if got := testutil.ToFloat64(DiskFreePercent.WithLabelValues("/home")); got != 5 {
		t.Errorf("disk free = %v", got)
	}
	if got := testutil.ToFloat64(MemoryUsedPercent); got != 92.5 {
		t.Errorf("memory used = %v", got)
	}
	if got := testutil.ToFloat64(TemperatureMax); got != 81 {
		t.Errorf("temperature = %v", got)
	}
}

func TestRegistered(t *testing.T) {
	n, err := testutil.GatherAndCount(Registry(), "hostwatch_memory_used_percent")
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("hostwatch_memory_used_percent registered %d times", n)
	}
}

func TestPush(t *testing.T) {
	var hits atomic.Int32
	var path atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		path.Store(r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	if err := Push(context.Background(), srv.URL, "hostwatch", "node1"); err != nil {
		t.Fatal(err)
	}
	if hits.Load() != 1 {
		t.Fatalf("pushgateway hit %d times", hits.Load())
	}
	if p, _ := path.Load().(string); !strings.Contains(p, "/job/hostwatch/instance/node1") {
		t.Errorf("push path = %q", p)
	}
}

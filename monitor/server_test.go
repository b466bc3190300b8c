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
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestServerRoutes(t *testing.T) {
	n := &recordingNotifier{}
	m := newTestMonitor(n, &fakeClock{now: t0})
	m.RunCycle(context.Background(), NewDiskCheck(lowDisk(), DiskCheckConfig{FreePercent: 10}))
	s := NewServer(":0", m)

	t.Run("healthz", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		if w.Code != http.StatusOK {
			t.Errorf("status = %d", w.Code)
		}
	})

	t.Run("status", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/status", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		var resp StatusResponse
		if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
			t.Fatal(err)
		}
		if len(resp.Kinds) != 3 {
			t.Fatalf("kinds = %+v", resp.Kinds)
		}
		disk := resp.Kinds[0]
		if disk.Kind != "disk" || !disk.Suppressed || disk.LastOutcome != "fired" || disk.LastReportID != "report-1" {
			t.Errorf("disk = %+v", disk)
		}
		if resp.Kinds[1].LastOutcome != "" {
			t.Errorf("memory never ran: %+v", resp.Kinds[1])
		}
	})

	t.Run("metrics", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "hostwatch_check_runs_total") {
			t.Error("check counter not exposed")
		}
	})
}

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
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"hostwatch/monitor/exporter"
	"hostwatch/pkg/log"
)

// Server exposes metrics and the alert state over HTTP. It is read-only.
type Server struct {
	*gin.Engine
	monitor *Monitor
	listen  string
	started time.Time
	logger  *log.Logger
}

type KindStatus struct {
	Kind             string     `json:"kind"`
	CooldownSeconds  float64    `json:"cooldown_seconds"`
	Suppressed       bool       `json:"suppressed"`
	RemainingSeconds float64    `json:"remaining_seconds"`
	LastFiredAt      *time.Time `json:"last_fired_at,omitempty"`
	LastOutcome      string     `json:"last_outcome,omitempty"`
	LastRunAt        *time.Time `json:"last_run_at,omitempty"`
	LastReportID     string     `json:"last_report_id,omitempty"`
	LastError        string     `json:"last_error,omitempty"`
}

type StatusResponse struct {
	UptimeSeconds float64      `json:"uptime_seconds"`
	Kinds         []KindStatus `json:"kinds"`
}

func NewServer(listen string, m *Monitor) *Server {
	s := &Server{
		Engine:  gin.New(),
		monitor: m,
		listen:  listen,
		started: time.Now(),
		logger:  log.GetLogger("server"),
	}
	s.Use(gin.Recovery())
	s.apiRouter()
	return s
}

func (s *Server) apiRouter() {
	s.GET("/metrics", gin.WrapH(promhttp.HandlerFor(exporter.Registry(), promhttp.HandlerOpts{})))
	s.GET("/healthz", s.healthz)

	api := s.Group("/api/v1")
	{
		api.GET("/status", s.status)
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) status(c *gin.Context) {
	st := s.monitor.Status()

	byKind := make(map[string]*KindStatus, len(st.Cooldowns))
	resp := StatusResponse{
		UptimeSeconds: time.Since(s.started).Seconds(),
		Kinds:         make([]KindStatus, 0, len(st.Cooldowns)),
	}
	for _, cd := range st.Cooldowns {
		ks := KindStatus{
			Kind:             cd.Kind.String(),
			CooldownSeconds:  cd.Window.Seconds(),
			Suppressed:       cd.Suppressed,
			RemainingSeconds: cd.Remaining.Seconds(),
		}
		if cd.Fired {
			at := cd.LastFiredAt
			ks.LastFiredAt = &at
		}
		resp.Kinds = append(resp.Kinds, ks)
	}
	for i := range resp.Kinds {
		byKind[resp.Kinds[i].Kind] = &resp.Kinds[i]
	}
	for _, r := range st.Last {
		ks, ok := byKind[r.Kind.String()]
		if !ok {
			continue
		}
		at := r.At
		ks.LastOutcome = r.Outcome.String()
		ks.LastRunAt = &at
		ks.LastReportID = r.ReportID
		ks.LastError = r.Err
	}

	c.JSON(http.StatusOK, resp)
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	server := &http.Server{
		Addr:              s.listen,
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			s.logger.Errorf("status server shutdown: %v", err)
		}
	}()

	s.logger.Infof("status server listening on %s", s.listen)
	err := server.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

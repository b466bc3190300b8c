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
	"fmt"
	"io"
	"os"

	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"hostwatch/internal/config"
	"hostwatch/monitor/alert"
	"hostwatch/monitor/collector"
	"hostwatch/monitor/exporter"
	"hostwatch/monitor/notifier"
	"hostwatch/pkg/log"
	"hostwatch/pkg/redis"
)

type RunnerOptions struct {
	// DryRun prints reports to Out instead of sending them.
	DryRun bool
	Out    io.Writer

	// Kinds restricts the checks, all configured checks when empty.
	Kinds []alert.Kind

	// Fs backs directory scans, the OS filesystem when nil.
	Fs afero.Fs
}

// Runner builds every component from the configuration and runs them.
type Runner struct {
	cfg       *config.Config
	monitor   *Monitor
	checks    []Check
	notifiers []notifier.Notifier
	closers   []io.Closer
	logger    *log.Logger
}

func NewRunner(cfg *config.Config, opts RunnerOptions) (*Runner, error) {
	if err := cfg.Validate(!opts.DryRun); err != nil {
		return nil, err
	}
	r := &Runner{cfg: cfg, logger: log.GetLogger("runner")}

	r.buildNotifiers(opts)
	fanout := notifier.NewFanout(func(kind alert.Kind, name string, _ error) {
		exporter.DeliveryFailures.WithLabelValues(kind.String(), name).Inc()
	}, r.notifiers...)

	r.monitor = New(alert.NewGate(cfg.CooldownWindows()), fanout, Options{
		CheckTimeout:  cfg.CheckTimeout,
		NotifyTimeout: cfg.NotifyTimeout,
	})

	kinds := opts.Kinds
	if len(kinds) == 0 {
		var err error
		if kinds, err = cfg.Kinds(); err != nil {
			r.Close()
			return nil, err
		}
	}
	for _, k := range kinds {
		c, err := r.buildCheck(k, opts.Fs)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.checks = append(r.checks, c)
	}
	return r, nil
}

func (r *Runner) buildNotifiers(opts RunnerOptions) {
	if opts.DryRun {
		out := opts.Out
		if out == nil {
			out = os.Stdout
		}
		r.notifiers = append(r.notifiers, notifier.NewWriterNotifier(out))
		return
	}

	cfg := r.cfg
	if cfg.EmailEnabled() {
		r.notifiers = append(r.notifiers, notifier.NewEmailNotifier(notifier.EmailConfig{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Password: cfg.EmailPassword,
			From:     cfg.EmailSender,
			To:       cfg.Receivers(),
			Timeout:  cfg.NotifyTimeout,
		}))
	}
	if cfg.RedisEnabled() {
		client := redis.NewClient(&redis.ClientConfig{
			Addr:        cfg.Redis.Addr,
			Password:    cfg.Redis.Password,
			DB:          cfg.Redis.DB,
			DialTimeout: cfg.NotifyTimeout,
		})
		r.closers = append(r.closers, client)
		hostname, _ := os.Hostname()
		r.notifiers = append(r.notifiers, notifier.NewRedisNotifier(client, notifier.RedisConfig{
			Channel:  cfg.Redis.Channel,
			ListKey:  cfg.Redis.List,
			ListSize: cfg.Redis.ListSize,
			Hostname: hostname,
		}))
	}
}

func (r *Runner) buildCheck(kind alert.Kind, fs afero.Fs) (Check, error) {
	cfg := r.cfg
	switch kind {
	case alert.DiskSpace:
		return NewDiskCheck(collector.NewDiskCollector(fs), DiskCheckConfig{
			Path:        cfg.Disk.Path,
			FreePercent: *cfg.Thresholds.DiskPercent,
			MaxSize:     cfg.Disk.MaxSize,
			MaxEntries:  cfg.Disk.MaxEntries,
			Recursive:   cfg.Disk.Recursive,
		}), nil
	case alert.Memory:
		return NewMemoryCheck(collector.NewMemoryCollector(fs, cfg.Memory.HomeDir), MemoryCheckConfig{
			UsedPercent: *cfg.Thresholds.MemoryPercent,
			MaxEntries:  cfg.Memory.MaxEntries,
		}), nil
	case alert.Temperature:
		src, err := collector.NewSensorSource(cfg.Sensors.Source, cfg.Sensors.Command)
		if err != nil {
			return nil, err
		}
		return NewSensorCheck(src, SensorCheckConfig{
			MaxCelsius: *cfg.Thresholds.TemperatureC,
			MaxEntries: cfg.Sensors.MaxEntries,
		}), nil
	default:
		return nil, fmt.Errorf("no check for %s", kind)
	}
}

// Monitor returns the monitor the runner drives.
func (r *Runner) Monitor() *Monitor {
	return r.monitor
}

// Run runs the checks periodically, plus the status server when
// metrics.listen is set, until ctx is done.
func (r *Runner) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return NewWorker(r.monitor, r.cfg.Interval, r.checks...).Run(ctx)
	})
	if r.cfg.Metrics.Listen != "" {
		g.Go(func() error {
			return NewServer(r.cfg.Metrics.Listen, r.monitor).Run(ctx)
		})
	}
	return g.Wait()
}

// RunOnce runs every check a single time. The error joins the failures of
// all checks that failed or could not deliver.
func (r *Runner) RunOnce(ctx context.Context) (map[alert.Kind]Outcome, error) {
	outcomes := make(map[alert.Kind]Outcome, len(r.checks))
	var errs []error
	for _, c := range r.checks {
		o, err := r.monitor.RunCycle(ctx, c)
		outcomes[c.Kind()] = o
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", c.Kind(), err))
		}
	}

	if url := r.cfg.Metrics.PushURL; url != "" {
		hostname, _ := os.Hostname()
		if err := exporter.Push(ctx, url, r.cfg.Metrics.Job, hostname); err != nil {
			r.logger.Warningf("%v", err)
		}
	}
	return outcomes, errors.Join(errs...)
}

// Probe checks that every notifier able to do so can reach its destination.
func (r *Runner) Probe(ctx context.Context) map[string]error {
	out := make(map[string]error)
	for _, n := range r.notifiers {
		if p, ok := n.(notifier.Prober); ok {
			out[n.Name()] = p.Probe(ctx)
		}
	}
	return out
}

func (r *Runner) Close() error {
	var errs []error
	for _, c := range r.closers {
		errs = append(errs, c.Close())
	}
	r.closers = nil
	return errors.Join(errs...)
}

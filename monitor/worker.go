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
	"time"

	"golang.org/x/sync/errgroup"

	"hostwatch/pkg/hwerrors"
	"hostwatch/pkg/log"
	"hostwatch/pkg/loop"
)

// Worker runs every check periodically, each on its own task loop so a slow
// check never delays another.
type Worker struct {
	monitor  *Monitor
	checks   []Check
	interval time.Duration
	logger   *log.Logger
}

// DefaultInterval applies when interval is not positive.
const DefaultInterval = 5 * time.Minute

func NewWorker(m *Monitor, interval time.Duration, checks ...Check) *Worker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Worker{
		monitor:  m,
		checks:   checks,
		interval: interval,
		logger:   log.GetLogger("worker"),
	}
}

// Run blocks until ctx is done. Every check runs once immediately and then
// on every tick.
func (w *Worker) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, c := range w.checks {
		c := c
		tl := loop.NewTaskLoop(c.Kind().String(), 1)
		tl.Start(ctx)

		g.Go(func() error {
			<-tl.Done()
			return nil
		})
		g.Go(func() error {
			w.schedule(ctx, tl, c)
			return nil
		})
	}
	w.logger.Infof("running %d checks every %s", len(w.checks), w.interval)
	return g.Wait()
}

func (w *Worker) schedule(ctx context.Context, tl *loop.TaskLoop, c Check) {
	task := func(ctx context.Context) error {
		// RunCycle logs and counts its own failures
		_, _ = w.monitor.RunCycle(ctx, c)
		return nil
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.enqueue(tl, c, task)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.enqueue(tl, c, task)
		}
	}
}

func (w *Worker) enqueue(tl *loop.TaskLoop, c Check, task loop.Task) {
	err := tl.TryAddTask(task)
	switch {
	case err == nil:
	case errors.Is(err, hwerrors.ErrQueueFull):
		w.logger.Warningf("%s check still pending, skipping this tick", c.Kind())
	default:
		w.logger.Verbosef("%s loop stopped: %v", c.Kind(), err)
	}
}

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

package loop

import (
	"context"
	"sync"
	"time"

	"hostwatch/pkg/hwerrors"
	"hostwatch/pkg/log"
)

type Task func(ctx context.Context) error

// TaskLoop runs queued tasks one at a time on a single goroutine, so
// everything submitted to one loop is owned by that goroutine.
type TaskLoop struct {
	name  string
	tasks chan Task
	log   *log.Logger
	mu    sync.Mutex

	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewTaskLoop creates a stopped loop with the given queue size.
func NewTaskLoop(name string, queueSize int) *TaskLoop {
	if queueSize <= 0 {
		queueSize = 100
	}
	return &TaskLoop{
		name:   name,
		tasks:  make(chan Task, queueSize),
		log:    log.GetLogger("loop"),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// AddTask blocks until the task is queued, ctx is done or the loop stops.
func (l *TaskLoop) AddTask(ctx context.Context, task Task) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-l.stopCh:
		return context.Canceled
	case l.tasks <- task:
		return nil
	}
}

// TryAddTask queues the task or returns hwerrors.ErrQueueFull immediately.
func (l *TaskLoop) TryAddTask(task Task) error {
	select {
	case <-l.stopCh:
		return context.Canceled
	case l.tasks <- task:
		return nil
	default:
		return hwerrors.ErrQueueFull
	}
}

// Start launches the loop goroutine. Calling Start on a running loop is a no-op.
func (l *TaskLoop) Start(ctx context.Context) {
	l.mu.Lock()
	if l.running {
		l.mu.Unlock()
		return
	}
	l.running = true
	l.stopCh = make(chan struct{})
	l.doneCh = make(chan struct{})
	stopCh, doneCh := l.stopCh, l.doneCh
	l.mu.Unlock()

	go func() {
		defer close(doneCh)
		for {
			select {
			case <-stopCh:
				l.drain(ctx)
				return
			case <-ctx.Done():
				l.markStopped()
				return
			case task := <-l.tasks:
				l.run(ctx, task)
			}
		}
	}()
}

func (l *TaskLoop) run(ctx context.Context, task Task) {
	if err := task(ctx); err != nil {
		l.log.Warningf("loop %s: task failed: %v", l.name, err)
	}
}

// drain runs what is left in the queue for at most one second.
func (l *TaskLoop) drain(ctx context.Context) {
	deadline := time.NewTimer(time.Second)
	defer deadline.Stop()
	for {
		select {
		case <-deadline.C:
			return
		case task := <-l.tasks:
			l.run(ctx, task)
		default:
			return
		}
	}
}

func (l *TaskLoop) markStopped() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.running {
		l.running = false
		close(l.stopCh)
	}
}

// Stop stops the loop and waits for the running task to finish.
func (l *TaskLoop) Stop() {
	l.mu.Lock()
	if !l.running {
		l.mu.Unlock()
		return
	}
	l.running = false
	close(l.stopCh)
	doneCh := l.doneCh
	l.mu.Unlock()

	<-doneCh
}

// Done is closed once the loop goroutine has exited.
func (l *TaskLoop) Done() <-chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.doneCh
}

func (l *TaskLoop) IsRunning() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.running
}

// QueuedTasksCount returns the number of tasks waiting to run.
func (l *TaskLoop) QueuedTasksCount() int {
	return len(l.tasks)
}

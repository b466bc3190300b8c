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

package notifier

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"

	"hostwatch/monitor/alert"
	"hostwatch/pkg/hwerrors"
	"hostwatch/pkg/log"
)

var _ Notifier = (*Fanout)(nil)

// FailureHook is called once for every notifier that failed a delivery.
type FailureHook func(kind alert.Kind, notifier string, err error)

// Fanout delivers to all of its notifiers concurrently. A delivery succeeds
// when at least one notifier accepted the report.
type Fanout struct {
	notifiers []Notifier
	onFailure FailureHook
	logger    *log.Logger
}

func NewFanout(onFailure FailureHook, notifiers ...Notifier) *Fanout {
	return &Fanout{
		notifiers: notifiers,
		onFailure: onFailure,
		logger:    log.GetLogger("fanout"),
	}
}

func (f *Fanout) Name() string {
	return "fanout"
}

// Notifiers returns the wrapped notifiers.
func (f *Fanout) Notifiers() []Notifier {
	return f.notifiers
}

func (f *Fanout) Deliver(ctx context.Context, r alert.Report) error {
	if len(f.notifiers) == 0 {
		return hwerrors.ErrNoNotifier
	}

	errs := make([]error, len(f.notifiers))
	var g errgroup.Group
	for i, n := range f.notifiers {
		i, n := i, n
		g.Go(func() error {
			errs[i] = n.Deliver(ctx, r)
			return nil
		})
	}
	_ = g.Wait()

	var failed []error
	for i, err := range errs {
		if err == nil {
			continue
		}
		name := f.notifiers[i].Name()
		f.logger.Errorf("%s notifier failed for %s alert %s: %v", name, r.Kind, r.ID, err)
		if f.onFailure != nil {
			f.onFailure(r.Kind, name, err)
		}
		failed = append(failed, fmt.Errorf("%s: %w", name, err))
	}

	if len(failed) == len(f.notifiers) {
		return fmt.Errorf("%w: %w", hwerrors.ErrDeliveryFailed, errors.Join(failed...))
	}
	return nil
}

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

package alert

import (
	"sync"
	"time"
)

// DefaultCooldown applies to kinds without a configured window.
const DefaultCooldown = time.Hour

// Gate suppresses repeated alerts of the same kind inside a cooldown window.
//
// Each kind has its own state and its own locks; nothing is shared across
// kinds. ShouldFire only reads. State moves forward only through RecordFired,
// which callers invoke after the alert was actually delivered.
type Gate struct {
	states [numKinds]kindState
}

type kindState struct {
	// hold serialises one complete check-deliver-record sequence.
	hold sync.Mutex

	mu          sync.RWMutex
	window      time.Duration
	fired       bool
	lastFiredAt time.Time
}

// CooldownStatus is a point-in-time view of one kind's gate.
type CooldownStatus struct {
	Kind        Kind
	Window      time.Duration
	Fired       bool
	LastFiredAt time.Time
	Suppressed  bool
	Remaining   time.Duration
}

// NewGate creates a gate with every kind idle.
func NewGate(windows map[Kind]time.Duration) *Gate {
	g := &Gate{}
	for _, k := range AllKinds {
		w, ok := windows[k]
		if !ok || w <= 0 {
			w = DefaultCooldown
		}
		g.states[k].window = w
	}
	return g
}

func (g *Gate) state(kind Kind) *kindState {
	if !kind.Valid() {
		return nil
	}
	return &g.states[kind]
}

// ShouldFire is true when kind never fired or its window has fully elapsed.
func (g *Gate) ShouldFire(kind Kind, now time.Time) bool {
	s := g.state(kind)
	if s == nil {
		return false
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return !s.fired || now.Sub(s.lastFiredAt) > s.window
}

// RecordFired starts a new window for kind at now.
func (g *Gate) RecordFired(kind Kind, now time.Time) {
	s := g.state(kind)
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fired = true
	s.lastFiredAt = now
}

// Hold locks kind for a full ShouldFire, deliver, RecordFired sequence so two
// overlapping evaluations of the same kind cannot both fire. The returned
// function releases the lock.
func (g *Gate) Hold(kind Kind) (release func()) {
	s := g.state(kind)
	if s == nil {
		return func() {}
	}
	s.hold.Lock()
	return s.hold.Unlock
}

// Window returns the cooldown window of kind.
func (g *Gate) Window(kind Kind) time.Duration {
	s := g.state(kind)
	if s == nil {
		return 0
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.window
}

// Snapshot reports the state of every kind as of now.
func (g *Gate) Snapshot(now time.Time) []CooldownStatus {
	out := make([]CooldownStatus, 0, len(AllKinds))
	for _, k := range AllKinds {
		s := &g.states[k]
		s.mu.RLock()
		st := CooldownStatus{
			Kind:        k,
			Window:      s.window,
			Fired:       s.fired,
			LastFiredAt: s.lastFiredAt,
		}
		s.mu.RUnlock()

		if st.Fired {
			elapsed := now.Sub(st.LastFiredAt)
			if elapsed <= st.Window {
				st.Suppressed = true
				st.Remaining = st.Window - elapsed
			}
		}
		out = append(out, st)
	}
	return out
}

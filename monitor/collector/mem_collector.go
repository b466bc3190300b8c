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

package collector

import (
	"context"
	"fmt"
	"sort"

	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/afero"

	"hostwatch/pkg/log"
)

var _ MemorySource = (*MemoryCollector)(nil)

// ProcessMemory is the memory of a single process.
type ProcessMemory struct {
	PID  int32
	User string
	RSS  uint64
	VMS  uint64
}

// MemoryCollector reads system memory and the process table through gopsutil.
type MemoryCollector struct {
	fs      afero.Fs
	homeDir string
	logger  *log.Logger
}

// NewMemoryCollector reports every user when homeDir is empty. Otherwise
// only users with a directory named after them under homeDir are reported.
func NewMemoryCollector(fs afero.Fs, homeDir string) *MemoryCollector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &MemoryCollector{fs: fs, homeDir: homeDir, logger: log.GetLogger("mem-collector")}
}

func (c *MemoryCollector) System(ctx context.Context) (SystemMemory, error) {
	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		return SystemMemory{}, fmt.Errorf("virtual memory: %w", err)
	}
	return SystemMemory{
		Total:       vm.Total,
		Used:        vm.Used,
		Available:   vm.Available,
		UsedPercent: vm.UsedPercent,
	}, nil
}

func (c *MemoryCollector) ByUser(ctx context.Context) ([]UserMemory, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("list processes: %w", err)
	}

	samples := make([]ProcessMemory, 0, len(procs))
	var skipped int
	for _, p := range procs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// processes exit or deny access between listing and reading
		user, err := p.UsernameWithContext(ctx)
		if err != nil {
			skipped++
			continue
		}
		mi, err := p.MemoryInfoWithContext(ctx)
		if err != nil || mi == nil {
			skipped++
			continue
		}
		samples = append(samples, ProcessMemory{PID: p.Pid, User: user, RSS: mi.RSS, VMS: mi.VMS})
	}
	if skipped > 0 {
		c.logger.Verbosef("skipped %d of %d processes", skipped, len(procs))
	}

	users := AggregateByUser(samples)
	if c.homeDir == "" {
		return users, nil
	}
	homes, err := c.homeUsers()
	if err != nil {
		return nil, err
	}
	return FilterUsers(users, homes), nil
}

func (c *MemoryCollector) homeUsers() (map[string]struct{}, error) {
	entries, err := afero.ReadDir(c.fs, c.homeDir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.homeDir, err)
	}
	out := make(map[string]struct{}, len(entries))
	for _, e := range entries {
		if e.IsDir() {
			out[e.Name()] = struct{}{}
		}
	}
	return out, nil
}

// AggregateByUser sums per-process memory into one entry per user, ordered
// by user name.
func AggregateByUser(procs []ProcessMemory) []UserMemory {
	byUser := make(map[string]*UserMemory)
	for _, p := range procs {
		if p.User == "" {
			continue
		}
		u, ok := byUser[p.User]
		if !ok {
			u = &UserMemory{User: p.User}
			byUser[p.User] = u
		}
		u.RSS += p.RSS
		u.VMS += p.VMS
	}

	out := make([]UserMemory, 0, len(byUser))
	for _, u := range byUser {
		out = append(out, *u)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].User < out[j].User })
	return out
}

// FilterUsers keeps the users present in allowed, preserving order.
func FilterUsers(users []UserMemory, allowed map[string]struct{}) []UserMemory {
	out := make([]UserMemory, 0, len(users))
	for _, u := range users {
		if _, ok := allowed[u.User]; ok {
			out = append(out, u)
		}
	}
	return out
}

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
	"os"
	"path/filepath"

	"github.com/shirou/gopsutil/v4/disk"
	"github.com/spf13/afero"

	"hostwatch/monitor/metric"
	"hostwatch/pkg/log"
)

var _ DiskSource = (*DiskCollector)(nil)

// DiskCollector reads filesystem usage through gopsutil and walks directories
// through an afero filesystem.
type DiskCollector struct {
	fs     afero.Fs
	logger *log.Logger
}

// NewDiskCollector uses the OS filesystem when fs is nil.
func NewDiskCollector(fs afero.Fs) *DiskCollector {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &DiskCollector{fs: fs, logger: log.GetLogger("disk-collector")}
}

func (c *DiskCollector) Usage(ctx context.Context, path string) (DiskUsage, error) {
	st, err := disk.UsageWithContext(ctx, path)
	if err != nil {
		return DiskUsage{}, fmt.Errorf("disk usage of %s: %w", path, err)
	}
	return DiskUsage{
		Path:  path,
		Total: st.Total,
		Used:  st.Used,
		Free:  st.Free,
	}, nil
}

// DirectorySizes returns one measurement per first-level subdirectory of path.
// Without recursive, a directory's size is the sum of the regular files
// directly inside it. Symlinks are not followed and entries that cannot be
// read are skipped.
func (c *DiskCollector) DirectorySizes(ctx context.Context, path string, recursive bool) ([]metric.EntityMeasurement, error) {
	entries, err := afero.ReadDir(c.fs, path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	out := make([]metric.EntityMeasurement, 0, len(entries))
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !e.IsDir() || e.Mode()&os.ModeSymlink != 0 {
			continue
		}
		dir := filepath.Join(path, e.Name())

		var size int64
		if recursive {
			size, err = c.treeSize(ctx, dir)
		} else {
			size, err = c.flatSize(dir)
		}
		if err != nil {
			c.logger.Warningf("skip %s: %v", dir, err)
			continue
		}
		out = append(out, metric.EntityMeasurement{
			Identifier: dir,
			Magnitude:  float64(size),
			Unit:       metric.Bytes,
		})
	}
	return out, nil
}

func (c *DiskCollector) flatSize(dir string) (int64, error) {
	files, err := afero.ReadDir(c.fs, dir)
	if err != nil {
		return 0, err
	}
	var size int64
	for _, f := range files {
		if f.Mode().IsRegular() {
			size += f.Size()
		}
	}
	return size, nil
}

func (c *DiskCollector) treeSize(ctx context.Context, dir string) (int64, error) {
	var size int64
	err := afero.Walk(c.fs, dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			// unreadable entry, keep walking its siblings
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.Mode().IsRegular() {
			size += info.Size()
		}
		return nil
	})
	return size, err
}

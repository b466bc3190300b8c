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

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"hostwatch/monitor/alert"
	"hostwatch/pkg/hwerrors"
)

// config.json as written by the legacy cron scripts
const legacyJSON = `{
  "EMAIL_SENDER": "ops@example.com",
  "EMAIL_PASSWORD": "secret",
  "EMAIL_RECEIVER": "admin@example.com, oncall@example.com",
  "THRESHOLDS": {
    "DISK_PERCENT": 10,
    "MEMORY_PERCENT": 90,
    "TEMPERATURE_C": 80
  }
}`

func writeConfig(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadLegacyJSON(t *testing.T) {
	c, err := NewConfigManager().Load(writeConfig(t, "config.json", legacyJSON))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(true); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	if c.EmailSender != "ops@example.com" || c.SMTPHost != "smtp.gmail.com" || c.SMTPPort != 465 {
		t.Errorf("email settings = %q %q %d", c.EmailSender, c.SMTPHost, c.SMTPPort)
	}
	if got := c.Receivers(); len(got) != 2 || got[1] != "oncall@example.com" {
		t.Errorf("Receivers() = %v", got)
	}
	if *c.Thresholds.DiskPercent != 10 || *c.Thresholds.MemoryPercent != 90 || *c.Thresholds.TemperatureC != 80 {
		t.Errorf("thresholds = %+v", c.Thresholds)
	}
	if c.Disk.Path != "/home" || c.Disk.MaxEntries != 5 || c.Memory.MaxEntries != 10 {
		t.Errorf("defaults = %+v %+v", c.Disk, c.Memory)
	}
	if c.Cooldown.Memory != time.Hour || c.Interval != 5*time.Minute {
		t.Errorf("durations = %v %v", c.Cooldown.Memory, c.Interval)
	}
	kinds, err := c.Kinds()
	if err != nil || len(kinds) != 3 {
		t.Errorf("Kinds() = %v, %v", kinds, err)
	}
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, "hostwatch.yaml", `
thresholds:
  disk_percent: 15
  memory_percent: 85.5
  temperature_c: 75
redis:
  addr: localhost:6379
  list: hostwatch:recent
cooldown:
  temperature: 15m
checks: [memory, temp]
disk:
  path: /data
  max_size: 500000000000
`)
	c, err := NewConfigManager().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(true); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if *c.Thresholds.MemoryPercent != 85.5 {
		t.Errorf("memory threshold = %v", *c.Thresholds.MemoryPercent)
	}
	if c.Disk.Path != "/data" || c.Disk.MaxSize != 500e9 {
		t.Errorf("disk = %+v", c.Disk)
	}
	w := c.CooldownWindows()
	if w[alert.Temperature] != 15*time.Minute || w[alert.DiskSpace] != time.Hour {
		t.Errorf("windows = %v", w)
	}
	kinds, _ := c.Kinds()
	if len(kinds) != 2 || kinds[0] != alert.Memory || kinds[1] != alert.Temperature {
		t.Errorf("kinds = %v", kinds)
	}
	if c.EmailEnabled() || !c.RedisEnabled() {
		t.Error("expected redis only")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HOSTWATCH_THRESHOLDS_DISK_PERCENT", "20")
	t.Setenv("HOSTWATCH_THRESHOLDS_MEMORY_PERCENT", "95")
	t.Setenv("HOSTWATCH_THRESHOLDS_TEMPERATURE_C", "70")
	t.Setenv("HOSTWATCH_REDIS_ADDR", "redis:6379")
	t.Setenv("HOSTWATCH_INTERVAL", "1m")
	t.Setenv(EnvConfigDir, t.TempDir())

	c, err := NewConfigManager().Load("")
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(true); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if *c.Thresholds.DiskPercent != 20 || c.Redis.Addr != "redis:6379" || c.Interval != time.Minute {
		t.Errorf("config = %+v", c)
	}
}

func TestLoadMissingExplicitFile(t *testing.T) {
	if _, err := NewConfigManager().Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Error("expected error for missing config file")
	}
}

func TestValidate(t *testing.T) {
	ten := 10.0
	base := func() *Config {
		c, err := NewConfigManager().Load(writeConfig(t, "config.json", legacyJSON))
		if err != nil {
			t.Fatal(err)
		}
		return c
	}

	tests := []struct {
		name            string
		mutate          func(c *Config)
		requireNotifier bool
		wantErr         error
	}{
		{
			name:            "valid",
			mutate:          func(c *Config) {},
			requireNotifier: true,
		},
		{
			name:    "missing threshold",
			mutate:  func(c *Config) { c.Thresholds.TemperatureC = nil },
			wantErr: hwerrors.ErrMissingConfig,
		},
		{
			name: "partial email",
			mutate: func(c *Config) {
				c.EmailPassword = ""
			},
			wantErr: hwerrors.ErrMissingConfig,
		},
		{
			name: "no notifier",
			mutate: func(c *Config) {
				c.EmailSender, c.EmailPassword, c.EmailReceiver = "", "", ""
			},
			requireNotifier: true,
			wantErr:         hwerrors.ErrNoNotifier,
		},
		{
			name: "no notifier on dry run",
			mutate: func(c *Config) {
				c.EmailSender, c.EmailPassword, c.EmailReceiver = "", "", ""
				c.Thresholds.DiskPercent = &ten
			},
		},
		{
			name:    "unknown check",
			mutate:  func(c *Config) { c.Checks = []string{"disk", "cpu"} },
			wantErr: hwerrors.ErrInvalidConfig,
		},
		{
			name:    "zero cooldown",
			mutate:  func(c *Config) { c.Cooldown.Disk = 0 },
			wantErr: hwerrors.ErrInvalidConfig,
		},
		{
			name:    "bad smtp port",
			mutate:  func(c *Config) { c.SMTPPort = 70000 },
			wantErr: hwerrors.ErrInvalidConfig,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := base()
			tt.mutate(c)
			err := c.Validate(tt.requireNotifier)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveRoundTrip(t *testing.T) {
	cm := NewConfigManager()
	cm.Set("email_sender", "ops@example.com")
	cm.Set("email_password", "secret")
	cm.Set("email_receiver", "admin@example.com")
	cm.Set("thresholds.disk_percent", 12)
	cm.Set("thresholds.memory_percent", 88)
	cm.Set("thresholds.temperature_c", 82)

	path := filepath.Join(t.TempDir(), "etc", "hostwatch.yaml")
	if err := cm.Save(path); err != nil {
		t.Fatal(err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("mode = %v", info.Mode().Perm())
	}

	c, err := NewConfigManager().Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.Validate(true); err != nil {
		t.Fatalf("Validate() = %v", err)
	}
	if *c.Thresholds.DiskPercent != 12 {
		t.Errorf("disk threshold = %v", *c.Thresholds.DiskPercent)
	}
}

func TestGetConfigFilePath(t *testing.T) {
	t.Setenv(EnvConfigDir, "/opt/hw")
	if got := GetConfigFilePath(); got != "/opt/hw/.hostwatch.yaml" {
		t.Errorf("GetConfigFilePath() = %q", got)
	}
}

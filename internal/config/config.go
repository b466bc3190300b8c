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
	"fmt"
	"math"
	"strings"
	"time"

	"hostwatch/monitor/alert"
	"hostwatch/pkg/hwerrors"
)

// Config is the complete hostwatch configuration. Keys are matched
// case-insensitively, so EMAIL_SENDER and email_sender are the same key.
type Config struct {
	EmailSender   string `mapstructure:"email_sender"`
	EmailPassword string `mapstructure:"email_password"`
	EmailReceiver string `mapstructure:"email_receiver"`
	SMTPHost      string `mapstructure:"smtp_host"`
	SMTPPort      int    `mapstructure:"smtp_port"`

	Thresholds Thresholds     `mapstructure:"thresholds"`
	Disk       DiskConfig     `mapstructure:"disk"`
	Memory     MemoryConfig   `mapstructure:"memory"`
	Sensors    SensorsConfig  `mapstructure:"sensors"`
	Cooldown   CooldownConfig `mapstructure:"cooldown"`
	Redis      RedisConfig    `mapstructure:"redis"`
	Metrics    MetricsConfig  `mapstructure:"metrics"`

	Interval      time.Duration `mapstructure:"interval"`
	CheckTimeout  time.Duration `mapstructure:"check_timeout"`
	NotifyTimeout time.Duration `mapstructure:"notify_timeout"`
	Checks        []string      `mapstructure:"checks"`
	LogLevel      string        `mapstructure:"log_level"`
}

// Thresholds has no defaults; a nil field was not configured.
type Thresholds struct {
	DiskPercent   *float64 `mapstructure:"disk_percent"`
	MemoryPercent *float64 `mapstructure:"memory_percent"`
	TemperatureC  *float64 `mapstructure:"temperature_c"`
}

type DiskConfig struct {
	Path       string `mapstructure:"path"`
	MaxSize    uint64 `mapstructure:"max_size"`
	MaxEntries int    `mapstructure:"max_entries"`
	Recursive  bool   `mapstructure:"recursive"`
}

type MemoryConfig struct {
	MaxEntries int    `mapstructure:"max_entries"`
	HomeDir    string `mapstructure:"home_dir"`
}

type SensorsConfig struct {
	Source     string `mapstructure:"source"`
	Command    string `mapstructure:"command"`
	MaxEntries int    `mapstructure:"max_entries"`
}

type CooldownConfig struct {
	Disk        time.Duration `mapstructure:"disk"`
	Memory      time.Duration `mapstructure:"memory"`
	Temperature time.Duration `mapstructure:"temperature"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	Channel  string `mapstructure:"channel"`
	List     string `mapstructure:"list"`
	ListSize int64  `mapstructure:"list_size"`
}

type MetricsConfig struct {
	Listen  string `mapstructure:"listen"`
	PushURL string `mapstructure:"push_url"`
	Job     string `mapstructure:"job"`
}

// Receivers splits email_receiver on commas.
func (c *Config) Receivers() []string {
	var out []string
	for _, r := range strings.Split(c.EmailReceiver, ",") {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}

// EmailEnabled reports whether any email key is set.
func (c *Config) EmailEnabled() bool {
	return c.EmailSender != "" || c.EmailPassword != "" || c.EmailReceiver != ""
}

func (c *Config) RedisEnabled() bool {
	return c.Redis.Addr != ""
}

// Kinds resolves the configured check names.
func (c *Config) Kinds() ([]alert.Kind, error) {
	seen := make(map[alert.Kind]bool)
	var out []alert.Kind
	for _, name := range c.Checks {
		k, err := alert.ParseKind(name)
		if err != nil {
			return nil, err
		}
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	return out, nil
}

func (c *Config) CooldownWindows() map[alert.Kind]time.Duration {
	return map[alert.Kind]time.Duration{
		alert.DiskSpace:   c.Cooldown.Disk,
		alert.Memory:      c.Cooldown.Memory,
		alert.Temperature: c.Cooldown.Temperature,
	}
}

// Validate checks the configuration. requireNotifier is false for dry runs,
// which print reports instead of sending them.
func (c *Config) Validate(requireNotifier bool) error {
	var errs []error

	for _, t := range []struct {
		key string
		v   *float64
	}{
		{"thresholds.disk_percent", c.Thresholds.DiskPercent},
		{"thresholds.memory_percent", c.Thresholds.MemoryPercent},
		{"thresholds.temperature_c", c.Thresholds.TemperatureC},
	} {
		switch {
		case t.v == nil:
			errs = append(errs, fmt.Errorf("%w: %s", hwerrors.ErrMissingConfig, t.key))
		case math.IsNaN(*t.v) || math.IsInf(*t.v, 0):
			errs = append(errs, fmt.Errorf("%w: %s must be a finite number", hwerrors.ErrInvalidConfig, t.key))
		}
	}

	for _, d := range []struct {
		key string
		v   time.Duration
	}{
		{"interval", c.Interval},
		{"check_timeout", c.CheckTimeout},
		{"notify_timeout", c.NotifyTimeout},
		{"cooldown.disk", c.Cooldown.Disk},
		{"cooldown.memory", c.Cooldown.Memory},
		{"cooldown.temperature", c.Cooldown.Temperature},
	} {
		if d.v <= 0 {
			errs = append(errs, fmt.Errorf("%w: %s must be positive, got %s", hwerrors.ErrInvalidConfig, d.key, d.v))
		}
	}

	if len(c.Checks) == 0 {
		errs = append(errs, fmt.Errorf("%w: checks is empty", hwerrors.ErrInvalidConfig))
	} else if _, err := c.Kinds(); err != nil {
		errs = append(errs, fmt.Errorf("%w: checks: %w", hwerrors.ErrInvalidConfig, err))
	}

	if c.EmailEnabled() {
		for _, e := range []struct{ key, v string }{
			{"email_sender", c.EmailSender},
			{"email_password", c.EmailPassword},
			{"email_receiver", c.EmailReceiver},
		} {
			if e.v == "" {
				errs = append(errs, fmt.Errorf("%w: %s (email keys are all or nothing)", hwerrors.ErrMissingConfig, e.key))
			}
		}
		if c.SMTPHost == "" || c.SMTPPort <= 0 || c.SMTPPort > 65535 {
			errs = append(errs, fmt.Errorf("%w: smtp_host/smtp_port", hwerrors.ErrInvalidConfig))
		}
	}

	if requireNotifier && !c.EmailEnabled() && !c.RedisEnabled() {
		errs = append(errs, hwerrors.ErrNoNotifier)
	}

	return errors.Join(errs...)
}

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
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	EnvPrefix    = "HOSTWATCH"
	EnvConfigDir = "HOSTWATCH_CONFIG_DIR"
	fileName     = ".hostwatch.yaml"
)

// keys lists every setting so env overrides work for keys without a default.
var keys = []string{
	"email_sender", "email_password", "email_receiver", "smtp_host", "smtp_port",
	"thresholds.disk_percent", "thresholds.memory_percent", "thresholds.temperature_c",
	"disk.path", "disk.max_size", "disk.max_entries", "disk.recursive",
	"memory.max_entries", "memory.home_dir",
	"sensors.source", "sensors.command", "sensors.max_entries",
	"cooldown.disk", "cooldown.memory", "cooldown.temperature",
	"redis.addr", "redis.password", "redis.db", "redis.channel", "redis.list", "redis.list_size",
	"metrics.listen", "metrics.push_url", "metrics.job",
	"interval", "check_timeout", "notify_timeout", "checks", "log_level",
}

// ConfigManager loads and saves the configuration through a private viper
// instance.
type ConfigManager struct {
	v *viper.Viper
}

// NewConfigManager returns a manager with defaults and env overrides set up.
func NewConfigManager() *ConfigManager {
	v := viper.New()

	v.SetDefault("smtp_host", "smtp.gmail.com")
	v.SetDefault("smtp_port", 465)
	v.SetDefault("disk.path", "/home")
	v.SetDefault("disk.max_size", 0)
	v.SetDefault("disk.max_entries", 5)
	v.SetDefault("disk.recursive", false)
	v.SetDefault("memory.max_entries", 10)
	v.SetDefault("memory.home_dir", "")
	v.SetDefault("sensors.source", "lm-sensors")
	v.SetDefault("sensors.command", "sensors")
	v.SetDefault("sensors.max_entries", 10)
	v.SetDefault("cooldown.disk", "1h")
	v.SetDefault("cooldown.memory", "1h")
	v.SetDefault("cooldown.temperature", "1h")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.channel", "hostwatch:alerts")
	v.SetDefault("redis.list_size", 100)
	v.SetDefault("metrics.job", "hostwatch")
	v.SetDefault("interval", "5m")
	v.SetDefault("check_timeout", "30s")
	v.SetDefault("notify_timeout", "30s")
	v.SetDefault("checks", []string{"disk", "memory", "temperature"})
	v.SetDefault("log_level", "info")

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, k := range keys {
		_ = v.BindEnv(k)
	}
	v.AutomaticEnv()

	return &ConfigManager{v: v}
}

// Viper returns the underlying viper instance.
func (cm *ConfigManager) Viper() *viper.Viper {
	return cm.v
}

// BindFlag lets a command line flag override key.
func (cm *ConfigManager) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	return cm.v.BindPFlag(key, flag)
}

// Load reads path, or the default config file when path is empty, and
// decodes the result. A missing default file is not an error since every key
// can also come from the environment; a missing explicit path is.
func (cm *ConfigManager) Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = GetConfigFilePath()
	}
	cm.v.SetConfigFile(path)
	if ext := strings.TrimPrefix(filepath.Ext(path), "."); ext == "" || ext == "conf" {
		cm.v.SetConfigType("yaml")
	}

	if err := cm.v.ReadInConfig(); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := cm.v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	return &c, nil
}

// ConfigFileUsed returns the file the last Load read, if any.
func (cm *ConfigManager) ConfigFileUsed() string {
	return cm.v.ConfigFileUsed()
}

// Set overrides key for this process, e.g. from interactive input.
func (cm *ConfigManager) Set(key string, value any) {
	cm.v.Set(key, value)
}

// Save writes the current settings to path, or the default config file.
// The file holds the SMTP password and is only readable by its owner.
func (cm *ConfigManager) Save(path string) error {
	if path == "" {
		path = GetConfigFilePath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	if err := cm.v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("write config %s: %w", path, err)
	}
	return os.Chmod(path, 0o600)
}

// GetConfigFilePath returns the default config file location.
func GetConfigFilePath() string {
	// 1. explicit directory from env
	if dir := os.Getenv(EnvConfigDir); dir != "" {
		return filepath.Join(dir, fileName)
	}
	// 2. root-like accounts use /etc
	home, err := os.UserHomeDir()
	if err != nil || home == "/" || home == "" {
		return filepath.Join("/etc/hostwatch", fileName)
	}
	// 3. home dir
	return filepath.Join(home, fileName)
}

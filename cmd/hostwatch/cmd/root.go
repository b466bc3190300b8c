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

package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hostwatch/internal/config"
	"hostwatch/pkg/log"
)

var (
	cfgManager = config.NewConfigManager()
	cfgFile    string
)

var rootCmd = &cobra.Command{
	Use:   "hostwatch",
	Short: "hostwatch: disk, memory and temperature alerts for a single host",
	Long: `hostwatch watches free disk space, memory usage and hardware temperatures
and notifies by email or redis when a threshold is crossed. Repeated alerts of
the same kind are held back for a cooldown window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command.
func Execute() {
	err := rootCmd.Execute()
	log.Sync()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Error())
		os.Exit(1)
	}
}

func init() {
	fs := rootCmd.PersistentFlags()
	fs.StringVarP(&cfgFile, "config", "c", "", "config file (default "+config.GetConfigFilePath()+")")
	fs.StringP("log-level", "l", "info", "log level (silent, verbose, info, warning, error)")
	_ = cfgManager.BindFlag("log_level", fs.Lookup("log-level"))

	rootCmd.AddCommand(runCmd())
	rootCmd.AddCommand(checkCmd())
	rootCmd.AddCommand(configCmd())
	rootCmd.AddCommand(versionCmd())
}

// loadConfig reads the config file and applies its log level.
func loadConfig() (*config.Config, error) {
	c, err := cfgManager.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	log.SetLogLevel(c.LogLevel)
	if used := cfgManager.ConfigFileUsed(); used != "" {
		log.GetLogger("hostwatch").Verbosef("using config %s", used)
	}
	return c, nil
}

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
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"hostwatch/monitor"
	"hostwatch/pkg/log"
)

func runCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run all configured checks periodically",
		Long: `Run every configured check once at startup and then on every interval,
until interrupted. When metrics.listen is set, a status server exposes
/metrics, /healthz and /api/v1/status.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDaemon()
		},
	}

	fs := cmd.Flags()
	fs.Duration("interval", 0, "time between check cycles (config key interval)")
	fs.String("metrics-listen", "", "status server address, e.g. :9586 (config key metrics.listen)")
	_ = cfgManager.BindFlag("interval", fs.Lookup("interval"))
	_ = cfgManager.BindFlag("metrics.listen", fs.Lookup("metrics-listen"))

	return cmd
}

func runDaemon() error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	gin.SetMode(gin.ReleaseMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := monitor.NewRunner(cfg, monitor.RunnerOptions{})
	if err != nil {
		return err
	}
	defer runner.Close()

	log.GetLogger("hostwatch").Infof("hostwatch started")
	return runner.Run(ctx)
}

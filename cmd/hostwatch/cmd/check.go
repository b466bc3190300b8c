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
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"hostwatch/monitor"
	"hostwatch/monitor/alert"
)

func checkCmd() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "check [disk|memory|temperature ...]",
		Short: "Run checks once and exit",
		Long: `Run the named checks (all configured checks by default) a single time,
suitable for cron. With --dry-run reports are printed instead of sent and no
notifier needs to be configured.`,
		Example: `  hostwatch check
  hostwatch check disk --dry-run`,
		RunE: func(cmd *cobra.Command, args []string) error {
			kinds := make([]alert.Kind, 0, len(args))
			for _, a := range args {
				k, err := alert.ParseKind(a)
				if err != nil {
					return err
				}
				kinds = append(kinds, k)
			}
			return runCheck(cmd, kinds, dryRun)
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "print reports instead of sending them")
	return cmd
}

func runCheck(cmd *cobra.Command, kinds []alert.Kind, dryRun bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner, err := monitor.NewRunner(cfg, monitor.RunnerOptions{
		DryRun: dryRun,
		Out:    cmd.OutOrStdout(),
		Kinds:  kinds,
	})
	if err != nil {
		return err
	}
	defer runner.Close()

	outcomes, err := runner.RunOnce(ctx)
	for _, k := range alert.AllKinds {
		if o, ok := outcomes[k]; ok {
			fmt.Fprintf(cmd.ErrOrStderr(), "%-12s %s\n", k, o)
		}
	}
	return err
}

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
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/moby/term"
	"github.com/spf13/cobra"

	"hostwatch/internal/config"
	"hostwatch/monitor"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Create or verify the configuration",
	}
	cmd.AddCommand(configInitCmd())
	cmd.AddCommand(configTestCmd())
	return cmd
}

func configInitCmd() *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file from interactive answers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if path == "" {
				path = cfgFile
			}
			if path == "" {
				path = config.GetConfigFilePath()
			}
			return runConfigInit(cmd.InOrStdin(), cmd.OutOrStdout(), path)
		},
	}
	cmd.Flags().StringVarP(&path, "path", "p", "", "where to write the config file")
	return cmd
}

type prompt struct {
	key    string
	text   string
	def    string
	silent bool
	float  bool
}

var initPrompts = []prompt{
	{key: "email_sender", text: "Sender email address"},
	{key: "email_password", text: "Sender email password", silent: true},
	{key: "email_receiver", text: "Receiver email addresses (comma separated)"},
	{key: "smtp_host", text: "SMTP host", def: "smtp.gmail.com"},
	{key: "thresholds.disk_percent", text: "Alert when free disk space is below (%)", def: "10", float: true},
	{key: "thresholds.memory_percent", text: "Alert when memory usage is above (%)", def: "90", float: true},
	{key: "thresholds.temperature_c", text: "Alert when a sensor is hotter than (°C)", def: "80", float: true},
	{key: "disk.path", text: "Filesystem to watch", def: "/home"},
}

func runConfigInit(in io.Reader, out io.Writer, path string) error {
	reader := bufio.NewReader(in)
	_, interactive := in.(*os.File)
	for _, p := range initPrompts {
		text := p.text
		if p.def != "" {
			text += " [" + p.def + "]"
		}
		answer, err := readLine(out, reader, text+": ", p.silent && interactive)
		if err != nil {
			return err
		}
		if answer == "" {
			answer = p.def
		}
		if answer == "" {
			continue
		}
		if p.float {
			v, err := strconv.ParseFloat(answer, 64)
			if err != nil {
				return fmt.Errorf("%s: %q is not a number", p.key, answer)
			}
			cfgManager.Set(p.key, v)
			continue
		}
		cfgManager.Set(p.key, answer)
	}

	if err := cfgManager.Save(path); err != nil {
		return err
	}
	fmt.Fprintf(out, "config written to %s\n", path)
	return nil
}

// readLine reads one line from stdin, with echo disabled when silent.
func readLine(out io.Writer, reader *bufio.Reader, text string, silent bool) (string, error) {
	fmt.Fprint(out, text)
	if silent {
		fd := os.Stdin.Fd()
		if term.IsTerminal(fd) {
			state, err := term.SaveState(fd)
			if err != nil {
				return "", err
			}
			if err := term.DisableEcho(fd, state); err != nil {
				return "", err
			}
			defer func() {
				_ = term.RestoreTerminal(fd, state)
				fmt.Fprintln(out)
			}()
		}
	}

	line, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func configTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Validate the configuration and check the notifiers can connect",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx := context.Background()
			runner, err := monitor.NewRunner(cfg, monitor.RunnerOptions{})
			if err != nil {
				return err
			}
			defer runner.Close()

			var failed int
			for name, err := range runner.Probe(ctx) {
				if err != nil {
					failed++
					fmt.Fprintf(cmd.OutOrStdout(), "%-8s FAIL %v\n", name, err)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%-8s ok\n", name)
			}
			if failed > 0 {
				return fmt.Errorf("%d notifier(s) unreachable", failed)
			}
			return nil
		},
	}
}

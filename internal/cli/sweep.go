/*
 * sweep.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
 *
 * This program is free software; you can redistribute it and/or modify
 * it under the terms of the GNU Lesser General Public License as
 * published by the Free Software Foundation; either version 2.1 of the
 * License, or (at your option) any later version.
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
 * GNU General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General
 * Public License along with this program.  If not, see
 * <http://www.gnu.org/licenses/>.
 *
 */

package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dhvatools/dhva/internal/logging"
	"github.com/dhvatools/dhva/sweep"
)

func newSweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run dhva over a range of field angles",
		Long: `Runs the dhva program once per angle, sweeping phi or theta from start to
stop, both included. The exit status of every run is checked. With the
fail-fast policy the first run that fails (after its retries) stops the sweep,
with continue every angle is tried and the command fails at the end.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			S, err := cfg.SweepParams()
			if err != nil {
				return err
			}
			S.Stdout = cmd.OutOrStdout()
			S.Stderr = cmd.ErrOrStderr()
			S.Log = logging.FromContext(cmd.Context())
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			results, err := S.Run(ctx)
			renderResults(cmd, S, results)
			return err
		},
	}
	def := sweep.DefaultParams()
	f := cmd.Flags()
	f.String("binary", def.Binary, "path to the dhva program")
	f.String("file", "", "BXSF file to analyze")
	f.String("dir", "", "working directory for the runs")
	f.Int("nksc", def.NKSC, "k-points along one side of the super cell")
	f.Float64("nsc", def.NSC, "reciprocal unit cells along one side of the super cell")
	f.Float64("phi", def.Phi, "phi, in degrees, when theta is swept")
	f.Float64("theta", def.Theta, "theta, in degrees, when phi is swept")
	f.Float64("max-kdiff", def.MaxKDiff, "maximum k-space distance between orbit centers")
	f.Float64("max-freq-diff", def.MaxFreqDiff, "maximum frequency difference between orbits")
	f.Float64("minimum-freq", def.MinimumFreq, "minimum frequency, in tesla")
	f.Int("interpolation", def.Interpolation, "0 linear, 1 cubic")
	f.Bool("graphical", def.Graphical, "let dhva show its graphical output")
	f.String("parameter", "phi", "angle to sweep (phi|theta)")
	f.Float64("start", -90, "first angle, in degrees")
	f.Float64("stop", 90, "last angle, in degrees")
	f.Float64("step", 5, "angle step, in degrees")
	f.String("policy", sweep.FailFast.String(), "what to do when a run fails (fail-fast|continue)")
	f.Int("retries", 0, "extra attempts for a failed run")
	return cmd
}

func renderResults(cmd *cobra.Command, S *sweep.Sweep, results []sweep.Result) {
	if len(results) == 0 {
		return
	}
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{S.Parameter, "Attempts", "Exit code", "Elapsed", "Status"})
	failed := 0
	for _, R := range results {
		status := "ok"
		if !R.OK() {
			status = "failed"
			failed++
		}
		t.AppendRow(table.Row{fmt.Sprintf("%g", R.Angle), R.Attempts, R.ExitCode, R.Elapsed.Round(time.Millisecond).String(), status})
	}
	t.AppendFooter(table.Row{"runs", len(results), "", "failed", failed})
	t.Render()
}

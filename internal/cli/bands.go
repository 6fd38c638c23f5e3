/*
 * bands.go, part of dhva.
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
	"path/filepath"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dhvatools/dhva/bandplot"
	"github.com/dhvatools/dhva/bands"
	"github.com/dhvatools/dhva/internal/logging"
)

func newBandsCmd() *cobra.Command {
	var plotFile string
	var bins int
	var width float64
	cmd := &cobra.Command{
		Use:   "bands <band_kp>",
		Short: "List the energy window of each band of a table",
		Long: `Prints the minimum, maximum, mean and spread of the energies of each band
in a band table, marking the bands that cross the Fermi energy. Those are the
bands the bxsf command writes grids for.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			T, err := bands.ReadTableFile(args[0])
			if err != nil {
				return err
			}
			stats := T.AllStats()
			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Band", "Min", "Max", "Mean", "Std", "Width", "Sheet"})
			f := func(v float64) string { return fmt.Sprintf("% .6f", v) }
			for _, s := range stats {
				t.AppendRow(table.Row{s.Band, f(s.Min), f(s.Max), f(s.Mean), f(s.Std), f(s.Width()), sheetMark(s.Crosses)})
			}
			t.AppendFooter(table.Row{"", "", "", "", "", "k-points", T.NKPoints()})
			t.Render()
			if bins > 0 {
				H, err := T.Histogram(width, bins)
				if err != nil {
					return err
				}
				H.Normalize()
				renderHistogram(cmd, H)
			}
			if plotFile == "" {
				return nil
			}
			if err := bandplot.Save(T, filepath.Base(args[0]), plotFile); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("band window plotted", "file", plotFile)
			return nil
		},
	}
	cmd.Flags().IntVar(&bins, "dos-bins", 0, "also print a histogram of the energies with this many bins")
	cmd.Flags().Float64Var(&width, "dos-width", 0.5, "the histogram spans this much on each side of the Fermi energy")
	cmd.Flags().StringVar(&plotFile, "plot", "", "also plot the band window to this file (.png, .svg, .pdf)")
	return cmd
}

func renderHistogram(cmd *cobra.Command, H *bands.Histogram) {
	t := table.NewWriter()
	t.SetOutputMirror(cmd.OutOrStdout())
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"From", "To", "Fraction"})
	for i := 0; i < H.Bins(); i++ {
		lo, hi, c := H.Bin(i)
		t.AppendRow(table.Row{fmt.Sprintf("% .4f", lo), fmt.Sprintf("% .4f", hi), fmt.Sprintf("%.4f", c)})
	}
	t.AppendFooter(table.Row{"", "energies", H.Total()})
	t.Render()
}

/*
 * bxsf.go, part of dhva.
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

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/floats"

	"github.com/dhvatools/dhva/bands"
	"github.com/dhvatools/dhva/bxsf"
	"github.com/dhvatools/dhva/internal/logging"
	"github.com/dhvatools/dhva/lattice"
)

func newBXSFCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bxsf <structure> <band_kp> <outprefix> <nx> <ny> <nz>",
		Short: "Convert a band energy table into BXSF grids",
		Long: `Reads the band energies computed on an nx*ny*nz mesh and writes one BXSF
file for each band crossing the Fermi energy, named outprefix.001,
outprefix.002, etc. Either every file is written or none is. Files left with
the same prefix by an earlier run with more bands are removed.`,
		Args: cobra.ExactArgs(6),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			d, err := parseDims(args[3:])
			if err != nil {
				return err
			}
			_, C, err := lattice.FromFile(args[0])
			if err != nil {
				return err
			}
			T, err := bands.ReadTableFile(args[1])
			if err != nil {
				return err
			}
			grids, err := bxsf.Convert(C, T, d)
			if err != nil {
				return err
			}
			log := logging.FromContext(cmd.Context())
			if len(grids) == 0 {
				log.Warn("no band crosses the Fermi energy", "table", args[1], "bands", T.NBands())
				fmt.Fprintln(cmd.OutOrStdout(), "no band crosses the Fermi energy, nothing written")
				return nil
			}
			opts := bxsf.SetOptions{Manifest: cfg.BXSF.Manifest, Compression: cfg.BXSF.Compression}
			names, err := bxsf.WriteSet(args[2], grids, opts)
			if err != nil {
				return err
			}
			for i, n := range names {
				if i < len(grids) {
					log.Info("grid written", "file", n, "band", grids[i].Band)
					fmt.Fprintf(cmd.OutOrStdout(), "%s\tband %d\n", n, grids[i].Band)
					continue
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", n)
			}
			return nil
		},
	}
	cmd.Flags().Bool("manifest", false, "also write outprefix.manifest.yaml")
	cmd.Flags().String("compress", "", "compress the grids (.zst, .gz or .xz)")
	return cmd
}

func newElk2DHVACmd() *cobra.Command {
	return &cobra.Command{
		Use:   "elk2dhva <in> <out>",
		Short: "Translate an Elk BXSF file into the format dhva reads",
		Long: `Drops the periodic images of the Elk grid, converts the reciprocal vectors
to units of 2pi/a and the energies from Hartree to Rydberg.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := bxsf.TranslateFile(args[0], args[1]); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("file translated", "in", args[0], "out", args[1])
			return nil
		},
	}
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <bxsf>",
		Short: "Summarize a BXSF file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			F, err := bxsf.ReadFile(args[0])
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "Fermi energy: %g\ngrid: %s\n", F.Fermi, F.Dims)
			for i, v := range F.Vectors {
				fmt.Fprintf(w, "vector %d: % .6f % .6f % .6f\n", i+1, v[0], v[1], v[2])
			}
			t := table.NewWriter()
			t.SetOutputMirror(w)
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"Band", "Min", "Max", "Sheet"})
			for _, b := range F.Bands {
				lo, hi := floats.Min(b.Energies), floats.Max(b.Energies)
				t.AppendRow(table.Row{b.Number, fmt.Sprintf("% .6e", lo), fmt.Sprintf("% .6e", hi), sheetMark(bands.Straddles(b.Energies))})
			}
			t.Render()
			return nil
		},
	}
}

func sheetMark(crosses bool) string {
	if crosses {
		return "yes"
	}
	return ""
}

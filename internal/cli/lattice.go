/*
 * lattice.go, part of dhva.
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
	"io"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dhvatools/dhva/internal/logging"
	"github.com/dhvatools/dhva/kmesh"
	"github.com/dhvatools/dhva/lattice"
	v3 "github.com/dhvatools/dhva/v3"
)

func newLatticeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lattice <structure>",
		Short: "Print the direct and reciprocal lattice of a structure",
		Long: `Reads the lattice constants and axis angles of a structure file and prints
the direct lattice vectors (bohr), the reciprocal ones (1/bohr) and the cell volume.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			S, C, err := lattice.FromFile(args[0])
			if err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Debug("structure read", "file", args[0], "unit", S.Unit.String())
			renderCell(cmd.OutOrStdout(), C)
			return nil
		},
	}
}

func renderCell(w io.Writer, C *lattice.Cell) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Vector", "x", "y", "z"})
	rows := func(M *v3.Matrix, prefix string) {
		for i := 0; i < 3; i++ {
			t.AppendRow(table.Row{
				fmt.Sprintf("%s%d", prefix, i+1),
				fmt.Sprintf("% .8f", M.At(i, 0)),
				fmt.Sprintf("% .8f", M.At(i, 1)),
				fmt.Sprintf("% .8f", M.At(i, 2)),
			})
		}
	}
	rows(C.Direct, "a")
	t.AppendSeparator()
	rows(C.Reciprocal, "b")
	t.Render()
	fmt.Fprintf(w, "volume: %.8f bohr^3\n", C.Volume())
}

func newKMeshCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "kmesh <structure> <nx> <ny> <nz>",
		Short: "Write the k-point mesh for a band structure calculation",
		Long: `Generates a uniform nx*ny*nz mesh over the reciprocal cell of the structure,
and writes it in cartesian coordinates, in units of 2pi/a, to the output file.`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := getConfig(cmd)
			if err != nil {
				return err
			}
			d, err := parseDims(args[1:])
			if err != nil {
				return err
			}
			_, C, err := lattice.FromFile(args[0])
			if err != nil {
				return err
			}
			opts := kmesh.Options{
				PartialOnly: cfg.KMesh.PartialOnly,
				LowerOffset: cfg.KMesh.LowerOffset,
				UpperOffset: cfg.KMesh.UpperOffset,
			}
			M, err := kmesh.Generate(C, d, opts)
			if err != nil {
				return err
			}
			if err := M.WriteFile(cfg.KMesh.Output); err != nil {
				return err
			}
			logging.FromContext(cmd.Context()).Info("mesh written", "file", cfg.KMesh.Output, "grid", d.String(), "points", d.Count())
			fmt.Fprintf(cmd.OutOrStdout(), "%d k-points written to %s\n", d.Count(), cfg.KMesh.Output)
			return nil
		},
	}
	def := kmesh.DefaultOptions()
	cmd.Flags().StringP("output", "o", "=.kp", "mesh file (.zst, .gz or .xz compress it)")
	cmd.Flags().Bool("partial-only", def.PartialOnly, "ask for the partially occupied bands only")
	cmd.Flags().Int("lower-offset", def.LowerOffset, "bands below the partially occupied ones")
	cmd.Flags().Int("upper-offset", def.UpperOffset, "bands above the partially occupied ones")
	return cmd
}

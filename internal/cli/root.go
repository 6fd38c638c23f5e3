/*
 * root.go, part of dhva.
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

//Package cli implements the dhvaprep command line.
package cli

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/internal/config"
	"github.com/dhvatools/dhva/internal/logging"
	"github.com/dhvatools/dhva/kmesh"
)

//Version of dhvaprep, set at build time.
var Version = "0.3.0"

type configKey struct{}

//NewRootCmd returns the dhvaprep command with all its subcommands.
func NewRootCmd() *cobra.Command {
	var cfgFile string
	root := &cobra.Command{
		Use:   "dhvaprep",
		Short: "Prepare band structures for the dhva Fermi surface program",
		Long: `dhvaprep builds the lattice of a crystal, generates the k-point mesh for a
band structure calculation, converts the resulting band energies into BXSF
grids, translates Elk BXSF files and sweeps the dhva program over field angles.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}
			//the arguments are fine by now, errors from here on don't need the usage text.
			cmd.SilenceUsage = true
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			level, err := logging.ParseLevel(cfg.Log.Level)
			if err != nil {
				return err
			}
			format, err := logging.ParseFormat(cfg.Log.Format)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			ctx = context.WithValue(ctx, configKey{}, cfg)
			log := logging.New(cmd.ErrOrStderr(), level, format)
			ctx = logging.WithLogger(ctx, log)
			cmd.SetContext(ctx)
			log.Debug("configuration loaded", "file", cfg.File)
			return nil
		},
		SilenceErrors: true,
	}
	root.SetVersionTemplate("{{.Name}} {{.Version}}\n")

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./"+config.DefaultFile+")")
	root.PersistentFlags().String("log-level", "info", "log level (debug|info|warn|error)")
	root.PersistentFlags().String("log-format", "text", "log format (text|json)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newLatticeCmd())
	root.AddCommand(newKMeshCmd())
	root.AddCommand(newBXSFCmd())
	root.AddCommand(newElk2DHVACmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newBandsCmd())
	root.AddCommand(newSweepCmd())
	return root
}

//Execute runs the root command with the process arguments.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}

//getConfig returns the configuration stored by the root command.
func getConfig(cmd *cobra.Command) (*config.Config, error) {
	if ctx := cmd.Context(); ctx != nil {
		if c, ok := ctx.Value(configKey{}).(*config.Config); ok {
			return c, nil
		}
	}
	return config.Load("", cmd.Flags())
}

//parseDims reads the three grid dimensions from the command line.
func parseDims(args []string) (kmesh.Dims, error) {
	var v [3]int
	for i, s := range args {
		n, err := strconv.Atoi(s)
		if err != nil {
			return kmesh.Dims{}, dhva.NewError(dhva.ErrParse, "parseDims", "", fmt.Sprintf("grid dimension %q is not an integer", s), err)
		}
		v[i] = n
	}
	d := kmesh.Dims{NX: v[0], NY: v[1], NZ: v[2]}
	return d, d.Check()
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "dhvaprep v%s\n", Version)
		},
	}
}

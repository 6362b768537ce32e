/*
 * main.go, part of aqmmm.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Command aqmmm runs adaptive QM/MM calculations on PDB or XYZ files,
// with xtb as the QM program and a simple force field for the MM part.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/rmera/aqmmm/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	v          *viper.Viper
	configFile string
)

func main() {
	var err error
	v, err = config.NewViper()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "aqmmm",
		Short:         "adaptive-partitioning QM/MM",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&configFile, "config", "", "parameter file (yaml)")
	root.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().String("log-format", "console", "log format (console or json)")
	bind(root.PersistentFlags().Lookup("log-level"), "log.level")
	bind(root.PersistentFlags().Lookup("log-format"), "log.format")
	root.AddCommand(runCmd(), switchingCmd(), configCmd())
	return root
}

// params returns the validated parameters from defaults, the config file,
// the environment and the flags, in increasing priority.
func params() (*config.Params, error) {
	return config.FromViper(v, configFile)
}

func logger(p *config.Params) *zap.Logger {
	l, err := config.NewLogger(p.Log)
	if err != nil {
		return zap.NewNop()
	}
	return l
}

func configCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "print the effective parameters as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := params()
			if err != nil {
				return err
			}
			data, err := p.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

/*
 * root.go, part of goConf.
 *
 * Copyright 2024 Raul Mera <rmera{at}chemDOThelsinkiDOTfi>
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

package main

import (
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/rmera/goconf/internal/config"
	"github.com/rmera/goconf/internal/logging"
)

//app carries what the subcommands need once the configuration is loaded.
type app struct {
	configPath string
	logLevel   string
	cfg        *config.Config
	log        *zap.Logger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	cmd := &cobra.Command{
		Use:   "goconf",
		Short: "Generates 3D conformers from molecular graphs",
		Long: "goconf builds 3D conformers for the molecules of SDF files from their connectivity alone,\n" +
			"assembling rigid fragments along the most likely torsions of their rotatable bonds.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}
	pf := cmd.PersistentFlags()
	pf.StringVarP(&a.configPath, "config", "c", "", "YAML configuration file (GOCONF_* environment variables override it)")
	pf.StringVar(&a.logLevel, "log-level", "", "log level (debug, info, warn, error), overrides the configuration")
	cmd.AddCommand(newGenerateCommand(a))
	return cmd
}

//init loads the configuration and builds the logger.
func (A *app) init() error {
	cfg, err := config.Load(A.configPath)
	if err != nil {
		return err
	}
	if A.logLevel != "" {
		cfg.Log.Level = A.logLevel
	}
	l, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	A.cfg, A.log = cfg, l
	return nil
}

/*
 * config.go, part of goConf.
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

//Package config loads the configuration of the goconf command from a YAML file and
//GOCONF_* environment variables, and maps it onto generator options.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/rmera/goconf"
	"github.com/rmera/goconf/internal/logging"
	"github.com/rmera/goconf/organizer"
	"github.com/rmera/goconf/torsionset"
)

//envPrefix is the prefix of the environment variables read. Nested keys use "_",
//so organizer.cycles is GOCONF_ORGANIZER_CYCLES.
const envPrefix = "GOCONF"

//OrganizerConfig contains the parameters of the rule relaxation.
type OrganizerConfig struct {
	Cycles        int     `mapstructure:"cycles" yaml:"cycles"`
	Retries       int     `mapstructure:"retries" yaml:"retries"`
	MaxAtomStrain float64 `mapstructure:"max_atom_strain" yaml:"max_atom_strain"`
	MeanStrain    float64 `mapstructure:"mean_strain" yaml:"mean_strain"`
	MaxPool       int     `mapstructure:"max_pool" yaml:"max_pool"`
	PoolAttempts  int     `mapstructure:"pool_attempts" yaml:"pool_attempts"`
}

//Config contains all the parameters of a run. Conformers is the number of conformers
//requested per molecule, MaxConformers the number of local conformers per fragment.
type Config struct {
	Seed          int64             `mapstructure:"seed" yaml:"seed"`
	Strategy      string            `mapstructure:"strategy" yaml:"strategy"`
	Conformers    int               `mapstructure:"conformers" yaml:"conformers"`
	MaxConformers int               `mapstructure:"max_conformers" yaml:"max_conformers"`
	MaxAttempts   int               `mapstructure:"max_attempts" yaml:"max_attempts"`
	MaxStrain     float64           `mapstructure:"max_strain" yaml:"max_strain"`
	Gap           float64           `mapstructure:"gap" yaml:"gap"`
	Slack         float64           `mapstructure:"slack" yaml:"slack"`
	Organizer     OrganizerConfig   `mapstructure:"organizer" yaml:"organizer"`
	Log           logging.LogConfig `mapstructure:"log" yaml:"log"`
}

//newViper returns a viper instance with the defaults of all keys set, so every
//key can be overridden from the environment even without a file.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	g := goconf.DefaultOptions()
	o := organizer.DefaultOptions()
	v.SetDefault("seed", 0)
	v.SetDefault("strategy", g.Strategy().String())
	v.SetDefault("conformers", 10)
	v.SetDefault("max_conformers", g.MaxConformers())
	v.SetDefault("max_attempts", g.MaxAttempts())
	v.SetDefault("max_strain", g.MaxStrain())
	v.SetDefault("gap", g.Gap())
	v.SetDefault("slack", g.Slack())
	v.SetDefault("organizer.cycles", o.Cycles())
	v.SetDefault("organizer.retries", o.Retries())
	v.SetDefault("organizer.max_atom_strain", o.MaxAtomStrain())
	v.SetDefault("organizer.mean_strain", o.MeanStrain())
	v.SetDefault("organizer.max_pool", o.MaxPool())
	v.SetDefault("organizer.pool_attempts", o.PoolAttempts())
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")
	return v
}

//Load reads the YAML file at path, if path is not empty, applies the GOCONF_* environment
//overrides and the defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", path, err)
		}
	}
	c := &Config{}
	if err := v.Unmarshal(c); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return c, nil
}

//Validate returns an error for the first invalid parameter in C.
func (C *Config) Validate() error {
	if _, err := torsionset.ParseKind(C.Strategy); err != nil {
		return err
	}
	if C.Conformers < 1 {
		return fmt.Errorf("conformers must be at least 1, got %d", C.Conformers)
	}
	if C.MaxConformers < 1 {
		return fmt.Errorf("max_conformers must be at least 1, got %d", C.MaxConformers)
	}
	if C.MaxAttempts < 1 {
		return fmt.Errorf("max_attempts must be at least 1, got %d", C.MaxAttempts)
	}
	if C.MaxStrain <= 0 {
		return fmt.Errorf("max_strain must be positive, got %g", C.MaxStrain)
	}
	if C.Gap < 0 || C.Slack < 0 {
		return fmt.Errorf("gap and slack can't be negative")
	}
	o := C.Organizer
	if o.Cycles < 1 || o.MaxPool < 1 || o.PoolAttempts < 1 {
		return fmt.Errorf("organizer.cycles, organizer.max_pool and organizer.pool_attempts must be at least 1")
	}
	if o.Retries < 0 {
		return fmt.Errorf("organizer.retries can't be negative, got %d", o.Retries)
	}
	if o.MaxAtomStrain <= 0 || o.MeanStrain <= 0 {
		return fmt.Errorf("organizer strain thresholds must be positive")
	}
	if _, err := logging.ParseLevel(C.Log.Level); err != nil {
		return err
	}
	return nil
}

//Kind returns the strategy of C. C must be valid.
func (C *Config) Kind() torsionset.Kind {
	k, _ := torsionset.ParseKind(C.Strategy)
	return k
}

//ToOptions returns generator options with the parameters of C and the given
//logger and observer, which can be nil. C must be valid.
func (C *Config) ToOptions(l *zap.Logger, obs goconf.Observer) *goconf.Options {
	g := goconf.DefaultOptions()
	g.Strategy(C.Kind())
	g.Seed(C.Seed)
	g.MaxConformers(C.MaxConformers)
	g.MaxAttempts(C.MaxAttempts)
	g.MaxStrain(C.MaxStrain)
	g.Gap(C.Gap)
	g.Slack(C.Slack)
	g.Logger(l)
	g.Observer(obs)
	o := g.Organizer()
	o.Cycles(C.Organizer.Cycles)
	o.Retries(C.Organizer.Retries)
	o.MaxAtomStrain(C.Organizer.MaxAtomStrain)
	o.MeanStrain(C.Organizer.MeanStrain)
	o.MaxPool(C.Organizer.MaxPool)
	o.PoolAttempts(C.Organizer.PoolAttempts)
	return g
}

/*
 * options.go, part of goConf.
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

package goconf

import (
	"go.uber.org/zap"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/fragment"
	"github.com/rmera/goconf/organizer"
	"github.com/rmera/goconf/torsiondb"
	"github.com/rmera/goconf/torsionset"
)

//Options contains the parameters of a Generator. Use DefaultOptions to obtain one.
type Options struct {
	strategy      torsionset.Kind
	seed          int64
	maxAttempts   int     //torsion sets tried per conformer
	maxConformers int     //local conformers per fragment
	maxStrain     float64 //collision strain at which a torsion becomes impossible
	gap           float64 //A between separate molecules
	slack         float64 //A subtracted from the minimum distance of each atom pair
	organizer     *organizer.Options
	provider      fragment.Provider
	torsions      torsiondb.Provider
	geometry      chem.Geometry
	logger        *zap.Logger
	observer      Observer
}

//DefaultOptions returns the default options.
func DefaultOptions() *Options {
	return &Options{
		strategy:      torsionset.AdaptiveRandom,
		maxAttempts:   1000,
		maxConformers: fragment.DefaultMaxConformers,
		maxStrain:     fragment.DefaultMaxStrain,
		gap:           4.0,
		organizer:     organizer.DefaultOptions(),
		torsions:      torsiondb.Default(),
		geometry:      chem.DefaultGeometry{},
	}
}

//Copy returns a copy of the options. The organizer options are copied too.
func (O *Options) Copy() *Options {
	r := *O
	r.organizer = O.organizer.Copy()
	return &r
}

//Strategy returns the default strategy used to search torsion sets, and sets it to a new one, if given.
func (O *Options) Strategy(k ...torsionset.Kind) torsionset.Kind {
	if len(k) > 0 {
		O.strategy = k[0]
	}
	return O.strategy
}

//Seed returns the seed for all random choices, and sets it to a new value, if given. A seed of 0
//means a seed obtained from the clock, so results are not reproducible.
func (O *Options) Seed(s ...int64) int64 {
	if len(s) > 0 {
		O.seed = s[0]
	}
	return O.seed
}

//MaxAttempts returns the largest number of torsion sets tried in search of each collision-free
//conformer, and sets it to a new value, if given.
func (O *Options) MaxAttempts(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxAttempts = n[0]
	}
	return O.maxAttempts
}

//MaxConformers returns the largest number of local conformers per fragment, and sets it to a new value, if given.
//It only affects the default fragment provider.
func (O *Options) MaxConformers(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxConformers = n[0]
	}
	return O.maxConformers
}

//MaxStrain returns the collision strain between two fragments, in A^2, at which a torsion
//is considered impossible, and sets it to a new value, if given.
func (O *Options) MaxStrain(s ...float64) float64 {
	if len(s) > 0 && s[0] > 0 {
		O.maxStrain = s[0]
	}
	return O.maxStrain
}

//Gap returns the separation, in A, between the boxes containing separate molecules,
//and sets it to a new value, if given.
func (O *Options) Gap(g ...float64) float64 {
	if len(g) > 0 && g[0] >= 0 {
		O.gap = g[0]
	}
	return O.gap
}

//Slack returns the distance, in A, subtracted from the minimum distance of atom pairs
//before checking them for collisions, and sets it to a new value, if given.
func (O *Options) Slack(s ...float64) float64 {
	if len(s) > 0 && s[0] >= 0 {
		O.slack = s[0]
	}
	return O.slack
}

//Organizer returns the options for the relaxation of whole molecules and fragments, and
//sets them to new ones, if given.
func (O *Options) Organizer(o ...*organizer.Options) *organizer.Options {
	if len(o) > 0 && o[0] != nil {
		O.organizer = o[0]
	}
	return O.organizer
}

//Provider returns the fragment provider, and sets it to a new one, if given. If no provider
//was set, each Generator builds its own fragment.SelfOrganizedProvider.
func (O *Options) Provider(p ...fragment.Provider) fragment.Provider {
	if len(p) > 0 && p[0] != nil {
		O.provider = p[0]
	}
	return O.provider
}

//Torsions returns the provider of torsion statistics, and sets it to a new one, if given.
func (O *Options) Torsions(p ...torsiondb.Provider) torsiondb.Provider {
	if len(p) > 0 && p[0] != nil {
		O.torsions = p[0]
	}
	return O.torsions
}

//Geometry returns the geometry estimator, and sets it to a new one, if given.
func (O *Options) Geometry(g ...chem.Geometry) chem.Geometry {
	if len(g) > 0 && g[0] != nil {
		O.geometry = g[0]
	}
	return O.geometry
}

//Logger returns the logger, and sets it to a new one, if given. The default logger discards everything.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	if O.logger == nil {
		return zap.NewNop()
	}
	return O.logger
}

//Observer returns the observer of the generation, and sets it to a new one, if given.
func (O *Options) Observer(o ...Observer) Observer {
	if len(o) > 0 && o[0] != nil {
		O.observer = o[0]
	}
	if O.observer == nil {
		return nopObserver{}
	}
	return O.observer
}

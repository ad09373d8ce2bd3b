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

package organizer

import (
	"go.uber.org/zap"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/torsiondb"
)

//Options contains the parameters of the relaxation. The zero value is not useful,
//use DefaultOptions to obtain an Options and then change what is needed.
type Options struct {
	cycles           int     //outer cycles per phase. Each has atoms^2 rule applications.
	startFactor      float64 //step factor at the beginning of a phase
	targetFactor     float64 //step factor at the end of a phase
	maxAtomStrain    float64 //acceptance: strain of the most strained atom
	meanStrain       float64 //acceptance: total strain divided by the number of atoms
	breakoutStrain   float64 //atoms over this strain get jittered in a breakout
	jitter           float64 //in A
	breakouts        int
	retries          int
	disableThreshold float64 //strain over which torsion rules give up
	maxPool          int
	poolTolerance    float64 //degrees
	poolAttempts     int
	seed             int64
	logger           *zap.Logger
	geometry         chem.Geometry
	torsions         torsiondb.Provider
}

//DefaultOptions returns reasonable options for molecules of up to a few hundred atoms.
func DefaultOptions() *Options {
	return &Options{
		cycles:           40,
		startFactor:      1.0,
		targetFactor:     0.02,
		maxAtomStrain:    0.1,
		meanStrain:       0.02,
		breakoutStrain:   0.1,
		jitter:           0.5,
		breakouts:        3,
		retries:          5,
		disableThreshold: 0.2,
		maxPool:          64,
		poolTolerance:    20,
		poolAttempts:     12,
		geometry:         chem.DefaultGeometry{},
		torsions:         torsiondb.Default(),
	}
}

//Copy returns a copy of the options.
func (O *Options) Copy() *Options {
	r := *O
	return &r
}

//Cycles returns the number of outer cycles per phase, and sets it to a new value, if given.
func (O *Options) Cycles(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.cycles = n[0]
	}
	return O.cycles
}

//Factors returns the start and target step factors of each phase. If two values are given,
//they are set as the new start and target factors.
func (O *Options) Factors(f ...float64) (float64, float64) {
	if len(f) > 1 && f[0] > 0 && f[1] > 0 && f[1] <= f[0] {
		O.startFactor = f[0]
		O.targetFactor = f[1]
	}
	return O.startFactor, O.targetFactor
}

//MaxAtomStrain returns the largest strain of a single atom that an accepted conformer
//can have, and sets it to a new value, if given.
func (O *Options) MaxAtomStrain(s ...float64) float64 {
	if len(s) > 0 && s[0] > 0 {
		O.maxAtomStrain = s[0]
	}
	return O.maxAtomStrain
}

//MeanStrain returns the largest total strain per atom that an accepted conformer can
//have, and sets it to a new value, if given.
func (O *Options) MeanStrain(s ...float64) float64 {
	if len(s) > 0 && s[0] > 0 {
		O.meanStrain = s[0]
	}
	return O.meanStrain
}

//MaxBreakouts is the largest number of breakout rounds an attempt can have.
const MaxBreakouts = 3

//Breakouts returns the maximum number of breakout rounds per attempt, and sets it to a new value, if given.
//Values over MaxBreakouts are clamped to it.
func (O *Options) Breakouts(n ...int) int {
	if len(n) > 0 && n[0] >= 0 {
		O.breakouts = n[0]
		if O.breakouts > MaxBreakouts {
			O.breakouts = MaxBreakouts
		}
	}
	return O.breakouts
}

//Jitter returns the displacement, in A, of the atoms moved in a breakout round, and sets
//it, and the strain over which atoms are moved, to new values, if given.
func (O *Options) Jitter(j ...float64) float64 {
	if len(j) > 0 && j[0] > 0 {
		O.jitter = j[0]
	}
	if len(j) > 1 && j[1] > 0 {
		O.breakoutStrain = j[1]
	}
	return O.jitter
}

//Retries returns the number of full attempts made to obtain an accepted conformer, and sets
//it to a new value, if given.
func (O *Options) Retries(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.retries = n[0]
	}
	return O.retries
}

//DisableThreshold returns the strain of the atoms around a bond over which its torsion
//rule disables itself for the rest of an attempt, and sets it to a new value, if given.
func (O *Options) DisableThreshold(t ...float64) float64 {
	if len(t) > 0 && t[0] > 0 {
		O.disableThreshold = t[0]
	}
	return O.disableThreshold
}

//MaxPool returns the largest number of conformers in the pool, and sets it to a new value, if given.
func (O *Options) MaxPool(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.maxPool = n[0]
	}
	return O.maxPool
}

//PoolTolerance returns the largest difference, in degrees, between the torsions of two conformers
//that are considered the same, and sets it to a new value, if given.
func (O *Options) PoolTolerance(t ...float64) float64 {
	if len(t) > 0 && t[0] >= 0 {
		O.poolTolerance = t[0]
	}
	return O.poolTolerance
}

//PoolAttempts returns the number of consecutive repeated conformers after which the pool
//stops growing, and sets it to a new value, if given.
func (O *Options) PoolAttempts(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		O.poolAttempts = n[0]
	}
	return O.poolAttempts
}

//Seed returns the seed for the random number generator, and sets it to a new value, if given.
//A seed of 0 means a seed obtained from the clock.
func (O *Options) Seed(s ...int64) int64 {
	if len(s) > 0 {
		O.seed = s[0]
	}
	return O.seed
}

//Logger returns the logger used, and sets it to a new one, if given.
func (O *Options) Logger(l ...*zap.Logger) *zap.Logger {
	if len(l) > 0 && l[0] != nil {
		O.logger = l[0]
	}
	if O.logger == nil {
		return zap.NewNop()
	}
	return O.logger
}

//Geometry returns the geometry estimator used, and sets it to a new one, if given.
func (O *Options) Geometry(g ...chem.Geometry) chem.Geometry {
	if len(g) > 0 && g[0] != nil {
		O.geometry = g[0]
	}
	return O.geometry
}

//Torsions returns the provider of torsion statistics, and sets it to a new one, if given.
func (O *Options) Torsions(p ...torsiondb.Provider) torsiondb.Provider {
	if len(p) > 0 && p[0] != nil {
		O.torsions = p[0]
	}
	return O.torsions
}

/*
 * pool.go, part of goConf.
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
	"math"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"

	"github.com/rmera/goconf/chem"
)

//pool is a set of different conformers, each with its torsion descriptor.
type pool struct {
	size        int
	members     []*chem.Conformer
	descriptors [][]float64
	served      []bool
	repeated    int //consecutive repeated conformers
	exhausted   bool
}

//Descriptor returns the dihedral of each torsion rule in c, in degrees. Two conformers with
//similar descriptors are considered the same.
func (O *Organizer) Descriptor(c *chem.Conformer) []float64 {
	ret := make([]float64, len(O.torsions))
	for i, t := range O.torsions {
		q := t.Quad()
		ret[i] = c.Dihedral(q[0], q[1], q[2], q[3])
	}
	return ret
}

//descriptorDistance returns the largest absolute difference between the angles of two descriptors.
func descriptorDistance(a, b []float64) float64 {
	ret := 0.0
	for i := range a {
		ret = math.Max(ret, math.Abs(chem.AngleDiff(a[i], b[i])))
	}
	return ret
}

//PoolSize returns the number of conformers the pool can hold: 2 to the number of torsion rules,
//but not more than MaxPool.
func (O *Organizer) PoolSize() int {
	freedom := len(O.torsions)
	if freedom >= 30 {
		return O.opts.maxPool
	}
	if s := 1 << uint(freedom); s < O.opts.maxPool {
		return s
	}
	return O.opts.maxPool
}

//InitializeConformers starts a new pool of conformers. It returns false if the molecule
//has no atoms.
func (O *Organizer) InitializeConformers() bool {
	O.pool = &pool{size: O.PoolSize()}
	return O.mol.Len() > 0
}

//grow adds one conformer to the pool, unless it is a repetition. It returns true if the
//conformer was added.
func (O *Organizer) grow() bool {
	p := O.pool
	c := O.GenerateOneConformer()
	d := O.Descriptor(c)
	for _, o := range p.descriptors {
		if descriptorDistance(d, o) <= O.opts.poolTolerance {
			p.repeated++
			if p.repeated >= O.opts.poolAttempts {
				p.exhausted = true
			}
			return false
		}
	}
	p.repeated = 0
	p.members = append(p.members, c)
	p.descriptors = append(p.descriptors, d)
	p.served = append(p.served, false)
	if len(p.members) >= p.size {
		p.exhausted = true
	}
	return true
}

//NextConformer returns a conformer from the pool not returned before, growing the pool if needed.
//Among the unreturned conformers with a strain not much higher than the lowest one, the one most
//different from those already returned is chosen. It returns nil when the pool can't provide
//any new conformer. InitializeConformers is called if it was not called before.
func (O *Organizer) NextConformer() *chem.Conformer {
	if O.pool == nil {
		O.InitializeConformers()
	}
	p := O.pool
	//We try to have at least two unserved conformers to choose from.
	for !p.exhausted && p.unserved() < 2 {
		O.grow()
	}
	idx := p.pick()
	if idx < 0 {
		O.log.Debug("conformer pool exhausted", zap.String("molecule", O.mol.Name), zap.Int("members", len(p.members)))
		return nil
	}
	p.served[idx] = true
	return p.members[idx].Copy()
}

func (P *pool) unserved() int {
	n := 0
	for _, s := range P.served {
		if !s {
			n++
		}
	}
	return n
}

//pick returns the index of the next conformer to serve, or -1 if there is none.
func (P *pool) pick() int {
	lowest := math.Inf(1)
	for i, c := range P.members {
		if !P.served[i] && c.Strain < lowest {
			lowest = c.Strain
		}
	}
	if math.IsInf(lowest, 1) {
		return -1
	}
	limit := 2*lowest + 1e-3
	best, bestDist := -1, -1.0
	for i, c := range P.members {
		if P.served[i] || c.Strain > limit {
			continue
		}
		dist := math.Inf(1)
		for j := range P.members {
			if P.served[j] {
				dist = math.Min(dist, descriptorDistance(P.descriptors[i], P.descriptors[j]))
			}
		}
		//with nothing served yet, the least strained goes first.
		if math.IsInf(dist, 1) {
			dist = -c.Strain
		}
		if dist > bestDist || best < 0 {
			best, bestDist = i, dist
		}
	}
	return best
}

//PoolStats returns the number of conformers in the pool and the mean and standard deviation of their strains.
func (O *Organizer) PoolStats() (n int, mean, std float64) {
	if O.pool == nil || len(O.pool.members) == 0 {
		return 0, 0, 0
	}
	s := make([]float64, len(O.pool.members))
	for i, c := range O.pool.members {
		s[i] = c.Strain
	}
	if len(s) == 1 {
		return 1, s[0], 0
	}
	mean, std = stat.MeanStdDev(s, nil)
	return len(s), mean, std
}

/*
 * organizer.go, part of goConf.
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

//Package organizer builds 3D structures for molecules by repeatedly applying geometric
//rules, chosen at random, to a set of random starting coordinates. The step taken by each
//rule decreases exponentially over each phase of the process, and the torsion rules are only
//enabled once a rough structure has formed.
//
//An Organizer can produce a single conformer (GenerateOneConformer) or a pool of different
//ones, which are returned by increasing strain and decreasing similarity (NextConformer).
package organizer

import (
	"math"
	"math/rand"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/rules"
)

//Organizer builds conformers for one molecule. It is not safe for concurrent use.
type Organizer struct {
	mol      *chem.Molecule
	rules    []rules.Rule
	torsions []*rules.Torsion
	opts     *Options
	rand     *rand.Rand
	log      *zap.Logger
	strain   []float64
	trace    []float64
	pool     *pool
	enabled  []rules.Rule
}

//New returns an organizer for m, which should already have explicit hydrogens.
//If o is nil, DefaultOptions are used.
func New(m *chem.Molecule, o *Options) *Organizer {
	if o == nil {
		o = DefaultOptions()
	}
	seed := o.Seed()
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	ret := &Organizer{
		mol:    m,
		opts:   o,
		rand:   rand.New(rand.NewSource(seed)),
		log:    o.Logger(),
		strain: make([]float64, m.Len()),
	}
	ret.rules = rules.Build(m, o.Geometry(), o.Torsions())
	ret.torsions = rules.Torsions(ret.rules)
	ret.log.Debug("organizer ready", zap.String("molecule", m.Name), zap.Int("atoms", m.Len()),
		zap.Int("rules", len(ret.rules)), zap.Int("torsions", len(ret.torsions)))
	return ret
}

//Rules returns the rules used by the organizer. The slice should not be modified.
func (O *Organizer) Rules() []rules.Rule {
	return O.rules
}

//Molecule returns the molecule for which the organizer builds conformers.
func (O *Organizer) Molecule() *chem.Molecule {
	return O.mol
}

//Trace returns the total strain after each cycle of the last attempt.
func (O *Organizer) Trace() []float64 {
	return append([]float64(nil), O.trace...)
}

//randomStart returns a conformer with the atoms at random positions in a cube.
func (O *Organizer) randomStart() *chem.Conformer {
	c := chem.NewConformer(O.mol)
	n := float64(O.mol.Len())
	side := 1 + 2*math.Cbrt(n)
	for i := 0; i < O.mol.Len(); i++ {
		c.SetPos(i, r3.Vec{X: side * O.rand.Float64(), Y: side * O.rand.Float64(), Z: side * O.rand.Float64()})
	}
	return c
}

//setTorsions enables or disables all the torsion rules.
func (O *Organizer) setTorsions(enabled bool) {
	for _, t := range O.torsions {
		t.SetEnabled(enabled)
	}
}

//cycle applies atoms^2 rules, each drawn at random among the enabled ones, to c with
//the given step factor.
func (O *Organizer) cycle(c *chem.Conformer, factor float64) {
	O.enabled = O.enabled[:0]
	for _, r := range O.rules {
		if r.Enabled() {
			O.enabled = append(O.enabled, r)
		}
	}
	ne := len(O.enabled)
	if ne == 0 {
		return
	}
	n := O.mol.Len()
	for i := 0; i < n*n; i++ {
		O.enabled[O.rand.Intn(ne)].Apply(c, factor)
	}
}

//evaluate calculates the strain of c, records it in the trace, lets the torsion rules
//give up if they are fighting collisions, and returns whether c can be accepted.
func (O *Organizer) evaluate(c *chem.Conformer) bool {
	total := rules.Strain(O.rules, c, O.strain)
	O.trace = append(O.trace, total)
	c.Strain = total
	for _, t := range O.torsions {
		if t.Enabled() {
			t.DisableIfColliding(O.strain, O.opts.disableThreshold)
		}
	}
	return O.accepted(total)
}

func (O *Organizer) accepted(total float64) bool {
	return floats.Max(O.strain) < O.opts.maxAtomStrain && total < O.opts.meanStrain*float64(O.mol.Len())
}

//phase runs cycles outer cycles on c with a step factor that decays exponentially from start
//to target. If check is true, the conformer is evaluated after each cycle and the phase ends
//as soon as it can be accepted. It returns whether c was accepted.
func (O *Organizer) phase(c *chem.Conformer, cycles int, start, target float64, check bool) bool {
	k := 0.0
	if cycles > 1 {
		k = math.Log(start/target) / float64(cycles-1)
	}
	for i := 0; i < cycles; i++ {
		O.cycle(c, start*math.Exp(-k*float64(i)))
		if check && O.evaluate(c) {
			return true
		}
	}
	return false
}

//breakOut displaces the atoms with a strain over the breakout threshold in random directions.
//It returns the number of atoms moved.
func (O *Organizer) breakOut(c *chem.Conformer) int {
	moved := 0
	for i, s := range O.strain {
		if s <= O.opts.breakoutStrain {
			continue
		}
		v := r3.Vec{X: O.rand.NormFloat64(), Y: O.rand.NormFloat64(), Z: O.rand.NormFloat64()}
		if r3.Norm(v) < 1e-8 {
			continue
		}
		c.Move([]int{i}, r3.Scale(O.opts.jitter, r3.Unit(v)))
		moved++
	}
	return moved
}

//attempt runs the whole relaxation once from random coordinates, and returns the conformer
//and whether it was accepted.
func (O *Organizer) attempt() (*chem.Conformer, bool) {
	c := O.randomStart()
	O.trace = O.trace[:0]
	if len(O.rules) == 0 {
		return c, true
	}
	o := O.opts
	cycles := o.cycles
	start, target := o.startFactor, o.targetFactor
	//Preparation
	O.setTorsions(false)
	O.phase(c, cycles, start, target, false)
	//PreOptimization
	O.setTorsions(true)
	if O.phase(c, cycles, start, target, true) {
		return c, true
	}
	//BreakOut
	for i := 0; i < o.breakouts; i++ {
		if O.breakOut(c) == 0 {
			break
		}
		if O.phase(c, cycles/2+1, start/2, target, true) {
			return c, true
		}
	}
	//Optimization
	if O.phase(c, cycles, start/2, target/4, true) {
		return c, true
	}
	//Minimization
	if O.phase(c, cycles, target, target/10, true) {
		return c, true
	}
	return c, false
}

//Polish applies the given number of cycles with all the rules enabled at the target step factor
//to a copy of c. The copy replaces the coordinates of c only if it has a lower strain.
//It returns the strain of c.
func (O *Organizer) Polish(c *chem.Conformer, cycles int) float64 {
	if len(O.rules) == 0 {
		return c.Strain
	}
	O.setTorsions(true)
	before := rules.Strain(O.rules, c, O.strain)
	p := c.Copy()
	for i := 0; i < cycles; i++ {
		O.cycle(p, O.opts.targetFactor)
	}
	after := rules.Strain(O.rules, p, O.strain)
	c.Strain = before
	if after < before {
		c.CopyFrom(p)
		c.Strain = after
	}
	return c.Strain
}

//GenerateOneConformer returns the least strained of up to Retries conformers, stopping
//at the first accepted one. If none is accepted, the returned conformer has a BestEffort outcome.
func (O *Organizer) GenerateOneConformer() *chem.Conformer {
	var best *chem.Conformer
	for try := 0; try < O.opts.retries; try++ {
		c, ok := O.attempt()
		if len(O.rules) > 0 {
			c.Strain = rules.Strain(O.rules, c, O.strain)
		}
		O.log.Debug("relaxation attempt", zap.String("molecule", O.mol.Name), zap.Int("try", try),
			zap.Float64("strain", c.Strain), zap.Bool("accepted", ok), zap.Int("cycles", len(O.trace)))
		if ok {
			c.Outcome = chem.Accepted
			return c
		}
		if best == nil || c.Strain < best.Strain {
			best = c
		}
	}
	best.Outcome = chem.BestEffort
	O.log.Debug("relaxation exhausted", zap.String("molecule", O.mol.Name), zap.Float64("strain", best.Strain))
	return best
}

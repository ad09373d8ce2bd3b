/*
 * organizer_test.go, part of goConf.
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
	"testing"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/rules"
)

func chain(symbols ...string) *chem.Molecule {
	m := chem.NewMolecule("chain")
	for i, s := range symbols {
		m.AddAtom(s, 0)
		if i > 0 {
			m.AddBond(i-1, i, 1)
		}
	}
	m.AddHydrogens()
	return m
}

func fastOptions(seed int64) *Options {
	o := DefaultOptions()
	o.Seed(seed)
	o.Cycles(20)
	o.Retries(2)
	o.PoolAttempts(4)
	return o
}

func TestGenerateOneConformer(Te *testing.T) {
	m := chain("C", "C")
	o := New(m, fastOptions(3))
	c := o.GenerateOneConformer()
	if c == nil || c.Len() != m.Len() {
		Te.Fatalf("Expected a conformer with %d atoms", m.Len())
	}
	if c.Strain < 0 || math.IsNaN(c.Strain) {
		Te.Errorf("Invalid strain %v", c.Strain)
	}
	ideal := chem.DefaultGeometry{}.BondLength(m, 0)
	if d := c.Distance(0, 1); math.Abs(d-ideal) > 0.15 {
		Te.Errorf("C-C distance %v too far from %v", d, ideal)
	}
	if len(o.Trace()) == 0 {
		Te.Errorf("The strain trace should not be empty")
	}
	if c.Outcome == chem.Accepted && rules.Strain(o.Rules(), c, nil) >= o.opts.meanStrain*float64(m.Len()) {
		Te.Errorf("Accepted conformers should pass the strain test")
	}
}

func TestDeterminism(Te *testing.T) {
	m := chain("C", "O")
	c1 := New(m, fastOptions(42)).GenerateOneConformer()
	c2 := New(m, fastOptions(42)).GenerateOneConformer()
	for i := 0; i < m.Len(); i++ {
		if c1.Pos(i) != c2.Pos(i) {
			Te.Fatalf("Same seeds should give identical conformers, atom %d: %v vs %v", i, c1.Pos(i), c2.Pos(i))
		}
	}
}

func TestStereoCenter(Te *testing.T) {
	m := chem.NewMolecule("CHFClBr")
	m.AddAtom("C", 0)
	for _, s := range []string{"F", "Cl", "Br", "H"} {
		m.AddBond(0, m.AddAtom(s, 0), 1)
	}
	m.Atoms[0].Parity = chem.ParityOdd
	o := New(m, fastOptions(11))
	if rules.Count(o.Rules())[rules.KindStereo] != 1 {
		Te.Fatalf("Expected one stereo rule")
	}
	c := o.GenerateOneConformer()
	if c.Outcome == chem.Accepted {
		if p := chem.ParityFromCoords(m, c.Coords, 0); p != chem.ParityOdd {
			Te.Errorf("Accepted conformer with the wrong parity %s", p)
		}
	}
}

func TestPool(Te *testing.T) {
	m := chain("C", "C", "C", "C")
	o := New(m, fastOptions(5))
	if o.PoolSize() != 2 {
		Te.Errorf("Butane should have a pool of 2, got %d", o.PoolSize())
	}
	if !o.InitializeConformers() {
		Te.Fatalf("Could not initialize conformers")
	}
	var got []*chem.Conformer
	for c := o.NextConformer(); c != nil; c = o.NextConformer() {
		got = append(got, c)
		if len(got) > o.PoolSize() {
			Te.Fatalf("More conformers than the pool size")
		}
	}
	if len(got) == 0 {
		Te.Fatalf("The pool should provide at least one conformer")
	}
	for i := 1; i < len(got); i++ {
		if descriptorDistance(o.Descriptor(got[0]), o.Descriptor(got[i])) <= o.opts.PoolTolerance() {
			Te.Errorf("Conformers from the pool should be different")
		}
	}
	if n, mean, _ := o.PoolStats(); n != len(got) || mean < 0 {
		Te.Errorf("Wrong pool statistics %d %v", n, mean)
	}
}

func TestPick(Te *testing.T) {
	m := chain("O")
	p := &pool{size: 3}
	desc := []float64{100, 0, 160}
	for i, s := range []float64{0.3, 0.1, 0.15} {
		c := chem.NewConformer(m)
		c.Strain = s
		p.members = append(p.members, c)
		p.descriptors = append(p.descriptors, []float64{desc[i]})
		p.served = append(p.served, false)
	}
	if i := p.pick(); i != 1 {
		Te.Errorf("The least strained should go first, got %d", i)
	}
	p.served[1] = true
	//0 is 100 degrees away from 1, 2 is 160 degrees away, and both are within twice the lowest strain.
	if i := p.pick(); i != 2 {
		Te.Errorf("The most different should go next, got %d", i)
	}
	p.served[2] = true
	p.pick()
	p.served[0] = true
	if p.pick() != -1 {
		Te.Errorf("Nothing left to pick")
	}
}

//counted wraps a rule and counts how many times it is applied.
type counted struct {
	rules.Rule
	applied *int
}

func (C counted) Apply(c *chem.Conformer, factor float64) bool {
	*C.applied++
	return C.Rule.Apply(c, factor)
}

func TestCycleDrawsEnabledRules(Te *testing.T) {
	m := chain("C", "C", "C", "C")
	o := New(m, fastOptions(8))
	var on, off int
	for i, r := range o.rules {
		if r.Kind() == rules.KindTorsion {
			o.rules[i] = counted{Rule: r, applied: &off}
		} else {
			o.rules[i] = counted{Rule: r, applied: &on}
		}
	}
	if len(o.torsions) == 0 {
		Te.Fatalf("Butane should have torsion rules")
	}
	o.setTorsions(false)
	o.cycle(o.randomStart(), 1)
	if off != 0 {
		Te.Errorf("Disabled rules were applied %d times", off)
	}
	if n := m.Len() * m.Len(); on != n {
		Te.Errorf("Expected %d rule applications per cycle, got %d", n, on)
	}
	for _, r := range o.rules {
		r.SetEnabled(false)
	}
	on = 0
	o.cycle(o.randomStart(), 1)
	if on != 0 || off != 0 {
		Te.Errorf("No rule should be applied when all are disabled")
	}
}

func TestBreakouts(Te *testing.T) {
	o := DefaultOptions()
	if o.Breakouts() != MaxBreakouts {
		Te.Errorf("Expected %d breakouts by default, got %d", MaxBreakouts, o.Breakouts())
	}
	if n := o.Breakouts(10); n != MaxBreakouts {
		Te.Errorf("Breakouts should be clamped to %d, got %d", MaxBreakouts, n)
	}
	if n := o.Breakouts(1); n != 1 {
		Te.Errorf("Expected 1 breakout, got %d", n)
	}
	if n := o.Breakouts(-1); n != 1 {
		Te.Errorf("Negative values should be ignored, got %d", n)
	}
}

func TestPolish(Te *testing.T) {
	m := chain("C", "C", "O")
	opts := fastOptions(13)
	opts.Cycles(1)
	opts.Retries(1)
	o := New(m, opts)
	c := o.GenerateOneConformer()
	o.setTorsions(true)
	before := rules.Strain(o.Rules(), c, nil)
	orig := c.Copy()
	after := o.Polish(c, 20)
	if after > before {
		Te.Errorf("Polishing should never raise the strain: %v -> %v", before, after)
	}
	if math.Abs(after-rules.Strain(o.Rules(), c, nil)) > 1e-9 {
		Te.Errorf("Polish should return the strain of the conformer")
	}
	if after == before {
		for i := 0; i < m.Len(); i++ {
			if c.Pos(i) != orig.Pos(i) {
				Te.Fatalf("A conformer that didn't improve should not be modified")
			}
		}
	}
	if c.Outcome == chem.BestEffort && after >= before {
		Te.Errorf("A loosely relaxed conformer should improve after polishing: %v -> %v", before, after)
	}
}

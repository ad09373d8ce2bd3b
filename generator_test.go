/*
 * generator_test.go, part of goConf.
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
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/clash"
	"github.com/rmera/goconf/torsionset"
)

func chain(name string, symbols ...string) *chem.Molecule {
	m := chem.NewMolecule(name)
	for i, s := range symbols {
		m.AddAtom(s, 0)
		if i > 0 {
			m.AddBond(i-1, i, 1)
		}
	}
	return m
}

func fastOptions(seed int64) *Options {
	o := DefaultOptions()
	o.Seed(seed)
	org := o.Organizer()
	org.Cycles(20)
	org.Retries(2)
	org.PoolAttempts(4)
	o.MaxConformers(2)
	o.MaxAttempts(200)
	return o
}

type countingObserver struct {
	generated, proposed, collided, learned, rejected int
	paths                                            map[string]int
}

func (C *countingObserver) Generated(path string, o chem.Outcome, attempts int) {
	C.generated++
	if C.paths == nil {
		C.paths = make(map[string]int)
	}
	C.paths[path]++
}
func (C *countingObserver) Proposed()      { C.proposed++ }
func (C *countingObserver) Collided()      { C.collided++ }
func (C *countingObserver) Learned(n int)  { C.learned += n }
func (C *countingObserver) Rejected(n int) { C.rejected += n }

func TestRelaxationOnly(Te *testing.T) {
	m := chem.NewMolecule("benzene")
	for i := 0; i < 6; i++ {
		m.AddAtom("C", 0)
	}
	for i := 0; i < 6; i++ {
		m.AddBond(i, (i+1)%6, 4)
	}
	obs := &countingObserver{}
	o := fastOptions(3)
	o.Observer(obs)
	g := New(o)
	require.True(Te, g.InitializeConformers(m, torsionset.AdaptiveRandom))
	assert.Equal(Te, 12, m.Len(), "hydrogens should have been added")
	assert.Nil(Te, g.RotatableBonds())
	assert.Nil(Te, g.Fragments())
	assert.Nil(Te, g.Strategy())
	c := g.NextConformer(nil)
	require.NotNil(Te, c)
	assert.Equal(Te, 12, c.Len())
	assert.Equal(Te, 1.0, g.PreviousConformerContribution())
	assert.Nil(Te, g.NextConformer(nil), "a rigid ring has a single conformer")
	assert.Equal(Te, 1, obs.paths[PathRelax])
	assert.Zero(Te, obs.proposed)
}

func TestStructureError(Te *testing.T) {
	m := chem.NewMolecule("pentavalent")
	m.AddAtom("C", 0)
	for i := 0; i < 5; i++ {
		m.AddBond(0, m.AddAtom("Cl", 0), 1)
	}
	g := New(fastOptions(1))
	assert.False(Te, g.InitializeConformers(m, torsionset.Random))
	var serr chem.StructureError
	assert.True(Te, errors.As(g.Err(), &serr))
	assert.Nil(Te, g.NextConformer(nil))
	c, err := g.OneConformer(m)
	assert.Nil(Te, c)
	assert.True(Te, errors.As(err, &serr))
	assert.Nil(Te, m.Coords)
}

func TestDeterminism(Te *testing.T) {
	run := func() ([]*chem.Conformer, []float64) {
		g := New(fastOptions(42))
		require.True(Te, g.InitializeConformers(chain("pentane", "C", "C", "C", "C", "C"), torsionset.AdaptiveRandom))
		var confs []*chem.Conformer
		var contribs []float64
		for i := 0; i < 3; i++ {
			c := g.NextConformer(nil)
			if c == nil {
				break
			}
			confs = append(confs, c)
			contribs = append(contribs, g.PreviousConformerContribution())
		}
		return confs, contribs
	}
	c1, l1 := run()
	c2, l2 := run()
	require.NotEmpty(Te, c1)
	require.Equal(Te, len(c1), len(c2))
	assert.Equal(Te, l1, l2)
	for i := range c1 {
		assert.True(Te, mat.Equal(c1[i].Coords, c2[i].Coords), "conformer %d differs", i)
		assert.Equal(Te, c1[i].Torsions, c2[i].Torsions)
	}
}

func TestTorsionPath(Te *testing.T) {
	m := chain("pentane", "C", "C", "C", "C", "C")
	obs := &countingObserver{}
	o := fastOptions(5)
	o.Observer(obs)
	g := New(o)
	require.True(Te, g.InitializeConformers(m, torsionset.BiasedRandom))
	require.Len(Te, g.RotatableBonds(), 2)
	require.Len(Te, g.Fragments(), 3)
	assert.Len(Te, m.RotatableBonds(), 2)
	det := clash.New(m, nil, g.decomp.Assignment())
	geom := chem.DefaultGeometry{}
	for n := 0; n < 5; n++ {
		c := g.NextConformer(m)
		if c == nil {
			break
		}
		require.Len(Te, c.Torsions, 2)
		assert.Greater(Te, g.PreviousConformerContribution(), 0.0)
		assert.LessOrEqual(Te, g.PreviousConformerContribution(), 1.0)
		assert.Equal(Te, c.Likelihood, g.PreviousConformerContribution())
		require.NotNil(Te, m.Coords)
		assert.True(Te, mat.Equal(m.Coords, c.Coords))
		if c.Outcome != chem.Accepted {
			continue
		}
		for i := 0; i < m.Len(); i++ {
			for j := i + 1; j < m.Len(); j++ {
				if det.Skipped(i, j) {
					continue
				}
				assert.GreaterOrEqual(Te, c.Distance(i, j), chem.MinDistance(geom, m, i, j)-1e-6,
					"atoms %d and %d collide", i, j)
			}
		}
	}
	assert.Equal(Te, obs.generated, obs.paths[PathTorsion])
	assert.GreaterOrEqual(Te, obs.proposed, obs.generated)
}

func TestEliminationSoundness(Te *testing.T) {
	m := chain("hexane", "C", "C", "C", "C", "C", "C")
	o := fastOptions(9)
	o.MaxConformers(1)
	g := New(o)
	require.True(Te, g.InitializeConformers(m, torsionset.LikelySystematic))
	for c := g.NextConformer(nil); c != nil; c = g.NextConformer(nil) {
	}
	store := g.Strategy().Store()
	counts := make([]int, len(g.RotatableBonds()))
	for i, b := range g.RotatableBonds() {
		counts[i] = b.Len()
	}
	confs := make([]int, len(g.Fragments()))
	idx := make([]int, len(counts))
	for {
		c := g.asm.Materialize(idx, confs)
		if !g.det.Detect(c).Collides() {
			assert.False(Te, store.Eliminated(g.enc.Encode(idx, confs)), "collision-free set %v eliminated", idx)
		}
		//next index vector
		i := 0
		for ; i < len(idx); i++ {
			idx[i]++
			if idx[i] < counts[i] {
				break
			}
			idx[i] = 0
		}
		if i == len(idx) {
			break
		}
	}
}

func TestSeparateMolecules(Te *testing.T) {
	m := chain("two ethanols", "C", "C", "O")
	m.AddAtom("C", 0)
	m.AddAtom("C", 0)
	m.AddAtom("O", 0)
	m.AddBond(3, 4, 1)
	m.AddBond(4, 5, 1)
	o := fastOptions(2)
	o.Gap(3)
	g := New(o)
	c, err := g.OneConformer(m)
	require.NoError(Te, err)
	comps := m.Components(nil)
	require.Len(Te, comps, 2)
	_, max0 := c.Bounds(comps[0])
	min1, _ := c.Bounds(comps[1])
	assert.GreaterOrEqual(Te, min1.X+1e-9, max0.X+3)
}

func TestOneConformer(Te *testing.T) {
	m := chain("ethanol", "C", "C", "O")
	added := AddHydrogenAtoms(m)
	assert.Equal(Te, 6, added)
	g := New(fastOptions(4))
	c, err := g.OneConformer(m)
	require.NoError(Te, err)
	require.NotNil(Te, m.Coords)
	assert.Equal(Te, m.Len(), m.Coords.NVecs())
	assert.Len(Te, c.Torsions, 1)
	assert.Zero(Te, AddHydrogenAtoms(m))
	other := chain("methanol", "C", "O")
	assert.NotNil(Te, g.NextConformer(other), "a mismatching molecule is not written but the conformer is returned")
	assert.Nil(Te, other.Coords)
}

func TestBestEffort(Te *testing.T) {
	m := chain("pentane", "C", "C", "C", "C", "C")
	obs := &countingObserver{}
	o := fastOptions(6)
	o.Observer(obs)
	o.MaxAttempts(40)
	g := New(o)
	require.True(Te, g.InitializeConformers(m, torsionset.AdaptiveRandom))
	require.NotNil(Te, g.Strategy())
	//every pair of atoms far enough apart to be checked now collides
	g.det.Slack = -3
	c := g.NextConformer(nil)
	require.NotNil(Te, c, "a best-effort conformer should be returned")
	assert.Equal(Te, chem.BestEffort, c.Outcome)
	assert.Greater(Te, c.Intensity, 0.0)
	assert.Equal(Te, obs.proposed, obs.collided, "all the sets tried should collide")
	assert.Greater(Te, obs.proposed, 0)
	for _, f := range g.fallbacks {
		assert.LessOrEqual(Te, c.Intensity, f.intensity, "the fallback should be the least colliding set")
	}
	assert.InDelta(Te, c.Intensity, g.det.Detect(c).Intensity, 1e-6)
	assert.Greater(Te, g.PreviousConformerContribution(), 0.0)
	assert.Nil(Te, g.NextConformer(nil), "the fallback is used only once")
	assert.Equal(Te, 1, obs.generated)
}

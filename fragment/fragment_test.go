/*
 * fragment_test.go, part of goConf.
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

package fragment

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/rmera/goconf/chem"
	"github.com/rmera/goconf/clash"
	"github.com/rmera/goconf/organizer"
	"github.com/rmera/goconf/rules"
)

func chain(name string, symbols ...string) *chem.Molecule {
	m := chem.NewMolecule(name)
	for i, s := range symbols {
		m.AddAtom(s, 0)
		if i > 0 {
			m.AddBond(i-1, i, 1)
		}
	}
	m.AddHydrogens()
	return m
}

func fastProvider() *SelfOrganizedProvider {
	o := organizer.DefaultOptions()
	o.Seed(1)
	o.Cycles(20)
	o.Retries(2)
	o.PoolAttempts(4)
	return NewSelfOrganizedProvider(o, 2)
}

func assemble(Te *testing.T, m *chem.Molecule, p Provider) (*Decomposition, *Assembler) {
	d := Decompose(m, nil)
	require.NoError(Te, d.Populate(p))
	return d, NewAssembler(d)
}

func TestHydrogenPeroxide(Te *testing.T) {
	m := chain("HOOH", "O", "O")
	d, asm := assemble(Te, m, fastProvider())
	require.Len(Te, d.Fragments, 2)
	require.Len(Te, d.Bonds, 1)
	b := d.Bonds[0]
	assert.Equal(Te, "O.3:O.3", b.ID)
	assert.True(Te, b.Found)
	det := clash.New(m, nil, d.Assignment())
	base := asm.Base([]int{0, 0})
	b.ConnectFragments(base, det, d.Fragments[b.Fragment1].Core, d.Fragments[b.Fragment2].Core, 0)
	assert.Equal(Te, []float64{110, 250}, b.Torsions)
	for _, l := range b.Likelihoods {
		assert.Greater(Te, l, 0.0)
	}
	assert.InDelta(Te, 1.0, floats.Sum(b.Likelihoods), 1e-4)
	for i, target := range b.Torsions {
		c := asm.Materialize([]int{i}, []int{0, 0})
		assert.InDelta(Te, 0, chem.AngleDiff(b.Dihedral(c), target), 1e-6)
		assert.InDelta(Te, target, c.Torsions[0], 1e-6)
	}
}

func TestButane(Te *testing.T) {
	m := chain("butane", "C", "C", "C", "C")
	d, asm := assemble(Te, m, fastProvider())
	require.Len(Te, d.Fragments, 2)
	require.Len(Te, d.Bonds, 1)
	b := d.Bonds[0]
	assert.Equal(Te, "C.3:C.3", b.ID)
	assert.Len(Te, b.Torsions, 3)
	assert.Len(Te, b.Smaller, 7)
	assert.Equal(Te, FragmentIndex(0), d.Roots[0])
	assert.Equal(Te, BondIndex(-1), d.Parent(0))
	assert.Equal(Te, BondIndex(0), d.Parent(1))
	f1, f2 := d.Fragments[b.Fragment1], d.Fragments[b.Fragment2]
	assert.True(Te, f1.IsCore(b.Atoms[1]))
	assert.True(Te, f2.IsCore(b.Atoms[2]))
	assert.GreaterOrEqual(Te, f1.Row(b.Atoms[2]), 0, "the bond partner should be an extended atom")
	assert.Equal(Te, -1, f1.Row(b.Atoms[3]))
	lengths := make([]float64, 0, 3)
	for i, target := range b.Torsions {
		c := asm.Materialize([]int{i}, []int{0, 0})
		assert.InDelta(Te, 0, chem.AngleDiff(b.Dihedral(c), target), 1e-6)
		lengths = append(lengths, c.Distance(b.Atoms[1], b.Atoms[2]))
		//the fragments stay rigid
		for _, f := range d.Fragments {
			local := f.Conformers[0].Coords
			for _, i := range f.Core {
				for _, j := range f.Core {
					dl := r3.Norm(r3.Sub(local.Vec(f.Row(i)), local.Vec(f.Row(j))))
					assert.InDelta(Te, dl, c.Distance(i, j), 1e-6)
				}
			}
		}
	}
	assert.InDelta(Te, lengths[0], lengths[1], 1e-9)
	assert.InDelta(Te, lengths[0], lengths[2], 1e-9)
}

func TestPath(Te *testing.T) {
	m := chain("pentane", "C", "C", "C", "C", "C")
	d := Decompose(m, nil)
	require.Len(Te, d.Fragments, 3)
	require.Len(Te, d.Bonds, 2)
	bonds, frags := d.Path(0, 2)
	assert.ElementsMatch(Te, []BondIndex{0, 1}, bonds)
	assert.ElementsMatch(Te, []FragmentIndex{0, 1, 2}, frags)
	bonds, frags = d.Path(2, 1)
	assert.ElementsMatch(Te, []BondIndex{1}, bonds)
	assert.ElementsMatch(Te, []FragmentIndex{1, 2}, frags)
	for i, b := range d.Bonds {
		assert.Equal(Te, BondIndex(i), b.Index)
		if i > 0 {
			assert.Equal(Te, d.Bonds[i-1].Fragment2, b.Fragment1, "parents go first")
		}
	}
}

func TestDisconnected(Te *testing.T) {
	m := chain("two butanes", "C", "C", "C", "C")
	first := m.Len()
	for i := 0; i < 4; i++ {
		m.AddAtom("C", 0)
		if i > 0 {
			m.AddBond(first+i-1, first+i, 1)
		}
	}
	m.AddHydrogens()
	d := Decompose(m, nil)
	assert.Len(Te, d.Roots, 2)
	assert.Len(Te, d.Bonds, 2)
	bonds, frags := d.Path(d.Roots[0], d.Roots[1])
	assert.Empty(Te, bonds)
	assert.Len(Te, frags, 2)
}

func TestRigid(Te *testing.T) {
	m := chem.NewMolecule("benzene")
	for i := 0; i < 6; i++ {
		m.AddAtom("C", 0)
	}
	for i := 0; i < 6; i++ {
		m.AddBond(i, (i+1)%6, 4)
	}
	m.AddHydrogens()
	d := Decompose(m, nil)
	assert.Len(Te, d.Fragments, 1)
	assert.Empty(Te, d.Bonds)
	assert.Equal(Te, d.Fragments[0].Core, d.Fragments[0].Extended)
}

func TestProviderCache(Te *testing.T) {
	p := fastProvider()
	m1 := chain("ethanol", "C", "C", "O")
	m2 := chain("ethanol", "C", "C", "O")
	_, _ = assemble(Te, m1, p)
	_, misses := p.Stats()
	_, _ = assemble(Te, m2, p)
	hits, misses2 := p.Stats()
	assert.Equal(Te, misses, misses2, "identical fragments should not be relaxed again")
	assert.Equal(Te, misses, hits)
	for _, f := range Decompose(m2, nil).Fragments {
		confs, err := p.LocalConformers(m2, f)
		require.NoError(Te, err)
		l := 0.0
		for _, c := range confs {
			assert.Equal(Te, len(f.Extended), c.Coords.NVecs())
			l += c.Likelihood
		}
		assert.InDelta(Te, 1.0, l, 1e-9)
	}
}

func TestLocalStrain(Te *testing.T) {
	p := fastProvider()
	m := chain("diethyl ether", "C", "C", "O", "C", "C")
	for _, f := range Decompose(m, nil).Fragments {
		confs, err := p.LocalConformers(m, f)
		require.NoError(Te, err)
		sub := f.Molecule(m)
		rs := organizer.New(sub, p.opts).Rules()
		for _, lc := range confs {
			c := chem.NewConformer(sub)
			c.Coords.Copy(lc.Coords.Dense)
			assert.InDelta(Te, rules.Strain(rs, c, nil), lc.Strain, 1e-9, "the cached strain should be that of the cached coordinates")
		}
	}
}

func TestNormalize(Te *testing.T) {
	r := &RotatableBond{
		Torsions:    []float64{60, 180, 300},
		Likelihoods: []float64{0, 0, 0},
		Strains:     []float64{3, 1, 2},
	}
	r.normalize()
	assert.Equal(Te, []float64{0, 1, 0}, r.Likelihoods)
	r.Likelihoods = []float64{1, 3, math.NaN()}
	r.normalize()
	assert.Equal(Te, []float64{0.25, 0.75, 0}, r.Likelihoods)
	assert.True(Te, r.has(359.5+180.7))
	assert.False(Te, r.has(120))
}

/*
 * torsiondb_test.go, part of goConf.
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

package torsiondb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rmera/goconf/chem"
)

func TestDefaultTable(Te *testing.T) {
	db := Default()
	require.NotNil(Te, db)
	assert.Greater(Te, db.Len(), 10)
	assert.Same(Te, db, Default())

	for _, id := range db.IDs() {
		e, ok := db.Lookup(id)
		require.True(Te, ok, id)
		assert.Equal(Te, e.Len(), len(e.Frequencies), id)
		assert.Equal(Te, e.Len(), len(e.Ranges), id)
		for i, tor := range e.Torsions {
			assert.True(Te, tor >= 0 && tor < 360, "%s: torsion %v out of range", id, tor)
			r := e.Ranges[i]
			assert.LessOrEqual(Te, r[0], r[1], id)
		}
	}
}

func TestLookup(Te *testing.T) {
	db := Default()
	e, ok := db.Lookup("O.3:O.3")
	require.True(Te, ok)
	assert.Equal(Te, []float64{110, 250}, e.Torsions)

	//the order of the atom types doesn't matter
	a, ok1 := db.Lookup("C.ar:C.3")
	b, ok2 := db.Lookup("C.3:C.ar")
	require.True(Te, ok1)
	require.True(Te, ok2)
	assert.Equal(Te, a, b)

	//entries are copies
	a.Torsions[0] = 1
	c, _ := db.Lookup("C.3:C.ar")
	assert.NotEqual(Te, 1.0, c.Torsions[0])

	_, ok = db.Lookup("Xx.3:Yy.3")
	assert.False(Te, ok)
}

func TestParse(Te *testing.T) {
	db, err := Parse([]byte("C.3:C.3:\n  torsions: [60, 180, -60]\n"))
	require.NoError(Te, err)
	e, ok := db.Lookup("C.3:C.3")
	require.True(Te, ok)
	assert.Equal(Te, []float64{60, 180, 300}, e.Torsions)
	assert.Equal(Te, []float64{1, 1, 1}, e.Frequencies)
	assert.Equal(Te, [2]float64{160, 200}, e.Ranges[1])

	_, err = Parse([]byte("C.3:C.3:\n  torsions: [60, 180]\n  frequencies: [1]\n"))
	assert.Error(Te, err)
	_, err = Parse([]byte("C.3:C.3:\n  torsions: []\n"))
	assert.Error(Te, err)
	_, err = Parse([]byte("C.3:C.3: [\n"))
	assert.Error(Te, err)
}

func chain(symbols ...string) *chem.Molecule {
	m := chem.NewMolecule("chain")
	for i, s := range symbols {
		m.AddAtom(s, 0)
		if i > 0 {
			m.AddBond(i-1, i, 1)
		}
	}
	return m
}

func TestBondID(Te *testing.T) {
	hooh := chain("O", "O")
	hooh.AddHydrogens()
	assert.Equal(Te, "O.3:O.3", BondID(hooh, 0))

	//toluene-like: methyl on benzene
	m := chem.NewMolecule("toluene")
	for i := 0; i < 7; i++ {
		m.AddAtom("C", 0)
	}
	for i := 0; i < 6; i++ {
		m.AddBond(i, (i+1)%6, 4)
	}
	b := m.AddBond(0, 6, 1)
	assert.Equal(Te, "C.3:C.ar", BondID(m, b))

	e, found := ForBond(Default(), hooh, 0)
	assert.True(Te, found)
	assert.Equal(Te, 2, e.Len())
}

func TestPredict(Te *testing.T) {
	m := chain("Ge", "Ge", "Ge")
	m.AddHydrogens()
	e, found := ForBond(Default(), m, 0)
	assert.False(Te, found)
	require.NotNil(Te, e)
	assert.Equal(Te, []float64{60, 180, 300}, e.Torsions)
	assert.Len(Te, e.Ranges, 3)
}

/*
 * chem_test.go, part of goConf.
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

package chem

import (
	"bytes"
	"errors"
	"math"
	"strings"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/goconf/v3"
)

//build returns a molecule with the given atoms and bonds, each bond given as {at1, at2, order}.
func build(symbols []string, bonds [][3]int) *Molecule {
	m := NewMolecule("test")
	for _, s := range symbols {
		m.AddAtom(s, 0)
	}
	for _, b := range bonds {
		m.AddBond(b[0], b[1], b[2])
	}
	return m
}

func benzene() *Molecule {
	return build([]string{"C", "C", "C", "C", "C", "C"}, [][3]int{{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 4, 1}, {4, 5, 2}, {5, 0, 1}})
}

func TestRings(Te *testing.T) {
	m := benzene()
	if len(m.Rings()) != 1 || len(m.Rings()[0]) != 6 {
		Te.Fatalf("Benzene should have one 6-membered ring, got %v", m.Rings())
	}
	for i := range m.Bonds {
		if !m.IsAromaticBond(i) {
			Te.Errorf("Bond %d of benzene should be aromatic", i)
		}
	}
	if m.Hybridization(0) != Sp2 {
		Te.Errorf("Aromatic carbons should be sp2")
	}
	cyclohexane := build([]string{"C", "C", "C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}, {3, 4, 1}, {4, 5, 1}, {5, 0, 1}})
	if cyclohexane.IsAromaticBond(0) || cyclohexane.BondRingSize(3) != 6 {
		Te.Errorf("Cyclohexane ring perception failed")
	}
	//naphthalene
	naph := build([]string{"C", "C", "C", "C", "C", "C", "C", "C", "C", "C"},
		[][3]int{{0, 1, 2}, {1, 2, 1}, {2, 3, 2}, {3, 4, 1}, {4, 9, 2}, {9, 0, 1}, {4, 5, 1}, {5, 6, 2}, {6, 7, 1}, {7, 8, 2}, {8, 9, 1}})
	if len(naph.Rings()) != 2 {
		Te.Errorf("Naphthalene should have 2 smallest rings, got %v", naph.Rings())
	}
	for i := range naph.Bonds {
		if !naph.IsAromaticBond(i) {
			Te.Errorf("Bond %d of naphthalene should be aromatic", i)
		}
	}
	//pyrrole
	pyr := build([]string{"N", "C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 2}, {2, 3, 1}, {3, 4, 2}, {4, 0, 1}})
	if !pyr.IsAromaticAtom(0) || pyr.ImplicitHydrogens(0) != 1 {
		Te.Errorf("Pyrrole N should be aromatic with one H, got aromatic: %t, H: %d", pyr.IsAromaticAtom(0), pyr.ImplicitHydrogens(0))
	}
}

func TestHydrogens(Te *testing.T) {
	//ethanol
	m := build([]string{"C", "C", "O"}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	exp := []int{3, 2, 1}
	for i, v := range exp {
		if h := m.ImplicitHydrogens(i); h != v {
			Te.Errorf("Atom %d should have %d implicit H, got %d", i, v, h)
		}
	}
	m.Atoms[1].Parity = ParityOdd
	if n := m.AddHydrogens(); n != 6 || m.Len() != 9 {
		Te.Fatalf("Expected 6 hydrogens and 9 atoms, got %d and %d", n, m.Len())
	}
	if m.Atoms[1].Parity != ParityOdd {
		Te.Errorf("Parities should survive the addition of hydrogens")
	}
	for i := 0; i < 3; i++ {
		if m.ImplicitHydrogens(i) != 0 {
			Te.Errorf("No implicit hydrogens should remain on atom %d", i)
		}
	}
	//charged atoms
	amm := build([]string{"N"}, nil)
	amm.Atoms[0].Charge = 1
	if h := amm.ImplicitHydrogens(0); h != 4 {
		Te.Errorf("NH4+ should have 4 hydrogens, got %d", h)
	}
	alk := build([]string{"C", "O"}, [][3]int{{0, 1, 1}})
	alk.Atoms[1].Charge = -1
	if h := alk.ImplicitHydrogens(1); h != 0 {
		Te.Errorf("An alkoxide O should have no hydrogens, got %d", h)
	}
}

func TestHydrogenPlacement(Te *testing.T) {
	m := build([]string{"C", "O"}, [][3]int{{0, 1, 2}})
	m.Coords, _ = v3.NewMatrix([]float64{0, 0, 0, 1.2, 0, 0})
	m.AddHydrogens()
	if m.Coords.NVecs() != 4 {
		Te.Fatalf("Coordinates should be added for the new hydrogens, got %d", m.Coords.NVecs())
	}
	for i := 2; i < 4; i++ {
		p := m.Coords.Vec(i)
		if p.Z != 0 {
			Te.Errorf("Hydrogens on 2D molecules should stay in the plane, got %v", p)
		}
		if d := r3.Norm(p); math.Abs(d-1) > 1e-8 || p.X >= 0 {
			Te.Errorf("Hydrogen %d badly placed: %v", i, p)
		}
	}
}

func TestValidate(Te *testing.T) {
	m := build([]string{"C", "C", "C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}, {0, 5, 1}})
	err := m.Validate()
	var serr StructureError
	if !errors.As(err, &serr) {
		Te.Fatalf("A pentavalent carbon should give a StructureError, got %v", err)
	}
	if serr.Atom != 0 || serr.Occupied != 5 || serr.Max != 4 || !serr.Critical() {
		Te.Errorf("Wrong StructureError %+v", serr)
	}
	if err := benzene().Validate(); err != nil {
		Te.Errorf("Benzene should be valid, got %v", err)
	}
	h := build([]string{"H", "C", "C"}, [][3]int{{0, 1, 1}, {0, 2, 1}})
	if h.Validate() == nil {
		Te.Errorf("A hydrogen with 2 bonds should not validate")
	}
}

func tetrahedral() (*Molecule, *v3.Matrix) {
	m := build([]string{"C", "F", "Cl", "Br", "H"}, [][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}, {0, 4, 1}})
	coords, _ := v3.NewMatrix([]float64{
		0, 0, 0,
		1, 1, 1,
		1, -1, -1,
		-1, 1, -1,
		-1, -1, 1,
	})
	return m, coords
}

func TestParity(Te *testing.T) {
	m, coords := tetrahedral()
	if !m.IsStereoCenter(0) {
		Te.Errorf("CHFClBr should be a stereo center")
	}
	if p := ParityFromCoords(m, coords, 0); p != ParityEven {
		Te.Errorf("Expected even parity, got %s", p)
	}
	//The parity with an implicit hydrogen must match that with the explicit one.
	m3 := build([]string{"C", "F", "Cl", "Br"}, [][3]int{{0, 1, 1}, {0, 2, 1}, {0, 3, 1}})
	if p := ParityFromCoords(m3, coords.View(0, 0, 4, 3), 0); p != ParityEven {
		Te.Errorf("Expected even parity with implicit hydrogen, got %s", p)
	}
	mirror := coords.Clone()
	for i := 0; i < mirror.NVecs(); i++ {
		mirror.Set(i, 0, -mirror.At(i, 0))
	}
	if p := ParityFromCoords(m, mirror, 0); p != ParityOdd {
		Te.Errorf("The mirror image should have odd parity, got %s", p)
	}
}

func TestBondParity(Te *testing.T) {
	//2-butene, C0-C1=C2-C3
	m := build([]string{"C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 2}, {2, 3, 1}})
	if !m.IsStereoBond(1) {
		Te.Fatalf("The double bond of 2-butene should be a stereo bond")
	}
	cis, _ := v3.NewMatrix([]float64{-0.5, 1, 0, 0, 0, 0, 1.3, 0, 0, 1.8, 1, 0})
	trans, _ := v3.NewMatrix([]float64{-0.5, 1, 0, 0, 0, 0, 1.3, 0, 0, 1.8, -1, 0})
	if p := BondParityFromCoords(m, cis, 1); p != BondParityZ {
		Te.Errorf("Expected Z, got %s", p)
	}
	if p := BondParityFromCoords(m, trans, 1); p != BondParityE {
		Te.Errorf("Expected E, got %s", p)
	}
	propene := build([]string{"C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 2}})
	if propene.IsStereoBond(1) {
		Te.Errorf("A terminal =CH2 can't be a stereo bond")
	}
}

func TestDihedral(Te *testing.T) {
	a := r3.Vec{X: 1}
	b := r3.Vec{}
	c := r3.Vec{Z: 1}
	for _, theta := range []float64{0, 30, 90, 179, 270, 300} {
		d := r3.Add(c, r3.Vec{X: math.Cos(theta * Deg2Rad), Y: math.Sin(theta * Deg2Rad)})
		if got := Dihedral(a, b, c, d); math.Abs(AngleDiff(got, theta)) > 1e-8 {
			Te.Errorf("Expected dihedral %v, got %v", theta, got)
		}
	}
	coords, _ := v3.NewMatrix([]float64{1, 0, 0, 0, 0, 0, 0, 0, 1, 1, 0, 1})
	RotateAbout(coords, []int{3}, coords.Vec(1), coords.Vec(2), 60)
	if got := Dihedral(coords.Vec(0), coords.Vec(1), coords.Vec(2), coords.Vec(3)); math.Abs(got-60) > 1e-8 {
		Te.Errorf("Rotating the last atom by 60 degrees should give a 60 degree dihedral, got %v", got)
	}
	if d := AngleDiff(350, 10); math.Abs(d-20) > 1e-10 {
		Te.Errorf("AngleDiff(350,10) should be 20, got %v", d)
	}
}

func TestTorsionDistance(Te *testing.T) {
	//a-b-c-d built explicitly and compared with the closed formula.
	d1, l, d3, a1, a3 := 1.1, 1.5, 1.2, 110.0, 120.0
	for _, phi := range []float64{0, 60, 90, 180} {
		a := r3.Vec{X: d1 * math.Cos(a1*Deg2Rad), Y: d1 * math.Sin(a1*Deg2Rad)}
		d := r3.Vec{X: l - d3*math.Cos(a3*Deg2Rad), Y: d3 * math.Sin(a3*Deg2Rad) * math.Cos(phi*Deg2Rad), Z: d3 * math.Sin(a3*Deg2Rad) * math.Sin(phi*Deg2Rad)}
		exp := r3.Norm(r3.Sub(a, d))
		if got := TorsionDistance(d1, l, d3, a1, a3, phi); math.Abs(got-exp) > 1e-10 {
			Te.Errorf("phi %v: expected %v, got %v", phi, exp, got)
		}
	}
}

func TestRotatableBonds(Te *testing.T) {
	butane := build([]string{"C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 1}, {2, 3, 1}})
	butane.AddHydrogens()
	if rb := butane.RotatableBonds(); len(rb) != 1 || rb[0] != 1 {
		Te.Errorf("Butane should have only the central bond rotatable, got %v", rb)
	}
	hooh := build([]string{"O", "O"}, [][3]int{{0, 1, 1}})
	hooh.AddHydrogens()
	if rb := hooh.RotatableBonds(); len(rb) != 1 {
		Te.Errorf("HOOH should have one rotatable bond, got %v", rb)
	}
	ethane := build([]string{"C", "C"}, [][3]int{{0, 1, 1}})
	ethane.AddHydrogens()
	if rb := ethane.RotatableBonds(); len(rb) != 0 {
		Te.Errorf("Ethane has only symmetric rotors, got %v", rb)
	}
	//N-methylacetamide: C0-C1(=O2)-N3-C4
	nma := build([]string{"C", "C", "O", "N", "C"}, [][3]int{{0, 1, 1}, {1, 2, 2}, {1, 3, 1}, {3, 4, 1}})
	nma.AddHydrogens()
	if !nma.IsAmideLike(2) {
		Te.Errorf("The C-N bond of an amide should be amide-like")
	}
	for _, b := range nma.RotatableBonds() {
		if b == 2 {
			Te.Errorf("Amide bonds should not be rotatable")
		}
	}
	if nma.TypeTag(3) != "N.am" {
		Te.Errorf("Expected N.am, got %s", nma.TypeTag(3))
	}
	//2-butyne: nothing rotatable
	butyne := build([]string{"C", "C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 3}, {2, 3, 1}})
	butyne.AddHydrogens()
	if !butyne.IsLinear(1) || len(butyne.RotatableBonds()) != 0 {
		Te.Errorf("2-butyne has linear atoms and no rotatable bonds")
	}
}

func TestSymmetryAndSides(Te *testing.T) {
	propane := build([]string{"C", "C", "C"}, [][3]int{{0, 1, 1}, {1, 2, 1}})
	propane.AddHydrogens()
	r := propane.SymmetryRanks()
	if r[0] != r[2] || r[0] == r[1] {
		Te.Errorf("Wrong symmetry ranks for propane: %v", r)
	}
	side := propane.Side(1, 2)
	if len(side) != 4 || side[0] != 2 {
		Te.Errorf("The side of C2 should contain C2 and its 3 hydrogens, got %v", side)
	}
	if s := benzene().Side(0, 0); s != nil {
		Te.Errorf("Ring bonds have no sides, got %v", s)
	}
	d := propane.Distances(0, 2)
	if d[2] != 2 || d[1] != 1 {
		Te.Errorf("Wrong distances %v", d)
	}
	two := build([]string{"O", "O"}, nil)
	if c := two.Components(nil); len(c) != 2 {
		Te.Errorf("Two unbonded atoms are two components, got %v", c)
	}
}

const testMolfile = `ethanol
  test

  3  2  0  0  0  0  0  0  0  0999 V2000
    0.0000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    1.5000    0.0000    0.0000 C   0  0  0  0  0  0  0  0  0  0  0  0
    2.0000    1.4000    0.0000 O   0  5  0  0  0  0  0  0  0  0  0  0
  1  2  1  0
  2  3  1  0
M  END
$$$$
`

func TestMolfile(Te *testing.T) {
	mols, err := ReadSDF(strings.NewReader(testMolfile + testMolfile))
	if err != nil {
		Te.Fatal(err)
	}
	if len(mols) != 2 {
		Te.Fatalf("Expected 2 molecules, got %d", len(mols))
	}
	m := mols[0]
	if m.Name != "ethanol" || m.Len() != 3 || m.NBonds() != 2 || m.Atoms[2].Charge != -1 {
		Te.Errorf("Wrong molecule read: %s %d %d %d", m.Name, m.Len(), m.NBonds(), m.Atoms[2].Charge)
	}
	var buf bytes.Buffer
	if err := WriteMolfile(&buf, m, nil, true); err != nil {
		Te.Fatal(err)
	}
	back, err := ReadMolfile(&buf)
	if err != nil {
		Te.Fatal(err)
	}
	if back.Atoms[2].Charge != -1 || back.Coords.At(2, 1) != 1.4 {
		Te.Errorf("Charge or coordinates lost in the round trip")
	}
	if _, err := ReadSDF(strings.NewReader("bad\n\n\n  x\n")); err == nil {
		Te.Errorf("Malformed molfiles should fail")
	}
	buf.Reset()
	c := NewConformer(m)
	if err := WriteXYZ(&buf, c, "title"); err != nil {
		Te.Fatal(err)
	}
	if lines := strings.Split(strings.TrimSpace(buf.String()), "\n"); len(lines) != 5 {
		Te.Errorf("Expected 5 lines in the XYZ output, got %d", len(lines))
	}
}

func TestConformer(Te *testing.T) {
	m := build([]string{"O", "O"}, nil)
	c := NewConformer(m)
	c.SeparateComponents(3)
	if d := c.Distance(0, 1); math.Abs(d-3) > 1e-10 {
		Te.Errorf("Separated components should be 3 A apart, got %v", d)
	}
	cp := c.Copy()
	cp.Translate(r3.Vec{Y: 1})
	if c.Pos(0).Y != 0 {
		Te.Errorf("Copies should not share coordinates")
	}
}

/*
 * geometry.go, part of goConf.
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

//Geometry estimates the ideal local geometry of a molecule.
type Geometry interface {
	//BondLength returns the ideal length, in A, of the bond.
	BondLength(m *Molecule, bond int) float64
	//BondAngle returns the ideal angle a-center-b, in degrees.
	BondAngle(m *Molecule, center, a, b int) float64
	//VdwRadius returns the van der Waals radius of the element, in A.
	VdwRadius(symbol string) float64
	//Tolerance returns the factor by which the van der Waals radius of
	//the element is scaled for collision screening.
	Tolerance(symbol string) float64
}

//Tolerance factors for collision screening.
const (
	HydrogenTolerance = 0.80
	HeavyTolerance    = 0.85
)

//DefaultGeometry estimates bond lengths from covalent radii, shortened according to the bond order,
//bond angles from the hybridization of the central atom and the size of small rings, and
//uses tabulated van der Waals radii. Elements not in the tables get conservative defaults.
type DefaultGeometry struct{}

//Bond order shortening factors.
const (
	doubleFactor   = 0.87
	tripleFactor   = 0.78
	aromaticFactor = 0.92
)

//BondLength returns the ideal length, in A, of the bond.
func (G DefaultGeometry) BondLength(m *Molecule, bond int) float64 {
	b := m.Bond(bond)
	r1 := covrad(m.Atoms[b.At1].Symbol)
	r2 := covrad(m.Atoms[b.At2].Symbol)
	d := r1 + r2
	switch {
	case m.IsAromaticBond(bond):
		d *= aromaticFactor
	case b.Order == 2:
		d *= doubleFactor
	case b.Order == 3:
		d *= tripleFactor
	case m.IsAmideLike(bond) || (m.PiCount(b.At1) > 0 && m.PiCount(b.At2) > 0):
		d *= 0.96 //conjugated single bonds are a bit shorter
	}
	return d
}

//BondAngle returns the ideal angle a-center-b, in degrees.
func (G DefaultGeometry) BondAngle(m *Molecule, center, a, b int) float64 {
	if rs := m.SharedRing(center, a, b); rs > 0 && rs <= 5 {
		switch rs {
		case 3:
			return 60
		case 4:
			return 90
		case 5:
			return 108
		}
	}
	switch m.Hybridization(center) {
	case Sp:
		return 180
	case Sp2:
		return 120
	}
	return 109.47
}

//VdwRadius returns the van der Waals radius of the element, in A.
func (G DefaultGeometry) VdwRadius(symbol string) float64 {
	if r, ok := symbolVdwrad[symbol]; ok {
		return r
	}
	return defaultVdwrad
}

//Tolerance returns the factor by which the van der Waals radius of
//the element is scaled for collision screening.
func (G DefaultGeometry) Tolerance(symbol string) float64 {
	if symbol == "H" {
		return HydrogenTolerance
	}
	return HeavyTolerance
}

func covrad(symbol string) float64 {
	if r, ok := symbolCovrad[symbol]; ok {
		return r
	}
	return defaultCovrad
}

//MinDistance returns the shortest distance tolerated between atoms i and j, i.e. the
//sum of their van der Waals radii, each scaled by its tolerance factor.
func MinDistance(g Geometry, m *Molecule, i, j int) float64 {
	si := m.Atoms[i].Symbol
	sj := m.Atoms[j].Symbol
	return g.VdwRadius(si)*g.Tolerance(si) + g.VdwRadius(sj)*g.Tolerance(sj)
}

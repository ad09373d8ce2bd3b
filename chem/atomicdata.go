/*
 * atomicdata.go, part of goConf.
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

//A map for assigning atomic numbers to elements.
//Note that just common organic and "bio-elements" are present
var symbolNumber = map[string]int{
	"H":  1,
	"B":  5,
	"C":  6,
	"N":  7,
	"O":  8,
	"F":  9,
	"Na": 11,
	"Mg": 12,
	"Si": 14,
	"P":  15,
	"S":  16,
	"Cl": 17,
	"K":  19,
	"Ca": 20,
	"Fe": 26,
	"Cu": 29,
	"Zn": 30,
	"Se": 34,
	"Br": 35,
	"I":  53,
}

//A map for assigning covalent radii to elements
//Values from Cordero et al., 2008 (DOI:10.1039/B801115J)
var symbolCovrad = map[string]float64{
	"H":  0.31,
	"B":  0.84,
	"C":  0.76, //the sp3 radius
	"N":  0.71,
	"O":  0.66,
	"F":  0.57,
	"Na": 1.66,
	"Mg": 1.41,
	"Si": 1.11,
	"P":  1.07,
	"S":  1.05,
	"Cl": 1.02,
	"K":  2.03,
	"Ca": 1.76,
	"Fe": 1.52,
	"Cu": 1.32,
	"Zn": 1.22,
	"Se": 1.20,
	"Br": 1.20,
	"I":  1.39,
}

//A map for assigning van der Waals radii to elements
//Values from 10.1021/j100785a001 and 10.1021/jp8111556
var symbolVdwrad = map[string]float64{
	"H":  1.10,
	"B":  1.92,
	"C":  1.70,
	"N":  1.55,
	"O":  1.52,
	"F":  1.47,
	"Na": 2.27,
	"Mg": 1.73,
	"Si": 2.10,
	"P":  1.80,
	"S":  1.80,
	"Cl": 1.75,
	"K":  2.75,
	"Ca": 2.31,
	"Fe": 1.96,
	"Cu": 2.00,
	"Zn": 2.02,
	"Se": 1.90,
	"Br": 1.83,
	"I":  1.98,
}

//Allowed valences for neutral atoms, the lowest first.
var symbolValences = map[string][]int{
	"H":  {1},
	"B":  {3},
	"C":  {4},
	"N":  {3, 5},
	"O":  {2},
	"F":  {1},
	"Si": {4},
	"P":  {3, 5},
	"S":  {2, 4, 6},
	"Cl": {1, 3, 5, 7},
	"Se": {2, 4, 6},
	"Br": {1, 3, 5, 7},
	"I":  {1, 3, 5, 7},
}

//Defaults used when an element is missing from the tables above.
const (
	defaultCovrad = 1.20
	defaultVdwrad = 2.00
)

//valenceGroup returns how the charge of an atom modifies its valence.
//Elements that gain bonds when positively charged (N+, O+) return 1,
//elements that lose bonds with any charge (C+, C-) return 0 and elements
//that gain bonds when negatively charged (B-) return -1.
func valenceGroup(symbol string) int {
	switch symbol {
	case "C", "Si":
		return 0
	case "B":
		return -1
	default:
		return 1
	}
}

//chargedValence returns the valence v of an atom of the given element, corrected by charge.
func chargedValence(symbol string, v, charge int) int {
	switch valenceGroup(symbol) {
	case 0:
		if charge < 0 {
			charge = -charge
		}
		return v - charge
	case -1:
		return v - charge
	default:
		return v + charge
	}
}

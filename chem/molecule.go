/*
 * molecule.go, part of goConf.
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

//Package chem provides the molecular graph used by goConf: atoms, bonds, rings, symmetry
//ranks, stereo parities and hydrogen handling, plus the Conformer type, geometric helpers,
//geometry estimators and molfile/XYZ input and output.
package chem

import (
	"sort"

	v3 "github.com/rmera/goconf/v3"
)

//Atom contains the information of an atom in a molecular graph.
type Atom struct {
	Index  int
	Symbol string
	Charge int
	//ImplicitH is the number of implicit hydrogens. A negative value means
	//that it will be derived from the default valences of the element.
	ImplicitH int
	Parity    Parity
}

//Bond represents a bond between the atoms At1 and At2.
type Bond struct {
	Index    int
	At1      int
	At2      int
	Order    int //1, 2 or 3. Aromatic bonds can have any order but have Aromatic set.
	Aromatic bool
	Parity   BondParity
}

//Cross returns the atom at the other end of the bond from origin.
func (B *Bond) Cross(origin int) int {
	if origin == B.At1 {
		return B.At2
	}
	if origin == B.At2 {
		return B.At1
	}
	panic(ErrNotInBond) //I think this got to be a programming error, so a panic is warranted.
}

//Has returns true if the atom with index at is one of the ends of the bond.
func (B *Bond) Has(at int) bool {
	return B.At1 == at || B.At2 == at
}

//Molecule is a molecular graph. It owns its atoms, bonds and, optionally, a set of
//2D or 3D coordinates. Derived information (rings, ranks, etc.) is calculated when
//needed and discarded whenever atoms or bonds are added.
type Molecule struct {
	Name   string
	Atoms  []*Atom
	Bonds  []*Bond
	Coords *v3.Matrix //may be nil
	c      *cache
}

//NewMolecule returns an empty molecule with the given name.
func NewMolecule(name string) *Molecule {
	return &Molecule{Name: name, Atoms: make([]*Atom, 0, 10), Bonds: make([]*Bond, 0, 10)}
}

//AddAtom adds an atom of the given element and charge to the molecule and returns its index.
//The number of implicit hydrogens will be derived from the default valences.
func (M *Molecule) AddAtom(symbol string, charge int) int {
	at := &Atom{Index: len(M.Atoms), Symbol: symbol, Charge: charge, ImplicitH: -1}
	M.Atoms = append(M.Atoms, at)
	M.c = nil
	return at.Index
}

//AddBond adds a bond of the given order between atoms a and b and returns its index.
//Order 4 is taken to mean an aromatic bond.
func (M *Molecule) AddBond(a, b, order int) int {
	if a == b {
		panic(ErrSelfBond)
	}
	if a < 0 || b < 0 || a >= len(M.Atoms) || b >= len(M.Atoms) {
		panic(ErrAtomOutOfRange)
	}
	bond := &Bond{Index: len(M.Bonds), At1: a, At2: b, Order: order}
	if order == 4 {
		bond.Order = 1
		bond.Aromatic = true
	}
	M.Bonds = append(M.Bonds, bond)
	M.c = nil
	return bond.Index
}

//Len returns the number of atoms in the molecule.
func (M *Molecule) Len() int {
	return len(M.Atoms)
}

//NBonds returns the number of bonds in the molecule.
func (M *Molecule) NBonds() int {
	return len(M.Bonds)
}

//Atom returns the ith atom.
func (M *Molecule) Atom(i int) *Atom {
	if i < 0 || i >= len(M.Atoms) {
		panic(ErrAtomOutOfRange)
	}
	return M.Atoms[i]
}

//Bond returns the ith bond.
func (M *Molecule) Bond(i int) *Bond {
	if i < 0 || i >= len(M.Bonds) {
		panic(ErrBondOutOfRange)
	}
	return M.Bonds[i]
}

//IsHydrogen returns true if the ith atom is a hydrogen.
func (M *Molecule) IsHydrogen(i int) bool {
	return M.Atom(i).Symbol == "H"
}

//BondsOf returns the indexes of the bonds of the ith atom. The slice
//should not be modified.
func (M *Molecule) BondsOf(i int) []int {
	return M.cache().adj[i]
}

//Neighbors returns the indexes of the atoms bonded to the ith atom, in ascending order.
func (M *Molecule) Neighbors(i int) []int {
	return M.cache().nbrs[i]
}

//Degree returns the number of atoms bonded to the ith atom, not counting implicit hydrogens.
func (M *Molecule) Degree(i int) int {
	return len(M.cache().adj[i])
}

//HeavyNeighbors returns the indexes of the non-hydrogen atoms bonded to the ith atom.
func (M *Molecule) HeavyNeighbors(i int) []int {
	ret := make([]int, 0, 4)
	for _, v := range M.Neighbors(i) {
		if !M.IsHydrogen(v) {
			ret = append(ret, v)
		}
	}
	return ret
}

//BondBetween returns the index of the bond between atoms a and b, or -1
//if they are not bonded.
func (M *Molecule) BondBetween(a, b int) int {
	for _, v := range M.BondsOf(a) {
		if M.Bonds[v].Cross(a) == b {
			return v
		}
	}
	return -1
}

//IsTerminal returns true if the ith atom has exactly one neighbor.
func (M *Molecule) IsTerminal(i int) bool {
	return M.Degree(i) == 1
}

//Copy returns a deep copy of the molecule.
func (M *Molecule) Copy() *Molecule {
	ret := NewMolecule(M.Name)
	for _, v := range M.Atoms {
		at := *v
		ret.Atoms = append(ret.Atoms, &at)
	}
	for _, v := range M.Bonds {
		b := *v
		ret.Bonds = append(ret.Bonds, &b)
	}
	if M.Coords != nil {
		ret.Coords = M.Coords.Clone()
	}
	return ret
}

//Sub returns a new molecule containing only the atoms with the given indexes (which are
//sorted in place) and the bonds between them. The ith atom of the new molecule corresponds to
//the ith element of atoms. Atom and bond parities are kept, which is only meaningful if
//all neighbors of the stereo atoms are included. Implicit hydrogens of the new atoms are
//fixed to the count of the original atoms.
func (M *Molecule) Sub(atoms []int) *Molecule {
	sort.Ints(atoms)
	ret := NewMolecule(M.Name)
	newIndex := make(map[int]int, len(atoms))
	for i, v := range atoms {
		at := *M.Atom(v)
		at.Index = i
		at.ImplicitH = M.ImplicitHydrogens(v)
		ret.Atoms = append(ret.Atoms, &at)
		newIndex[v] = i
	}
	for _, b := range M.Bonds {
		i, ok1 := newIndex[b.At1]
		j, ok2 := newIndex[b.At2]
		if !ok1 || !ok2 {
			continue
		}
		nb := *b
		nb.Index = len(ret.Bonds)
		nb.At1 = i
		nb.At2 = j
		ret.Bonds = append(ret.Bonds, &nb)
	}
	return ret
}

//cache contains information derived from the graph.
type cache struct {
	adj       [][]int
	nbrs      [][]int
	rings     [][]int
	bondRing  []int
	atomRing  []int
	aromatic  []bool //per bond, perceived or given
	ranks     []int
	rotatable []int
	rotDone   bool
}

func (M *Molecule) cache() *cache {
	if M.c != nil {
		return M.c
	}
	c := new(cache)
	c.adj = make([][]int, len(M.Atoms))
	c.nbrs = make([][]int, len(M.Atoms))
	for _, b := range M.Bonds {
		c.adj[b.At1] = append(c.adj[b.At1], b.Index)
		c.adj[b.At2] = append(c.adj[b.At2], b.Index)
		c.nbrs[b.At1] = append(c.nbrs[b.At1], b.At2)
		c.nbrs[b.At2] = append(c.nbrs[b.At2], b.At1)
	}
	for i := range c.nbrs {
		sort.Ints(c.nbrs[i])
	}
	M.c = c
	M.perceiveRings()
	M.perceiveAromaticity()
	return c
}

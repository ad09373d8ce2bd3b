/*
 * graph.go, part of goConf.
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
	"sort"

	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"
	"gonum.org/v1/gonum/graph/traverse"
)

//Graph returns a gonum undirected graph where each atom is a node with the atom index as ID.
//Bonds for which skip returns true are left out. skip can be nil.
func (M *Molecule) Graph(skip func(b *Bond) bool) *simple.UndirectedGraph {
	g := simple.NewUndirectedGraph()
	for i := range M.Atoms {
		g.AddNode(simple.Node(i))
	}
	for _, b := range M.Bonds {
		if skip != nil && skip(b) {
			continue
		}
		g.SetEdge(simple.Edge{F: simple.Node(b.At1), T: simple.Node(b.At2)})
	}
	return g
}

//Components returns the connected components of the graph obtained by removing the bonds for which
//skip returns true (skip can be nil). Each component is sorted, and components are sorted by their
//lowest atom index.
func (M *Molecule) Components(skip func(b *Bond) bool) [][]int {
	cc := topo.ConnectedComponents(M.Graph(skip))
	ret := make([][]int, 0, len(cc))
	for _, c := range cc {
		comp := make([]int, 0, len(c))
		for _, n := range c {
			comp = append(comp, int(n.ID()))
		}
		sort.Ints(comp)
		ret = append(ret, comp)
	}
	sort.Slice(ret, func(i, j int) bool { return ret[i][0] < ret[j][0] })
	return ret
}

//Side returns, sorted, the atoms that can be reached from atom without crossing the bond, which must
//contain atom. It returns nil if the bond is in a ring, since then there are no sides.
func (M *Molecule) Side(bond, atom int) []int {
	b := M.Bond(bond)
	other := b.Cross(atom)
	ret := make([]int, 0, M.Len())
	ring := false
	bf := traverse.BreadthFirst{
		Traverse: func(e graph.Edge) bool {
			f, t := int(e.From().ID()), int(e.To().ID())
			return !((f == atom && t == other) || (f == other && t == atom))
		},
	}
	bf.Walk(M.Graph(nil), simple.Node(atom), func(n graph.Node, d int) bool {
		if int(n.ID()) == other {
			ring = true
			return true
		}
		ret = append(ret, int(n.ID()))
		return false
	})
	if ring {
		return nil
	}
	sort.Ints(ret)
	return ret
}

//SmallerSide returns the atoms on the side of the bond with fewer atoms, the central atom of that side,
//and true if that side is the side of b.At2. If both sides have the same size, the side of At2 is
//returned. It returns nil if the bond is in a ring.
func (M *Molecule) SmallerSide(bond int) (atoms []int, center int, second bool) {
	b := M.Bond(bond)
	s2 := M.Side(bond, b.At2)
	if s2 == nil {
		return nil, -1, false
	}
	if len(s2)*2 <= M.Len() {
		return s2, b.At2, true
	}
	return M.Side(bond, b.At1), b.At1, false
}

//Distances returns the number of bonds between from and every other atom, not exploring further than
//limit bonds. Atoms farther than limit, or not connected, get -1.
func (M *Molecule) Distances(from, limit int) []int {
	ret := make([]int, M.Len())
	for i := range ret {
		ret[i] = -1
	}
	bf := traverse.BreadthFirst{}
	bf.Walk(M.Graph(nil), simple.Node(from), func(n graph.Node, d int) bool {
		if d > limit {
			return true
		}
		ret[n.ID()] = d
		return false
	})
	return ret
}

//DistanceMatrix returns the topological distances between all pairs of atoms, up to limit bonds,
//with -1 for pairs farther apart.
func (M *Molecule) DistanceMatrix(limit int) [][]int {
	g := M.Graph(nil)
	ret := make([][]int, M.Len())
	for i := range ret {
		row := make([]int, M.Len())
		for j := range row {
			row[j] = -1
		}
		bf := traverse.BreadthFirst{}
		bf.Walk(g, simple.Node(i), func(n graph.Node, d int) bool {
			if d > limit {
				return true
			}
			row[n.ID()] = d
			return false
		})
		ret[i] = row
	}
	return ret
}

/*
 * elimination.go, part of goConf.
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

package torsionset

import "sort"

//EliminationRule states that every set whose key, masked with Mask, equals Pattern, collides.
//Rules are learned from observed collisions, so they never reject a set that could be
//collision-free.
type EliminationRule struct {
	Mask      Key
	Pattern   Key
	Intensity float64 //collision intensity of the set the rule was learned from
}

//NewEliminationRule returns the rule that eliminates every set sharing with k the bits in mask.
func NewEliminationRule(k, mask Key, intensity float64) *EliminationRule {
	return &EliminationRule{Mask: mask, Pattern: k.And(mask), Intensity: intensity}
}

//Matches returns true if the rule eliminates the set with key k.
func (R *EliminationRule) Matches(k Key) bool {
	return k.And(R.Mask) == R.Pattern
}

//Covers returns true if every set eliminated by o is also eliminated by R, i.e.
//R is at least as general as o.
func (R *EliminationRule) Covers(o *EliminationRule) bool {
	return o.Mask.Contains(R.Mask) && o.Pattern.And(R.Mask) == R.Pattern
}

//Store keeps elimination rules. It only grows, except when a new rule makes older
//ones redundant, in which case those are removed.
type Store struct {
	rules   []*EliminationRule
	learned int
	removed int
}

//NewStore returns an empty store.
func NewStore() *Store {
	return &Store{rules: make([]*EliminationRule, 0, 16)}
}

//Add adds r to the store, unless an existing rule already covers it, and removes the rules
//r covers. It returns true if r was added.
func (S *Store) Add(r *EliminationRule) bool {
	for _, o := range S.rules {
		if o.Covers(r) {
			return false
		}
	}
	kept := S.rules[:0]
	for _, o := range S.rules {
		if r.Covers(o) {
			S.removed++
			continue
		}
		kept = append(kept, o)
	}
	S.rules = append(kept, r)
	S.learned++
	return true
}

//Eliminated returns true if any rule in the store matches k.
func (S *Store) Eliminated(k Key) bool {
	for _, r := range S.rules {
		if r.Matches(k) {
			return true
		}
	}
	return false
}

//Len returns the number of rules in the store.
func (S *Store) Len() int {
	return len(S.rules)
}

//Learned returns the number of rules ever added and the number removed as redundant.
func (S *Store) Learned() (learned, removed int) {
	return S.learned, S.removed
}

//Rules returns a copy of the rules in the store, the most intense first.
func (S *Store) Rules() []*EliminationRule {
	ret := append([]*EliminationRule(nil), S.rules...)
	sort.SliceStable(ret, func(i, j int) bool { return ret[i].Intensity > ret[j].Intensity })
	return ret
}

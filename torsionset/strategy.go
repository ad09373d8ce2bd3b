/*
 * strategy.go, part of goConf.
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

import (
	"container/heap"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strings"
	"time"
)

//Kind is the way a Strategy proposes torsion sets.
type Kind int

const (
	//Random chooses each index uniformly among those with a positive likelihood.
	Random Kind = iota
	//BiasedRandom chooses each index with a probability proportional to its likelihood.
	BiasedRandom
	//AdaptiveRandom is like BiasedRandom, but lowers the weight of the torsions involved
	//in each reported collision.
	AdaptiveRandom
	//LikelySystematic enumerates the sets from the most to the least likely.
	LikelySystematic
)

var kindNames = []string{"random", "biased", "adaptive", "systematic"}

func (K Kind) String() string {
	if K < 0 || int(K) >= len(kindNames) {
		return fmt.Sprintf("Kind(%d)", int(K))
	}
	return kindNames[K]
}

//ParseKind returns the Kind with the given name (random, biased, adaptive or systematic).
func ParseKind(s string) (Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, v := range kindNames {
		if v == s {
			return Kind(i), nil
		}
	}
	return Random, fmt.Errorf("goConf/torsionset: unknown strategy %q, use one of %s", s, strings.Join(kindNames, ", "))
}

//DefaultMaxFailures is the number of consecutive repeated or eliminated proposals after which
//a random strategy considers itself exhausted.
const DefaultMaxFailures = 256

//adaptFactor scales the weight of a torsion involved in a collision, in adaptive strategies.
const adaptFactor = 0.5

//Space describes the choices available for a molecule.
type Space struct {
	Torsions   [][]float64 //likelihoods of the torsions of each rotatable bond
	Conformers [][]float64 //likelihoods of the local conformers of each fragment
	//Path returns the bonds and the fragments that determine the relative position of the
	//fragments f1 and f2. If nil, learned rules cover whole sets.
	Path func(f1, f2 int) (bonds, fragments []int)
}

//Counts returns the number of choices for each bond and for each fragment, as needed by NewEncoder.
func (S *Space) Counts() (torsions, conformers []int) {
	for _, v := range S.Torsions {
		torsions = append(torsions, len(v))
	}
	for _, v := range S.Conformers {
		conformers = append(conformers, len(v))
	}
	return torsions, conformers
}

//Strategy proposes torsion sets, never the same one twice, and learns elimination rules
//from the collisions reported to it. Sets matching a learned rule are not proposed.
//A Strategy is not safe for concurrent use.
type Strategy struct {
	kind        Kind
	enc         *Encoder
	space       *Space
	rand        *rand.Rand
	store       *Store
	weights     [][]float64 //per field, bonds first
	tried       map[Key]bool
	total       float64 //number of sets with positive likelihood
	maxFailures int
	rejected    int
	duplicates  int
	exhausted   bool
	//for LikelySystematic
	order   [][]int //indexes of each field by decreasing weight
	queue   *candidates
	visited map[Key]bool
}

//New returns a strategy of the given kind for the space, which must match the encoder.
//A seed of 0 means a seed obtained from the clock.
func New(kind Kind, enc *Encoder, space *Space, seed int64) *Strategy {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	S := &Strategy{
		kind:        kind,
		enc:         enc,
		space:       space,
		rand:        rand.New(rand.NewSource(seed)),
		store:       NewStore(),
		tried:       make(map[Key]bool),
		total:       1,
		maxFailures: DefaultMaxFailures,
	}
	for _, l := range append(append([][]float64{}, space.Torsions...), space.Conformers...) {
		w := append([]float64(nil), l...)
		positive := 0
		for i, v := range w {
			if v > 0 && !math.IsNaN(v) {
				positive++
			} else {
				w[i] = 0
			}
		}
		if positive == 0 {
			//every field must offer something.
			w[0] = 1
			positive = 1
		}
		S.total *= float64(positive)
		S.weights = append(S.weights, w)
	}
	if kind == LikelySystematic {
		S.initSystematic()
	}
	return S
}

//Kind returns the kind of the strategy.
func (S *Strategy) Kind() Kind {
	return S.kind
}

//Store returns the elimination rules learned so far.
func (S *Strategy) Store() *Store {
	return S.store
}

//MaxFailures returns the number of consecutive failed proposals after which a random strategy
//gives up, and sets it to a new value, if given.
func (S *Strategy) MaxFailures(n ...int) int {
	if len(n) > 0 && n[0] > 0 {
		S.maxFailures = n[0]
	}
	return S.maxFailures
}

//Stats returns the number of different sets proposed or eliminated, the number of proposals
//rejected because of an elimination rule, and the number of repeated proposals discarded.
func (S *Strategy) Stats() (tried, rejected, duplicates int) {
	return len(S.tried), S.rejected, S.duplicates
}

//Exhausted returns true if the strategy has nothing else to propose.
func (S *Strategy) Exhausted() bool {
	return S.exhausted
}

//Next returns a new set, or nil if the strategy is exhausted.
func (S *Strategy) Next() *Set {
	if S.exhausted {
		return nil
	}
	var ret *Set
	if S.kind == LikelySystematic {
		ret = S.nextSystematic()
	} else {
		ret = S.nextRandom()
	}
	if ret == nil {
		S.exhausted = true
	}
	return ret
}

//Report tells the strategy that the set s produced the given collision intensities
//between pairs of fragments. An elimination rule is learned for each pair of colliding fragments.
//It returns the number of rules added.
func (S *Strategy) Report(s *Set, collisions [][]float64) int {
	added := 0
	full := S.fullMask()
	for i := range collisions {
		for j := i + 1; j < len(collisions[i]); j++ {
			intensity := collisions[i][j]
			if intensity <= 0 {
				continue
			}
			mask := full
			var bonds []int
			if S.space.Path != nil {
				var frags []int
				bonds, frags = S.space.Path(i, j)
				mask = S.enc.Mask(bonds, frags)
			}
			if S.store.Add(NewEliminationRule(s.Key, mask, intensity)) {
				added++
			}
			if S.kind == AdaptiveRandom {
				for _, b := range bonds {
					S.weights[b][s.Torsions[b]] *= adaptFactor
				}
			}
		}
	}
	return added
}

func (S *Strategy) fullMask() Key {
	bonds := make([]int, S.enc.Bonds())
	for i := range bonds {
		bonds[i] = i
	}
	frags := make([]int, S.enc.Fragments())
	for i := range frags {
		frags[i] = i
	}
	return S.enc.Mask(bonds, frags)
}

//pick returns an index for the ith field.
func (S *Strategy) pick(i int) int {
	w := S.weights[i]
	if S.kind == Random {
		n := 0
		for _, v := range w {
			if v > 0 {
				n++
			}
		}
		r := S.rand.Intn(n)
		for j, v := range w {
			if v > 0 {
				if r == 0 {
					return j
				}
				r--
			}
		}
	}
	sum := 0.0
	for _, v := range w {
		sum += v
	}
	r := S.rand.Float64() * sum
	last := 0
	for j, v := range w {
		if v <= 0 {
			continue
		}
		if r < v {
			return j
		}
		r -= v
		last = j
	}
	return last
}

func (S *Strategy) split(idx []int) *Set {
	nb := S.enc.Bonds()
	t := append([]int(nil), idx[:nb]...)
	c := append([]int(nil), idx[nb:]...)
	return S.enc.NewSet(t, c)
}

func (S *Strategy) nextRandom() *Set {
	idx := make([]int, len(S.weights))
	for failures := 0; failures < S.maxFailures; {
		if float64(len(S.tried)) >= S.total {
			return nil
		}
		for i := range idx {
			idx[i] = S.pick(i)
		}
		s := S.split(idx)
		if S.tried[s.Key] {
			S.duplicates++
			failures++
			continue
		}
		S.tried[s.Key] = true
		if S.store.Eliminated(s.Key) {
			S.rejected++
			failures++
			continue
		}
		return s
	}
	return nil
}

//candidate is a vector of ranks, one per field, into the fields' orders.
type candidate struct {
	ranks []int
	score float64 //sum of the logs of the weights
}

type candidates []*candidate

func (C candidates) Len() int            { return len(C) }
func (C candidates) Less(i, j int) bool  { return C[i].score > C[j].score }
func (C candidates) Swap(i, j int)       { C[i], C[j] = C[j], C[i] }
func (C *candidates) Push(x interface{}) { *C = append(*C, x.(*candidate)) }
func (C *candidates) Pop() interface{} {
	old := *C
	n := len(old)
	ret := old[n-1]
	*C = old[:n-1]
	return ret
}

func (S *Strategy) initSystematic() {
	S.order = make([][]int, len(S.weights))
	for i, w := range S.weights {
		for j, v := range w {
			if v > 0 {
				S.order[i] = append(S.order[i], j)
			}
		}
		sort.SliceStable(S.order[i], func(a, b int) bool { return w[S.order[i][a]] > w[S.order[i][b]] })
	}
	S.queue = &candidates{}
	S.visited = make(map[Key]bool)
	S.push(make([]int, len(S.weights)))
}

func (S *Strategy) score(ranks []int) float64 {
	ret := 0.0
	for i, r := range ranks {
		ret += math.Log(S.weights[i][S.order[i][r]])
	}
	return ret
}

func (S *Strategy) push(ranks []int) {
	nb := S.enc.Bonds()
	k := S.enc.Encode(ranks[:nb], ranks[nb:])
	if S.visited[k] {
		return
	}
	S.visited[k] = true
	heap.Push(S.queue, &candidate{ranks: ranks, score: S.score(ranks)})
}

func (S *Strategy) nextSystematic() *Set {
	for S.queue.Len() > 0 {
		c := heap.Pop(S.queue).(*candidate)
		for i := range c.ranks {
			if c.ranks[i]+1 < len(S.order[i]) {
				next := append([]int(nil), c.ranks...)
				next[i]++
				S.push(next)
			}
		}
		idx := make([]int, len(c.ranks))
		for i, r := range c.ranks {
			idx[i] = S.order[i][r]
		}
		s := S.split(idx)
		S.tried[s.Key] = true
		if S.store.Eliminated(s.Key) {
			S.rejected++
			continue
		}
		return s
	}
	return nil
}

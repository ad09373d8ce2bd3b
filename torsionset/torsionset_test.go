/*
 * torsionset_test.go, part of goConf.
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
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoderRoundTrip(Te *testing.T) {
	torsions := []int{3, 5, 1, 70, 2, 12}
	conformers := []int{1, 4, 9}
	enc, err := NewEncoder(torsions, conformers)
	require.NoError(Te, err)
	assert.Equal(Te, 6, enc.Bonds())
	assert.Equal(Te, 3, enc.Fragments())
	r := rand.New(rand.NewSource(1))
	for n := 0; n < 200; n++ {
		ti := make([]int, len(torsions))
		for i, c := range torsions {
			ti[i] = r.Intn(c)
		}
		ci := make([]int, len(conformers))
		for i, c := range conformers {
			ci[i] = r.Intn(c)
		}
		k := enc.Encode(ti, ci)
		gotT, gotC := enc.Decode(k)
		require.Equal(Te, ti, gotT)
		require.Equal(Te, ci, gotC)
		require.Equal(Te, k, enc.Encode(gotT, gotC))
		for i := range ti {
			assert.Equal(Te, ti[i], enc.Torsion(k, i))
		}
		for i := range ci {
			assert.Equal(Te, ci[i], enc.Conformer(k, i))
		}
	}
	assert.Panics(Te, func() { enc.Encode([]int{3, 0, 0, 0, 0, 0}, []int{0, 0, 0}) })
	assert.Panics(Te, func() { enc.Encode([]int{0}, []int{0, 0, 0}) })
}

func TestEncoderLayout(Te *testing.T) {
	counts := make([]int, 20)
	for i := range counts {
		counts[i] = 100 //7 bits, 9 fields per word
	}
	enc, err := NewEncoder(counts, nil)
	require.NoError(Te, err)
	assert.Equal(Te, 3, enc.Words())
	for i, f := range enc.fields {
		assert.LessOrEqual(Te, f.shift+7, uint(64), "field %d straddles two words", i)
	}
	_, err = NewEncoder(make([]int, 100), nil)
	assert.Error(Te, err)
	counts = make([]int, 100)
	for i := range counts {
		counts[i] = 100
	}
	_, err = NewEncoder(counts, nil)
	assert.ErrorIs(Te, err, ErrTooLarge)
}

func TestKey(Te *testing.T) {
	var a, b Key
	a[0] = 5
	b[1] = 1
	assert.True(Te, a.Less(b))
	assert.Equal(Te, 1, b.Compare(a))
	assert.Equal(Te, 0, a.Compare(a))
	assert.True(Te, a.Or(b).Contains(a))
	assert.False(Te, a.Contains(b))
	assert.True(Te, a.And(b).IsZero())
	assert.Equal(Te, "0", Key{}.String())
	assert.Equal(Te, "10000000000000005", a.Or(b).String())
}

func TestStore(Te *testing.T) {
	enc, err := NewEncoder([]int{3, 3, 3}, []int{1})
	require.NoError(Te, err)
	set := enc.Encode([]int{1, 2, 0}, []int{0})
	narrow := NewEliminationRule(set, enc.Mask([]int{0, 1}, nil), 1)
	wide := NewEliminationRule(set, enc.Mask([]int{0}, nil), 2)
	s := NewStore()
	require.True(Te, s.Add(narrow))
	assert.True(Te, s.Eliminated(enc.Encode([]int{1, 2, 2}, []int{0})))
	assert.False(Te, s.Eliminated(enc.Encode([]int{1, 1, 2}, []int{0})))
	require.True(Te, s.Add(wide))
	assert.Equal(Te, 1, s.Len(), "the narrow rule should have been removed")
	assert.False(Te, s.Add(narrow), "a covered rule should not be added")
	assert.True(Te, s.Eliminated(enc.Encode([]int{1, 1, 2}, []int{0})))
	assert.False(Te, s.Eliminated(enc.Encode([]int{0, 2, 0}, []int{0})))
	learned, removed := s.Learned()
	assert.Equal(Te, 2, learned)
	assert.Equal(Te, 1, removed)
	other := NewEliminationRule(enc.Encode([]int{2, 0, 0}, []int{0}), enc.Mask([]int{0}, nil), 3)
	require.True(Te, s.Add(other))
	assert.Equal(Te, 3.0, s.Rules()[0].Intensity)
}

func space() *Space {
	return &Space{
		Torsions:   [][]float64{{0.1, 0.6, 0.3}, {0.2, 0.8}, {0, 1}},
		Conformers: [][]float64{{1}, {0.7, 0.3}},
		Path: func(f1, f2 int) ([]int, []int) {
			return []int{0}, []int{f1, f2}
		},
	}
}

func newStrategy(Te *testing.T, kind Kind) *Strategy {
	sp := space()
	enc, err := NewEncoder(sp.Counts())
	require.NoError(Te, err)
	s := New(kind, enc, sp, 7)
	//low-likelihood sets can take many draws to come up.
	s.MaxFailures(1 << 16)
	return s
}

func TestStrategiesExhaust(Te *testing.T) {
	for _, kind := range []Kind{Random, BiasedRandom, AdaptiveRandom, LikelySystematic} {
		s := newStrategy(Te, kind)
		seen := make(map[Key]bool)
		for set := s.Next(); set != nil; set = s.Next() {
			require.False(Te, seen[set.Key], "%s proposed a set twice", kind)
			seen[set.Key] = true
			assert.Equal(Te, 1, set.Torsions[2], "zero-likelihood torsions should never be proposed")
		}
		//3*2*1 torsions and 1*2 conformers
		assert.Len(Te, seen, 12, kind.String())
		assert.True(Te, s.Exhausted())
		assert.Nil(Te, s.Next())
	}
}

func TestLikelySystematicOrder(Te *testing.T) {
	s := newStrategy(Te, LikelySystematic)
	first := s.Next()
	require.NotNil(Te, first)
	assert.Equal(Te, []int{1, 1, 1}, first.Torsions)
	assert.Equal(Te, []int{0, 0}, first.Conformers)
	prob := func(set *Set) float64 {
		p := 1.0
		for i, v := range set.Torsions {
			p *= s.weights[i][v]
		}
		for i, v := range set.Conformers {
			p *= s.weights[s.enc.Bonds()+i][v]
		}
		return p
	}
	prev := prob(first)
	for set := s.Next(); set != nil; set = s.Next() {
		p := prob(set)
		assert.Greater(Te, p, 0.0)
		assert.LessOrEqual(Te, p, prev+1e-12, "sets should come from the most to the least likely")
		prev = p
	}
}

func TestLearning(Te *testing.T) {
	for _, kind := range []Kind{Random, BiasedRandom, AdaptiveRandom, LikelySystematic} {
		s := newStrategy(Te, kind)
		bad := 0
		for set := s.Next(); set != nil; set = s.Next() {
			//fragments 0 and 1 collide whenever the first bond takes its third torsion
			//and the second fragment is in its first conformer.
			if set.Torsions[0] != 2 || set.Conformers[1] != 0 {
				continue
			}
			bad++
			coll := [][]float64{{0, 0.5}, {0.5, 0}}
			s.Report(set, coll)
		}
		assert.Equal(Te, 1, bad, "%s: the learned rule should eliminate the other colliding sets", kind)
		_, rejected, _ := s.Stats()
		if kind == LikelySystematic {
			assert.Equal(Te, 1, rejected)
		}
		assert.Equal(Te, 1, s.Store().Len())
	}
}

func TestParseKind(Te *testing.T) {
	for _, k := range []Kind{Random, BiasedRandom, AdaptiveRandom, LikelySystematic} {
		got, err := ParseKind(k.String())
		require.NoError(Te, err)
		assert.Equal(Te, k, got)
	}
	k, err := ParseKind(" Adaptive ")
	require.NoError(Te, err)
	assert.Equal(Te, AdaptiveRandom, k)
	_, err = ParseKind("simulated-annealing")
	assert.Error(Te, err)
}

/*
 * encoder.go, part of goConf.
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

//Package torsionset encodes the discrete choices that fully determine an assembled conformer
//(one torsion index per rotatable bond and one local conformer index per rigid fragment) into
//a compact, comparable key, keeps the elimination rules learned from collisions, and proposes
//new sets following several strategies.
package torsionset

import (
	"errors"
	"fmt"
	"math/bits"
	"strings"
)

//Words is the number of 64-bit words in a Key.
const Words = 8

//ErrTooLarge is returned when a layout doesn't fit in a Key.
var ErrTooLarge = errors.New("goConf/torsionset: too many choices to encode in a torsion set")

//Key is the packed form of a torsion set. Keys can be compared with == and used as map keys.
type Key [Words]uint64

//And returns the bitwise and of K and o.
func (K Key) And(o Key) Key {
	var r Key
	for i := range K {
		r[i] = K[i] & o[i]
	}
	return r
}

//Or returns the bitwise or of K and o.
func (K Key) Or(o Key) Key {
	var r Key
	for i := range K {
		r[i] = K[i] | o[i]
	}
	return r
}

//IsZero returns true if no bit is set.
func (K Key) IsZero() bool {
	return K == Key{}
}

//Contains returns true if all the bits set in o are also set in K.
func (K Key) Contains(o Key) bool {
	return o.And(K) == o
}

//Compare returns -1, 0 or 1 if K is respectively smaller, equal or larger than o.
//The last word is the most significant.
func (K Key) Compare(o Key) int {
	for i := Words - 1; i >= 0; i-- {
		if K[i] < o[i] {
			return -1
		}
		if K[i] > o[i] {
			return 1
		}
	}
	return 0
}

//Less returns true if K is smaller than o.
func (K Key) Less(o Key) bool {
	return K.Compare(o) < 0
}

func (K Key) String() string {
	var b strings.Builder
	for i := Words - 1; i >= 0; i-- {
		fmt.Fprintf(&b, "%016x", K[i])
	}
	if r := strings.TrimLeft(b.String(), "0"); r != "" {
		return r
	}
	return "0"
}

type field struct {
	word  int
	shift uint
	mask  uint64 //not shifted
}

//Encoder packs index vectors into Keys. The layout (which bits hold which index) is fixed
//when the encoder is created: one field per rotatable bond followed by one field per fragment,
//each wide enough for the number of choices it holds. Fields never straddle two words.
type Encoder struct {
	fields []field
	counts []int
	nbonds int
	used   int //words used
}

//NewEncoder returns an encoder for bonds with the given number of torsions each, and fragments
//with the given number of local conformers each. It returns ErrTooLarge if the fields don't fit
//in a Key.
func NewEncoder(torsions, conformers []int) (*Encoder, error) {
	E := &Encoder{nbonds: len(torsions)}
	E.counts = append(append(E.counts, torsions...), conformers...)
	word, pos := 0, uint(0)
	for _, n := range E.counts {
		if n < 1 {
			return nil, fmt.Errorf("goConf/torsionset: field with %d choices", n)
		}
		nbits := uint(1)
		if n > 1 {
			nbits = uint(bits.Len(uint(n - 1)))
		}
		if pos+nbits > 64 {
			word++
			pos = 0
		}
		if word >= Words {
			return nil, ErrTooLarge
		}
		E.fields = append(E.fields, field{word: word, shift: pos, mask: 1<<nbits - 1})
		pos += nbits
	}
	E.used = word + 1
	return E, nil
}

//Bonds returns the number of bond fields.
func (E *Encoder) Bonds() int {
	return E.nbonds
}

//Fragments returns the number of fragment fields.
func (E *Encoder) Fragments() int {
	return len(E.fields) - E.nbonds
}

//Words returns the number of words actually used by the layout.
func (E *Encoder) Words() int {
	return E.used
}

//Count returns the number of choices of the ith field. Bond fields go first.
func (E *Encoder) Count(i int) int {
	return E.counts[i]
}

func (E *Encoder) set(k *Key, i, v int) {
	f := E.fields[i]
	if v < 0 || v >= E.counts[i] {
		panic(fmt.Sprintf("goConf/torsionset: value %d out of range for field %d", v, i))
	}
	k[f.word] &^= f.mask << f.shift
	k[f.word] |= uint64(v) << f.shift
}

func (E *Encoder) get(k Key, i int) int {
	f := E.fields[i]
	return int((k[f.word] >> f.shift) & f.mask)
}

//Encode packs a torsion index per bond and a conformer index per fragment into a Key.
//It panics if the lengths don't match the layout or an index is out of range.
func (E *Encoder) Encode(torsions, conformers []int) Key {
	if len(torsions) != E.nbonds || len(conformers) != E.Fragments() {
		panic("goConf/torsionset: index vectors don't match the encoder layout")
	}
	var k Key
	for i, v := range torsions {
		E.set(&k, i, v)
	}
	for i, v := range conformers {
		E.set(&k, E.nbonds+i, v)
	}
	return k
}

//Decode unpacks a Key into the torsion and conformer indexes.
func (E *Encoder) Decode(k Key) (torsions, conformers []int) {
	torsions = make([]int, E.nbonds)
	conformers = make([]int, E.Fragments())
	for i := range torsions {
		torsions[i] = E.get(k, i)
	}
	for i := range conformers {
		conformers[i] = E.get(k, E.nbonds+i)
	}
	return torsions, conformers
}

//Torsion returns the torsion index of the given bond in k.
func (E *Encoder) Torsion(k Key, bond int) int {
	return E.get(k, bond)
}

//Conformer returns the conformer index of the given fragment in k.
func (E *Encoder) Conformer(k Key, fragment int) int {
	return E.get(k, E.nbonds+fragment)
}

//Mask returns a Key with all the bits of the given bond and fragment fields set.
func (E *Encoder) Mask(bonds, fragments []int) Key {
	var k Key
	for _, b := range bonds {
		f := E.fields[b]
		k[f.word] |= f.mask << f.shift
	}
	for _, fr := range fragments {
		f := E.fields[E.nbonds+fr]
		k[f.word] |= f.mask << f.shift
	}
	return k
}

//Set is one full choice of torsions and local conformers.
type Set struct {
	Torsions   []int
	Conformers []int
	Key        Key
}

//NewSet returns a set with the given indexes, and its key.
func (E *Encoder) NewSet(torsions, conformers []int) *Set {
	return &Set{Torsions: torsions, Conformers: conformers, Key: E.Encode(torsions, conformers)}
}

/*
 * torsiondb.go, part of goConf.
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

//Package torsiondb provides torsion statistics for rotatable bonds: preferred
//dihedral angles, their relative frequencies and the range of values around each angle
//that is considered compatible with it.
//
//The default table is embedded in the binary and parsed once. The resulting DB
//is never modified, so it can be shared by any number of goroutines.
package torsiondb

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/rmera/goconf/chem"
)

//go:embed default.yaml
var defaultTable []byte

//Entry contains the statistics for one class of bonds. All three slices are index-aligned.
//Angles are in degrees, in the [0,360) range. Ranges may have a negative low end,
//or a high end over 360.
type Entry struct {
	Torsions    []float64    `yaml:"torsions"`
	Frequencies []float64    `yaml:"frequencies"`
	Ranges      [][2]float64 `yaml:"ranges"`
}

//Len returns the number of angles in the entry.
func (E *Entry) Len() int {
	return len(E.Torsions)
}

//Copy returns a deep copy of the entry.
func (E *Entry) Copy() *Entry {
	return &Entry{
		Torsions:    append([]float64(nil), E.Torsions...),
		Frequencies: append([]float64(nil), E.Frequencies...),
		Ranges:      append([][2]float64(nil), E.Ranges...),
	}
}

//defaultHalfRange is the half width of the range given to angles without an explicit one.
const defaultHalfRange = 20.0

//check validates the entry and fills in the missing parts.
func (E *Entry) check(id string) error {
	if len(E.Torsions) == 0 {
		return fmt.Errorf("torsiondb: entry %s has no torsions", id)
	}
	if len(E.Frequencies) == 0 {
		E.Frequencies = make([]float64, len(E.Torsions))
		for i := range E.Frequencies {
			E.Frequencies[i] = 1
		}
	}
	if len(E.Ranges) == 0 {
		E.Ranges = make([][2]float64, len(E.Torsions))
		for i, t := range E.Torsions {
			E.Ranges[i] = [2]float64{t - defaultHalfRange, t + defaultHalfRange}
		}
	}
	if len(E.Frequencies) != len(E.Torsions) || len(E.Ranges) != len(E.Torsions) {
		return fmt.Errorf("torsiondb: entry %s: %d torsions, %d frequencies and %d ranges", id, len(E.Torsions), len(E.Frequencies), len(E.Ranges))
	}
	for i, t := range E.Torsions {
		E.Torsions[i] = chem.NormalizeAngle(t)
		r := E.Ranges[i]
		if r[0] > r[1] || r[1]-r[0] >= 360 {
			return fmt.Errorf("torsiondb: entry %s: invalid range %v", id, r)
		}
		if E.Frequencies[i] < 0 {
			return fmt.Errorf("torsiondb: entry %s: negative frequency %v", id, E.Frequencies[i])
		}
	}
	return nil
}

//Provider gives torsion statistics for bonds.
type Provider interface {
	//Lookup returns the entry for the bond class id, and false if there is none.
	Lookup(id string) (*Entry, bool)
	//Predict returns an estimated entry for the given bond of m. It never fails.
	Predict(m *chem.Molecule, bond int) *Entry
}

//DB is an immutable table of torsion statistics.
type DB struct {
	entries map[string]*Entry
}

//Parse reads a YAML table of torsion statistics. Each key is a bond class id.
func Parse(data []byte) (*DB, error) {
	raw := make(map[string]*Entry)
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("torsiondb: parsing table: %w", err)
	}
	db := &DB{entries: make(map[string]*Entry, len(raw))}
	for k, e := range raw {
		if e == nil {
			return nil, fmt.Errorf("torsiondb: empty entry %s", k)
		}
		if err := e.check(k); err != nil {
			return nil, err
		}
		db.entries[canonicalID(k)] = e
	}
	return db, nil
}

var (
	defaultOnce sync.Once
	defaultDB   *DB
)

//Default returns the built-in table. It panics if the embedded table is malformed,
//which can only happen if the binary was built with a broken table.
func Default() *DB {
	defaultOnce.Do(func() {
		db, err := Parse(defaultTable)
		if err != nil {
			panic(err.Error())
		}
		defaultDB = db
	})
	return defaultDB
}

//Len returns the number of entries in the table.
func (D *DB) Len() int {
	return len(D.entries)
}

//IDs returns the sorted ids of all the entries in the table.
func (D *DB) IDs() []string {
	ret := make([]string, 0, len(D.entries))
	for k := range D.entries {
		ret = append(ret, k)
	}
	sort.Strings(ret)
	return ret
}

//Lookup returns a copy of the entry for the bond class id, and false if there is none.
func (D *DB) Lookup(id string) (*Entry, bool) {
	e, ok := D.entries[canonicalID(id)]
	if !ok {
		return nil, false
	}
	return e.Copy(), true
}

//Predict returns an estimated entry for the bond, from the hybridization of its atoms.
func (D *DB) Predict(m *chem.Molecule, bond int) *Entry {
	return Predict(m, bond)
}

//canonicalID sorts the two parts of a bond class id.
func canonicalID(id string) string {
	parts := strings.Split(id, ":")
	if len(parts) != 2 {
		return id
	}
	if parts[1] < parts[0] {
		parts[0], parts[1] = parts[1], parts[0]
	}
	return parts[0] + ":" + parts[1]
}

//BondID returns the class id of the bond: the type tags of the two atoms, sorted and
//joined by a colon.
func BondID(m *chem.Molecule, bond int) string {
	b := m.Bond(bond)
	return canonicalID(m.TypeTag(b.At1) + ":" + m.TypeTag(b.At2))
}

//ForBond returns the entry for the bond from p, and whether it was found in the table (true)
//or predicted (false).
func ForBond(p Provider, m *chem.Molecule, bond int) (*Entry, bool) {
	if e, ok := p.Lookup(BondID(m, bond)); ok {
		return e, true
	}
	return p.Predict(m, bond), false
}

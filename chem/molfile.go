/*
 * molfile.go, part of goConf.
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
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	v3 "github.com/rmera/goconf/v3"
)

//molfile charge codes, in the atom block.
var molCharges = map[int]int{1: 3, 2: 2, 3: 1, 5: -1, 6: -2, 7: -3}

//ReadSDFFile reads all the molecules in the SDF (or molfile) with the given name.
func ReadSDFFile(name string) ([]*Molecule, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, CError{fmt.Sprintf("Unable to open file %s: %s", name, err.Error()), []string{"ReadSDFFile"}, true}
	}
	defer f.Close()
	mols, err := ReadSDF(f)
	if err != nil {
		return nil, errDecorate(err, "ReadSDFFile "+name)
	}
	return mols, nil
}

//ReadSDF reads all the V2000 records from r. Records are separated by "$$$$" lines.
func ReadSDF(r io.Reader) ([]*Molecule, error) {
	sc := bufio.NewScanner(r)
	ret := make([]*Molecule, 0, 1)
	record := make([]string, 0, 50)
	flush := func() error {
		if len(strings.TrimSpace(strings.Join(record, ""))) == 0 {
			record = record[:0]
			return nil
		}
		m, err := parseMolfile(record)
		if err != nil {
			return errDecorate(err, fmt.Sprintf("ReadSDF: record %d", len(ret)+1))
		}
		ret = append(ret, m)
		record = record[:0]
		return nil
	}
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.HasPrefix(line, "$$$$") {
			if err := flush(); err != nil {
				return nil, err
			}
			continue
		}
		record = append(record, line)
	}
	if err := sc.Err(); err != nil {
		return nil, CError{fmt.Sprintf("Error reading SDF: %s", err.Error()), []string{"ReadSDF"}, true}
	}
	if err := flush(); err != nil {
		return nil, err
	}
	return ret, nil
}

//ReadMolfile reads a single V2000 molfile from r.
func ReadMolfile(r io.Reader) (*Molecule, error) {
	mols, err := ReadSDF(r)
	if err != nil {
		return nil, errDecorate(err, "ReadMolfile")
	}
	if len(mols) == 0 {
		return nil, CError{"No molecule found", []string{"ReadMolfile"}, true}
	}
	return mols[0], nil
}

func molError(msg string, line int) error {
	return CError{fmt.Sprintf("%s (line %d)", msg, line+1), []string{"parseMolfile"}, true}
}

func field(line string, from, to int) string {
	if from >= len(line) {
		return ""
	}
	if to > len(line) {
		to = len(line)
	}
	return strings.TrimSpace(line[from:to])
}

func fieldInt(line string, from, to int) (int, error) {
	s := field(line, from, to)
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}

//parseMolfile parses the lines of a V2000 record. Parities in the atom block are used when given;
//otherwise they are perceived from the coordinates.
func parseMolfile(lines []string) (*Molecule, error) {
	if len(lines) < 4 {
		return nil, molError("Too few lines for a molfile", len(lines))
	}
	m := NewMolecule(strings.TrimSpace(lines[0]))
	counts := lines[3]
	if strings.Contains(counts, "V3000") {
		return nil, molError("V3000 molfiles are not supported", 3)
	}
	natoms, err := fieldInt(counts, 0, 3)
	if err != nil {
		return nil, molError("Malformed counts line", 3)
	}
	nbonds, err := fieldInt(counts, 3, 6)
	if err != nil {
		return nil, molError("Malformed counts line", 3)
	}
	if len(lines) < 4+natoms+nbonds {
		return nil, molError("Not enough lines for the atom and bond blocks", len(lines))
	}
	coords := v3.Zeros(natoms)
	for i := 0; i < natoms; i++ {
		l := lines[4+i]
		var xyz [3]float64
		for j := range xyz {
			xyz[j], err = strconv.ParseFloat(field(l, 10*j, 10*j+10), 64)
			if err != nil {
				return nil, molError("Malformed coordinates", 4+i)
			}
		}
		sym := field(l, 31, 34)
		if sym == "" {
			return nil, molError("Missing element symbol", 4+i)
		}
		chcode, err := fieldInt(l, 36, 39)
		if err != nil {
			return nil, molError("Malformed charge", 4+i)
		}
		parity, err := fieldInt(l, 39, 42)
		if err != nil {
			return nil, molError("Malformed parity", 4+i)
		}
		idx := m.AddAtom(sym, molCharges[chcode])
		if parity >= 1 && parity <= 3 {
			m.Atoms[idx].Parity = Parity(parity)
		}
		coords.Set(i, 0, xyz[0])
		coords.Set(i, 1, xyz[1])
		coords.Set(i, 2, xyz[2])
	}
	either := make([]bool, 0, nbonds)
	for i := 0; i < nbonds; i++ {
		ln := 4 + natoms + i
		l := lines[ln]
		a, err1 := fieldInt(l, 0, 3)
		b, err2 := fieldInt(l, 3, 6)
		order, err3 := fieldInt(l, 6, 9)
		stereo, err4 := fieldInt(l, 9, 12)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			return nil, molError("Malformed bond line", ln)
		}
		if a < 1 || b < 1 || a > natoms || b > natoms || a == b {
			return nil, molError("Bond to a non-existent atom", ln)
		}
		if order < 1 || order > 4 {
			order = 1
		}
		m.AddBond(a-1, b-1, order)
		either = append(either, order == 2 && stereo == 3)
	}
	for ln := 4 + natoms + nbonds; ln < len(lines); ln++ {
		l := lines[ln]
		if strings.HasPrefix(l, "M  END") {
			break
		}
		if !strings.HasPrefix(l, "M  CHG") {
			continue
		}
		f := strings.Fields(l[6:])
		if len(f) == 0 {
			continue
		}
		n, err := strconv.Atoi(f[0])
		if err != nil || len(f) < 1+2*n {
			return nil, molError("Malformed charge line", ln)
		}
		for k := 0; k < n; k++ {
			at, err1 := strconv.Atoi(f[1+2*k])
			ch, err2 := strconv.Atoi(f[2+2*k])
			if err1 != nil || err2 != nil || at < 1 || at > natoms {
				return nil, molError("Malformed charge line", ln)
			}
			m.Atoms[at-1].Charge = ch
		}
	}
	for i, e := range either {
		if e {
			m.Bonds[i].Parity = BondParityUnknown
		}
	}
	if natoms > 0 {
		m.Coords = coords
		m.PerceiveParities()
	}
	return m, nil
}

//WriteMolfile writes the molecule, with the coordinates of c (or those of the molecule, if c is nil)
//as a V2000 molfile record, including the "$$$$" terminator if sdf is true.
func WriteMolfile(w io.Writer, m *Molecule, c *Conformer, sdf bool) error {
	coords := m.Coords
	if c != nil {
		coords = c.Coords
	}
	if coords == nil {
		coords = v3.Zeros(m.Len())
	}
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%s\n  goConf\n\n", m.Name)
	fmt.Fprintf(bw, "%3d%3d  0  0  0  0  0  0  0  0999 V2000\n", m.Len(), m.NBonds())
	chcodes := map[int]int{3: 1, 2: 2, 1: 3, -1: 5, -2: 6, -3: 7}
	for i, at := range m.Atoms {
		p := coords.Vec(i)
		parity := 0
		if at.Parity != ParityNone {
			parity = int(at.Parity)
		}
		fmt.Fprintf(bw, "%10.4f%10.4f%10.4f %-3s 0%3d%3d  0  0  0  0  0  0  0  0  0\n", p.X, p.Y, p.Z, at.Symbol, chcodes[at.Charge], parity)
	}
	for _, b := range m.Bonds {
		order := b.Order
		if b.Aromatic {
			order = 4
		}
		fmt.Fprintf(bw, "%3d%3d%3d  0\n", b.At1+1, b.At2+1, order)
	}
	charged := make([]int, 0)
	for i, at := range m.Atoms {
		if at.Charge != 0 {
			charged = append(charged, i)
		}
	}
	for start := 0; start < len(charged); start += 8 {
		end := start + 8
		if end > len(charged) {
			end = len(charged)
		}
		fmt.Fprintf(bw, "M  CHG%3d", end-start)
		for _, i := range charged[start:end] {
			fmt.Fprintf(bw, " %3d %3d", i+1, m.Atoms[i].Charge)
		}
		fmt.Fprintln(bw)
	}
	fmt.Fprintln(bw, "M  END")
	if sdf {
		fmt.Fprintln(bw, "$$$$")
	}
	if err := bw.Flush(); err != nil {
		return CError{fmt.Sprintf("Error writing molfile: %s", err.Error()), []string{"WriteMolfile"}, true}
	}
	return nil
}

//WriteXYZ writes the conformer in XYZ format, with title as the comment line.
func WriteXYZ(w io.Writer, c *Conformer, title string) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "%d\n%s\n", c.Len(), strings.ReplaceAll(title, "\n", " "))
	for i := 0; i < c.Len(); i++ {
		p := c.Pos(i)
		fmt.Fprintf(bw, "%-2s  %12.6f%12.6f%12.6f\n", c.Mol.Atoms[i].Symbol, p.X, p.Y, p.Z)
	}
	if err := bw.Flush(); err != nil {
		return CError{fmt.Sprintf("Error writing XYZ: %s", err.Error()), []string{"WriteXYZ"}, true}
	}
	return nil
}

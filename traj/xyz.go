/*
 * xyz.go, part of goConf.
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

//Package traj writes and reads sets of conformers as multi-frame XYZ files. Files whose name ends in
//".zst" are compressed with z-standard (zstd), which makes the large sets produced by a
//conformer search reasonably small, while keeping them trivial to read from other programs
//(zstd -d file.xyz.zst gives a regular XYZ file).
//
//Each frame has the usual XYZ layout: the number of atoms, a comment line, and one line per atom
//with the element symbol and the x y z coordinates, in A.
package traj

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/klauspost/compress/zstd"

	"github.com/rmera/goconf/chem"
	v3 "github.com/rmera/goconf/v3"
)

//Compressed returns true if a file with the given name is compressed.
func Compressed(name string) bool {
	return strings.HasSuffix(strings.ToLower(name), ".zst")
}

//Writer writes conformers of one molecule to a file.
type Writer struct {
	f         *os.File
	z         *zstd.Encoder
	w         *bufio.Writer
	mol       *chem.Molecule
	filename  string
	frames    int
	writeable bool
}

//NewWriter creates the file name, where conformers of m will be written. If the file is
//compressed and a level is given, it is used instead of the default zstd level.
func NewWriter(name string, m *chem.Molecule, level ...zstd.EncoderLevel) (*Writer, error) {
	W := &Writer{mol: m, filename: name}
	var err error
	W.f, err = os.Create(name)
	if err != nil {
		return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
	}
	var out io.Writer = W.f
	if Compressed(name) {
		opts := []zstd.EOption{}
		if len(level) > 0 {
			opts = append(opts, zstd.WithEncoderLevel(level[0]))
		}
		W.z, err = zstd.NewWriter(W.f, opts...)
		if err != nil {
			W.f.Close()
			return nil, Error{err.Error(), name, []string{"NewWriter"}, true}
		}
		out = W.z
	}
	W.w = bufio.NewWriter(out)
	W.writeable = true
	return W, nil
}

//Len returns the number of atoms per frame.
func (W *Writer) Len() int {
	return W.mol.Len()
}

//Frames returns the number of frames written so far.
func (W *Writer) Frames() int {
	return W.frames
}

//WNext writes c as a new frame, with the given comment. Newlines in the comment are replaced by spaces.
func (W *Writer) WNext(c *chem.Conformer, comment string) error {
	if !W.writeable {
		return Error{TrajUnIniWrite, W.filename, []string{"WNext"}, true}
	}
	if c == nil || c.Coords == nil {
		return Error{NilCoordinates, W.filename, []string{"WNext"}, true}
	}
	if c.Len() != W.mol.Len() {
		return Error{fmt.Sprintf("%d coordinates given, but %d expected", c.Len(), W.mol.Len()), W.filename, []string{"WNext"}, true}
	}
	if err := chem.WriteXYZ(W.w, c, comment); err != nil {
		return Error{err.Error(), W.filename, []string{"WNext"}, true}
	}
	W.frames++
	return nil
}

//Close flushes and closes the file. The writer can't be used after this call.
func (W *Writer) Close() error {
	if W == nil || !W.writeable {
		return nil
	}
	W.writeable = false
	err := W.w.Flush()
	if W.z != nil {
		if err2 := W.z.Close(); err == nil {
			err = err2
		}
	}
	if err2 := W.f.Close(); err == nil {
		err = err2
	}
	if err != nil {
		return Error{err.Error(), W.filename, []string{"Close"}, true}
	}
	return nil
}

//Reader reads the frames of a multi-frame XYZ file.
type Reader struct {
	f        *os.File
	z        *zstd.Decoder
	h        *bufio.Reader
	filename string
	natoms   int
	symbols  []string
	pending  bool //the atom count of the next frame was already read
	frames   int
	readable bool
}

//New opens the file name for reading. The atom count of the first frame is read, so an
//empty file is an error.
func New(name string) (*Reader, error) {
	R := &Reader{filename: name}
	var err error
	R.f, err = os.Open(name)
	if err != nil {
		return nil, Error{UnableToOpen + ": " + err.Error(), name, []string{"New"}, true}
	}
	var in io.Reader = R.f
	if Compressed(name) {
		R.z, err = zstd.NewReader(bufio.NewReader(R.f))
		if err != nil {
			R.f.Close()
			return nil, Error{err.Error(), name, []string{"New"}, true}
		}
		in = R.z
	}
	R.h = bufio.NewReader(in)
	R.readable = true
	R.natoms, err = R.count()
	if err != nil {
		R.Close()
		if err == io.EOF {
			return nil, Error{"Empty trajectory", name, []string{"New"}, true}
		}
		return nil, errDecorate(err, "New")
	}
	R.pending = true
	return R, nil
}

//Len returns the number of atoms per frame.
func (R *Reader) Len() int {
	return R.natoms
}

//Symbols returns the element symbols of the atoms, as read in the first frame. It
//returns nil before the first call to Next.
func (R *Reader) Symbols() []string {
	return R.symbols
}

//Readable returns true if Next can be called on the reader.
func (R *Reader) Readable() bool {
	return R.readable
}

//count reads the first line of a frame.
func (R *Reader) count() (int, error) {
	line, err := R.h.ReadString('\n')
	if err == io.EOF && strings.TrimSpace(line) == "" {
		return 0, io.EOF
	}
	if err != nil && err != io.EOF {
		return 0, Error{ReadError + ": " + err.Error(), R.filename, []string{"count"}, true}
	}
	n, err := strconv.Atoi(strings.TrimSpace(line))
	if err != nil || n < 0 {
		return 0, Error{WrongFormat + ": bad atom count " + strings.TrimSpace(line), R.filename, []string{"count"}, true}
	}
	return n, nil
}

//Next reads the next frame into c, and returns its comment line. If c is nil, the frame
//is read and checked, but its coordinates are discarded. The error is io.EOF if
//the trajectory has ended, in which case the reader is closed.
func (R *Reader) Next(c *v3.Matrix) (string, error) {
	if !R.readable {
		return "", Error{TrajUnIniRead, R.filename, []string{"Next"}, true}
	}
	if c != nil && c.NVecs() != R.natoms {
		return "", Error{fmt.Sprintf("Matrix has %d vectors, but %d atoms per frame expected", c.NVecs(), R.natoms), R.filename, []string{"Next"}, true}
	}
	if !R.pending {
		n, err := R.count()
		if err == io.EOF {
			R.Close()
			return "", io.EOF
		}
		if err != nil {
			return "", errDecorate(err, "Next")
		}
		if n != R.natoms {
			return "", Error{fmt.Sprintf("Frame %d has %d atoms, but %d expected", R.frames+1, n, R.natoms), R.filename, []string{"Next"}, true}
		}
	}
	R.pending = false
	comment, err := R.h.ReadString('\n')
	if err != nil {
		return "", Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
	}
	comment = strings.TrimRight(comment, "\r\n")
	first := R.symbols == nil
	for i := 0; i < R.natoms; i++ {
		line, err := R.h.ReadString('\n')
		if err != nil && (err != io.EOF || line == "") {
			return "", Error{ReadError + ": " + err.Error(), R.filename, []string{"Next"}, true}
		}
		fields := strings.Fields(line)
		if len(fields) < 4 {
			return "", Error{WrongFormat + ": " + strings.TrimSpace(line), R.filename, []string{"Next"}, true}
		}
		if first {
			R.symbols = append(R.symbols, fields[0])
		}
		for j, s := range fields[1:4] {
			v, err := strconv.ParseFloat(s, 64)
			if err != nil {
				return "", Error{fmt.Sprintf("Can't parse coordinate %d of atom %d: %s", j, i, err.Error()), R.filename, []string{"Next"}, true}
			}
			if c != nil {
				c.Set(i, j, v)
			}
		}
	}
	R.frames++
	return comment, nil
}

//Close closes the reader and marks it as unreadable.
func (R *Reader) Close() {
	if !R.readable {
		return
	}
	if R.z != nil {
		R.z.Close()
	}
	R.f.Close()
	R.readable = false
}

//Errors

//errDecorate is a helper function that asserts that the error
//implements chem.Error and decorates the error with the caller's name before returning it.
//if used with a non-chem.Error error, it will cause a panic.
func errDecorate(err error, caller string) error {
	err2 := err.(chem.Error)
	err2.Decorate(caller)
	return err2
}

//Error is the general structure for trajectory errors. It fullfills chem.Error.
type Error struct {
	message  string
	filename string //the file that has problems, or empty string if none.
	deco     []string
	critical bool
}

func (err Error) Error() string {
	return fmt.Sprintf("xyz file %s error: %s", err.filename, err.message)
}

//Decorate Adds new information to the error
func (E Error) Decorate(deco string) []string {
	if deco != "" {
		E.deco = append(E.deco, deco)
	}
	return E.deco
}

//FileName returns the file to which the failing trajectory was associated
func (err Error) FileName() string { return err.filename }

//Critical returns true if the error is critical, false otherwise
func (err Error) Critical() bool { return err.critical }

const (
	TrajUnIniRead  = "Traj object uninitialized to read"
	TrajUnIniWrite = "Traj object uninitialized to write"
	ReadError      = "Error reading frame"
	UnableToOpen   = "Unable to open file"
	NilCoordinates = "Given nil coordinates"
	WrongFormat    = "Wrong format in the XYZ file or frame"
)

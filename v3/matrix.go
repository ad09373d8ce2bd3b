/*
 * matrix.go, part of goConf.
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

//matrix.go contains the Matrix type and most of what is needed to handle gonum's
//mat types and the r3 vectors used by the geometric code in goConf.

package v3

import (
	"fmt"
	"math"
	"strings"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"
)

//Matrix is a set of vectors in 3D space, backed by a gonum Dense.
//Within the package it is understood that a "vector" is a row vector, i.e. the
//cartesian coordinates of a point in 3D space.
type Matrix struct {
	*mat.Dense
}

//Dense2Matrix wraps a Nx3 gonum Dense in a Matrix. It panics if A doesn't have 3 columns.
func Dense2Matrix(A *mat.Dense) *Matrix {
	_, c := A.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return &Matrix{A}
}

//NewMatrix generates and returns a Matrix with 3 columns from data.
func NewMatrix(data []float64) (*Matrix, error) {
	const cols int = 3
	l := len(data)
	rows := l / cols
	if l%cols != 0 || l == 0 {
		return nil, Error{fmt.Sprintf("Input slice length %d not divisible by %d: %d", l, cols, l%cols), []string{"NewMatrix"}, true}
	}
	return &Matrix{mat.NewDense(rows, cols, data)}, nil
}

//Zeros returns a zero-filled Matrix with vecs vectors and 3 in the other dimension.
func Zeros(vecs int) *Matrix {
	const cols int = 3
	f := make([]float64, cols*vecs)
	return &Matrix{mat.NewDense(vecs, cols, f)}
}

//NVecs return the number of (row) vectors in F.
func (F *Matrix) NVecs() int {
	r, c := F.Dims()
	if c != 3 {
		panic(ErrNotXx3Matrix)
	}
	return r
}

//Clone returns a deep copy of F.
func (F *Matrix) Clone() *Matrix {
	ret := Zeros(F.NVecs())
	ret.Copy(F.Dense)
	return ret
}

//VecView returns view of the ith vector of the matrix.
func (F *Matrix) VecView(i int) *Matrix {
	r := F.Dense.Slice(i, i+1, 0, 3).(*mat.Dense)
	return &Matrix{r}
}

//View returns a view of F starting from i,j and spanning r rows and
//c columns. Changes in the view are reflected in F and vice-versa
func (F *Matrix) View(i, j, r, c int) *Matrix {
	ret := F.Dense.Slice(i, i+r, j, j+c).(*mat.Dense)
	return &Matrix{ret}
}

//Vec returns the ith vector of F as an r3.Vec.
func (F *Matrix) Vec(i int) r3.Vec {
	return r3.Vec{X: F.At(i, 0), Y: F.At(i, 1), Z: F.At(i, 2)}
}

//SetVec sets the ith vector of F to v.
func (F *Matrix) SetVec(i int, v r3.Vec) {
	F.Set(i, 0, v.X)
	F.Set(i, 1, v.Y)
	F.Set(i, 2, v.Z)
}

//SomeVecs Returns a matrix contaning all the ith rows of matrix A,
//where i are the numbers in clist. The rows are in the same order
//than the clist. The numbers in clist must be positive.
func (F *Matrix) SomeVecs(A *Matrix, clist []int) {
	if F.NVecs() < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		F.SetVec(key, A.Vec(val))
	}
}

//SetVecs sets the vector F[clist[i]] to the vector A[i], for all indexes i in clist.
//nth vector of A. Indexes i must be positive or 0
func (F *Matrix) SetVecs(A *Matrix, clist []int) {
	if A.NVecs() < len(clist) {
		panic(ErrShape)
	}
	for key, val := range clist {
		F.SetVec(val, A.Vec(key))
	}
}

//AddVec adds the vector v to each vector of A and puts the result in F.
func (F *Matrix) AddVec(A *Matrix, v r3.Vec) {
	if F.NVecs() != A.NVecs() {
		panic(ErrShape)
	}
	for i := 0; i < A.NVecs(); i++ {
		F.SetVec(i, r3.Add(A.Vec(i), v))
	}
}

//SubVec subtracts the vector v from each vector of A and puts the result in F.
func (F *Matrix) SubVec(A *Matrix, v r3.Vec) {
	F.AddVec(A, r3.Scale(-1, v))
}

//Centroid returns the geometric center of the vectors of F with the given indexes,
//or of all the vectors of F if no index is given.
func (F *Matrix) Centroid(indexes ...int) r3.Vec {
	var ret r3.Vec
	if len(indexes) == 0 {
		n := F.NVecs()
		for i := 0; i < n; i++ {
			ret = r3.Add(ret, F.Vec(i))
		}
		return r3.Scale(1/float64(n), ret)
	}
	for _, v := range indexes {
		ret = r3.Add(ret, F.Vec(v))
	}
	return r3.Scale(1/float64(len(indexes)), ret)
}

//Stack puts A stacked over B in F
func (F *Matrix) Stack(A, B *Matrix) {
	ar := A.NVecs()
	br := B.NVecs()
	if F.NVecs() < ar+br {
		panic(ErrShape)
	}
	for i := 0; i < ar; i++ {
		F.SetVec(i, A.Vec(i))
	}
	for i := 0; i < br; i++ {
		F.SetVec(ar+i, B.Vec(i))
	}
}

//String returns a neat string representation of a Matrix
func (F *Matrix) String() string {
	r, c := F.Dims()
	v := make([]string, r)
	for i := 0; i < r; i++ {
		row := make([]string, c)
		for j := 0; j < c; j++ {
			row[j] = fmt.Sprintf("%8.4f", F.At(i, j))
		}
		v[i] = strings.Join(row, " ")
	}
	return "[" + strings.Join(v, "\n ") + "]"
}

//Axes contains the principal axes of a set of points, obtained from the
//singular value decomposition of the centered coordinates. Vectors[0] corresponds
//to the largest singular value and Vectors[2] to the smallest.
type Axes struct {
	Centroid r3.Vec
	Vectors  [3]r3.Vec
	Values   [3]float64
}

//Normal returns the direction normal to the best plane through the points.
func (A *Axes) Normal() r3.Vec {
	return A.Vectors[2]
}

//Line returns the direction of the best line through the points.
func (A *Axes) Line() r3.Vec {
	return A.Vectors[0]
}

//PrincipalAxes returns the principal axes of the vectors of F with the given indexes.
//It returns an error if the decomposition fails or less than two points are given.
func PrincipalAxes(F *Matrix, indexes []int) (*Axes, error) {
	if len(indexes) < 2 {
		return nil, Error{ErrNotEnoughElements.Error(), []string{"PrincipalAxes"}, true}
	}
	ret := new(Axes)
	ret.Centroid = F.Centroid(indexes...)
	centered := mat.NewDense(len(indexes), 3, nil)
	for i, v := range indexes {
		p := r3.Sub(F.Vec(v), ret.Centroid)
		centered.Set(i, 0, p.X)
		centered.Set(i, 1, p.Y)
		centered.Set(i, 2, p.Z)
	}
	var svd mat.SVD
	if ok := svd.Factorize(centered, mat.SVDFull); !ok {
		return nil, Error{string(ErrSVD), []string{"PrincipalAxes"}, true}
	}
	var v mat.Dense
	svd.VTo(&v)
	vals := svd.Values(nil)
	for i := 0; i < 3; i++ {
		ret.Vectors[i] = r3.Vec{X: v.At(0, i), Y: v.At(1, i), Z: v.At(2, i)}
		if i < len(vals) {
			ret.Values[i] = vals[i]
		}
	}
	return ret, nil
}

//Errors

//Error is the error type of this package. It is the same as chem.Error,
//which can't be used here to avoid a circular import.
type Error struct {
	message  string
	deco     []string
	critical bool
}

//Error returns a string with an error message.
func (err Error) Error() string {
	return err.message
}

//Decorate will add the dec string to the decoration slice of strings of the error,
//and return the resulting slice.
func (err Error) Decorate(dec string) []string {
	err.deco = append(err.deco, dec)
	return err.deco
}

//Critical return whether the error is critical or it can be ignored
func (err Error) Critical() bool { return err.critical }

//PanicMsg is a message used for panics, even though it does satisfy the error interface.
//for errors use Error.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const (
	ErrNotXx3Matrix      = PanicMsg("goConf/v3: A Matrix should have 3 columns")
	ErrNotEnoughElements = PanicMsg("goConf/v3: not enough elements in Matrix")
	ErrSVD               = PanicMsg("goConf/v3: Can't obtain the singular value decomposition of the given matrix")
	ErrShape             = PanicMsg("goConf/v3: Dimension mismatch")
)

//appzero is the tolerance under which a vector norm is considered zero.
const appzero float64 = 1e-8

//IsZero returns true if the norm of v is below the tolerance used in goConf.
func IsZero(v r3.Vec) bool {
	return r3.Norm(v) < appzero
}

//Perpendicular returns a unit vector perpendicular to v. v must not be zero.
func Perpendicular(v r3.Vec) r3.Vec {
	u := r3.Unit(v)
	trial := r3.Vec{X: 1}
	if math.Abs(u.X) > 0.9 {
		trial = r3.Vec{Y: 1}
	}
	return r3.Unit(r3.Cross(u, trial))
}

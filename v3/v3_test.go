/*
 * v3_test.go, part of goConf.
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

package v3

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/spatial/r3"
)

func TestSomeVecs(Te *testing.T) {
	a := []float64{1.0, 2.0, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15, 16, 17, 18}
	A, err := NewMatrix(a)
	if err != nil {
		Te.Fatal(err)
	}
	B := Zeros(3)
	cind := []int{1, 3, 5}
	B.SomeVecs(A, cind)
	if B.Vec(2) != (r3.Vec{X: 16, Y: 17, Z: 18}) {
		Te.Errorf("SomeVecs copied the wrong vector: %v", B.Vec(2))
	}
	B.Set(1, 1, 55)
	A.SetVecs(B, cind)
	if A.At(3, 1) != 55 {
		Te.Errorf("SetVecs didn't put the changes back in A:\n%s", A)
	}
}

func TestNewMatrixError(Te *testing.T) {
	if _, err := NewMatrix([]float64{1, 2, 3, 4}); err == nil {
		Te.Error("NewMatrix should fail for slices not divisible by 3")
	}
}

func TestViews(Te *testing.T) {
	A, _ := NewMatrix([]float64{1, 2, 3, 4, 5, 6, 7, 8, 9})
	v := A.VecView(1)
	v.Set(0, 0, 100)
	if A.At(1, 0) != 100 {
		Te.Errorf("A change in the view should be reflected in the matrix:\n%s", A)
	}
	C := A.Clone()
	C.Set(0, 0, -1)
	if A.At(0, 0) == -1 {
		Te.Error("Clone should not share data with the original")
	}
	C.AddVec(C, r3.Vec{X: 1, Y: 1, Z: 1})
	if C.At(2, 2) != 10 {
		Te.Errorf("AddVec failed:\n%s", C)
	}
	C.SubVec(C, r3.Vec{X: 1, Y: 1, Z: 1})
	if C.At(2, 2) != 9 {
		Te.Errorf("SubVec failed:\n%s", C)
	}
	S := Zeros(6)
	S.Stack(A, C)
	if S.Vec(3) != C.Vec(0) {
		Te.Errorf("Stack failed:\n%s", S)
	}
}

func TestPrincipalAxes(Te *testing.T) {
	//points on the z=1 plane, spread mostly along x.
	A, _ := NewMatrix([]float64{
		-3, 0.5, 1,
		-1, -0.5, 1,
		1, 0.5, 1,
		3, -0.5, 1,
	})
	axes, err := PrincipalAxes(A, []int{0, 1, 2, 3})
	if err != nil {
		Te.Fatal(err)
	}
	if n := axes.Normal(); math.Abs(math.Abs(n.Z)-1) > 1e-8 {
		Te.Errorf("The normal should be along z, got %v", n)
	}
	if l := axes.Line(); math.Abs(math.Abs(l.X)-1) > 0.05 {
		Te.Errorf("The line should be mostly along x, got %v", l)
	}
	if axes.Values[2] > 1e-8 {
		Te.Errorf("Coplanar points should have a zero smallest singular value, got %v", axes.Values)
	}
	if c := axes.Centroid; math.Abs(c.Z-1) > 1e-10 || math.Abs(c.X) > 1e-10 {
		Te.Errorf("Wrong centroid %v", c)
	}
}

func TestPerpendicular(Te *testing.T) {
	for _, v := range []r3.Vec{{X: 1}, {Y: 2}, {X: 1, Y: 1, Z: 1}, {Z: -3}} {
		p := Perpendicular(v)
		if math.Abs(r3.Dot(p, v)) > 1e-10 || math.Abs(r3.Norm(p)-1) > 1e-10 {
			Te.Errorf("%v is not a unit vector perpendicular to %v", p, v)
		}
	}
}

/*
 * geometric.go, part of goConf.
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
	"math"

	"gonum.org/v1/gonum/spatial/r3"

	v3 "github.com/rmera/goconf/v3"
)

const (
	Deg2Rad = math.Pi / 180
	Rad2Deg = 180 / math.Pi
)

//appzero is used to correct floating point errors. Everything equal or less than this is considered zero.
const appzero float64 = 1e-8

//Angle takes 2 vectors and calculate the angle in radians between them
//It does not check for correctness or return errors!
func Angle(v1, v2 r3.Vec) float64 {
	normproduct := r3.Norm(v1) * r3.Norm(v2)
	if normproduct <= appzero {
		return 0
	}
	argument := r3.Dot(v1, v2) / normproduct
	//Take care of floating point math errors
	if argument > 1 {
		argument = 1
	} else if argument < -1 {
		argument = -1
	}
	return math.Acos(argument)
}

//Dihedral calculate the dihedral, in degrees and in the [0,360) range, between the points a, b, c, d,
//where the first plane is defined by abc and the second by bcd. Rotating d around the b->c axis by a
//positive (right-handed) angle increases the dihedral by the same amount.
func Dihedral(a, b, c, d r3.Vec) float64 {
	bma := r3.Sub(b, a)
	cmb := r3.Sub(c, b)
	dmc := r3.Sub(d, c)
	first := r3.Dot(r3.Scale(r3.Norm(cmb), bma), r3.Cross(cmb, dmc))
	second := r3.Dot(r3.Cross(bma, cmb), r3.Cross(cmb, dmc))
	return NormalizeAngle(math.Atan2(first, second) * Rad2Deg)
}

//NormalizeAngle returns the angle, in degrees, brought to the [0,360) range.
func NormalizeAngle(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	if deg >= 360 {
		deg = 0
	}
	return deg
}

//AngleDiff returns the signed difference to-from, in degrees, in the (-180,180] range.
func AngleDiff(from, to float64) float64 {
	d := NormalizeAngle(to - from)
	if d > 180 {
		d -= 360
	}
	return d
}

//RotateAbout rotates the vectors of coords with the given indexes by angle degrees around the axis
//that goes from ax1 to ax2, in place. It does nothing if the axis has zero length.
func RotateAbout(coords *v3.Matrix, indexes []int, ax1, ax2 r3.Vec, angle float64) {
	axis := r3.Sub(ax2, ax1)
	if v3.IsZero(axis) || angle == 0 {
		return
	}
	rot := r3.NewRotation(angle*Deg2Rad, axis)
	for _, i := range indexes {
		p := r3.Sub(coords.Vec(i), ax1)
		coords.SetVec(i, r3.Add(rot.Rotate(p), ax1))
	}
}

//Mirror reflects the vectors of coords with the given indexes through the plane that contains point
//and is perpendicular to normal, in place.
func Mirror(coords *v3.Matrix, indexes []int, point, normal r3.Vec) {
	if v3.IsZero(normal) {
		return
	}
	n := r3.Unit(normal)
	for _, i := range indexes {
		p := coords.Vec(i)
		d := r3.Dot(r3.Sub(p, point), n)
		coords.SetVec(i, r3.Sub(p, r3.Scale(2*d, n)))
	}
}

//AlignRotation returns a rotation that takes the direction from onto the direction to. When the directions
//are antiparallel within tolerance, a 180 degree rotation around an axis perpendicular to from is used.
//When they are parallel, ok is false and no rotation is needed.
func AlignRotation(from, to r3.Vec) (rot r3.Rotation, ok bool) {
	const tol = 1e-6
	u := r3.Unit(from)
	w := r3.Unit(to)
	axis := r3.Cross(u, w)
	cos := r3.Dot(u, w)
	if r3.Norm(axis) < tol {
		if cos > 0 {
			return rot, false
		}
		return r3.NewRotation(math.Pi, v3.Perpendicular(u)), true
	}
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return r3.NewRotation(math.Acos(cos), axis), true
}

//LawOfCosines returns the distance between the ends of two segments of lengths a and b that
//form an angle of angle degrees.
func LawOfCosines(a, b, angle float64) float64 {
	d2 := a*a + b*b - 2*a*b*math.Cos(angle*Deg2Rad)
	if d2 < 0 {
		return 0
	}
	return math.Sqrt(d2)
}

//TorsionDistance returns the distance between the outer atoms a and d of a chain a-b-c-d,
//where |ab|=d1, |bc|=l, |cd|=d3, the angle abc is alpha1, the angle bcd is alpha3 and the
//dihedral is phi. All angles in degrees. For a linear stretch between b and c, l is the
//length of the whole stretch.
func TorsionDistance(d1, l, d3, alpha1, alpha3, phi float64) float64 {
	a1 := alpha1 * Deg2Rad
	a3 := alpha3 * Deg2Rad
	x := l - d1*math.Cos(a1) - d3*math.Cos(a3)
	s1 := d1 * math.Sin(a1)
	s3 := d3 * math.Sin(a3)
	d2 := x*x + s1*s1 + s3*s3 - 2*s1*s3*math.Cos(phi*Deg2Rad)
	if d2 < 0 {
		return 0
	}
	return math.Sqrt(d2)
}

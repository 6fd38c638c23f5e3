/*
 * cell.go, part of dhva.
 *
 * Copyright 2026 The dhva authors
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

package lattice

import (
	"math"

	dhva "github.com/dhvatools/dhva"
	v3 "github.com/dhvatools/dhva/v3"
)

//Cell holds the direct and reciprocal lattice vectors of a crystal.
//Row i of Direct is the lattice vector i, in bohr. Row i of Reciprocal is
//the reciprocal lattice vector i, in inverse bohr, including the 2*pi factor, so
//that Reciprocal*Direct^T = 2*pi*I.
type Cell struct {
	Direct     *v3.Matrix
	Reciprocal *v3.Matrix
	volume     float64
}

//Volume returns the volume of the direct cell in cubic bohr.
func (C *Cell) Volume() float64 {
	return C.volume
}

//ScaledReciprocal returns a copy of the reciprocal lattice vectors without the 2*pi factor.
func (C *Cell) ScaledReciprocal() *v3.Matrix {
	ret := v3.Zeros(3)
	ret.Scale(1/dhva.TwoPi, C.Reciprocal)
	return ret
}

//BXSFVectors returns the three vectors written in the header of a BXSF band grid
//for this cell, in inverse bohr and without the 2*pi factor. Vector j holds the
//j-th cartesian component of the three reciprocal lattice vectors,
//which is what the dhva BXSF reader expects.
func (C *Cell) BXSFVectors() [3][3]float64 {
	var ret [3][3]float64
	for j := 0; j < 3; j++ {
		for i := 0; i < 3; i++ {
			ret[j][i] = C.Reciprocal.At(i, j) / dhva.TwoPi
		}
	}
	return ret
}

//validParams checks everything that can be checked before building the cell.
func validParams(a, b, c float64, S *Structure) error {
	for _, l := range []float64{a, b, c} {
		if !(l > 0) || math.IsInf(l, 0) {
			return dhva.Errorf(dhva.ErrDomain, "validParams", "lattice constants must be positive and finite, got %g %g %g", S.A, S.B, S.C)
		}
	}
	for _, an := range []float64{S.Alpha, S.Beta, S.Gamma} {
		if !(an > 0 && an < math.Pi) {
			return dhva.Errorf(dhva.ErrDomain, "validParams", "axis angles must be in (0,180) degrees, got %g %g %g",
				S.Alpha*dhva.Rad2Deg, S.Beta*dhva.Rad2Deg, S.Gamma*dhva.Rad2Deg)
		}
	}
	return nil
}

//Build returns the direct and reciprocal cells for the structure S.
//The lattice vectors are
//  d1 = (a1, a2, a3)
//  d2 = (0,  b2, b3)
//  d3 = (0,  0,  c)
//with b3 = b cos(alpha), b2 = sqrt(b^2-b3^2), a3 = a cos(beta),
//a2 = (ab cos(gamma) - a3 b3)/b2 and a1 = sqrt(a^2 - a2^2 - a3^2).
//It fails with a dhva.ErrDomain error if the angles don't describe a real cell.
func Build(S *Structure) (*Cell, error) {
	f := S.Unit.ToBohr()
	a, b, c := S.A*f, S.B*f, S.C*f
	if err := validParams(a, b, c, S); err != nil {
		return nil, dhva.ErrDecorate(err, "Build")
	}
	b3 := math.Cos(S.Alpha) * b
	rad := b*b - b3*b3
	if rad <= 0 {
		return nil, dhva.Errorf(dhva.ErrDomain, "Build", "b^2-b3^2 = %g, alpha=%g is not a valid angle", rad, S.Alpha*dhva.Rad2Deg)
	}
	b2 := math.Sqrt(rad)
	a3 := math.Cos(S.Beta) * a
	a2 := (a*b*math.Cos(S.Gamma) - a3*b3) / b2
	rad = a*a - a2*a2 - a3*a3
	if rad < 0 {
		return nil, dhva.Errorf(dhva.ErrDomain, "Build", "a^2-a2^2-a3^2 = %g, the angles %g %g %g can't form a cell", rad,
			S.Alpha*dhva.Rad2Deg, S.Beta*dhva.Rad2Deg, S.Gamma*dhva.Rad2Deg)
	}
	a1 := math.Sqrt(rad)
	direct, _ := v3.NewMatrix([]float64{
		a1, a2, a3,
		0, b2, b3,
		0, 0, c,
	})
	d1, d2, d3 := direct.VecView(0), direct.VecView(1), direct.VecView(2)
	recip := v3.Zeros(3)
	r1, r2, r3 := recip.VecView(0), recip.VecView(1), recip.VecView(2)
	r1.Cross(d2, d3)
	r2.Cross(d3, d1)
	r3.Cross(d1, d2)
	volume := d1.Dot(r1)
	if volume == 0 || math.IsNaN(volume) || math.IsInf(volume, 0) {
		return nil, dhva.Errorf(dhva.ErrDomain, "Build", "the cell has volume %g", volume)
	}
	recip.Dense.Scale(dhva.TwoPi/volume, recip.Dense)
	return &Cell{Direct: direct, Reciprocal: recip, volume: volume}, nil
}

//FromFile reads the structure description in name and builds its cell.
func FromFile(name string) (*Structure, *Cell, error) {
	S, err := ReadStructure(name)
	if err != nil {
		return nil, nil, dhva.ErrDecorate(err, "FromFile")
	}
	C, err := Build(S)
	if err != nil {
		return nil, nil, dhva.SetFile(dhva.ErrDecorate(err, "FromFile"), name)
	}
	return S, C, nil
}

/*
 * kmesh.go, part of dhva.
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

//Package kmesh generates uniform meshes of points in reciprocal space, and writes them
//in the =.kp format read by FPLO.
//
//The points of a mesh are always enumerated with the x index varying slowest and
//the z index fastest. The band tables computed on a mesh follow the same order, so
//Index is the only mapping between a row of a band table and a point of the 3D grid.
package kmesh

import (
	"fmt"
	"io"
	"math"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/lattice"
	v3 "github.com/dhvatools/dhva/v3"
)

//Dims is the number of points of a mesh along each axis.
type Dims struct {
	NX, NY, NZ int
}

//Count returns the total number of points in the mesh.
func (D Dims) Count() int {
	return D.NX * D.NY * D.NZ
}

//Check returns a dhva.ErrValidation error if any dimension is not positive.
func (D Dims) Check() error {
	if D.NX <= 0 || D.NY <= 0 || D.NZ <= 0 {
		return dhva.Errorf(dhva.ErrValidation, "Check", "grid dimensions must be positive, got %d %d %d", D.NX, D.NY, D.NZ)
	}
	return nil
}

//Index returns the position of the point (ix,iy,iz) in the enumeration of the mesh.
func (D Dims) Index(ix, iy, iz int) int {
	return ix*D.NY*D.NZ + iy*D.NZ + iz
}

func (D Dims) String() string {
	return fmt.Sprintf("%dx%dx%d", D.NX, D.NY, D.NZ)
}

//Options are written in the header of the =.kp file. They are
//not used by this package.
type Options struct {
	PartialOnly bool //only the partially occupied bands are wanted.
	LowerOffset int
	UpperOffset int
}

//DefaultOptions are the settings the mesh files have always been written with.
func DefaultOptions() Options {
	return Options{PartialOnly: true}
}

//Mesh is a set of points in reciprocal space.
type Mesh struct {
	Dims
	Opts       Options
	Fractional *v3.Matrix
	Points     *v3.Matrix //cartesian coordinates, one point per row.
}

//Fractional returns the fractional coordinates of a mesh of nx*ny*nz points, uniformly
//distributed over [-0.5,0.5) along each axis.
func Fractional(d Dims) (*v3.Matrix, error) {
	if err := d.Check(); err != nil {
		return nil, dhva.ErrDecorate(err, "Fractional")
	}
	coords := func(n int) []float64 {
		ret := make([]float64, n)
		step := 1 / float64(n)
		for i := range ret {
			ret[i] = -0.5 + float64(i)*step
		}
		return ret
	}
	xs, ys, zs := coords(d.NX), coords(d.NY), coords(d.NZ)
	F := v3.Zeros(d.Count())
	for ix, x := range xs {
		for iy, y := range ys {
			for iz, z := range zs {
				F.SetVec(d.Index(ix, iy, iz), [3]float64{x, y, z})
			}
		}
	}
	return F, nil
}

//Scaling returns the matrix that takes fractional mesh coordinates to the
//cartesian coordinates used in the =.kp files. These are in units of
//2*pi/a, with a the length of the first lattice vector.
func Scaling(C *lattice.Cell) *v3.Matrix {
	a := C.Direct.VecView(0).Norm()
	cm := v3.Zeros(3)
	//a*b first, then divided by 2 and by pi, in this order. The =.kp files are compared as text.
	cm.Dense.Apply(func(_, _ int, v float64) float64 {
		return a * v / 2.0 / math.Pi
	}, C.Reciprocal.Dense)
	return cm
}

//Generate returns the mesh of d points for the cell C.
func Generate(C *lattice.Cell, d Dims, opts Options) (*Mesh, error) {
	F, err := Fractional(d)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "Generate")
	}
	P := v3.Zeros(d.Count())
	P.Mul(F, Scaling(C))
	return &Mesh{Dims: d, Opts: opts, Fractional: F, Points: P}, nil
}

//WriteTo writes the mesh to w in the =.kp format.
func (M *Mesh) WriteTo(w io.Writer) (int64, error) {
	flag := "f"
	if M.Opts.PartialOnly {
		flag = "t"
	}
	var written int64
	n, err := fmt.Fprintf(w, "%d %s %d %d\n", M.Count(), flag, M.Opts.LowerOffset, M.Opts.UpperOffset)
	written += int64(n)
	if err != nil {
		return written, dhva.NewError(dhva.ErrIO, "WriteTo", "", "can't write mesh header", err)
	}
	for i := 0; i < M.Points.NVecs(); i++ {
		p := M.Points.Vec(i)
		n, err = fmt.Fprintf(w, "% .14f % .14f % .14f\n", p[0], p[1], p[2])
		written += int64(n)
		if err != nil {
			return written, dhva.NewError(dhva.ErrIO, "WriteTo", "", fmt.Sprintf("can't write point %d", i), err)
		}
	}
	return written, nil
}

//WriteFile writes the mesh to the file name. The file only appears if
//the whole mesh was written.
func (M *Mesh) WriteFile(name string) error {
	err := dhva.WriteAtomic(name, func(w io.Writer) error {
		_, err := M.WriteTo(w)
		return err
	})
	return dhva.ErrDecorate(err, "WriteFile")
}

/*
 * grid.go, part of dhva.
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

package bands

import (
	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/kmesh"
)

//Grid holds the energies of one band on a 3D k-point mesh. The values
//are stored in the order of the mesh, see kmesh.Dims.Index.
type Grid struct {
	kmesh.Dims
	values []float64
}

//Reshape returns a grid with the dimensions d for the values, which
//must be in mesh order. The values are not copied.
func Reshape(values []float64, d kmesh.Dims) (*Grid, error) {
	if err := d.Check(); err != nil {
		return nil, dhva.ErrDecorate(err, "Reshape")
	}
	if len(values) != d.Count() {
		return nil, dhva.Errorf(dhva.ErrValidation, "Reshape", "a %s grid needs %d values, got %d", d, d.Count(), len(values))
	}
	return &Grid{Dims: d, values: values}, nil
}

//At returns the energy at the point (ix,iy,iz) of the grid.
func (G *Grid) At(ix, iy, iz int) float64 {
	if ix < 0 || ix >= G.NX || iy < 0 || iy >= G.NY || iz < 0 || iz >= G.NZ {
		panic(ErrOutOfGrid)
	}
	return G.values[G.Index(ix, iy, iz)]
}

//Flat returns the values of the grid, in mesh order.
func (G *Grid) Flat() []float64 {
	return G.values
}

//PanicMsg is the type of the messages used in panics.
type PanicMsg string

func (v PanicMsg) Error() string { return string(v) }

const ErrOutOfGrid = PanicMsg("dhva/bands: Point outside the grid")

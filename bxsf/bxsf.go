/*
 * bxsf.go, part of dhva.
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

//Package bxsf writes, reads and converts band grids in the BXSF format,
//as used by XCrySDen and read by the dhva program.
//
//The files written here follow byte by byte the layout the dhva program
//and its tools have always used, so every format string in this package matters.
package bxsf

import (
	"bufio"
	"fmt"
	"io"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/bands"
	"github.com/dhvatools/dhva/kmesh"
)

//Literal tokens of the BXSF format.
const (
	beginInfo     = "BEGIN_INFO"
	fermiTag      = "Fermi Energy:"
	endInfo       = "END_INFO"
	beginBlock    = "BEGIN_BLOCK_BANDGRID_3D"
	blockName     = "band_energies"
	bandsTag      = "BANDGRID_3D_BANDS"
	bandTag       = "BAND:"
	endGrid       = "END_BANDGRID_3D"
	endBlock      = "END_BLOCK_BANDGRID_3D"
	valuesPerLine = 4
	energyFormat  = "% .6e "
	energyIndent  = "      "
	vecIndent     = "     "
)

//Grid is one band on a 3D k-point grid, ready to be written as a BXSF file.
type Grid struct {
	*bands.Grid
	Vectors [3][3]float64 //header vectors, in inverse bohr without the 2*pi factor.
	Band    int           //number of the band in the table it came from.
}

//NewGrid returns a Grid with the energies in values, which must be in mesh order.
func NewGrid(values []float64, d kmesh.Dims, vectors [3][3]float64, band int) (*Grid, error) {
	G, err := bands.Reshape(values, d)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "NewGrid")
	}
	return &Grid{Grid: G, Vectors: vectors, Band: band}, nil
}

//WriteTo writes the grid to w in the BXSF format. The file has a single band,
//numbered 1, and the Fermi energy is always 0.
func (G *Grid) WriteTo(w io.Writer) (int64, error) {
	cw := &countWriter{w: bufio.NewWriter(w)}
	fmt.Fprintf(cw, "%s\n  %s 0.00000\n%s\n", beginInfo, fermiTag, endInfo)
	fmt.Fprintf(cw, "%s\n  %s\n  %s\n     1\n", beginBlock, blockName, bandsTag)
	fmt.Fprintf(cw, "     %d %d %d\n", G.NX, G.NY, G.NZ)
	io.WriteString(cw, "     0.0 0.0 0.0\n")
	for i, v := range G.Vectors {
		trail := " \n"
		if i == len(G.Vectors)-1 {
			trail = "\n"
		}
		fmt.Fprintf(cw, vecIndent+"% f % f % f"+trail, v[0], v[1], v[2])
	}
	fmt.Fprintf(cw, "  %s  1\n", bandTag)
	writeEnergies(cw, G.Flat())
	fmt.Fprintf(cw, "  %s\n%s", endGrid, endBlock)
	if cw.err == nil {
		cw.err = cw.w.(*bufio.Writer).Flush()
	}
	if cw.err != nil {
		return cw.n, dhva.NewError(dhva.ErrIO, "WriteTo", "", "can't write band grid", cw.err)
	}
	return cw.n, nil
}

//writeEnergies writes the values in lines of 4.
func writeEnergies(w io.Writer, values []float64) {
	for i := 0; i < len(values); i += valuesPerLine {
		io.WriteString(w, energyIndent)
		for _, v := range values[i:min(i+valuesPerLine, len(values))] {
			fmt.Fprintf(w, energyFormat, v)
		}
		io.WriteString(w, "\n")
	}
}

//countWriter counts the bytes written and keeps the first error,
//after which it writes nothing.
type countWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

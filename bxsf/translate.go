/*
 * translate.go, part of dhva.
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

package bxsf

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/kmesh"
)

//Elk writes its BXSF files with the 2*pi factor in the reciprocal vectors, energies in
//hartree and grids that include the periodic images of the first points along each axis.
//Translate turns those into files the dhva program can read.

const translatedPerLine = 6

//translator keeps the state of a translation, line by line.
type translator struct {
	in     *bufio.Reader
	out    *bytes.Buffer
	lineno int
	dims   kmesh.Dims
	fermi  bool //a Fermi energy of 0 was found.
	grid   bool //the grid header was found.
	nbands int  //BAND blocks translated.
}

//next returns the next line of the input, including its terminator.
//It returns io.EOF only when there is nothing left.
func (T *translator) next() (string, error) {
	line, err := T.in.ReadString('\n')
	if err == io.EOF && line != "" {
		err = nil
	}
	if err != nil && err != io.EOF {
		return "", dhva.NewError(dhva.ErrIO, "next", "", "can't read input", err)
	}
	if err == nil {
		T.lineno++
	}
	return line, err
}

//mustNext is next for the lines that have to be there.
func (T *translator) mustNext(what string) (string, error) {
	line, err := T.next()
	if err == io.EOF {
		return "", dhva.Errorf(dhva.ErrParse, "mustNext", "the file ends where the %s should be", what)
	}
	return line, err
}

//terminator returns the line terminator of line, which might be empty for the last one.
func terminator(line string) string {
	switch {
	case strings.HasSuffix(line, "\r\n"):
		return "\r\n"
	case strings.HasSuffix(line, "\n"):
		return "\n"
	}
	return ""
}

func (T *translator) floats(line string, n int, what string) ([]float64, error) {
	fields := strings.Fields(line)
	if len(fields) != n {
		return nil, dhva.Errorf(dhva.ErrParse, "floats", "line %d: the %s should have %d values, found %d", T.lineno, what, n, len(fields))
	}
	ret := make([]float64, n)
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, dhva.NewError(dhva.ErrParse, "floats", "", fmt.Sprintf("line %d: invalid value in the %s", T.lineno, what), err)
		}
		ret[i] = v
	}
	return ret, nil
}

func (T *translator) fermiEnergy(line string) error {
	rest := line[strings.Index(line, fermiTag)+len(fermiTag):]
	fields := strings.Fields(rest)
	if len(fields) == 0 {
		return dhva.Errorf(dhva.ErrParse, "fermiEnergy", "line %d: no value for the Fermi energy", T.lineno)
	}
	ef, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return dhva.NewError(dhva.ErrParse, "fermiEnergy", "", fmt.Sprintf("line %d: invalid Fermi energy", T.lineno), err)
	}
	//Energies are only converted by scaling, which is wrong for any other reference.
	if ef != 0 {
		return dhva.Errorf(dhva.ErrValidation, "fermiEnergy", "the Fermi energy must be 0, found %g", ef)
	}
	T.fermi = true
	return nil
}

//gridHeader translates the lines after BANDGRID_3D_BANDS.
func (T *translator) gridHeader() error {
	line, err := T.mustNext("band count")
	if err != nil {
		return err
	}
	T.out.WriteString(line)
	line, err = T.mustNext("grid dimensions")
	if err != nil {
		return err
	}
	d, err := T.floats(line, 3, "grid dimensions")
	if err != nil {
		return err
	}
	for _, v := range d {
		if v != float64(int(v)) {
			return dhva.Errorf(dhva.ErrParse, "gridHeader", "line %d: grid dimensions must be integers", T.lineno)
		}
	}
	T.dims = kmesh.Dims{NX: int(d[0]), NY: int(d[1]), NZ: int(d[2])}
	if T.dims.NX < 2 || T.dims.NY < 2 || T.dims.NZ < 2 {
		return dhva.Errorf(dhva.ErrValidation, "gridHeader", "a %s grid has no points left once the periodic images are removed", T.dims)
	}
	fmt.Fprintf(T.out, " %d %d %d%s", T.dims.NX-1, T.dims.NY-1, T.dims.NZ-1, terminator(line))
	line, err = T.mustNext("grid origin")
	if err != nil {
		return err
	}
	T.out.WriteString(line)
	for i := 0; i < 3; i++ {
		line, err = T.mustNext("reciprocal vectors")
		if err != nil {
			return err
		}
		v, err := T.floats(line, 3, "reciprocal vector")
		if err != nil {
			return err
		}
		fmt.Fprintf(T.out, "     % .8f     % .8f     % .8f%s", v[0]/dhva.TwoPi, v[1]/dhva.TwoPi, v[2]/dhva.TwoPi, terminator(line))
	}
	T.grid = true
	return nil
}

//band reads the energies of a BAND block, and writes them without the periodic images, in rydberg.
func (T *translator) band() error {
	if !T.grid {
		return dhva.Errorf(dhva.ErrParse, "band", "line %d: band block before the grid header", T.lineno)
	}
	if !T.fermi {
		return dhva.Errorf(dhva.ErrValidation, "band", "line %d: band block without a Fermi energy", T.lineno)
	}
	total := T.dims.Count()
	values := make([]float64, 0, total)
	for len(values) < total {
		line, err := T.next()
		if err == io.EOF {
			return dhva.Errorf(dhva.ErrValidation, "band", "the grid has %d points, but the file ends after %d values", total, len(values))
		}
		if err != nil {
			return err
		}
		fields := strings.Fields(line)
		if len(values)+len(fields) > total {
			return dhva.Errorf(dhva.ErrValidation, "band", "line %d: more values than the %d points of the grid", T.lineno, total)
		}
		for _, f := range fields {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return dhva.Errorf(dhva.ErrValidation, "band", "line %d: the grid has %d points, but only %d values were found", T.lineno, total, len(values))
			}
			values = append(values, v)
		}
	}
	d := T.dims
	kept := make([]float64, 0, (d.NX-1)*(d.NY-1)*(d.NZ-1))
	for ix := 0; ix < d.NX-1; ix++ {
		for iy := 0; iy < d.NY-1; iy++ {
			for iz := 0; iz < d.NZ-1; iz++ {
				kept = append(kept, dhva.Hartree2Rydberg*values[d.Index(ix, iy, iz)])
			}
		}
	}
	for i := 0; i < len(kept); i += translatedPerLine {
		vals := kept[i:min(i+translatedPerLine, len(kept))]
		strs := make([]string, len(vals))
		for j, v := range vals {
			strs[j] = fmt.Sprintf("% .6e", v)
		}
		T.out.WriteString(" " + strings.Join(strs, " ") + "\n")
	}
	T.nbands++
	return nil
}

//Translate reads a BXSF file written by Elk from r and writes to w its
//translation. Everything but the grid dimensions, the reciprocal vectors and the
//energies is copied as is. Nothing is written to w unless the whole input is valid.
func Translate(r io.Reader, w io.Writer) error {
	T := &translator{in: bufio.NewReader(r), out: new(bytes.Buffer)}
	for {
		line, err := T.next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return dhva.ErrDecorate(err, "Translate")
		}
		T.out.WriteString(line)
		switch {
		case strings.Contains(line, fermiTag):
			err = T.fermiEnergy(line)
		case strings.Contains(line, bandsTag):
			err = T.gridHeader()
		case strings.Contains(line, bandTag):
			err = T.band()
		}
		if err != nil {
			return dhva.ErrDecorate(err, "Translate")
		}
	}
	if !T.grid {
		return dhva.Errorf(dhva.ErrParse, "Translate", "no %s section found", bandsTag)
	}
	if T.nbands == 0 {
		return dhva.Errorf(dhva.ErrParse, "Translate", "no %s block found", bandTag)
	}
	if _, err := T.out.WriteTo(w); err != nil {
		return dhva.NewError(dhva.ErrIO, "Translate", "", "can't write output", err)
	}
	return nil
}

//TranslateFile translates the BXSF file in into the file out. out is only
//created if the translation succeeds.
func TranslateFile(in, out string) error {
	f, err := dhva.Open(in)
	if err != nil {
		return dhva.ErrDecorate(err, "TranslateFile")
	}
	defer f.Close()
	err = dhva.WriteAtomic(out, func(w io.Writer) error {
		return dhva.SetFile(Translate(f, w), in)
	})
	return dhva.ErrDecorate(err, "TranslateFile")
}

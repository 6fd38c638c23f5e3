/*
 * read.go, part of dhva.
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
	"fmt"
	"io"
	"strconv"
	"strings"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/kmesh"
)

//Band is a BAND block of a BXSF file.
type Band struct {
	Number   int
	Energies []float64
}

//File is the content of a BXSF file, as the dhva program sees it.
type File struct {
	Fermi   float64
	Dims    kmesh.Dims
	Origin  [3]float64
	Vectors [3][3]float64
	Bands   []Band
}

//Read reads a BXSF file from r. Every band must have one value per grid point.
func Read(r io.Reader) (*File, error) {
	F := &File{}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	next := func(what string) ([]string, error) {
		if !scanner.Scan() {
			return nil, dhva.Errorf(dhva.ErrParse, "Read", "the file ends where the %s should be", what)
		}
		lineno++
		return strings.Fields(scanner.Text()), nil
	}
	toFloats := func(fields []string, what string) ([]float64, error) {
		if len(fields) < 3 {
			return nil, dhva.Errorf(dhva.ErrParse, "Read", "line %d: the %s needs 3 values", lineno, what)
		}
		ret := make([]float64, 3)
		for i, f := range fields[:3] {
			v, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, dhva.NewError(dhva.ErrParse, "Read", "", fmt.Sprintf("line %d: invalid %s", lineno, what), err)
			}
			ret[i] = v
		}
		return ret, nil
	}
	var band *Band
	grid := false
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		switch {
		case strings.Contains(line, fermiTag):
			fields := strings.Fields(line[strings.Index(line, fermiTag)+len(fermiTag):])
			if len(fields) == 0 {
				return nil, dhva.Errorf(dhva.ErrParse, "Read", "line %d: no Fermi energy", lineno)
			}
			v, err := strconv.ParseFloat(fields[0], 64)
			if err != nil {
				return nil, dhva.NewError(dhva.ErrParse, "Read", "", "invalid Fermi energy", err)
			}
			F.Fermi = v
		case strings.Contains(line, bandsTag):
			if _, err := next("band count"); err != nil {
				return nil, err
			}
			fields, err := next("grid dimensions")
			if err != nil {
				return nil, err
			}
			d, err := toFloats(fields, "grid dimensions")
			if err != nil {
				return nil, err
			}
			F.Dims = kmesh.Dims{NX: int(d[0]), NY: int(d[1]), NZ: int(d[2])}
			if err := F.Dims.Check(); err != nil {
				return nil, dhva.ErrDecorate(err, "Read")
			}
			if fields, err = next("grid origin"); err != nil {
				return nil, err
			}
			o, err := toFloats(fields, "grid origin")
			if err != nil {
				return nil, err
			}
			copy(F.Origin[:], o)
			for i := range F.Vectors {
				if fields, err = next("reciprocal vectors"); err != nil {
					return nil, err
				}
				v, err := toFloats(fields, "reciprocal vector")
				if err != nil {
					return nil, err
				}
				copy(F.Vectors[i][:], v)
			}
			grid = true
		case strings.Contains(line, endGrid):
			band = nil
		case strings.Contains(line, bandTag):
			if !grid {
				return nil, dhva.Errorf(dhva.ErrParse, "Read", "line %d: band before the grid header", lineno)
			}
			fields := strings.Fields(line)
			n := 0
			if len(fields) > 1 {
				n, _ = strconv.Atoi(fields[1])
			}
			F.Bands = append(F.Bands, Band{Number: n})
			band = &F.Bands[len(F.Bands)-1]
		case band != nil:
			for _, f := range strings.Fields(line) {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return nil, dhva.NewError(dhva.ErrParse, "Read", "", fmt.Sprintf("line %d: invalid energy", lineno), err)
				}
				band.Energies = append(band.Energies, v)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, dhva.NewError(dhva.ErrIO, "Read", "", "can't read BXSF file", err)
	}
	if len(F.Bands) == 0 {
		return nil, dhva.Errorf(dhva.ErrParse, "Read", "no bands found")
	}
	for _, b := range F.Bands {
		if len(b.Energies) == 0 {
			return nil, dhva.Errorf(dhva.ErrValidation, "Read", "band %d has no values", b.Number)
		}
		if len(b.Energies) != F.Dims.Count() {
			return nil, dhva.Errorf(dhva.ErrValidation, "Read", "band %d has %d values for a %s grid", b.Number, len(b.Energies), F.Dims)
		}
	}
	return F, nil
}

//ReadFile reads the BXSF file name.
func ReadFile(name string) (*File, error) {
	f, err := dhva.Open(name)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ReadFile")
	}
	defer f.Close()
	F, err := Read(f)
	if err != nil {
		return nil, dhva.SetFile(dhva.ErrDecorate(err, "ReadFile"), name)
	}
	return F, nil
}

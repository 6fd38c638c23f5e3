/*
 * table.go, part of dhva.
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

//Package bands reads tables of band energies computed on a k-point mesh
//(FPLO's +band_kp files) and reshapes them into 3D grids.
package bands

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	dhva "github.com/dhvatools/dhva"
)

//minHeaderTokens is the smallest header with a k-point count at position 3 and
//a band range at the end that doesn't overlap it.
const minHeaderTokens = 6

//MaxBands is the largest band range a table header may declare.
const MaxBands = 1 << 16

//prealloc caps the k-points reserved per band before the rows are read.
const prealloc = 1 << 16

//Header is the first line of a band table.
type Header struct {
	NKPoints int //declared number of k-points.
	LowBand  int //index of the first band in the table.
	HighBand int //index of the last band in the table, inclusive.
	Tokens   []string
}

//NBands returns the number of bands declared in the header.
func (H *Header) NBands() int {
	return H.HighBand - H.LowBand + 1
}

//ParseHeader tokenizes the first line of a band table. The 4th token is the number of k-points
//and the last two are the range of bands in the table.
func ParseHeader(line string) (*Header, error) {
	tokens := strings.Fields(line)
	if len(tokens) < minHeaderTokens {
		return nil, dhva.Errorf(dhva.ErrParse, "ParseHeader", "the header needs at least %d fields, found %d", minHeaderTokens, len(tokens))
	}
	atoi := func(pos int, what string) (int, error) {
		v, err := strconv.Atoi(tokens[pos])
		if err != nil {
			return 0, dhva.NewError(dhva.ErrParse, "ParseHeader", "", fmt.Sprintf("field %d (%s) is not an integer", pos+1, what), err)
		}
		return v, nil
	}
	H := &Header{Tokens: tokens}
	var err error
	if H.NKPoints, err = atoi(3, "k-point count"); err != nil {
		return nil, err
	}
	if H.LowBand, err = atoi(len(tokens)-2, "first band"); err != nil {
		return nil, err
	}
	if H.HighBand, err = atoi(len(tokens)-1, "last band"); err != nil {
		return nil, err
	}
	if H.NKPoints <= 0 {
		return nil, dhva.Errorf(dhva.ErrParse, "ParseHeader", "the k-point count must be positive, got %d", H.NKPoints)
	}
	if H.LowBand > H.HighBand || H.LowBand < 0 {
		return nil, dhva.Errorf(dhva.ErrParse, "ParseHeader", "invalid band range %d-%d", H.LowBand, H.HighBand)
	}
	if H.HighBand-H.LowBand >= MaxBands {
		return nil, dhva.Errorf(dhva.ErrParse, "ParseHeader", "the band range %d-%d spans more than %d bands", H.LowBand, H.HighBand, MaxBands)
	}
	return H, nil
}

//Table contains the energies of a set of bands on a set of k-points.
type Table struct {
	Header
	Energies [][]float64 //Energies[band][kpoint], band counted from 0.
}

//NBands returns the number of bands in the table.
func (T *Table) NBands() int {
	return len(T.Energies)
}

//NKPoints returns the number of k-points in the table.
func (T *Table) NKPoints() int {
	return T.Header.NKPoints
}

//Band returns the energies of band i. i counts from 0 regardless of
//the band numbers in the header. The slice is not a copy.
func (T *Table) Band(i int) []float64 {
	return T.Energies[i]
}

//BandNumber returns the number of the band i as given in the table header.
func (T *Table) BandNumber(i int) int {
	return T.LowBand + i
}

func isComment(line string) bool {
	return strings.HasPrefix(line, "#")
}

//ReadTable reads a band table from r. The first line is always the header.
//Lines starting with # and blank lines are skipped. Every other line has a k-point index followed
//by one energy per band. A line with the wrong number of fields is a dhva.ErrParse error, a
//number of k-points other than the declared one is a dhva.ErrValidation error.
func ReadTable(r io.Reader) (*Table, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	if !scanner.Scan() {
		if err := scanner.Err(); err != nil {
			return nil, dhva.NewError(dhva.ErrIO, "ReadTable", "", "can't read band table", err)
		}
		return nil, dhva.Errorf(dhva.ErrParse, "ReadTable", "empty band table")
	}
	H, err := ParseHeader(scanner.Text())
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ReadTable")
	}
	nb := H.NBands()
	T := &Table{Header: *H, Energies: make([][]float64, nb)}
	//the header may lie about the k-point count, the rows decide.
	for i := range T.Energies {
		T.Energies[i] = make([]float64, 0, min(H.NKPoints, prealloc))
	}
	lineno := 1
	kp := 0
	for scanner.Scan() {
		lineno++
		line := scanner.Text()
		if isComment(line) || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != nb+1 {
			return nil, dhva.Errorf(dhva.ErrParse, "ReadTable", "line %d has %d energies, expected %d", lineno, len(fields)-1, nb)
		}
		for j, f := range fields[1:] {
			e, err := strconv.ParseFloat(f, 64)
			if err != nil {
				return nil, dhva.NewError(dhva.ErrParse, "ReadTable", "", fmt.Sprintf("line %d, field %d", lineno, j+2), err)
			}
			T.Energies[j] = append(T.Energies[j], e)
		}
		kp++
	}
	if err := scanner.Err(); err != nil {
		return nil, dhva.NewError(dhva.ErrIO, "ReadTable", "", "can't read band table", err)
	}
	if kp != H.NKPoints {
		return nil, dhva.Errorf(dhva.ErrValidation, "ReadTable", "the header declares %d k-points but the table has %d", H.NKPoints, kp)
	}
	return T, nil
}

//ReadTableFile reads the band table in the file name.
func ReadTableFile(name string) (*Table, error) {
	f, err := dhva.Open(name)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ReadTableFile")
	}
	defer f.Close()
	T, err := ReadTable(f)
	if err != nil {
		return nil, dhva.SetFile(dhva.ErrDecorate(err, "ReadTableFile"), name)
	}
	return T, nil
}

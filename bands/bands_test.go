/*
 * bands_test.go, part of dhva.
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
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/kmesh"
)

//Two bands on 8 k-points. The first one is always above the Fermi energy,
//the second crosses it.
const twoBands = `# ik ... 8 ... 21 22
# comments are ignored
1  0.10 -0.30
2  0.20 -0.20
3  0.30 -0.10

4  0.40  0.00
5  0.50  0.10
# more comments
6  0.60  0.20
7  0.70  0.30
8  0.80  0.40
`

func TestParseHeader(Te *testing.T) {
	H, err := ParseHeader("# 1 2 400 x 5 12")
	if err != nil {
		Te.Fatal(err)
	}
	if H.NKPoints != 400 || H.LowBand != 5 || H.HighBand != 12 || H.NBands() != 8 {
		Te.Errorf("Wrong header: %+v", H)
	}
	for _, bad := range []string{
		"# 1 2 400",                  //too short
		"# 1 2 many x 5 12",          //k-point count not a number
		"# 1 2 400 x 12 5",           //empty range
		"# 1 2 400 x five 6",         //band not a number
		"# 1 2 0 x 1 2",              //no k-points
		"# 1 2 400 x 1 999999999999", //too many bands
		"# 1 2 400 x -5 2",           //negative band
	} {
		_, err := ParseHeader(bad)
		if !errors.Is(err, dhva.ErrParse) {
			Te.Errorf("Expected a parse error for %q, got %v", bad, err)
		}
	}
}

func TestReadTable(Te *testing.T) {
	T, err := ReadTable(strings.NewReader(twoBands))
	if err != nil {
		Te.Fatal(err)
	}
	if T.NBands() != 2 || T.NKPoints() != 8 {
		Te.Fatalf("Expected 2 bands and 8 k-points, got %d and %d", T.NBands(), T.NKPoints())
	}
	if T.Band(0)[3] != 0.4 || T.Band(1)[7] != 0.4 || T.Band(1)[0] != -0.3 {
		Te.Errorf("Wrong energies %v", T.Energies)
	}
	if T.BandNumber(1) != 22 {
		Te.Errorf("Band 1 should be number 22, got %d", T.BandNumber(1))
	}
	s := T.Straddling()
	if len(s) != 1 || s[0] != 1 {
		Te.Errorf("Only the second band should cross the Fermi energy, got %v", s)
	}
}

func TestReadTableErrors(Te *testing.T) {
	short := strings.Replace(twoBands, "5  0.50  0.10\n", "5  0.50\n", 1)
	_, err := ReadTable(strings.NewReader(short))
	if !errors.Is(err, dhva.ErrParse) {
		Te.Errorf("Expected a parse error for a short row, got %v", err)
	}
	fmt.Println(err)
	missing := strings.Replace(twoBands, "8  0.80  0.40\n", "", 1)
	_, err = ReadTable(strings.NewReader(missing))
	if !errors.Is(err, dhva.ErrValidation) {
		Te.Errorf("Expected a validation error for a missing row, got %v", err)
	}
	garbage := strings.Replace(twoBands, "0.70", "0.7x", 1)
	_, err = ReadTable(strings.NewReader(garbage))
	if !errors.Is(err, dhva.ErrParse) {
		Te.Errorf("Expected a parse error for a bad number, got %v", err)
	}
	_, err = ReadTable(strings.NewReader(""))
	if !errors.Is(err, dhva.ErrParse) {
		Te.Errorf("Expected a parse error for an empty table, got %v", err)
	}
	//a huge declared k-point count must not be allocated up front.
	_, err = ReadTable(strings.NewReader("# a b 1000000000000000 c 1 2\n1 0.1 0.2\n"))
	if !errors.Is(err, dhva.ErrValidation) {
		Te.Errorf("Expected a validation error for a lying k-point count, got %v", err)
	}
}

func TestStats(Te *testing.T) {
	T, err := ReadTable(strings.NewReader(twoBands))
	if err != nil {
		Te.Fatal(err)
	}
	S := T.AllStats()
	if S[0].Crosses || !S[1].Crosses {
		Te.Errorf("Wrong crossings: %+v", S)
	}
	if S[1].Min != -0.3 || S[1].Max != 0.4 || math.Abs(S[1].Mean-0.05) > 1e-12 {
		Te.Errorf("Wrong statistics for band 22: %+v", S[1])
	}
	if math.Abs(S[0].Width()-0.7) > 1e-12 || S[0].Band != 21 {
		Te.Errorf("Wrong statistics for band 21: %+v", S[0])
	}
	if Straddles(nil) {
		Te.Errorf("An empty band can't cross anything")
	}
}

func TestReshape(Te *testing.T) {
	T, err := ReadTable(strings.NewReader(twoBands))
	if err != nil {
		Te.Fatal(err)
	}
	G, err := Reshape(T.Band(0), kmesh.Dims{NX: 2, NY: 2, NZ: 2})
	if err != nil {
		Te.Fatal(err)
	}
	//row i of the table is point i of the mesh, x slowest.
	if G.At(0, 0, 1) != 0.2 || G.At(0, 1, 0) != 0.3 || G.At(1, 0, 0) != 0.5 || G.At(1, 1, 1) != 0.8 {
		Te.Errorf("Wrong layout: %v", G.Flat())
	}
	if _, err := Reshape(T.Band(0), kmesh.Dims{NX: 2, NY: 2, NZ: 3}); !errors.Is(err, dhva.ErrValidation) {
		Te.Errorf("Expected a validation error, got %v", err)
	}
	defer func() {
		if r := recover(); r != ErrOutOfGrid {
			Te.Errorf("Expected a panic for a point outside the grid, got %v", r)
		}
	}()
	G.At(2, 0, 0)
}

func TestReadTableFile(Te *testing.T) {
	name := filepath.Join(Te.TempDir(), "+band_kp")
	if err := os.WriteFile(name, []byte(twoBands), 0o644); err != nil {
		Te.Fatal(err)
	}
	T, err := ReadTableFile(name)
	if err != nil {
		Te.Fatal(err)
	}
	if T.NKPoints() != 8 {
		Te.Errorf("Wrong number of k-points %d", T.NKPoints())
	}
	_, err = ReadTableFile(name + ".nothere")
	var e *dhva.Error
	if !errors.As(err, &e) || e.Kind != dhva.ErrIO {
		Te.Errorf("Expected an I/O error, got %v", err)
	}
}

func TestHistogram(Te *testing.T) {
	H, err := NewHistogram(0, 4, 4)
	if err != nil {
		Te.Fatal(err)
	}
	H.Add(0.5, 1.5, 1.7, 3.9, 4, 5, -1)
	expected := []float64{1, 2, 0, 2}
	for i, e := range expected {
		if _, _, c := H.Bin(i); c != e {
			Te.Errorf("Bin %d: expected %v, got %v", i, e, c)
		}
	}
	if H.Total() != 7 {
		Te.Errorf("Expected 7 values, got %d", H.Total())
	}
	H.Normalize()
	H.Add(2.5)
	if !H.Normalized() || H.Total() != 8 {
		Te.Errorf("Adding to a normalized histogram should keep it normalized")
	}
	if lo, hi, c := H.Bin(2); lo != 2 || hi != 3 || math.Abs(c-1.0/8) > 1e-12 {
		Te.Errorf("Wrong bin 2: %v %v %v", lo, hi, c)
	}
	H.UnNormalize()
	if _, _, c := H.Bin(1); math.Abs(c-2) > 1e-12 {
		Te.Errorf("UnNormalize should give the counts back, got %v", c)
	}
	fmt.Println(H)
	for _, bad := range [][3]float64{{0, 1, 0}, {1, 0, 3}, {0, math.NaN(), 3}} {
		if _, err := NewHistogram(bad[0], bad[1], int(bad[2])); !errors.Is(err, dhva.ErrValidation) {
			Te.Errorf("Expected a validation error for %v, got %v", bad, err)
		}
	}
}

func TestTableHistogram(Te *testing.T) {
	T, err := ReadTable(strings.NewReader(twoBands))
	if err != nil {
		Te.Fatal(err)
	}
	H, err := T.Histogram(1, 2)
	if err != nil {
		Te.Fatal(err)
	}
	if _, _, c := H.Bin(0); c != 3 {
		Te.Errorf("Expected 3 energies below the Fermi energy, got %v", c)
	}
	if _, _, c := H.Bin(1); c != 13 {
		Te.Errorf("Expected 13 energies above the Fermi energy, got %v", c)
	}
}

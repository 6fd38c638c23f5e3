/*
 * translate_test.go, part of dhva.
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
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	dhva "github.com/dhvatools/dhva"
)

//An Elk-style file on a 3x3x2 grid. Value i of the band is i/2-2.
const elkHeader = "BEGIN_INFO\n" +
	"  # Band-XCRYSDEN-Structure-File for Fermi surface plotting\n" +
	"  # Launch as: xcrysden --bxsf GEOMETRY.OUT\n" +
	"  Fermi Energy:        0.000000000\n" +
	"END_INFO\n" +
	"BEGIN_BLOCK_BANDGRID_3D\n" +
	" band_energies\n" +
	" BANDGRID_3D_BANDS\n" +
	"           1\n" +
	"     3     3     2\n" +
	"     0.000000000     0.000000000     0.000000000\n" +
	"      6.283185307179586  0.0  0.0\n" +
	"      0.0  12.566370614359172  0.0\n" +
	"      0.0  0.0  3.141592653589793\n" +
	" BAND:           1\n"

const elkValues = "  -2.0 -1.5 -1.0 -0.5 0.0\n" +
	"  0.5 1.0 1.5 2.0 2.5\n" +
	"  3.0 3.5 4.0 4.5 5.0\n" +
	"  5.5 6.0 6.5\n"

const elkFooter = " END_BANDGRID_3D\n" +
	"END_BLOCK_BANDGRID_3D\n"

const translated = "BEGIN_INFO\n" +
	"  # Band-XCRYSDEN-Structure-File for Fermi surface plotting\n" +
	"  # Launch as: xcrysden --bxsf GEOMETRY.OUT\n" +
	"  Fermi Energy:        0.000000000\n" +
	"END_INFO\n" +
	"BEGIN_BLOCK_BANDGRID_3D\n" +
	" band_energies\n" +
	" BANDGRID_3D_BANDS\n" +
	"           1\n" +
	" 2 2 1\n" +
	"     0.000000000     0.000000000     0.000000000\n" +
	"      1.00000000      0.00000000      0.00000000\n" +
	"      0.00000000      2.00000000      0.00000000\n" +
	"      0.00000000      0.00000000      0.50000000\n" +
	" BAND:           1\n" +
	" -4.000000e+00 -2.000000e+00  2.000000e+00  4.000000e+00\n" +
	" END_BANDGRID_3D\n" +
	"END_BLOCK_BANDGRID_3D\n"

func TestTranslate(Te *testing.T) {
	var out bytes.Buffer
	if err := Translate(strings.NewReader(elkHeader+elkValues+elkFooter), &out); err != nil {
		Te.Fatal(err)
	}
	if out.String() != translated {
		Te.Errorf("Wrong translation:\n%s\nexpected:\n%s", out.String(), translated)
	}
}

func TestTranslateTwoBands(Te *testing.T) {
	second := strings.Replace(elkValues, "-2.0", "-3.0", 1)
	in := strings.Replace(elkHeader, "           1\n", "           2\n", 1) + elkValues + " BAND:           2\n" + second + elkFooter
	var out bytes.Buffer
	if err := Translate(strings.NewReader(in), &out); err != nil {
		Te.Fatal(err)
	}
	lines := strings.Split(out.String(), "\n")
	if lines[8] != "           2" {
		Te.Errorf("The band count should be copied, got %q", lines[8])
	}
	if lines[15] != " -4.000000e+00 -2.000000e+00  2.000000e+00  4.000000e+00" || lines[16] != " BAND:           2" ||
		lines[17] != " -6.000000e+00 -2.000000e+00  2.000000e+00  4.000000e+00" {
		Te.Errorf("Wrong bands:\n%s", out.String())
	}
}

func TestTranslateKeepsTerminators(Te *testing.T) {
	in := strings.ReplaceAll(elkHeader+elkValues+elkFooter, "\n", "\r\n")
	in = strings.TrimSuffix(in, "\r\n")
	var out bytes.Buffer
	if err := Translate(strings.NewReader(in), &out); err != nil {
		Te.Fatal(err)
	}
	if !strings.HasSuffix(out.String(), " END_BANDGRID_3D\r\nEND_BLOCK_BANDGRID_3D") {
		Te.Errorf("The footer should be copied as is: %q", out.String())
	}
	if !strings.Contains(out.String(), "\r\n 2 2 1\r\n") {
		Te.Errorf("The dimensions line should keep its terminator: %q", out.String())
	}
}

func TestTranslateErrors(Te *testing.T) {
	full := elkHeader + elkValues + elkFooter
	cases := map[string]struct {
		in   string
		kind dhva.Kind
	}{
		"short band":   {elkHeader + strings.Replace(elkValues, " 6.5\n", "\n", 1) + elkFooter, dhva.ErrValidation},
		"long band":    {elkHeader + strings.Replace(elkValues, " 6.5\n", " 6.5 7.0\n", 1) + elkFooter, dhva.ErrValidation},
		"truncated":    {elkHeader + elkValues[:20], dhva.ErrValidation},
		"fermi":        {strings.Replace(full, "0.000000000\nEND_INFO", "0.25\nEND_INFO", 1), dhva.ErrValidation},
		"no fermi":     {strings.Replace(full, "  Fermi Energy:        0.000000000\n", "", 1), dhva.ErrValidation},
		"flat grid":    {strings.Replace(full, "     3     3     2\n", "     3     1     6\n", 1), dhva.ErrValidation},
		"bad vector":   {strings.Replace(full, "12.566370614359172", "twelve", 1), dhva.ErrParse},
		"no grid":      {"BEGIN_INFO\nEND_INFO\n", dhva.ErrParse},
		"no band":      {elkHeader[:strings.Index(elkHeader, " BAND:")] + elkFooter, dhva.ErrParse},
		"cut dims":     {elkHeader[:strings.Index(elkHeader, "     3     3")], dhva.ErrParse},
		"dims as real": {strings.Replace(full, "     3     3     2\n", "     3.5     3     2\n", 1), dhva.ErrParse},
	}
	for name, c := range cases {
		var out bytes.Buffer
		err := Translate(strings.NewReader(c.in), &out)
		if !errors.Is(err, c.kind) {
			Te.Errorf("%s: expected %v, got %v", name, c.kind, err)
		}
		if out.Len() != 0 {
			Te.Errorf("%s: nothing should be written on error", name)
		}
	}
}

func TestTranslateFile(Te *testing.T) {
	dir := Te.TempDir()
	in := filepath.Join(dir, "elk.bxsf")
	out := filepath.Join(dir, "dhva.bxsf")
	if err := os.WriteFile(in, []byte(elkHeader+elkValues+elkFooter), 0o644); err != nil {
		Te.Fatal(err)
	}
	if err := TranslateFile(in, out); err != nil {
		Te.Fatal(err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		Te.Fatal(err)
	}
	if string(data) != translated {
		Te.Errorf("Wrong file content:\n%s", data)
	}
	bad := filepath.Join(dir, "bad.bxsf")
	if err := os.WriteFile(bad, []byte(elkHeader+elkFooter), 0o644); err != nil {
		Te.Fatal(err)
	}
	failed := filepath.Join(dir, "failed.bxsf")
	if err := TranslateFile(bad, failed); !errors.Is(err, dhva.ErrValidation) {
		Te.Errorf("Expected a validation error, got %v", err)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 3 {
		Te.Errorf("Only the input files and the good output should be there, found %v", entries)
	}
}

/*
 * bandplot_test.go, part of dhva.
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

package bandplot

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gonum.org/v1/plot/vg"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/bands"
)

const table = `# ik ... 4 ... 3 6
1 -0.9 -0.2 0.1 0.5
2 -0.8 -0.1 0.2 0.6
3 -0.7  0.1 0.3 0.7
4 -0.6  0.2 0.4 0.8
`

func TestWindow(Te *testing.T) {
	T, err := bands.ReadTable(strings.NewReader(table))
	if err != nil {
		Te.Fatal(err)
	}
	p, err := Window(T.AllStats(), "Test")
	if err != nil {
		Te.Fatal(err)
	}
	if p.X.Min != 2 || p.X.Max != 7 {
		Te.Errorf("Wrong x range %f %f", p.X.Min, p.X.Max)
	}
	if p.Title.Padding != 3*vg.Millimeter {
		Te.Errorf("Wrong title padding %v", p.Title.Padding)
	}
	if _, err := Window(nil, "Nothing"); !errors.Is(err, dhva.ErrValidation) {
		Te.Errorf("Expected a validation error for an empty plot, got %v", err)
	}
}

func TestSave(Te *testing.T) {
	T, err := bands.ReadTable(strings.NewReader(table))
	if err != nil {
		Te.Fatal(err)
	}
	for _, ext := range []string{".png", ".svg"} {
		name := filepath.Join(Te.TempDir(), "window"+ext)
		if err := Save(T, "Band window", name); err != nil {
			Te.Fatal(err)
		}
		info, err := os.Stat(name)
		if err != nil {
			Te.Fatal(err)
		}
		if info.Size() == 0 {
			Te.Errorf("%s is empty", name)
		}
	}
}

func TestColors(Te *testing.T) {
	seen := make(map[[3]uint8]bool)
	for i := 0; i < 5; i++ {
		c := sheetColor(i, 5)
		seen[[3]uint8{c.R, c.G, c.B}] = true
		if c.A != 255 {
			Te.Errorf("Colors must be opaque")
		}
	}
	if len(seen) != 5 {
		Te.Errorf("Expected 5 different colors, got %d", len(seen))
	}
	if c := hsv2rgb(0, 0, 1); c.R != 255 || c.G != 255 || c.B != 255 {
		Te.Errorf("No saturation at full value should be white, got %v", c)
	}
}

/*
 * stats.go, part of dhva.
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
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

//Straddles returns true if the energies go from at or below the Fermi
//energy (0) to at or above it, so the band contributes a sheet to the Fermi surface.
func Straddles(energies []float64) bool {
	if len(energies) == 0 {
		return false
	}
	return floats.Min(energies) <= 0 && floats.Max(energies) >= 0
}

//Straddling returns the indexes, in table order, of the bands that cross the Fermi energy.
func (T *Table) Straddling() []int {
	ret := make([]int, 0, len(T.Energies))
	for i, b := range T.Energies {
		if Straddles(b) {
			ret = append(ret, i)
		}
	}
	return ret
}

//Stats summarizes the energies of a band.
type Stats struct {
	Band      int //band number, as in the table header.
	Min, Max  float64
	Mean, Std float64
	Crosses   bool //whether the band crosses the Fermi energy.
}

//Width returns the energy range covered by the band.
func (S Stats) Width() float64 {
	return S.Max - S.Min
}

//Stats returns the statistics for the band i (counted from 0).
func (T *Table) Stats(i int) Stats {
	b := T.Energies[i]
	mean, std := stat.MeanStdDev(b, nil)
	return Stats{
		Band:    T.BandNumber(i),
		Min:     floats.Min(b),
		Max:     floats.Max(b),
		Mean:    mean,
		Std:     std,
		Crosses: Straddles(b),
	}
}

//AllStats returns the statistics of every band in the table.
func (T *Table) AllStats() []Stats {
	ret := make([]Stats, T.NBands())
	for i := range ret {
		ret[i] = T.Stats(i)
	}
	return ret
}

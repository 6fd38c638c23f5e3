/*
 * histogram.go, part of dhva.
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
	"fmt"
	"math"
	"strings"

	dhva "github.com/dhvatools/dhva"
	"gonum.org/v1/gonum/floats"
)

//Histogram counts band energies in consecutive energy bins. Summed over all the bands of
//a table, and normalized, it is a crude density of states, enough to see how many bands
//sit near the Fermi energy.
type Histogram struct {
	normalized bool
	total      int //values added, including those outside the bins.
	dividers   []float64
	counts     []float64
}

//NewHistogram returns an empty histogram with bins equal bins between lo and hi.
func NewHistogram(lo, hi float64, bins int) (*Histogram, error) {
	if bins <= 0 || !(hi > lo) || math.IsInf(hi-lo, 0) {
		return nil, dhva.Errorf(dhva.ErrValidation, "NewHistogram", "can't make %d bins between %g and %g", bins, lo, hi)
	}
	H := &Histogram{dividers: make([]float64, bins+1), counts: make([]float64, bins)}
	floats.Span(H.dividers, lo, hi)
	return H, nil
}

//Add adds the given energies to the histogram. Energies outside the bins count
//for the total, but not for any bin. The last bin includes its upper limit.
func (H *Histogram) Add(energies ...float64) {
	norma := H.normalized
	if norma {
		H.UnNormalize()
	}
	last := len(H.dividers) - 1
	for _, v := range energies {
		if v == H.dividers[last] {
			H.counts[last-1]++
			continue
		}
		for j, w := range H.dividers[:last] {
			if w <= v && v < H.dividers[j+1] {
				H.counts[j]++
				break
			}
		}
	}
	H.total += len(energies)
	if norma {
		H.Normalize()
	}
}

//Normalize divides every count by the number of values added.
func (H *Histogram) Normalize() { H.normalize(true) }

//UnNormalize undoes Normalize.
func (H *Histogram) UnNormalize() { H.normalize(false) }

func (H *Histogram) normalize(normalize bool) {
	if H.total <= 0 || H.normalized == normalize {
		return
	}
	f := float64(H.total)
	if normalize {
		f = 1 / f
	}
	H.normalized = normalize
	floats.Scale(f, H.counts)
}

//Normalized returns true if the histogram is normalized.
func (H *Histogram) Normalized() bool { return H.normalized }

//Total returns the number of values added.
func (H *Histogram) Total() int { return H.total }

//Bins returns the number of bins.
func (H *Histogram) Bins() int { return len(H.counts) }

//Bin returns the limits and the count (or fraction, if normalized) of bin i.
func (H *Histogram) Bin(i int) (lo, hi, count float64) {
	return H.dividers[i], H.dividers[i+1], H.counts[i]
}

//String returns the histogram in two lines, the bins and their values.
func (H *Histogram) String() string {
	d := make([]string, 0, len(H.counts))
	h := make([]string, 0, len(H.counts))
	for i, v := range H.counts {
		d = append(d, fmt.Sprintf("%.3f:%.3f", H.dividers[i], H.dividers[i+1]))
		h = append(h, fmt.Sprintf("%11.3f", v))
	}
	return fmt.Sprintf("values: %d, normalized: %v\n%s\n%s", H.total, H.normalized, strings.Join(d, " "), strings.Join(h, " "))
}

//Histogram returns the histogram of all the energies in T, with bins
//bins spanning width on each side of the Fermi energy.
func (T *Table) Histogram(width float64, bins int) (*Histogram, error) {
	H, err := NewHistogram(-width, width, bins)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "Histogram")
	}
	for _, b := range T.Energies {
		H.Add(b...)
	}
	return H, nil
}

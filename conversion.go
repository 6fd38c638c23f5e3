/*
 * conversion.go, part of dhva.
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

package dhva

import "math"

//This provides conversion factors and other constants shared by the packages.

//Conversions
const (
	Deg2Rad         = math.Pi / 180
	Rad2Deg         = 180 / math.Pi
	Angstrom2Bohr   = 1.88972612457 //the factor used by the FPLO-based scripts, not CODATA's.
	Bohr2Angstrom   = 1 / Angstrom2Bohr
	Hartree2Rydberg = 2.0
	Rydberg2EV      = 13.605693009
)

//TwoPi shows up in every reciprocal-space formula.
const TwoPi = 2 * math.Pi

//Unit is the length unit of a crystal structure description.
type Unit int

const (
	Bohr Unit = iota
	Angstrom
)

func (U Unit) String() string {
	switch U {
	case Angstrom:
		return "angstrom"
	case Bohr:
		return "bohr"
	}
	return "unknown"
}

//ToBohr returns the factor that converts lengths in unit U to bohr.
func (U Unit) ToBohr() float64 {
	if U == Angstrom {
		return Angstrom2Bohr
	}
	return 1
}

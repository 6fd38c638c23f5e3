/*
 * doc.go, part of dhva.
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

/*Package dhva is the root package of the dhva preparation toolkit. The toolkit prepares
electronic band-structure data for a de Haas-van Alphen (dHvA) Fermi-surface analysis
and post-processes it, so it can be consumed by the dhva orbit finder and by BXSF viewers.

	**Capabilities**

    Reads FPLO-style structure descriptions (=.in files) and builds the direct and
	reciprocal lattice of the crystal (package lattice).

    Generates uniform reciprocal-space k-point meshes in the =.kp format (package kmesh).

    Reads multi-band energy tables (+band_kp files), selects the bands that cross the
	Fermi energy and writes one BXSF band grid per selected band (packages bands and bxsf).

    Translates Elk BXSF files to the conventions expected by dhva (package bxsf).

    Plots the energy window of every band (package bandplot) and drives angle sweeps of the
	dhva binary (package sweep).

This package holds what the other packages share: the error type and its kinds, unit
conversion factors, and file helpers that write atomically and compress or decompress
files according to their extension.

dhva uses its own matrix type for sets of 3D vectors, v3.Matrix, based on gonum's Dense. Each
row of a v3.Matrix is one vector; in particular, row i of a lattice cell is lattice vector i.*/
package dhva

/*
 * convert.go, part of dhva.
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
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/bands"
	"github.com/dhvatools/dhva/kmesh"
	"github.com/dhvatools/dhva/lattice"
	"github.com/zeebo/blake3"
	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"
)

//Convert returns one Grid for each band in T that crosses the Fermi energy, in the order of
//the table. The table must have exactly one k-point per point of a d mesh,
//otherwise a dhva.ErrValidation error is returned.
func Convert(C *lattice.Cell, T *bands.Table, d kmesh.Dims) ([]*Grid, error) {
	if err := d.Check(); err != nil {
		return nil, dhva.ErrDecorate(err, "Convert")
	}
	if d.Count() != T.NKPoints() {
		return nil, dhva.Errorf(dhva.ErrValidation, "Convert", "the table has %d k-points, but a %s grid has %d", T.NKPoints(), d, d.Count())
	}
	vectors := C.BXSFVectors()
	var ret []*Grid
	for _, i := range T.Straddling() {
		G, err := NewGrid(T.Band(i), d, vectors, T.BandNumber(i))
		if err != nil {
			return nil, dhva.ErrDecorate(err, "Convert")
		}
		ret = append(ret, G)
	}
	return ret, nil
}

//SetOptions control how a set of grids is written.
type SetOptions struct {
	Manifest    bool   //also write prefix.manifest.yaml
	Compression string //extension added to every grid file, like ".zst". Empty for none.
}

//Manifest relates the files of a set to the bands they came from.
type Manifest struct {
	Grid      string          `yaml:"grid"`
	Artifacts []ManifestEntry `yaml:"artifacts"`
}

//ManifestEntry describes one file of a set.
type ManifestEntry struct {
	File   string  `yaml:"file"`
	Band   int     `yaml:"band"`
	Min    float64 `yaml:"min"`
	Max    float64 `yaml:"max"`
	Blake3 string  `yaml:"blake3"` //digest of the uncompressed file.
}

//SetName returns the name of the i-th (counting from 1) file of the set with the given prefix.
func SetName(prefix string, i int) string {
	return fmt.Sprintf("%s.%03d", prefix, i)
}

//ManifestName returns the name of the manifest for the set with the given prefix.
func ManifestName(prefix string) string {
	return prefix + ".manifest.yaml"
}

//WriteSet writes each grid to its own file, named prefix.001, prefix.002, etc.
//Either all the files are written, or none is. It returns the names of the files written.
//Once the set is written, the files left by an earlier, larger set with the same prefix
//and compression are removed, as is its manifest if this set has none.
func WriteSet(prefix string, grids []*Grid, opts SetOptions) ([]string, error) {
	var files []*dhva.AtomicFile
	fail := func(err error) ([]string, error) {
		dhva.AbortAll(files)
		return nil, dhva.ErrDecorate(err, "WriteSet")
	}
	man := &Manifest{}
	for i, G := range grids {
		man.Grid = G.Dims.String()
		name := SetName(prefix, i+1) + opts.Compression
		A, err := dhva.CreateAtomic(name)
		if err != nil {
			return fail(err)
		}
		files = append(files, A)
		h := blake3.New()
		if _, err := G.WriteTo(io.MultiWriter(A, h)); err != nil {
			return fail(dhva.SetFile(err, name))
		}
		man.Artifacts = append(man.Artifacts, ManifestEntry{
			File:   filepath.Base(name),
			Band:   G.Band,
			Min:    floats.Min(G.Flat()),
			Max:    floats.Max(G.Flat()),
			Blake3: hex.EncodeToString(h.Sum(nil)),
		})
	}
	if opts.Manifest {
		A, err := dhva.CreateAtomic(ManifestName(prefix))
		if err != nil {
			return fail(err)
		}
		files = append(files, A)
		enc := yaml.NewEncoder(A)
		enc.SetIndent(2)
		if err := enc.Encode(man); err != nil {
			return fail(dhva.NewError(dhva.ErrIO, "WriteSet", A.Name(), "can't encode manifest", err))
		}
		if err := enc.Close(); err != nil {
			return fail(dhva.NewError(dhva.ErrIO, "WriteSet", A.Name(), "can't encode manifest", err))
		}
	}
	if err := dhva.CommitAll(files); err != nil {
		return nil, dhva.ErrDecorate(err, "WriteSet")
	}
	names := make([]string, len(files))
	for i, A := range files {
		names[i] = A.Name()
	}
	if err := removeStale(prefix, len(grids)+1, opts); err != nil {
		return names, dhva.ErrDecorate(err, "WriteSet")
	}
	return names, nil
}

//removeStale deletes prefix.NNN files from number first on, stopping at the first
//one that doesn't exist.
func removeStale(prefix string, first int, opts SetOptions) error {
	for i := first; ; i++ {
		name := SetName(prefix, i) + opts.Compression
		err := os.Remove(name)
		if errors.Is(err, fs.ErrNotExist) {
			break
		}
		if err != nil {
			return dhva.NewError(dhva.ErrIO, "removeStale", name, "can't remove the file of an earlier set", err)
		}
	}
	if opts.Manifest {
		return nil
	}
	name := ManifestName(prefix)
	if err := os.Remove(name); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return dhva.NewError(dhva.ErrIO, "removeStale", name, "can't remove the manifest of an earlier set", err)
	}
	return nil
}

//ReadManifest reads the manifest of the set with the given prefix.
func ReadManifest(prefix string) (*Manifest, error) {
	f, err := dhva.Open(ManifestName(prefix))
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ReadManifest")
	}
	defer f.Close()
	man := &Manifest{}
	if err := yaml.NewDecoder(f).Decode(man); err != nil {
		return nil, dhva.NewError(dhva.ErrParse, "ReadManifest", ManifestName(prefix), "invalid manifest", err)
	}
	return man, nil
}

/*
 * files.go, part of dhva.
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

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/ulikunitz/xz"
)

//Files produced and consumed by dhva are plain text, but band grids for
//dense meshes get big, so any of them can be compressed. The compression
//is chosen by extension: .zst (zstandard), .gz (gzip), .xz. Anything else
//is read and written as is.

//osRename is a variable so tests can make the commit step fail.
var osRename = os.Rename

type compression int

const (
	plain compression = iota
	zstdComp
	gzipComp
	xzComp
)

func compressionFor(name string) compression {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".zst", ".zstd":
		return zstdComp
	case ".gz":
		return gzipComp
	case ".xz":
		return xzComp
	}
	return plain
}

//zstd.Decoder doesn't implement io.ReadCloser
type zstdReadCloser struct {
	*zstd.Decoder
}

func (z zstdReadCloser) Close() error {
	z.Decoder.Close()
	return nil
}

type readCloser struct {
	io.Reader
	closers []io.Closer
}

func (r *readCloser) Close() error {
	var err error
	for _, c := range r.closers {
		if e := c.Close(); e != nil && err == nil {
			err = e
		}
	}
	return err
}

//Open opens the file name for reading, decompressing it if its
//extension requires it. The caller must close the returned reader.
func Open(name string) (io.ReadCloser, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, NewError(ErrIO, "Open", name, "can't open file", err)
	}
	var r io.Reader
	closers := []io.Closer{}
	switch compressionFor(name) {
	case zstdComp:
		d, err2 := zstd.NewReader(f)
		if err2 != nil {
			err = err2
			break
		}
		closers = append(closers, zstdReadCloser{d})
		r = d
	case gzipComp:
		g, err2 := gzip.NewReader(f)
		if err2 != nil {
			err = err2
			break
		}
		closers = append(closers, g)
		r = g
	case xzComp:
		x, err2 := xz.NewReader(f)
		if err2 != nil {
			err = err2
			break
		}
		r = x
	default:
		r = f
	}
	if err != nil {
		f.Close()
		return nil, NewError(ErrIO, "Open", name, "can't set up decompression", err)
	}
	closers = append(closers, f)
	return &readCloser{Reader: bufio.NewReader(r), closers: closers}, nil
}

//AtomicFile is a file that only appears under its final name when
//Commit is called. Until then, the data goes to a temporary file in the
//same directory. Abort removes the temporary file. It is safe
//to call Abort after Commit; it does nothing then.
type AtomicFile struct {
	name   string
	tmp    *os.File
	comp   io.WriteCloser //nil for uncompressed files
	buf    *bufio.Writer
	closed bool
	done   bool
}

//CreateAtomic starts writing the file name. Compression is
//selected by the extension of name.
func CreateAtomic(name string) (*AtomicFile, error) {
	dir := filepath.Dir(name)
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(name)+".tmp-*")
	if err != nil {
		return nil, NewError(ErrIO, "CreateAtomic", name, "can't create temporary file", err)
	}
	A := &AtomicFile{name: name, tmp: tmp}
	var w io.Writer = tmp
	switch compressionFor(name) {
	case zstdComp:
		A.comp, err = zstd.NewWriter(tmp, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	case gzipComp:
		A.comp, err = gzip.NewWriterLevel(tmp, gzip.BestCompression)
	case xzComp:
		A.comp, err = xz.NewWriter(tmp)
	}
	if err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return nil, NewError(ErrIO, "CreateAtomic", name, "can't set up compression", err)
	}
	if A.comp != nil {
		w = A.comp
	}
	A.buf = bufio.NewWriter(w)
	return A, nil
}

//Name returns the final name of the file.
func (A *AtomicFile) Name() string { return A.name }

//Write writes p to the temporary file.
func (A *AtomicFile) Write(p []byte) (int, error) {
	return A.buf.Write(p)
}

//WriteString writes s to the temporary file.
func (A *AtomicFile) WriteString(s string) (int, error) {
	return A.buf.WriteString(s)
}

//Close pushes everything down to the temporary file and closes it, without
//giving the file its final name. Nothing can be written after Close.
func (A *AtomicFile) Close() error {
	if A.closed {
		return nil
	}
	A.closed = true
	err := A.buf.Flush()
	if A.comp != nil {
		if e := A.comp.Close(); e != nil && err == nil {
			err = e
		}
	}
	if e := A.tmp.Close(); e != nil && err == nil {
		err = e
	}
	if err != nil {
		return NewError(ErrIO, "Close", A.name, "can't write file", err)
	}
	return nil
}

//Commit closes the temporary file and renames it to the final name.
//If anything fails, the temporary file is removed.
func (A *AtomicFile) Commit() error {
	if A.done {
		return nil
	}
	if err := A.Close(); err != nil {
		A.Abort()
		return ErrDecorate(err, "Commit")
	}
	A.done = true
	if err := osRename(A.tmp.Name(), A.name); err != nil {
		os.Remove(A.tmp.Name())
		return NewError(ErrIO, "Commit", A.name, "can't rename temporary file", err)
	}
	return nil
}

//Abort discards the temporary file.
func (A *AtomicFile) Abort() {
	if A.done {
		return
	}
	A.done = true
	if !A.closed {
		A.closed = true
		A.tmp.Close()
	}
	os.Remove(A.tmp.Name())
}

//CommitAll commits all the files or none of them. Every file is closed
//before any of them is renamed. If a rename fails, the files already
//renamed are removed and the rest are aborted.
func CommitAll(files []*AtomicFile) error {
	for _, A := range files {
		if err := A.Close(); err != nil {
			AbortAll(files)
			return ErrDecorate(err, "CommitAll")
		}
	}
	for i, A := range files {
		if err := A.Commit(); err != nil {
			for _, B := range files[:i] {
				os.Remove(B.name)
			}
			AbortAll(files[i+1:])
			return ErrDecorate(err, "CommitAll")
		}
	}
	return nil
}

//AbortAll aborts all the files.
func AbortAll(files []*AtomicFile) {
	for _, A := range files {
		A.Abort()
	}
}

//WriteAtomic writes the file name by calling fill on an AtomicFile, committing it
//only if fill succeeds.
func WriteAtomic(name string, fill func(w io.Writer) error) error {
	A, err := CreateAtomic(name)
	if err != nil {
		return err
	}
	if err := fill(A); err != nil {
		A.Abort()
		return SetFile(ErrDecorate(err, "WriteAtomic"), name)
	}
	return A.Commit()
}

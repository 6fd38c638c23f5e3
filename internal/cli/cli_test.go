/*
 * cli_test.go, part of dhva.
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

package cli

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/bxsf"
)

const cubic = "real lattice_constants[3]={2,2,2};\nreal axis_angles[3]={90,90,90};\n"

//band 21 is always above the Fermi energy, band 22 crosses it.
func bandTable() string {
	var b strings.Builder
	b.WriteString("# ik ... 8 ... 21 22\n")
	for i := 0; i < 8; i++ {
		fmt.Fprintf(&b, "%d %.2f %.2f\n", i+1, 0.5+0.1*float64(i), -0.35+0.1*float64(i))
	}
	return b.String()
}

//run executes dhvaprep in a fresh temporary directory with the given files in it.
func run(t *testing.T, files map[string]string, args ...string) (string, string, error) {
	t.Helper()
	dir := t.TempDir()
	t.Chdir(dir)
	for name, body := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o755))
	}
	cmd := NewRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func firstLine(t *testing.T, name string) string {
	t.Helper()
	f, err := os.Open(name)
	require.NoError(t, err)
	defer f.Close()
	s := bufio.NewScanner(f)
	require.True(t, s.Scan())
	return s.Text()
}

func TestVersion(t *testing.T) {
	out, _, err := run(t, nil, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "dhvaprep v"+Version)
}

func TestLattice(t *testing.T) {
	out, _, err := run(t, map[string]string{"cell.in": cubic}, "lattice", "cell.in")
	require.NoError(t, err)
	assert.Contains(t, out, "a1")
	assert.Contains(t, out, "b3")
	assert.Contains(t, out, " 3.14159265")
	assert.Contains(t, out, "volume: 8.00000000 bohr^3")
}

func TestKMesh(t *testing.T) {
	_, _, err := run(t, map[string]string{"cell.in": cubic}, "kmesh", "cell.in", "2", "2", "2")
	require.NoError(t, err)
	assert.Equal(t, "8 t 0 0", firstLine(t, "=.kp"))

	_, _, err = run(t, map[string]string{"cell.in": cubic}, "kmesh", "cell.in", "1", "2", "3",
		"--output", "mesh.kp", "--partial-only=false", "--upper-offset", "2")
	require.NoError(t, err)
	assert.Equal(t, "6 f 0 2", firstLine(t, "mesh.kp"))
}

func TestKMeshFromConfig(t *testing.T) {
	files := map[string]string{
		"cell.in":   cubic,
		"dhva.yaml": "kmesh:\n  output: fromconfig.kp\n  lower_offset: 1\n",
	}
	_, _, err := run(t, files, "kmesh", "cell.in", "2", "1", "1")
	require.NoError(t, err)
	assert.Equal(t, "2 t 1 0", firstLine(t, "fromconfig.kp"))
}

func TestUsageErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"kmesh", []string{"kmesh", "cell.in", "2", "2"}},
		{"bxsf", []string{"bxsf", "cell.in", "band.kp", "out", "2", "2"}},
		{"elk2dhva", []string{"elk2dhva", "in.bxsf"}},
		{"lattice", []string{"lattice"}},
		{"bands", []string{"bands", "a", "b"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, _, err := run(t, nil, tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "arg(s)")
			assert.Contains(t, out, "Usage:")
		})
	}
}

func TestBadArguments(t *testing.T) {
	out, _, err := run(t, map[string]string{"cell.in": cubic}, "kmesh", "cell.in", "2", "two", "2")
	assert.ErrorIs(t, err, dhva.ErrParse)
	assert.NotContains(t, out, "Usage:")

	_, _, err = run(t, map[string]string{"cell.in": cubic}, "kmesh", "cell.in", "2", "0", "2")
	assert.ErrorIs(t, err, dhva.ErrValidation)

	_, _, err = run(t, nil, "lattice", "nothere.in")
	assert.ErrorIs(t, err, dhva.ErrIO)

	_, _, err = run(t, nil, "--log-level", "loud", "version")
	assert.ErrorIs(t, err, dhva.ErrValidation)
}

func TestBXSF(t *testing.T) {
	files := map[string]string{"cell.in": cubic, "band.kp": bandTable()}
	out, _, err := run(t, files, "bxsf", "cell.in", "band.kp", "out", "2", "2", "2", "--manifest")
	require.NoError(t, err)
	assert.Contains(t, out, "out.001\tband 22")
	assert.NoFileExists(t, "out.002")
	assert.FileExists(t, "out.001")
	man, err := bxsf.ReadManifest("out")
	require.NoError(t, err)
	require.Len(t, man.Artifacts, 1)
	assert.Equal(t, 22, man.Artifacts[0].Band)
	F, err := bxsf.ReadFile("out.001")
	require.NoError(t, err)
	assert.Equal(t, 8, F.Dims.Count())

	//the table has 8 k-points, a 3x2x2 grid needs 12.
	_, _, err = run(t, files, "bxsf", "cell.in", "band.kp", "out", "3", "2", "2")
	assert.ErrorIs(t, err, dhva.ErrValidation)
	assert.NoFileExists(t, "out.001")
}

func TestBXSFNothingToWrite(t *testing.T) {
	files := map[string]string{"cell.in": cubic, "band.kp": "# ik ... 2 ... 5 5\n1 0.2\n2 0.3\n"}
	out, _, err := run(t, files, "bxsf", "cell.in", "band.kp", "out", "2", "1", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "nothing written")
	assert.NoFileExists(t, "out.001")
}

func TestBands(t *testing.T) {
	out, _, err := run(t, map[string]string{"band.kp": bandTable()}, "bands", "band.kp", "--plot", "window.png")
	require.NoError(t, err)
	assert.Contains(t, out, "yes")
	assert.Contains(t, out, "K-POINTS")
	assert.FileExists(t, "window.png")

	out, _, err = run(t, map[string]string{"band.kp": bandTable()}, "bands", "band.kp", "--dos-bins", "4", "--dos-width", "2")
	require.NoError(t, err)
	assert.Contains(t, out, "FRACTION")
	assert.Contains(t, out, "0.5625")
	assert.Contains(t, out, "0.2500")
}

func TestInspect(t *testing.T) {
	files := map[string]string{"cell.in": cubic, "band.kp": bandTable()}
	_, _, err := run(t, files, "bxsf", "cell.in", "band.kp", "out", "2", "2", "2")
	require.NoError(t, err)
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"inspect", "out.001"})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "grid: 2x2x2")
	assert.Contains(t, out.String(), "yes")
}

func TestElk2DHVAMissing(t *testing.T) {
	_, _, err := run(t, nil, "elk2dhva", "nothere.bxsf", "out.bxsf")
	assert.ErrorIs(t, err, dhva.ErrIO)
	assert.NoFileExists(t, "out.bxsf")
}

func TestSweep(t *testing.T) {
	files := map[string]string{"dhva": "#!/bin/sh\necho \"$4\" >> angles.log\n"}
	out, _, err := run(t, files, "sweep", "--binary", "./dhva", "--file", "x.bxsf",
		"--start", "0", "--stop", "10", "--step", "5")
	require.NoError(t, err)
	data, err := os.ReadFile("angles.log")
	require.NoError(t, err)
	assert.Equal(t, "0.000000\n5.000000\n10.000000\n", string(data))
	assert.Contains(t, out, "RUNS")
}

func TestSweepFailure(t *testing.T) {
	files := map[string]string{"dhva": "#!/bin/sh\nexit 2\n"}
	out, _, err := run(t, files, "sweep", "--binary", "./dhva", "--file", "x.bxsf",
		"--start", "0", "--stop", "10", "--step", "5", "--policy", "continue")
	require.Error(t, err)
	assert.Equal(t, 3, strings.Count(out, "failed"), "one line per failed run")
	assert.Contains(t, out, "FAILED")
}

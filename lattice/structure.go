/*
 * structure.go, part of dhva.
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

//Package lattice reads crystal structure descriptions and builds the direct and
//reciprocal lattice of the crystal, in bohr and inverse bohr respectively.
package lattice

import (
	"bufio"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	dhva "github.com/dhvatools/dhva"
)

const (
	constantsKey = "lattice_constants"
	anglesKey    = "axis_angles"
	angstromMark = "Angstroem"
)

//Structure holds the cell parameters of a crystal.
//Lengths are in Unit, angles in radians.
type Structure struct {
	A, B, C            float64
	Alpha, Beta, Gamma float64
	Unit               dhva.Unit
}

//NewStructure returns a Structure with the lattice constants a, b and c given in unit,
//and the angles alpha, beta and gamma, given in degrees.
func NewStructure(a, b, c, alpha, beta, gamma float64, unit dhva.Unit) *Structure {
	return &Structure{
		A: a, B: b, C: c,
		Alpha: alpha * dhva.Deg2Rad, Beta: beta * dhva.Deg2Rad, Gamma: gamma * dhva.Deg2Rad,
		Unit: unit,
	}
}

//The structure files are FPLO-style =.in files. Only declarations like
//   real lattice_constants[3]={3.92,3.92,13.2};
//are of interest. Each line is lexed, and lines that look like declarations are parsed.
//Everything else (sections, struct types, etc.) is ignored.
var structLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Comment", Pattern: `//[^\n]*|#[^\n]*`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Number", Pattern: `[-+]?(\d+\.?\d*|\.\d+)([eEdD][-+]?\d+)?`},
	{Name: "Ident", Pattern: `[A-Za-z_][A-Za-z0-9_]*`},
	{Name: "Punct", Pattern: `[{}\[\];,=()]`},
	{Name: "Whitespace", Pattern: `\s+`},
	{Name: "Other", Pattern: `.`},
})

//declaration is "type words... name[dim]... = value;". The name is the last word.
type declaration struct {
	Words []string `@Ident+`
	Dims  []string `( "[" @Number? "]" )*`
	Value *value   `"=" @@ ";"?`
}

type value struct {
	List   []*value `  "{" ( @@ ( "," @@ )* )? "}"`
	Number *string  `| @Number`
	String *string  `| @String`
	Ident  *string  `| @Ident`
}

var declParser = participle.MustBuild[declaration](
	participle.Lexer(structLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

//Name returns the name of the declared variable.
func (D *declaration) Name() string {
	return D.Words[len(D.Words)-1]
}

//Floats returns the values of a list declaration as float64s.
func (D *declaration) Floats() ([]float64, error) {
	if D.Value == nil || D.Value.List == nil {
		return nil, dhva.Errorf(dhva.ErrParse, "Floats", "%s is not a list", D.Name())
	}
	ret := make([]float64, 0, len(D.Value.List))
	for _, v := range D.Value.List {
		if v.Number == nil {
			return nil, dhva.Errorf(dhva.ErrParse, "Floats", "%s contains a non-numeric value", D.Name())
		}
		//Fortran-style exponents show up in some of these files
		s := strings.NewReplacer("d", "e", "D", "e").Replace(*v.Number)
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, dhva.NewError(dhva.ErrParse, "Floats", "", "invalid number in "+D.Name(), err)
		}
		ret = append(ret, f)
	}
	return ret, nil
}

//hasAngstromMark returns true if any identifier or string in the line is the
//angstrom marker. Comments don't count.
func hasAngstromMark(line string) bool {
	lex, err := structLexer.Lex("", strings.NewReader(line))
	if err != nil {
		return false
	}
	tokens, err := lexer.ConsumeAll(lex)
	if err != nil {
		return false
	}
	syms := structLexer.Symbols()
	for _, t := range tokens {
		switch t.Type {
		case syms["Ident"]:
			if t.Value == angstromMark {
				return true
			}
		case syms["String"]:
			if strings.Trim(t.Value, `"`) == angstromMark {
				return true
			}
		}
	}
	return false
}

//ParseStructure reads a structure description from r. It fails with a
//dhva.ErrParse error if the lattice constants or the axis angles are missing
//or don't have exactly 3 values.
func ParseStructure(r io.Reader) (*Structure, error) {
	decls := make(map[string]*declaration)
	unit := dhva.Bohr
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if hasAngstromMark(line) {
			unit = dhva.Angstrom
		}
		if !strings.Contains(line, "=") {
			continue
		}
		d, err := declParser.ParseString("", line)
		if err != nil {
			continue //not a declaration we understand, and not one we need.
		}
		decls[d.Name()] = d
	}
	if err := scanner.Err(); err != nil {
		return nil, dhva.NewError(dhva.ErrIO, "ParseStructure", "", "can't read structure description", err)
	}
	S := &Structure{Unit: unit}
	consts, err := threeValues(decls, constantsKey)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ParseStructure")
	}
	angles, err := threeValues(decls, anglesKey)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ParseStructure")
	}
	S.A, S.B, S.C = consts[0], consts[1], consts[2]
	S.Alpha, S.Beta, S.Gamma = angles[0]*dhva.Deg2Rad, angles[1]*dhva.Deg2Rad, angles[2]*dhva.Deg2Rad
	return S, nil
}

func threeValues(decls map[string]*declaration, key string) ([]float64, error) {
	d, ok := decls[key]
	if !ok {
		return nil, dhva.Errorf(dhva.ErrParse, "threeValues", "no %s declaration found", key)
	}
	v, err := d.Floats()
	if err != nil {
		return nil, dhva.ErrDecorate(err, "threeValues")
	}
	if len(v) != 3 {
		return nil, dhva.Errorf(dhva.ErrParse, "threeValues", "%s must have 3 values, found %d", key, len(v))
	}
	for _, f := range v {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, dhva.Errorf(dhva.ErrParse, "threeValues", "%s contains a non-finite value", key)
		}
	}
	return v, nil
}

//ReadStructure reads the structure description in the file name.
func ReadStructure(name string) (*Structure, error) {
	f, err := dhva.Open(name)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "ReadStructure")
	}
	defer f.Close()
	S, err := ParseStructure(f)
	if err != nil {
		return nil, dhva.SetFile(dhva.ErrDecorate(err, "ReadStructure"), name)
	}
	return S, nil
}

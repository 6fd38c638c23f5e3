/*
 * config.go, part of dhva.
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

//Package config loads the settings of the dhvaprep command, from defaults, an optional
//dhva.yaml file, DHVA_ environment variables and command line flags, in increasing priority.
package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	dhva "github.com/dhvatools/dhva"
	"github.com/dhvatools/dhva/sweep"
)

//DefaultFile is the configuration file looked for in the working directory.
const DefaultFile = "dhva.yaml"

//EnvPrefix is the prefix of the environment variables read. DHVA_SWEEP_BINARY sets sweep.binary.
const EnvPrefix = "DHVA_"

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type KMeshConfig struct {
	Output      string `koanf:"output"`
	PartialOnly bool   `koanf:"partial_only"`
	LowerOffset int    `koanf:"lower_offset"`
	UpperOffset int    `koanf:"upper_offset"`
}

type BXSFConfig struct {
	Manifest    bool   `koanf:"manifest"`
	Compression string `koanf:"compression"`
}

type SweepConfig struct {
	Binary        string  `koanf:"binary"`
	File          string  `koanf:"file"`
	Dir           string  `koanf:"dir"`
	NKSC          int     `koanf:"nksc"`
	NSC           float64 `koanf:"nsc"`
	Phi           float64 `koanf:"phi"`
	Theta         float64 `koanf:"theta"`
	MaxKDiff      float64 `koanf:"max_kdiff"`
	MaxFreqDiff   float64 `koanf:"max_freq_diff"`
	MinimumFreq   float64 `koanf:"minimum_freq"`
	Interpolation int     `koanf:"interpolation"`
	Graphical     bool    `koanf:"graphical"`
	Parameter     string  `koanf:"parameter"`
	Start         float64 `koanf:"start"`
	Stop          float64 `koanf:"stop"`
	Step          float64 `koanf:"step"`
	Policy        string  `koanf:"policy"`
	Retries       int     `koanf:"retries"`
}

//Config is the complete configuration.
type Config struct {
	Log   LogConfig   `koanf:"log"`
	KMesh KMeshConfig `koanf:"kmesh"`
	BXSF  BXSFConfig  `koanf:"bxsf"`
	Sweep SweepConfig `koanf:"sweep"`

	File string `koanf:"-"` //configuration file used, if any.
}

func defaults() map[string]any {
	p := sweep.DefaultParams()
	return map[string]any{
		"log.level":            "info",
		"log.format":           "text",
		"kmesh.output":         "=.kp",
		"kmesh.partial_only":   true,
		"kmesh.lower_offset":   0,
		"kmesh.upper_offset":   0,
		"bxsf.manifest":        false,
		"bxsf.compression":     "",
		"sweep.binary":         p.Binary,
		"sweep.file":           "",
		"sweep.dir":            "",
		"sweep.nksc":           p.NKSC,
		"sweep.nsc":            p.NSC,
		"sweep.phi":            p.Phi,
		"sweep.theta":          p.Theta,
		"sweep.max_kdiff":      p.MaxKDiff,
		"sweep.max_freq_diff":  p.MaxFreqDiff,
		"sweep.minimum_freq":   p.MinimumFreq,
		"sweep.interpolation":  p.Interpolation,
		"sweep.graphical":      p.Graphical,
		"sweep.parameter":      "phi",
		"sweep.start":          -90.0,
		"sweep.stop":           90.0,
		"sweep.step":           5.0,
		"sweep.policy":         sweep.FailFast.String(),
		"sweep.retries":        0,
	}
}

//FlagKeys maps command line flags to configuration keys. Flags not in
//the map are not configuration.
var FlagKeys = map[string]string{
	"log-level":     "log.level",
	"log-format":    "log.format",
	"output":        "kmesh.output",
	"partial-only":  "kmesh.partial_only",
	"lower-offset":  "kmesh.lower_offset",
	"upper-offset":  "kmesh.upper_offset",
	"manifest":      "bxsf.manifest",
	"compress":      "bxsf.compression",
	"binary":        "sweep.binary",
	"file":          "sweep.file",
	"dir":           "sweep.dir",
	"nksc":          "sweep.nksc",
	"nsc":           "sweep.nsc",
	"phi":           "sweep.phi",
	"theta":         "sweep.theta",
	"max-kdiff":     "sweep.max_kdiff",
	"max-freq-diff": "sweep.max_freq_diff",
	"minimum-freq":  "sweep.minimum_freq",
	"interpolation": "sweep.interpolation",
	"graphical":     "sweep.graphical",
	"parameter":     "sweep.parameter",
	"start":         "sweep.start",
	"stop":          "sweep.stop",
	"step":          "sweep.step",
	"policy":        "sweep.policy",
	"retries":       "sweep.retries",
}

//envKey turns DHVA_SWEEP_MAX_KDIFF into sweep.max_kdiff. The first
//underscore separates the section from the key.
func envKey(s string) string {
	s = strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.Replace(s, "_", ".", 1)
}

//Load reads the configuration. cfgFile is used if not empty, otherwise
//DefaultFile is read if it exists. Only the flags in flags that were set and are in
//FlagKeys are used. flags can be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, dhva.NewError(dhva.ErrParse, "Load", "", "can't load defaults", err)
	}
	if cfgFile == "" {
		if _, err := os.Stat(DefaultFile); err == nil {
			cfgFile = DefaultFile
		}
	}
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err != nil {
			return nil, dhva.NewError(dhva.ErrIO, "Load", cfgFile, "can't read configuration file", err)
		}
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, dhva.NewError(dhva.ErrParse, "Load", cfgFile, "invalid configuration file", err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, dhva.NewError(dhva.ErrParse, "Load", "", "can't load environment variables", err)
	}
	if flags != nil {
		err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key, ok := FlagKeys[f.Name]
			if !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		}), nil)
		if err != nil {
			return nil, dhva.NewError(dhva.ErrParse, "Load", "", "can't load flags", err)
		}
	}
	cfg := &Config{File: cfgFile}
	if err := k.UnmarshalWithConf("", cfg, koanf.UnmarshalConf{Tag: "koanf", FlatPaths: false}); err != nil {
		return nil, dhva.NewError(dhva.ErrParse, "Load", cfgFile, "can't decode configuration", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, dhva.SetFile(dhva.ErrDecorate(err, "Load"), cfgFile)
	}
	return cfg, nil
}

var compressions = []string{"", ".zst", ".gz", ".xz"}

//Validate checks the values that can be checked without doing anything.
func (C *Config) Validate() error {
	switch C.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return dhva.Errorf(dhva.ErrValidation, "Validate", "log.level must be debug, info, warn or error, not %q", C.Log.Level)
	}
	if C.Log.Format != "text" && C.Log.Format != "json" {
		return dhva.Errorf(dhva.ErrValidation, "Validate", "log.format must be text or json, not %q", C.Log.Format)
	}
	if C.KMesh.Output == "" {
		return dhva.Errorf(dhva.ErrValidation, "Validate", "kmesh.output can't be empty")
	}
	ok := false
	for _, c := range compressions {
		ok = ok || C.BXSF.Compression == c
	}
	if !ok {
		return dhva.Errorf(dhva.ErrValidation, "Validate", "bxsf.compression must be one of %q", compressions)
	}
	if _, err := sweep.ParsePolicy(C.Sweep.Policy); err != nil {
		return dhva.ErrDecorate(err, "Validate")
	}
	if C.Sweep.Retries < 0 {
		return dhva.Errorf(dhva.ErrValidation, "Validate", "sweep.retries can't be negative")
	}
	if C.Sweep.Interpolation != 0 && C.Sweep.Interpolation != 1 {
		return dhva.Errorf(dhva.ErrValidation, "Validate", "sweep.interpolation must be 0 (linear) or 1 (cubic)")
	}
	return nil
}

//SweepParams returns the sweep described by the configuration, without logger or outputs.
func (C *Config) SweepParams() (*sweep.Sweep, error) {
	pol, err := sweep.ParsePolicy(C.Sweep.Policy)
	if err != nil {
		return nil, dhva.ErrDecorate(err, "SweepParams")
	}
	s := C.Sweep
	return &sweep.Sweep{
		Params: sweep.Params{
			Binary:        s.Binary,
			File:          s.File,
			NKSC:          s.NKSC,
			NSC:           s.NSC,
			Phi:           s.Phi,
			Theta:         s.Theta,
			MaxKDiff:      s.MaxKDiff,
			MaxFreqDiff:   s.MaxFreqDiff,
			MinimumFreq:   s.MinimumFreq,
			Interpolation: s.Interpolation,
			Graphical:     s.Graphical,
		},
		Parameter: s.Parameter,
		Start:     s.Start,
		Stop:      s.Stop,
		Step:      s.Step,
		Policy:    pol,
		Retries:   s.Retries,
		Dir:       s.Dir,
	}, nil
}

func (C *Config) String() string {
	src := C.File
	if src == "" {
		src = "defaults"
	}
	return fmt.Sprintf("config from %s: log=%s/%s", src, C.Log.Level, C.Log.Format)
}

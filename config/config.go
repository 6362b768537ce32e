/*
 * config.go, part of aqmmm.
 *
 * Copyright 2024 Raul Mera <rmeraa{at}academicosDOTutaDOTcl>
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
/***Dedicated to the long life of the Ven. Khenpo Phuntzok Tenzin Rinpoche***/

// Package config holds the parameters of an adaptive QM/MM calculation,
// their defaults and validation, and builds the objects that carry it out.
package config

import (
	"bytes"
	"os"
	"strings"

	"github.com/rmera/aqmmm"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix of the environment variables that override parameters,
// as in AQMMM_PARTITION_RMAX.
const EnvPrefix = "AQMMM"

const (
	DefaultRmin    = 3.8
	DefaultRmax    = 4.5
	DefaultMethod  = "gfn2"
	DefaultWorkers = 1 //values < 2 mean sequential evaluation
)

// SystemParams describes the input system.
type SystemParams struct {
	Input  string `yaml:"input" mapstructure:"input"` //PDB or XYZ file
	Center []int  `yaml:"center" mapstructure:"center"`
	Charge int    `yaml:"charge" mapstructure:"charge"` //of the QM region
	Multi  int    `yaml:"multi" mapstructure:"multi"`   //0 lets the QM program choose
}

// PartitionParams selects the adaptive scheme and its zone.
type PartitionParams struct {
	Scheme   string  `yaml:"scheme" mapstructure:"scheme"` //hot_spot or sap
	Rmin     float64 `yaml:"rmin" mapstructure:"rmin"`
	Rmax     float64 `yaml:"rmax" mapstructure:"rmax"`
	Modified bool    `yaml:"modified" mapstructure:"modified"`   //modified SAP, ignored for hot_spot
	ExactChi bool    `yaml:"exact_chi" mapstructure:"exact_chi"` //exact dChi_i/dS_i instead of the closed form
}

// EmbeddingParams selects the QM/MM embedding.
type EmbeddingParams struct {
	Scheme       string `yaml:"scheme" mapstructure:"scheme"`               //subtractive or additive
	Treatment    string `yaml:"treatment" mapstructure:"treatment"`         //link_atom, RC or RCD
	PointCharges bool   `yaml:"point_charges" mapstructure:"point_charges"` //electrostatic embedding
}

// QMParams configures the QM program.
type QMParams struct {
	Program    string  `yaml:"program" mapstructure:"program"`
	Command    string  `yaml:"command" mapstructure:"command"`
	Method     string  `yaml:"method" mapstructure:"method"`
	NCPU       int     `yaml:"ncpu" mapstructure:"ncpu"`
	Dielectric float64 `yaml:"dielectric" mapstructure:"dielectric"`
	WorkDir    string  `yaml:"workdir" mapstructure:"workdir"`
	Keep       bool    `yaml:"keep" mapstructure:"keep"`
}

// MMParams configures the force field.
type MMParams struct {
	Kb float64 `yaml:"kb" mapstructure:"kb"` //bond force constant, kcal/(mol A^2)
}

// EngineParams configures the adaptive engine.
type EngineParams struct {
	Workers    int  `yaml:"workers" mapstructure:"workers"`
	EnergyOnly bool `yaml:"energy_only" mapstructure:"energy_only"`
}

// OutputParams tells where results go. Empty means nowhere.
type OutputParams struct {
	Snapshot string `yaml:"snapshot" mapstructure:"snapshot"` //compressed if it ends in .zst
	Gradient string `yaml:"gradient" mapstructure:"gradient"` //XYZ-like file with the gradients
	Metrics  string `yaml:"metrics" mapstructure:"metrics"`   //Prometheus text file
}

// LogParams configures the logger.
type LogParams struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"` //json or console
}

// Params holds all the parameters of a calculation.
type Params struct {
	System    SystemParams    `yaml:"system" mapstructure:"system"`
	Partition PartitionParams `yaml:"partition" mapstructure:"partition"`
	Embedding EmbeddingParams `yaml:"embedding" mapstructure:"embedding"`
	QM        QMParams        `yaml:"qm" mapstructure:"qm"`
	MM        MMParams        `yaml:"mm" mapstructure:"mm"`
	Engine    EngineParams    `yaml:"engine" mapstructure:"engine"`
	Output    OutputParams    `yaml:"output" mapstructure:"output"`
	Log       LogParams       `yaml:"log" mapstructure:"log"`
}

// Default returns the default parameters. They lack an input file and a QM center.
func Default() *Params {
	return &Params{
		Partition: PartitionParams{Scheme: "sap", Rmin: DefaultRmin, Rmax: DefaultRmax},
		Embedding: EmbeddingParams{Scheme: "subtractive", Treatment: "link_atom"},
		QM:        QMParams{Program: "xtb", Command: "xtb", Method: DefaultMethod},
		MM:        MMParams{Kb: 300},
		Engine:    EngineParams{Workers: DefaultWorkers},
		Log:       LogParams{Level: "info", Format: "console"},
	}
}

// Load reads the YAML file at path. Parameters missing in the file keep their
// default values.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, aqmmm.NewConfigurationError("Load", "%v", err)
	}
	p := Default()
	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, aqmmm.NewConfigurationError("Load", "%s: %v", path, err)
	}
	return p, nil
}

// Save writes p to path as YAML.
func Save(path string, p *Params) error {
	data, err := p.YAML()
	if err != nil {
		return aqmmm.ErrDecorate(err, "Save")
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return aqmmm.NewConfigurationError("Save", "%v", err)
	}
	return nil
}

// YAML returns p as YAML.
func (p *Params) YAML() ([]byte, error) {
	data, err := yaml.Marshal(p)
	if err != nil {
		return nil, aqmmm.NewConfigurationError("YAML", "%v", err)
	}
	return data, nil
}

// NewViper returns a viper instance that knows every parameter, with
// the defaults set, and reads AQMMM_* environment variables.
// Nested keys map to variables with "_", as in AQMMM_QM_NCPU.
func NewViper() (*viper.Viper, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	def, err := Default().YAML()
	if err != nil {
		return nil, aqmmm.ErrDecorate(err, "NewViper")
	}
	if err := v.ReadConfig(bytes.NewReader(def)); err != nil {
		return nil, aqmmm.NewConfigurationError("NewViper", "%v", err)
	}
	return v, nil
}

// FromViper reads the parameters from v, merging the file path first if
// path is not empty, and validates them.
func FromViper(v *viper.Viper, path string) (*Params, error) {
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, aqmmm.NewConfigurationError("FromViper", "%s: %v", path, err)
		}
	}
	p := new(Params)
	if err := v.Unmarshal(p); err != nil {
		return nil, aqmmm.NewConfigurationError("FromViper", "%v", err)
	}
	if err := p.Validate(); err != nil {
		return nil, aqmmm.ErrDecorate(err, "FromViper")
	}
	return p, nil
}

func oneOf(s string, options ...string) bool {
	for _, v := range options {
		if s == v {
			return true
		}
	}
	return false
}

// Validate checks that the parameters are consistent. It doesn't check that the
// input file exists.
func (p *Params) Validate() error {
	const caller = "Validate"
	pp := p.Partition
	if !oneOf(pp.Scheme, "hot_spot", "sap") {
		return aqmmm.NewConfigurationError(caller, "unknown partition scheme %q, use hot_spot or sap", pp.Scheme)
	}
	if pp.Rmin < 0 || pp.Rmax <= pp.Rmin {
		return aqmmm.NewConfigurationError(caller, "need 0 <= rmin < rmax, got rmin=%g rmax=%g", pp.Rmin, pp.Rmax)
	}
	if pp.Modified && pp.Scheme != "sap" {
		return aqmmm.NewConfigurationError(caller, "modified is only meaningful for sap")
	}
	if !oneOf(p.Embedding.Scheme, "subtractive", "additive") {
		return aqmmm.NewConfigurationError(caller, "unknown embedding scheme %q, use subtractive or additive", p.Embedding.Scheme)
	}
	if !oneOf(p.Embedding.Treatment, "link_atom", "RC", "RCD") {
		return aqmmm.NewConfigurationError(caller, "unknown boundary treatment %q, use link_atom, RC or RCD", p.Embedding.Treatment)
	}
	if p.Embedding.Scheme == "additive" && !p.Engine.EnergyOnly {
		return aqmmm.NewConfigurationError(caller, "the additive scheme gives only energies, set engine.energy_only")
	}
	if p.QM.Program != "xtb" {
		return aqmmm.NewConfigurationError(caller, "unsupported QM program %q", p.QM.Program)
	}
	if !oneOf(p.QM.Method, "gfn0", "gfn1", "gfn2") {
		return aqmmm.NewConfigurationError(caller, "unknown xtb method %q", p.QM.Method)
	}
	if p.QM.NCPU < 0 || p.Engine.Workers < 0 {
		return aqmmm.NewConfigurationError(caller, "negative ncpu or workers")
	}
	if p.MM.Kb <= 0 {
		return aqmmm.NewConfigurationError(caller, "the bond force constant must be positive")
	}
	for _, v := range p.System.Center {
		if v < 0 {
			return aqmmm.NewConfigurationError(caller, "negative atom index %d in the QM center", v)
		}
	}
	if _, err := zapcore.ParseLevel(p.Log.Level); err != nil {
		return aqmmm.NewConfigurationError(caller, "log level: %v", err)
	}
	if !oneOf(p.Log.Format, "json", "console") {
		return aqmmm.NewConfigurationError(caller, "unknown log format %q", p.Log.Format)
	}
	return nil
}

// NewLogger builds a zap logger from lp. Logs go to stderr.
func NewLogger(lp LogParams) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(lp.Level)
	if err != nil {
		return nil, aqmmm.NewConfigurationError("NewLogger", "%v", err)
	}
	var cfg zap.Config
	if lp.Format == "json" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
	}
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := cfg.Build()
	if err != nil {
		return nil, aqmmm.NewConfigurationError("NewLogger", "%v", err)
	}
	return logger, nil
}

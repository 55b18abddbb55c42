// Package config loads the converter's construction flags from a TOML
// file, grounded on chazu-maggie/manifest/manifest.go's use of
// github.com/BurntSushi/toml for its own maggie.toml manifest.
package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config is the TOML-backed, pflag-overridable set of flags the
// converter is constructed with: solver selection, encoding choices,
// and the checks the converter instruments into the SSA equation.
type Config struct {
	Solver string `toml:"solver"` // boolector|z3|mathsat|cvc|yices|bitwuzla|smtlib

	IntEncoding    bool   `toml:"int-encoding"`   // QF_AUFLIRA vs QF_AUFBV
	FloatEncoding  string `toml:"float-encoding"` // "fixedbv" (the only one implemented)
	TupleFlattener string `toml:"tuple-flattener"`
	ArrayFlattener string `toml:"array-flattener"`

	BigEndian bool `toml:"endian-big"`
	WordWidth uint `toml:"word-width"`

	SmtFormulaOnly bool `toml:"smt-formula-only"`
	SmtFormulaToo  bool `toml:"smt-formula-too"`

	OverflowCheck  bool `toml:"overflow-check"`
	PointerCheck   bool `toml:"pointer-check"`
	NanCheck       bool `toml:"nan-check"`
	DivByZeroCheck bool `toml:"div-by-zero-check"`
}

// Default matches gosmt's own implicit defaults (a single solver,
// bitvector encoding, little-endian, 64-bit words) before any TOML file
// or pflag override is applied.
func Default() Config {
	return Config{
		Solver:         "z3",
		IntEncoding:    false,
		FloatEncoding:  "fixedbv",
		TupleFlattener: "by-symbol",
		ArrayFlattener: "native",
		BigEndian:      false,
		WordWidth:      64,
		OverflowCheck:  true,
		PointerCheck:   true,
		NanCheck:       false,
		DivByZeroCheck: true,
	}
}

// Load reads a TOML config file on top of Default, the same
// read-then-decode-into-a-populated-struct shape manifest.Load uses.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: cannot read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parse error in %s: %w", path, err)
	}
	return cfg, nil
}

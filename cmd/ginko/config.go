package main

import (
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/dhamidi/ginko/dts/diagnostics"
)

// config is the decoded shape of an optional .ginko.toml found alongside
// (or above) the file being analyzed, per SPEC_FULL.md §B/§D.4: include
// search path defaults and per-code severity overrides.
type config struct {
	IncludeDirs []string          `toml:"include_dirs"`
	Severity    map[string]string `toml:"severity"`
}

var codeByName = func() map[string]diagnostics.Code {
	names := map[string]diagnostics.Code{
		"UnexpectedEOF":                 diagnostics.UnexpectedEOF,
		"Expected":                      diagnostics.Expected,
		"ExpectedName":                  diagnostics.ExpectedName,
		"OddNumberOfBytestringElements": diagnostics.OddNumberOfBytestringElements,
		"NonDtsV1":                      diagnostics.NonDtsV1,
		"NameTooLong":                   diagnostics.NameTooLong,
		"IllegalChar":                   diagnostics.IllegalChar,
		"IllegalStart":                  diagnostics.IllegalStart,
		"UnresolvedReference":           diagnostics.UnresolvedReference,
		"PropertyReferencedByNode":      diagnostics.PropertyReferencedByNode,
		"NonStringInCompatible":         diagnostics.NonStringInCompatible,
		"PathCannotBeEmpty":             diagnostics.PathCannotBeEmpty,
		"PropertyAfterNode":             diagnostics.PropertyAfterNode,
		"UnbalancedParentheses":         diagnostics.UnbalancedParentheses,
		"MisplacedDtsHeader":            diagnostics.MisplacedDtsHeader,
		"DuplicateDirective":            diagnostics.DuplicateDirective,
		"DuplicateLabel":                diagnostics.DuplicateLabel,
		"ParserError":                   diagnostics.ParserError,
		"IOError":                       diagnostics.IOError,
		"ErrorsInInclude":               diagnostics.ErrorsInInclude,
		"CyclicDependencyError":         diagnostics.CyclicDependencyError,
		"IntError":                      diagnostics.IntError,
		"TruncatingBits":                diagnostics.TruncatingBits,
	}
	return names
}()

var severityByName = map[string]diagnostics.Severity{
	"error":   diagnostics.Error,
	"warning": diagnostics.Warning,
	"hint":    diagnostics.Hint,
}

// severityOverrides translates the TOML-decoded string map into a
// diagnostics.SeverityMap, skipping unrecognized code or severity names.
func (c *config) severityOverrides() diagnostics.SeverityMap {
	out := diagnostics.SeverityMap{}
	for name, sevName := range c.Severity {
		code, ok := codeByName[name]
		if !ok {
			continue
		}
		sev, ok := severityByName[sevName]
		if !ok {
			continue
		}
		out[code] = sev
	}
	return out
}

// loadConfig looks for .ginko.toml starting in the directory containing
// file and walking up to the filesystem root, returning an empty config
// if none is found.
func loadConfig(file string) (*config, error) {
	dir := filepath.Dir(file)
	for {
		candidate := filepath.Join(dir, ".ginko.toml")
		if _, err := os.Stat(candidate); err == nil {
			var cfg config
			if _, err := toml.DecodeFile(candidate, &cfg); err != nil {
				return nil, err
			}
			return &cfg, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return &config{}, nil
}

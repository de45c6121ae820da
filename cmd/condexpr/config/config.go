// Package config loads the YAML vars document (the CLI's --vars file) an
// embedder of the condexpr CLI uses to describe variables and extension
// arities, following a "name(min,max)" schema convention.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// functionDecl matches a "name(min,max)" declaration, where max may be the
// literal MAX for an unbounded upper arity.
var functionDecl = regexp.MustCompile(`^([a-zA-Z0-9_]+)\(([0-9]+),([0-9]+|MAX)\)$`)

// ExtensionArity is one parsed "name(min,max)" declaration.
type ExtensionArity struct {
	Name string
	Min  int
	Max  int // -1 means unbounded (MAX)
}

// Document is the CLI's YAML vars-file format:
//
//	variables:
//	  env: prod
//	extensions:
//	  - "score(1,MAX)"
type Document struct {
	Variables  map[string]interface{} `yaml:"variables"`
	Extensions []string               `yaml:"extensions"`
}

// Load reads and parses path as a Document.
func Load(path string) (*Document, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	var doc Document
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	return &doc, nil
}

// Arities parses every "extensions" entry into an ExtensionArity.
func (d *Document) Arities() ([]ExtensionArity, error) {
	out := make([]ExtensionArity, 0, len(d.Extensions))
	for _, decl := range d.Extensions {
		m := functionDecl.FindStringSubmatch(decl)
		if m == nil {
			return nil, errors.Errorf("invalid extension declaration %q, expected name(min,max)", decl)
		}
		min, err := strconv.Atoi(m[2])
		if err != nil {
			return nil, errors.Wrapf(err, "invalid min arity in %q", decl)
		}
		max := -1
		if m[3] != "MAX" {
			max, err = strconv.Atoi(m[3])
			if err != nil {
				return nil, errors.Wrapf(err, "invalid max arity in %q", decl)
			}
		}
		if max != -1 && max < min {
			return nil, fmt.Errorf("extension %q has max arity below min arity", m[1])
		}
		out = append(out, ExtensionArity{Name: m[1], Min: min, Max: max})
	}
	return out, nil
}

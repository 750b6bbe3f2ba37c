// Package fixpoint is a reference driver for the inferring lattice: it propagates types
// along the edges of a small program graph until no slot changes any more.
package fixpoint

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Graph describes the slots of a program (variables, expressions) and how types flow between them.
//
//	classes:
//	  - name: Base
//	  - name: User
//	    extends: Base
//	slots:
//	  - name: a
//	    type: int
//	  - name: xs
//	edges:
//	  - from: a
//	    to: xs
//	    at: ["*"]
type Graph struct {
	Classes []ClassDecl `yaml:"classes"`
	Slots   []SlotDecl  `yaml:"slots"`
	Edges   []EdgeDecl  `yaml:"edges"`
}

type ClassDecl struct {
	Name    string `yaml:"name"`
	Extends string `yaml:"extends,omitempty"`
}

type SlotDecl struct {
	Name string `yaml:"name"`
	// Type is the slot's initial type; empty means unknown
	Type string `yaml:"type,omitempty"`
}

// EdgeDecl makes the type of From flow into To, at path At inside To
type EdgeDecl struct {
	From string   `yaml:"from"`
	To   string   `yaml:"to"`
	At   []string `yaml:"at,omitempty"`
	// DropFalse merges From ignoring whether it may be false
	DropFalse bool `yaml:"drop_false,omitempty"`
}

func LoadGraph(r io.Reader) (*Graph, error) {
	g := &Graph{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(g); err != nil {
		if errors.Is(err, io.EOF) {
			return g, nil
		}
		return nil, errors.Wrap(err, "could not decode graph")
	}
	return g, nil
}

func LoadGraphFile(path string) (*Graph, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open graph file")
	}
	defer f.Close()
	g, err := LoadGraph(f)
	if err != nil {
		return nil, errors.Wrapf(err, "in %s", path)
	}
	return g, nil
}

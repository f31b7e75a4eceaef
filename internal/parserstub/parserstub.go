// Package parserstub parses the two small textual formats this core
// owns end-to-end (SPEC_FULL.md §11) — a single leo.lock dependency
// entry and a CLI network-selector string — using
// github.com/alecthomas/participle/v2, the grammar library the Kanso
// teacher (_examples/kanso-lang-kanso/grammar) uses for the full Leo
// surface grammar. That full grammar is out of scope here (spec.md §1
// keeps the surface lexer/parser an external collaborator); this
// package borrows the same library for the narrow formats that are
// in scope, not the grammar itself.
package parserstub

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// DependencyEntry is one leo.lock dependency line, e.g.:
//
//	credits: "1.2.0" @ testnet3 #a1b2c3
//
// Program is a single identifier, so a dotted name such as
// `credits.aleo` does not parse. internal/pkgmanifest reads leo.lock as
// YAML with one mapping per entry and does not call this parser; this
// grammar parses an entry written in the one-line textual form above.
type DependencyEntry struct {
	Program string `@Ident ":"`
	Version string `@String`
	Network string `"@" @Ident`
	Hash    string `"#" @Ident`
}

var dependencyParser = participle.MustBuild[DependencyEntry]()

// ParseDependencyEntry parses one leo.lock dependency line.
func ParseDependencyEntry(s string) (*DependencyEntry, error) {
	entry, err := dependencyParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parserstub: dependency entry: %w", err)
	}
	return entry, nil
}

// selectorLexer tokenizes a network-selector string in two states: the
// network name up to the first colon, then the entire remainder as one
// opaque endpoint token — an endpoint URL's own punctuation (`://`,
// path segments, ports) has no grammar of its own here, only a
// delimiter that ends it (grounded on the teacher's own stateful-lexer
// idiom, _examples/kanso-lang-kanso/grammar/lexer.go).
var selectorLexer = lexer.MustStateful(lexer.Rules{
	"Root": {
		{Name: "Network", Pattern: `[A-Za-z0-9_.-]+`},
		{Name: "Colon", Pattern: `:`, Action: lexer.Push("Endpoint")},
	},
	"Endpoint": {
		{Name: "EndpointText", Pattern: `.+`, Action: lexer.Pop()},
	},
})

// NetworkSelector is the CLI/env `NETWORK:ENDPOINT` selector syntax
// (SPEC_FULL.md §10's NETWORK/ENDPOINT configuration), e.g.
// `testnet3:https://api.explorer.provable.com/v1`.
type NetworkSelector struct {
	Network  string `@Network ":"`
	Endpoint string `@EndpointText`
}

var selectorParser = participle.MustBuild[NetworkSelector](participle.Lexer(selectorLexer))

// ParseNetworkSelector parses a `NETWORK:ENDPOINT` CLI flag or
// environment variable value.
func ParseNetworkSelector(s string) (*NetworkSelector, error) {
	sel, err := selectorParser.ParseString("", s)
	if err != nil {
		return nil, fmt.Errorf("parserstub: network selector: %w", err)
	}
	return sel, nil
}

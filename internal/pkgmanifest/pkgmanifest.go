// Package pkgmanifest reads a Leo program's package manifest
// (program.json) and dependency lockfile (leo.lock), replacing the
// teacher's internal/manifest — which tracked documentation-example
// pass/fail status, not package dependencies, and so had no path into
// this concern (see DESIGN.md). Grounded on SPEC_FULL.md §6's file
// layout and §11's domain-stack commitment: program.json stays JSON
// (encoding/json, matching the teacher's own manifest-emission style),
// leo.lock is YAML (gopkg.in/yaml.v3), and golang.org/x/mod/semver
// validates program.json's version field and orders dependency
// constraints during resolution.
package pkgmanifest

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/leo-lang/avmc/internal/diagnostics"
)

// Dependency is one program.json dependency constraint.
type Dependency struct {
	Program string `json:"program"`
	Version string `json:"version"`
}

// Manifest is program.json's shape (SPEC_FULL.md §6).
type Manifest struct {
	Program      string       `json:"program"`
	Version      string       `json:"version"`
	License      string       `json:"license,omitempty"`
	Dependencies []Dependency `json:"dependencies,omitempty"`
}

// LoadManifest reads and validates path as a program.json file.
func LoadManifest(path string) (*Manifest, *diagnostics.Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostics.New(diagnostics.PKG001MissingManifest, diagnostics.PhasePackage,
			fmt.Sprintf("reading %s: %v", path, err), nil)
	}
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, diagnostics.New(diagnostics.PKG002UnreadableImport, diagnostics.PhasePackage,
			fmt.Sprintf("parsing %s: %v", path, err), nil)
	}
	if rep := m.Validate(); rep != nil {
		return nil, rep
	}
	return &m, nil
}

// Validate checks program.json's version field is a well-formed semver
// string ("v1.2.3"), as golang.org/x/mod/semver requires.
func (m *Manifest) Validate() *diagnostics.Report {
	if !semver.IsValid(m.Version) {
		return diagnostics.New(diagnostics.PKG001MissingManifest, diagnostics.PhasePackage,
			fmt.Sprintf("program %s: version %q is not valid semver", m.Program, m.Version), nil)
	}
	return nil
}

// LockedDependency is one resolved leo.lock entry. It has the same four
// fields as internal/parserstub.DependencyEntry, but LoadLockfile reads
// them straight from YAML mapping keys rather than through that parser.
type LockedDependency struct {
	Program string `yaml:"program"`
	Version string `yaml:"version"`
	Network string `yaml:"network"`
	Hash    string `yaml:"hash"`
}

// Lockfile is leo.lock's shape: a flat, checksum-pinned resolution of
// every transitive program.json dependency.
type Lockfile struct {
	Dependencies []LockedDependency `yaml:"dependencies"`
}

// LoadLockfile reads and parses path as a leo.lock YAML file.
func LoadLockfile(path string) (*Lockfile, *diagnostics.Report) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, diagnostics.New(diagnostics.PKG001MissingManifest, diagnostics.PhasePackage,
			fmt.Sprintf("reading %s: %v", path, err), nil)
	}
	var l Lockfile
	if err := yaml.Unmarshal(data, &l); err != nil {
		return nil, diagnostics.New(diagnostics.PKG002UnreadableImport, diagnostics.PhasePackage,
			fmt.Sprintf("parsing %s: %v", path, err), nil)
	}
	return &l, nil
}

// Resolve finds the lockfile entry satisfying dep, choosing the highest
// locked version meeting or exceeding dep.Version when more than one
// locked entry names the same program (a diamond dependency resolved
// to its newest pinned version, golang.org/x/mod-style).
func (l *Lockfile) Resolve(dep Dependency) (*LockedDependency, *diagnostics.Report) {
	var candidates []LockedDependency
	for _, locked := range l.Dependencies {
		if locked.Program == dep.Program {
			candidates = append(candidates, locked)
		}
	}
	if len(candidates) == 0 {
		return nil, diagnostics.New(diagnostics.PKG002UnreadableImport, diagnostics.PhasePackage,
			fmt.Sprintf("dependency %s not present in leo.lock", dep.Program), nil)
	}
	sort.Slice(candidates, func(i, j int) bool {
		return semver.Compare(candidates[i].Version, candidates[j].Version) > 0
	})
	best := candidates[0]
	if semver.Compare(best.Version, dep.Version) < 0 {
		return nil, diagnostics.New(diagnostics.PKG002UnreadableImport, diagnostics.PhasePackage,
			fmt.Sprintf("dependency %s requires >= %s, leo.lock has %s", dep.Program, dep.Version, best.Version), nil)
	}
	return &best, nil
}

// CircularDependency reports whether path contains a repeated program
// name, surfacing a PKG004 diagnostic instead of recursing forever
// while walking an import graph (spec.md §7's Package/I/O kind).
func CircularDependency(path []string) *diagnostics.Report {
	seen := make(map[string]bool, len(path))
	for _, p := range path {
		if seen[p] {
			return diagnostics.New(diagnostics.PKG004CircularDependency, diagnostics.PhasePackage,
				fmt.Sprintf("circular dependency: %s", p), nil)
		}
		seen[p] = true
	}
	return nil
}

package pkgmanifest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/leo-lang/avmc/internal/diagnostics"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadManifestValid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "program.json", `{
		"program": "credits.aleo",
		"version": "v1.2.0",
		"dependencies": [{"program": "token.aleo", "version": "v0.1.0"}]
	}`)

	m, rep := LoadManifest(path)
	require.Nil(t, rep)
	assert.Equal(t, "credits.aleo", m.Program)
	assert.Equal(t, "v1.2.0", m.Version)
	require.Len(t, m.Dependencies, 1)
	assert.Equal(t, "token.aleo", m.Dependencies[0].Program)
}

func TestLoadManifestMissingFile(t *testing.T) {
	_, rep := LoadManifest(filepath.Join(t.TempDir(), "nope.json"))
	require.NotNil(t, rep)
	assert.Equal(t, diagnostics.PKG001MissingManifest, rep.Code)
}

func TestValidateRejectsBadSemver(t *testing.T) {
	m := &Manifest{Program: "x.aleo", Version: "not-a-version"}
	rep := m.Validate()
	require.NotNil(t, rep)
	assert.Equal(t, diagnostics.PKG001MissingManifest, rep.Code)
}

func TestLoadLockfileValid(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "leo.lock", `
dependencies:
  - program: token.aleo
    version: v0.1.0
    network: testnet3
    hash: abc123
  - program: token.aleo
    version: v0.2.0
    network: testnet3
    hash: def456
`)
	lf, rep := LoadLockfile(path)
	require.Nil(t, rep)
	require.Len(t, lf.Dependencies, 2)
}

func TestResolvePicksHighestSatisfyingVersion(t *testing.T) {
	lf := &Lockfile{Dependencies: []LockedDependency{
		{Program: "token.aleo", Version: "v0.1.0"},
		{Program: "token.aleo", Version: "v0.2.0"},
	}}
	locked, rep := lf.Resolve(Dependency{Program: "token.aleo", Version: "v0.1.0"})
	require.Nil(t, rep)
	assert.Equal(t, "v0.2.0", locked.Version)
}

func TestResolveFailsWhenVersionTooLow(t *testing.T) {
	lf := &Lockfile{Dependencies: []LockedDependency{
		{Program: "token.aleo", Version: "v0.1.0"},
	}}
	_, rep := lf.Resolve(Dependency{Program: "token.aleo", Version: "v0.5.0"})
	require.NotNil(t, rep)
	assert.Equal(t, diagnostics.PKG002UnreadableImport, rep.Code)
}

func TestResolveFailsWhenAbsent(t *testing.T) {
	lf := &Lockfile{}
	_, rep := lf.Resolve(Dependency{Program: "missing.aleo", Version: "v0.1.0"})
	require.NotNil(t, rep)
	assert.Equal(t, diagnostics.PKG002UnreadableImport, rep.Code)
}

func TestCircularDependency(t *testing.T) {
	rep := CircularDependency([]string{"a.aleo", "b.aleo", "a.aleo"})
	require.NotNil(t, rep)
	assert.Equal(t, diagnostics.PKG004CircularDependency, rep.Code)
}

func TestCircularDependencyNotReportedForAcyclicPath(t *testing.T) {
	rep := CircularDependency([]string{"a.aleo", "b.aleo", "c.aleo"})
	assert.Nil(t, rep)
}

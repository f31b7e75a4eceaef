package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/leo-lang/avmc/internal/ast"
	"github.com/leo-lang/avmc/internal/codegen"
	"github.com/leo-lang/avmc/internal/diagnostics"
	"github.com/leo-lang/avmc/internal/pipeline"
	"github.com/leo-lang/avmc/internal/pkgmanifest"
	"github.com/leo-lang/avmc/internal/sid"
)

// loadPackage reads program.json (and leo.lock, if present) for the
// package rooted at dir, matching spec.md §6's file layout.
func loadPackage(dir string) (*pkgmanifest.Manifest, *pkgmanifest.Lockfile, error) {
	manifest, rep := pkgmanifest.LoadManifest(filepath.Join(dir, "program.json"))
	if rep != nil {
		return nil, nil, diagnostics.Wrap(rep)
	}

	lockPath := filepath.Join(dir, "leo.lock")
	var lock *pkgmanifest.Lockfile
	if _, err := os.Stat(lockPath); err == nil {
		lf, rep := pkgmanifest.LoadLockfile(lockPath)
		if rep != nil {
			return nil, nil, diagnostics.Wrap(rep)
		}
		lock = lf
	} else if cfg.offline && len(manifest.Dependencies) > 0 {
		return nil, nil, diagnostics.Wrap(diagnostics.New(diagnostics.PKG001MissingManifest,
			diagnostics.PhasePackage, "leo.lock missing and --offline forbids resolving dependencies", nil))
	}
	return manifest, lock, nil
}

// cacheFile returns where the build cache for dir's package lives.
func cacheFile(dir string) string { return filepath.Join(dir, "build", ".avmc-cache") }

// cacheKey hashes the manifest's contents into a stable build-cache key
// (internal/sid, grounded on the teacher's stable-id formula) so a
// rebuild can be skipped when nothing relevant changed.
func cacheKey(manifestPath string) (sid.SID, error) {
	data, err := os.ReadFile(manifestPath)
	if err != nil {
		return "", err
	}
	return sid.NewSID(manifestPath, 0, len(data), "package:"+string(data), nil), nil
}

func upToDate(dir string, key sid.SID) bool {
	data, err := os.ReadFile(cacheFile(dir))
	if err != nil {
		return false
	}
	return string(data) == string(key)
}

func writeCacheKey(dir string, key sid.SID) error {
	if err := os.MkdirAll(filepath.Join(dir, "build"), 0o755); err != nil {
		return err
	}
	return os.WriteFile(cacheFile(dir), []byte(key), 0o644)
}

func newBuildCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "build [package-dir]",
		Short: "Lower a package's program to AVM bytecode",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runBuild(dir, true)
		},
	}
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run [package-dir]",
		Short: "Build, then print the lowered program's AVM text to stdout",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) == 1 {
				dir = args[0]
			}
			return runBuild(dir, false)
		},
	}
}

func runBuild(dir string, writeFiles bool) error {
	manifest, _, err := loadPackage(dir)
	if err != nil {
		return err
	}

	manifestPath := filepath.Join(dir, "program.json")
	key, err := cacheKey(manifestPath)
	if err != nil {
		return err
	}
	if !cfg.noCache && writeFiles && upToDate(dir, key) {
		banner("→ %s is up to date (cache key %s)", manifest.Program, key)
		return nil
	}

	banner("→ compiling %s (network=%s)", manifest.Program, cfg.network)

	src := loadSource(manifest.Program, cfg.buildTests)

	snapshotDir := ""
	if writeFiles && (cfg.enableAllSnapshots || len(cfg.snapshots) > 0) {
		snapshotDir = filepath.Join(dir, "build", "snapshots")
		if err := os.MkdirAll(snapshotDir, 0o755); err != nil {
			return err
		}
	}

	result := pipeline.Run(pipeline.Config{
		Snapshot: func(phase string, p *ast.Program) {
			if snapshotDir == "" || !wantsSnapshot(phase) {
				return
			}
			path := filepath.Join(snapshotDir, phase+".avm")
			_ = os.WriteFile(path, []byte(codegen.Emit(p)), 0o644)
		},
	}, src)

	printDiagnostics(result.Diagnostics)
	if result.Diagnostics.HasFatal() {
		return fmt.Errorf("compilation of %s failed", manifest.Program)
	}

	text := codegen.Emit(result.Artifacts.Program)
	if !writeFiles {
		fmt.Println(text)
		return nil
	}

	buildDir := filepath.Join(dir, "build")
	if err := os.MkdirAll(buildDir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(buildDir, "main.aleo"), []byte(text), 0o644); err != nil {
		return err
	}
	abi, err := buildABI(manifest, result.Artifacts.Program)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(buildDir, "abi.json"), abi, 0o644); err != nil {
		return err
	}
	manifestOut, err := json.MarshalIndent(manifest, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(buildDir, "program.json"), manifestOut, 0o644); err != nil {
		return err
	}

	if err := writeCacheKey(dir, key); err != nil {
		return err
	}
	banner("%s build/main.aleo, build/abi.json written", green("✓"))
	return nil
}

func wantsSnapshot(phase string) bool {
	if cfg.enableAllSnapshots {
		return true
	}
	for _, p := range cfg.snapshots {
		if p == phase {
			return true
		}
	}
	return false
}

// abiFunction is one function's public signature, spec.md §6's "ABI
// (JSON) summarizing public inputs/outputs".
type abiFunction struct {
	Name    string   `json:"name"`
	Variant string   `json:"variant"`
	Inputs  []abiArg `json:"inputs"`
	Output  string   `json:"output"`
}

type abiArg struct {
	Name string `json:"name"`
	Type string `json:"type"`
	Mode string `json:"mode"`
}

func buildABI(manifest *pkgmanifest.Manifest, p *ast.Program) ([]byte, error) {
	fns := make([]abiFunction, 0, len(p.Functions))
	for _, fn := range p.Functions {
		args := make([]abiArg, 0, len(fn.Inputs))
		for _, in := range fn.Inputs {
			args = append(args, abiArg{Name: in.Name, Type: in.Type.String(), Mode: in.Mode.String()})
		}
		out := ""
		if fn.OutputType != nil {
			out = fn.OutputType.String()
		}
		fns = append(fns, abiFunction{Name: fn.Name, Variant: fn.Variant.String(), Inputs: args, Output: out})
	}
	return json.MarshalIndent(struct {
		Program   string        `json:"program"`
		Version   string        `json:"version"`
		Functions []abiFunction `json:"functions"`
	}{manifest.Program, manifest.Version, fns}, "", "  ")
}

func printDiagnostics(h *diagnostics.Handler) {
	for _, r := range h.Reports {
		line, err := r.ToJSON(true)
		if err != nil {
			line = r.Message
		}
		if r.Warning {
			fmt.Fprintf(os.Stderr, "%s %s\n", yellow("warning"), line)
		} else {
			fmt.Fprintf(os.Stderr, "%s %s\n", red("error"), line)
		}
	}
}

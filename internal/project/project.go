// Package project scaffolds and inspects Lean project directories.
package project

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
)

// manifestName is the package manifest the toolchain reads.
const manifestName = "leanpkg.toml"

// mathlibDependency pins the mathlib revision added to scaffolded
// manifests.
const mathlibDependency = `mathlib = {git = "https://github.com/leanprover-community/mathlib", rev = "9003f28797c0664a49e4179487267c494477d853"}`

// Report describes the structural state of a project directory.
type Report struct {
	ProjectPath string `json:"project_path"`
	HasManifest bool   `json:"has_manifest"`
	HasSrcDir   bool   `json:"has_src_dir"`
	LeanFiles   int    `json:"lean_files"`
	Valid       bool   `json:"valid"`
}

// Setup creates a minimal Lean project at path: a manifest (unless one
// exists) and a src directory. Existing files are never overwritten.
func Setup(fs afero.Fs, path string, mathlib bool) error {
	if err := fs.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("failed to create project directory: %w", err)
	}

	manifestPath := filepath.Join(path, manifestName)

	exists, err := afero.Exists(fs, manifestPath)
	if err != nil {
		return err
	}

	if !exists {
		var manifest strings.Builder
		fmt.Fprintf(&manifest, "[package]\n")
		fmt.Fprintf(&manifest, "name = %q\n", filepath.Base(path))
		fmt.Fprintf(&manifest, "version = \"0.1\"\n")
		fmt.Fprintf(&manifest, "lean_version = \"leanprover-community/lean:3.48.0\"\n")
		fmt.Fprintf(&manifest, "path = \"src\"\n\n")
		fmt.Fprintf(&manifest, "[dependencies]\n")

		if mathlib {
			manifest.WriteString(mathlibDependency + "\n")
		}

		if err := afero.WriteFile(fs, manifestPath, []byte(manifest.String()), 0o644); err != nil {
			return fmt.Errorf("failed to write manifest: %w", err)
		}
	}

	if err := fs.MkdirAll(filepath.Join(path, "src"), 0o755); err != nil {
		return fmt.Errorf("failed to create src directory: %w", err)
	}

	return nil
}

// FindLeanFiles walks a project and returns every .lean source path.
func FindLeanFiles(fs afero.Fs, root string) ([]string, error) {
	var files []string

	err := afero.Walk(fs, root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return nil // unreadable subtrees are skipped, not fatal
		}

		if !info.IsDir() && strings.HasSuffix(path, ".lean") {
			files = append(files, path)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return files, nil
}

// Validate reports on a project's structure. A project is valid when it
// has a manifest and a src directory.
func Validate(fs afero.Fs, path string) Report {
	report := Report{ProjectPath: path}

	report.HasManifest, _ = afero.Exists(fs, filepath.Join(path, manifestName))
	report.HasSrcDir, _ = afero.DirExists(fs, filepath.Join(path, "src"))

	if files, err := FindLeanFiles(fs, path); err == nil {
		report.LeanFiles = len(files)
	}

	report.Valid = report.HasManifest && report.HasSrcDir

	return report
}

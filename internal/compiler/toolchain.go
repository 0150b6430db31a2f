package compiler

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"strings"
	"time"
)

// probeTimeout bounds the toolchain availability checks.
const probeTimeout = 5 * time.Second

// Installed reports whether the Lean toolchain manager is available.
// Callers use this before attempting any compilation.
func (inv *Invoker) Installed(ctx context.Context) bool {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(cctx, inv.ElanPath, "--version")
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return false
	}

	return strings.Contains(stdout.String(), "elan")
}

// Version returns the active compiler version string, or "" when the
// compiler cannot be probed.
func (inv *Invoker) Version(ctx context.Context) string {
	cctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var stdout bytes.Buffer
	cmd := exec.CommandContext(cctx, inv.LeanPath, "--version")
	cmd.Stdout = &stdout

	if err := cmd.Run(); err != nil {
		return ""
	}

	return strings.TrimSpace(stdout.String())
}

// HasFreshArtifact reports whether a compiled .olean sidecar exists and
// is at least as new as its source.
func HasFreshArtifact(sourcePath string) bool {
	oleanPath := strings.TrimSuffix(sourcePath, LeanExt) + oleanExt

	oleanInfo, err := os.Stat(oleanPath)
	if err != nil {
		return false
	}

	sourceInfo, err := os.Stat(sourcePath)
	if err != nil {
		return false
	}

	return !oleanInfo.ModTime().Before(sourceInfo.ModTime())
}

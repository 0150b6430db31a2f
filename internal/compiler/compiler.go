// Package compiler runs the external Lean toolchain and turns each
// invocation into a structured outcome.
//
// The compiler is treated as an opaque child process: a return code,
// two captured streams, and a wall-clock timeout. Invocations never
// return a Go error; launch failures and timeouts are folded into the
// Outcome so callers have a single result shape to reason about.
package compiler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/provebench/leanc/internal/utils"
)

// LeanExt is the source file extension the toolchain expects.
const LeanExt = ".lean"

// oleanExt is the compiled-artifact sidecar extension.
const oleanExt = ".olean"

// Outcome is the structured result of one compiler invocation.
type Outcome struct {
	ReturnCode int      `json:"returncode"`
	Stdout     string   `json:"stdout"`
	Stderr     string   `json:"stderr"`
	TimedOut   bool     `json:"timeout"`
	Err        string   `json:"error,omitempty"`
	Args       []string `json:"args"`
	WorkDir    string   `json:"cwd"`
	DurationMS int64    `json:"duration_ms"`
}

// Success is the single success predicate: a zero return code with no
// timeout and no launch error.
func (o *Outcome) Success() bool {
	return o.ReturnCode == 0 && !o.TimedOut && o.Err == ""
}

// AsMap returns the outcome as the free-form payload stored in the
// cache and the ledger.
func (o *Outcome) AsMap() map[string]any {
	payload := map[string]any{
		"returncode":  o.ReturnCode,
		"stdout":      o.Stdout,
		"stderr":      o.Stderr,
		"timeout":     o.TimedOut,
		"duration_ms": o.DurationMS,
		"success":     o.Success(),
	}

	if o.Err != "" {
		payload["error"] = o.Err
	}

	return payload
}

// Invoker runs the Lean compiler.
type Invoker struct {
	// LeanPath is the compiler binary, resolved via PATH when bare.
	LeanPath string

	// ElanPath is the toolchain manager probed for availability.
	ElanPath string

	log *zap.Logger
}

// New creates an invoker. Empty paths fall back to "lean" and "elan".
func New(leanPath, elanPath string, logger *zap.Logger) *Invoker {
	if leanPath == "" {
		leanPath = "lean"
	}

	if elanPath == "" {
		elanPath = "elan"
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &Invoker{LeanPath: leanPath, ElanPath: elanPath, log: logger}
}

// CompileFile compiles one file with the project root as working
// directory, enforcing a hard wall-clock timeout. The returned outcome
// is never nil; timeouts and launch failures set ReturnCode -1 with an
// explanatory error.
func (inv *Invoker) CompileFile(ctx context.Context, filePath, projectRoot string, timeout time.Duration) *Outcome {
	start := time.Now()
	args := []string{inv.LeanPath, filePath}

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(cctx, inv.LeanPath, filePath)
	cmd.Dir = projectRoot

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	outcome := &Outcome{
		Stdout:     stdout.String(),
		Stderr:     stderr.String(),
		Args:       args,
		WorkDir:    projectRoot,
		DurationMS: time.Since(start).Milliseconds(),
	}

	switch {
	case cctx.Err() == context.DeadlineExceeded:
		outcome.ReturnCode = -1
		outcome.TimedOut = true
		outcome.Err = fmt.Sprintf("compilation timeout (exceeded %v)", timeout)
	case err != nil:
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			outcome.ReturnCode = exitErr.ExitCode()
		} else {
			outcome.ReturnCode = -1
			outcome.Err = err.Error()
		}
	}

	inv.log.Debug("compiler finished",
		zap.String("file", filePath),
		zap.Int("returncode", outcome.ReturnCode),
		zap.Bool("timeout", outcome.TimedOut),
		zap.Int64("duration_ms", outcome.DurationMS))

	return outcome
}

// CompileContent writes content to a uniquely-named temporary file in
// the project root and compiles it. Dependencies are normalized to
// "import X" lines and prepended. The temporary source and its .olean
// sidecar are removed on every exit path; unique names let concurrent
// compiles share one project directory without collisions.
func (inv *Invoker) CompileContent(ctx context.Context, content, fileName, projectRoot string, dependencies []string, timeout time.Duration) *Outcome {
	if !strings.HasSuffix(fileName, LeanExt) {
		fileName += LeanExt
	}

	var full strings.Builder
	if len(dependencies) > 0 {
		for _, dep := range dependencies {
			full.WriteString(utils.NormalizeImport(dep))
			full.WriteString("\n")
		}

		full.WriteString("\n")
	}

	full.WriteString(content)

	uniqueName := strings.ReplaceAll(uuid.New().String()+"_"+fileName, "-", "_")
	tempFile := filepath.Join(projectRoot, uniqueName)

	defer func() {
		_ = os.Remove(tempFile)
		_ = os.Remove(strings.TrimSuffix(tempFile, LeanExt) + oleanExt)
	}()

	if err := os.WriteFile(tempFile, []byte(full.String()), 0o644); err != nil {
		return &Outcome{
			ReturnCode: -1,
			Err:        fmt.Sprintf("failed to write temporary file: %v", err),
			WorkDir:    projectRoot,
		}
	}

	return inv.CompileFile(ctx, tempFile, projectRoot, timeout)
}

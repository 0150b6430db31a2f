package compiler

import (
	"regexp"
	"strconv"
	"strings"
)

// Severity classifies a compiler diagnostic line.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Diagnostic is one parsed line of compiler stderr.
type Diagnostic struct {
	File     string   `json:"file"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
}

// diagnosticPattern matches "<file>:<line>:<column>: <severity>: <message>".
var diagnosticPattern = regexp.MustCompile(`^([^:]+):(\d+):(\d+):\s*(error|warning|info):\s*(.+)$`)

// ParseDiagnostics scans raw compiler stderr line by line. Lines that
// do not match the diagnostic grammar are skipped silently; emission
// order is preserved.
func ParseDiagnostics(stderr string) []Diagnostic {
	var diagnostics []Diagnostic

	for _, line := range strings.Split(stderr, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		match := diagnosticPattern.FindStringSubmatch(line)
		if match == nil {
			continue
		}

		lineNum, _ := strconv.Atoi(match[2])
		colNum, _ := strconv.Atoi(match[3])

		diagnostics = append(diagnostics, Diagnostic{
			File:     match[1],
			Line:     lineNum,
			Column:   colNum,
			Severity: Severity(match[4]),
			Message:  strings.TrimSpace(match[5]),
		})
	}

	return diagnostics
}

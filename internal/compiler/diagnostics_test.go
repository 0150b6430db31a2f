package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDiagnostics_MixedLines(t *testing.T) {
	stderr := "a.lean:5:10: error: bad\nnoise\nb.lean:1:1: warning: w"

	diagnostics := ParseDiagnostics(stderr)
	require.Len(t, diagnostics, 2)

	assert.Equal(t, Diagnostic{
		File:     "a.lean",
		Line:     5,
		Column:   10,
		Severity: SeverityError,
		Message:  "bad",
	}, diagnostics[0])

	assert.Equal(t, Diagnostic{
		File:     "b.lean",
		Line:     1,
		Column:   1,
		Severity: SeverityWarning,
		Message:  "w",
	}, diagnostics[1])
}

func TestParseDiagnostics_OrderPreserved(t *testing.T) {
	stderr := "z.lean:2:1: info: second thing\nz.lean:1:1: error: first thing"

	diagnostics := ParseDiagnostics(stderr)
	require.Len(t, diagnostics, 2)

	assert.Equal(t, SeverityInfo, diagnostics[0].Severity)
	assert.Equal(t, SeverityError, diagnostics[1].Severity, "Emission order is preserved, not severity order")
}

func TestParseDiagnostics_NoMatches(t *testing.T) {
	assert.Empty(t, ParseDiagnostics(""))
	assert.Empty(t, ParseDiagnostics("building...\ndone\n"))
	assert.Empty(t, ParseDiagnostics("a.lean:notanumber:1: error: x"))
	assert.Empty(t, ParseDiagnostics("a.lean:1:1: fatal: unknown severity"))
}

func TestParseDiagnostics_MessageTrimmed(t *testing.T) {
	diagnostics := ParseDiagnostics("f.lean:3:7: error:    unexpected token   ")
	require.Len(t, diagnostics, 1)
	assert.Equal(t, "unexpected token", diagnostics[0].Message)
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseFilters(t *testing.T) {
	tests := []struct {
		input    []string
		expected map[string]any
	}{
		{nil, nil},
		{[]string{}, nil},
		{[]string{"output.returncode=0"}, map[string]any{"output.returncode": float64(0)}},
		{[]string{"output.timeout=true"}, map[string]any{"output.timeout": true}},
		{[]string{"input.file_name=test.lean"}, map[string]any{"input.file_name": "test.lean"}},
		{
			[]string{"output.returncode=1", "metadata.model=gpt"},
			map[string]any{"output.returncode": float64(1), "metadata.model": "gpt"},
		},
	}

	for _, test := range tests {
		result, err := parseFilters(test.input)
		assert.NoError(t, err)
		assert.Equal(t, test.expected, result, "parseFilters(%v)", test.input)
	}
}

func TestParseFilters_Invalid(t *testing.T) {
	for _, input := range []string{"no-equals", "=value"} {
		_, err := parseFilters([]string{input})
		assert.Error(t, err, "parseFilters(%q)", input)
	}
}

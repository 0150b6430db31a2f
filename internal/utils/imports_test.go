package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeImport(t *testing.T) {
	tests := []struct {
		name string
		dep  string
		want string
	}{
		{"bare module name", "Mathlib", "import Mathlib"},
		{"dotted module name", "Mathlib.Tactic", "import Mathlib.Tactic"},
		{"already a directive", "import Aesop", "import Aesop"},
		{"surrounding whitespace", "  Mathlib  ", "import Mathlib"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeImport(tt.dep))
		})
	}
}

package utils

import "strings"

// NormalizeImport turns a dependency name into a canonical Lean import
// directive. Already-formed directives pass through unchanged.
func NormalizeImport(dep string) string {
	dep = strings.TrimSpace(dep)

	if strings.HasPrefix(dep, "import ") {
		return dep
	}

	return "import " + dep
}

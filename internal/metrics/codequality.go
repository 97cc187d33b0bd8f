package metrics

import (
	"context"
	"path"
	"strings"

	"trustgate/internal/types"
)

var dependencyManifests = map[string]bool{
	"requirements.txt": true,
	"setup.py":         true,
	"pyproject.toml":   true,
	"pipfile":          true,
	"poetry.lock":      true,
	"environment.yml":  true,
	"conda.yml":        true,
	"go.mod":           true,
	"package.json":     true,
	"cargo.toml":       true,
}

// CodeQuality scores the code repository on structural hygiene: test files
// 0.4, CI configuration 0.3, dependency manifests 0.3.
type CodeQuality struct{}

func (CodeQuality) Kind() Kind { return KindCodeQuality }

func (CodeQuality) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Code == nil {
		return undefined(KindCodeQuality, "no code section populated")
	}
	if len(m.Code.Files) == 0 {
		return scored(KindCodeQuality, 0, map[string]any{
			"reason": "empty file listing",
		})
	}

	hasTests := false
	hasManifest := false
	for _, f := range m.Code.Files {
		lower := strings.ToLower(f.Path)
		base := path.Base(lower)
		if isTestPath(lower, base) {
			hasTests = true
		}
		if dependencyManifests[base] {
			hasManifest = true
		}
		if hasTests && hasManifest {
			break
		}
	}

	score := 0.0
	if hasTests {
		score += 0.4
	}
	if m.Code.HasCI {
		score += 0.3
	}
	if hasManifest {
		score += 0.3
	}

	return scored(KindCodeQuality, score, map[string]any{
		"has_tests":                 hasTests,
		"has_ci":                    m.Code.HasCI,
		"has_dependency_management": hasManifest,
		"files":                     len(m.Code.Files),
	})
}

func isTestPath(lower, base string) bool {
	if strings.HasPrefix(lower, "test/") || strings.HasPrefix(lower, "tests/") ||
		strings.Contains(lower, "/test/") || strings.Contains(lower, "/tests/") {
		return true
	}
	return strings.HasPrefix(base, "test_") ||
		strings.HasSuffix(base, "_test.go") ||
		strings.HasSuffix(base, "_test.py") ||
		strings.HasSuffix(base, ".test.js") ||
		strings.HasSuffix(base, ".test.ts") ||
		strings.HasSuffix(base, "spec.rb")
}

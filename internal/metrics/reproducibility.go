package metrics

import (
	"context"
	"path"
	"regexp"
	"strings"

	"trustgate/internal/types"
)

var (
	pinnedManifests = map[string]bool{
		"poetry.lock":       true,
		"pipfile.lock":      true,
		"requirements.txt":  true,
		"go.sum":            true,
		"package-lock.json": true,
		"yarn.lock":         true,
		"cargo.lock":        true,
		"environment.yml":   true,
	}
	containerFiles = map[string]bool{
		"dockerfile":          true,
		"containerfile":       true,
		"docker-compose.yml":  true,
		"docker-compose.yaml": true,
	}
	seedRe = regexp.MustCompile(`(?i)\b(random[_ ]?seed|set_seed|seed\s*=\s*\d+|manual_seed)\b`)
)

// Reproducibility checks for the three signals that a result can be rerun:
// pinned dependency manifests, containerization files, and stated random
// seeds. Each contributes a third.
type Reproducibility struct{}

func (Reproducibility) Kind() Kind { return KindReproducibility }

func (Reproducibility) Evaluate(_ context.Context, m *types.Model) Result {
	text := m.ReadmeText()
	if m.Code == nil && text == "" {
		return undefined(KindReproducibility, "no code section or documentation")
	}

	hasPinned := false
	hasContainer := false
	if m.Code != nil {
		for _, f := range m.Code.Files {
			base := path.Base(strings.ToLower(f.Path))
			if pinnedManifests[base] {
				hasPinned = true
			}
			if containerFiles[base] {
				hasContainer = true
			}
		}
	}
	hasSeed := seedRe.MatchString(text)

	score := 0.0
	if hasPinned {
		score += 1.0 / 3
	}
	if hasContainer {
		score += 1.0 / 3
	}
	if hasSeed {
		score += 1.0 / 3
	}

	return scored(KindReproducibility, score, map[string]any{
		"pinned_manifests": hasPinned,
		"container_files":  hasContainer,
		"stated_seeds":     hasSeed,
	})
}

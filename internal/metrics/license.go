package metrics

import (
	"context"
	"strings"

	"trustgate/internal/types"
)

// Known license identifiers, lowercased. Permissive maps to 1.0, restrictive
// to 0.0; anything else that still names a license scores 0.5 (ambiguous).
var (
	permissiveLicenses = map[string]string{
		"mit":          "MIT License",
		"bsd":          "BSD License",
		"bsd-2-clause": "BSD 2-Clause License",
		"bsd-3-clause": "BSD 3-Clause License",
		"apache":       "Apache License",
		"apache-2.0":   "Apache License 2.0",
		"isc":          "ISC License",
		"unlicense":    "Unlicense",
		"lgpl-2.1":     "LGPL v2.1",
		"lgpl-3.0":     "LGPL v3.0",
	}
	restrictiveLicenses = map[string]string{
		"gpl-2.0":             "GPL v2.0",
		"gpl-3.0":             "GPL v3.0",
		"agpl-3.0":            "AGPL v3.0",
		"cc-by-nc":            "Creative Commons Non-Commercial",
		"cc-by-nc-4.0":        "Creative Commons Non-Commercial 4.0",
		"non-commercial":      "Non-Commercial License",
		"proprietary":         "Proprietary License",
		"all rights reserved": "All Rights Reserved",
	}
)

// License scores compatibility of the artifact's license against the known
// identifier table: 1.0 clearly permissive, 0.0 clearly restrictive, 0.5 for
// an unrecognized identifier.
type License struct{}

func (License) Kind() Kind { return KindLicense }

func (License) Evaluate(_ context.Context, m *types.Model) Result {
	id := licenseIdentifier(m)
	if id == "" {
		return scored(KindLicense, 0, map[string]any{
			"reason": "no license information",
		})
	}

	lower := strings.ToLower(id)
	for key, name := range permissiveLicenses {
		if matchLicense(lower, key) {
			return scored(KindLicense, 1.0, map[string]any{
				"identifier": id,
				"match":      name,
				"class":      "permissive",
			})
		}
	}
	for key, name := range restrictiveLicenses {
		if matchLicense(lower, key) {
			return scored(KindLicense, 0.0, map[string]any{
				"identifier": id,
				"match":      name,
				"class":      "restrictive",
			})
		}
	}

	return scored(KindLicense, 0.5, map[string]any{
		"identifier": id,
		"class":      "unrecognized",
	})
}

// licenseIdentifier prefers the model card license, then the repository's
// SPDX identifier, then the dataset license.
func licenseIdentifier(m *types.Model) string {
	if m.Model != nil && m.Model.License != "" {
		return m.Model.License
	}
	if m.Code != nil && m.Code.License != "" {
		return m.Code.License
	}
	if m.Dataset != nil && m.Dataset.License != "" {
		return m.Dataset.License
	}
	return ""
}

func matchLicense(id, key string) bool {
	if strings.Contains(id, key) {
		return true
	}
	// "apache 2.0", "lgpl v2.1" style spellings
	normalized := strings.ReplaceAll(strings.ReplaceAll(id, " v", "-"), " ", "-")
	return strings.Contains(normalized, key)
}

package metrics

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"trustgate/internal/types"
)

const rampUpPromptLimit = 6000

var rampUpSections = map[string]*regexp.Regexp{
	"install":    regexp.MustCompile(`(?im)^#+.*(install|setup|getting started)|pip install|npm install|go install|conda install`),
	"quickstart": regexp.MustCompile(`(?im)^#+.*(quick\s*start|usage|how to use|getting started)`),
	"example":    regexp.MustCompile("(?s)```.+?```"),
	"api_docs":   regexp.MustCompile(`(?im)^#+.*(api|reference|documentation)|from_pretrained|pipeline\(`),
}

// RampUpTime estimates the inverse of time-to-first-success for a new user.
// Structural readme signals (install, quickstart, example code) are blended
// evenly with a judge's clarity verdict.
type RampUpTime struct {
	Judge Judge
}

func (RampUpTime) Kind() Kind { return KindRampUpTime }

func (r RampUpTime) Evaluate(ctx context.Context, m *types.Model) Result {
	text := m.ReadmeText()
	if text == "" {
		return undefined(KindRampUpTime, "no readme or model card text")
	}

	found := make([]string, 0, len(rampUpSections))
	for name, re := range rampUpSections {
		if re.MatchString(text) {
			found = append(found, name)
		}
	}
	structural := float64(len(found)) / float64(len(rampUpSections))

	if r.Judge == nil {
		return undefined(KindRampUpTime, "text-judgment client unavailable")
	}
	clarity, err := r.Judge.Judge(ctx, rampUpPrompt(text))
	if err != nil {
		return undefined(KindRampUpTime, fmt.Sprintf("clarity judgment failed: %v", err))
	}

	score := 0.5*structural + 0.5*clamp01(clarity)
	return scored(KindRampUpTime, score, map[string]any{
		"sections_found":   found,
		"structural_score": structural,
		"clarity_score":    clarity,
		"blend":            "0.5*structural + 0.5*clarity",
	})
}

func rampUpPrompt(text string) string {
	if len(text) > rampUpPromptLimit {
		text = text[:rampUpPromptLimit] + "\n...[truncated]..."
	}
	var b strings.Builder
	b.WriteString("You are evaluating documentation clarity for new-user ramp-up. ")
	b.WriteString("Judge how quickly a competent engineer could go from reading this ")
	b.WriteString("documentation to a first successful use of the artifact.\n\n")
	b.WriteString("Output STRICT JSON ONLY: {\"score\": <float 0.0-1.0>}\n")
	b.WriteString("- 0.0-0.2: minimal or no usable documentation\n")
	b.WriteString("- 0.3-0.5: basic description, little structure\n")
	b.WriteString("- 0.6-0.8: installation, usage and examples covered\n")
	b.WriteString("- 0.9-1.0: comprehensive docs with runnable examples\n\n")
	b.WriteString("=== BEGIN TEXT ===\n")
	b.WriteString(text)
	b.WriteString("\n=== END TEXT ===\n")
	return b.String()
}

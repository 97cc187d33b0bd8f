package metrics

import (
	"context"
	"fmt"
	"strings"

	"trustgate/internal/types"
)

const perfClaimsPromptLimit = 8000

// PerformanceClaims asks the text-judgment client whether documented
// performance claims are backed by evidence: named benchmarks, metric tables,
// citations, baseline comparisons.
type PerformanceClaims struct {
	Judge Judge
}

func (PerformanceClaims) Kind() Kind { return KindPerformanceClaims }

func (p PerformanceClaims) Evaluate(ctx context.Context, m *types.Model) Result {
	text := m.ReadmeText()
	if text == "" {
		return undefined(KindPerformanceClaims, "no readme or model card text")
	}
	if p.Judge == nil {
		return undefined(KindPerformanceClaims, "text-judgment client unavailable")
	}

	score, err := p.Judge.Judge(ctx, perfClaimsPrompt(text))
	if err != nil {
		return undefined(KindPerformanceClaims, fmt.Sprintf("judgment failed: %v", err))
	}

	return scored(KindPerformanceClaims, score, map[string]any{
		"mode":        "llm",
		"text_length": len(text),
	})
}

func perfClaimsPrompt(text string) string {
	if len(text) > perfClaimsPromptLimit {
		text = text[:perfClaimsPromptLimit] + "\n...[truncated]..."
	}
	var b strings.Builder
	b.WriteString("You are assessing a model card/README for performance claims. ")
	b.WriteString("Consider any reasonable evidence: named benchmarks, numbers ")
	b.WriteString("(accuracy/F1/BLEU/etc.), tables, or comparisons to baselines, ")
	b.WriteString("SoTA or leaderboards.\n\n")
	b.WriteString("Output STRICT JSON ONLY: {\"score\": <float 0.0-1.0>}\n")
	b.WriteString("- 0.00-0.20: no claims or evidence\n")
	b.WriteString("- 0.21-0.50: mentions benchmarks OR some metrics/figures\n")
	b.WriteString("- 0.51-0.80: clear metrics/tables and some comparison signals\n")
	b.WriteString("- 0.81-1.00: strong tabled results with explicit baselines\n\n")
	b.WriteString("=== BEGIN TEXT ===\n")
	b.WriteString(text)
	b.WriteString("\n=== END TEXT ===\n")
	return b.String()
}

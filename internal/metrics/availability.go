package metrics

import (
	"context"
	"regexp"

	"trustgate/internal/types"
)

var (
	datasetMentionRe = regexp.MustCompile(`(?i)(?:dataset|training[_ ]?data|trained[_ ]?on|fine[- ]?tuned[_ ]?on)[:\s]+[a-zA-Z0-9/_-]+|\b(?:ImageNet|COCO|MNIST|CIFAR|SQuAD|GLUE|SuperGLUE|WikiText)\b`)
	hubDatasetLinkRe = regexp.MustCompile(`(?i)huggingface\.co/datasets/[a-zA-Z0-9/_.-]+`)
	codeRepoLinkRe   = regexp.MustCompile(`(?i)github\.com/[a-zA-Z0-9/_.-]+|gitlab\.com/[a-zA-Z0-9/_.-]+`)
)

// DatasetAndCode scores whether the training dataset and the source code are
// discoverable from the artifact: 0.3 for naming training data, 0.3 for a hub
// dataset link, 0.4 for a code repository link. A populated dataset or code
// section counts as its own strongest signal.
type DatasetAndCode struct{}

func (DatasetAndCode) Kind() Kind { return KindDatasetAndCode }

func (DatasetAndCode) Evaluate(_ context.Context, m *types.Model) Result {
	if m.Dataset == nil && m.Code == nil {
		return undefined(KindDatasetAndCode, "no dataset or code section populated")
	}

	text := m.ReadmeText()

	listsDataset := m.Dataset != nil || datasetMentionRe.MatchString(text)
	linksDataset := m.Dataset != nil || hubDatasetLinkRe.MatchString(text)
	linksCode := m.Code != nil || codeRepoLinkRe.MatchString(text)

	score := 0.0
	if listsDataset {
		score += 0.3
	}
	if linksDataset {
		score += 0.3
	}
	if linksCode {
		score += 0.4
	}

	return scored(KindDatasetAndCode, score, map[string]any{
		"lists_training_datasets": listsDataset,
		"links_to_hub_datasets":   linksDataset,
		"links_to_code_repo":      linksCode,
	})
}

package gather

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"trustgate/internal/trusterr"
	"trustgate/internal/types"
)

// CodeFetcher resolves a code-hosting URL into a repository snapshot.
type CodeFetcher interface {
	Fetch(ctx context.Context, codeURL, revision string) (*types.CodeInfo, error)
}

// HubFetcher resolves model and dataset hub repositories.
type HubFetcher interface {
	FetchModel(ctx context.Context, repoID, revision string) (*types.ModelInfo, error)
	FetchDataset(ctx context.Context, repoID, revision string) (*types.DatasetInfo, error)
}

// Gatherer assembles the metadata snapshot an evaluation runs against. The
// model source is mandatory; the other two degrade to recorded failures.
type Gatherer struct {
	code   CodeFetcher
	hub    HubFetcher
	logger *slog.Logger
}

func New(code CodeFetcher, hub HubFetcher, logger *slog.Logger) *Gatherer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Gatherer{code: code, hub: hub, logger: logger}
}

// Gather fetches all referenced sources concurrently and merges them into a
// single immutable snapshot. Only an unresolvable model reference fails the
// call; every other fetch failure is recorded and scoring proceeds on what
// is available.
func (g *Gatherer) Gather(ctx context.Context, ref types.ArtifactReference) (*types.Model, error) {
	if err := ref.Validate(); err != nil {
		return nil, trusterr.NewFatalReference(ref, err.Error(), err)
	}
	modelID, err := types.ParseHFRepoID(ref.ModelURL)
	if err != nil {
		return nil, trusterr.NewFatalReference(ref, err.Error(), err)
	}

	snapshot := &types.Model{
		Ref:      ref,
		Failures: make(map[types.Source]string),
	}

	var (
		modelInfo   *types.ModelInfo
		datasetInfo *types.DatasetInfo
		codeInfo    *types.CodeInfo
		datasetErr  error
		codeErr     error
	)

	grp, grpCtx := errgroup.WithContext(ctx)

	grp.Go(func() error {
		var fetchErr error
		modelInfo, fetchErr = g.hub.FetchModel(grpCtx, modelID, ref.Revision)
		if fetchErr != nil {
			return trusterr.NewFatalReference(ref, "model reference could not be resolved", fetchErr)
		}
		return nil
	})

	if ref.DatasetURL != "" {
		grp.Go(func() error {
			datasetID, parseErr := types.ParseHFRepoID(ref.DatasetURL)
			if parseErr != nil {
				datasetErr = parseErr
				return nil
			}
			datasetInfo, datasetErr = g.hub.FetchDataset(grpCtx, datasetID, ref.Revision)
			return nil
		})
	}

	if ref.CodeURL != "" {
		grp.Go(func() error {
			codeInfo, codeErr = g.code.Fetch(grpCtx, ref.CodeURL, ref.Revision)
			return nil
		})
	}

	if err := grp.Wait(); err != nil {
		return nil, err
	}

	snapshot.Model = modelInfo
	snapshot.Dataset = datasetInfo
	snapshot.Code = codeInfo

	if datasetErr != nil {
		snapshot.Failures[types.SourceDataset] = datasetErr.Error()
		g.logger.Warn("dataset source unavailable", "dataset_url", ref.DatasetURL, "error", datasetErr)
	}
	if codeErr != nil {
		snapshot.Failures[types.SourceCode] = codeErr.Error()
		g.logger.Warn("code source unavailable", "code_url", ref.CodeURL, "error", codeErr)
	}

	// A model card often links the training code even when the reference
	// does not name it. Use the link as a fallback code source.
	if snapshot.Code == nil && codeErr == nil && modelInfo != nil && modelInfo.CodeRepo != "" {
		linked, linkErr := g.code.Fetch(ctx, modelInfo.CodeRepo, "")
		if linkErr != nil {
			snapshot.Failures[types.SourceCode] = linkErr.Error()
			g.logger.Warn("linked code source unavailable", "code_url", modelInfo.CodeRepo, "error", linkErr)
		} else {
			snapshot.Code = linked
		}
	}

	if len(snapshot.Failures) == 0 {
		snapshot.Failures = nil
	}
	return snapshot, nil
}

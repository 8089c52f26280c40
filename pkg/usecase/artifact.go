package usecase

import (
	"context"
	"io"
	"log/slog"
	"sort"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/extract"
	"github.com/mootai/moot/pkg/utils/errutil"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/mootai/moot/pkg/utils/safe"
	"golang.org/x/sync/errgroup"
)

// Upload is one file received from the caller
type Upload struct {
	Name string
	Size int64
	Body io.Reader
}

type ArtifactUseCase struct {
	store       interfaces.ArtifactStore
	index       interfaces.ArtifactIndex
	backend     interfaces.Backend
	extractor   *extract.Extractor
	parallelism int
}

func NewArtifactUseCase(store interfaces.ArtifactStore, index interfaces.ArtifactIndex, backend interfaces.Backend, extractor *extract.Extractor, parallelism int) *ArtifactUseCase {
	if parallelism <= 0 {
		parallelism = DefaultParallelism
	}
	return &ArtifactUseCase{
		store:       store,
		index:       index,
		backend:     backend,
		extractor:   extractor,
		parallelism: parallelism,
	}
}

// Upload stores each non-empty file and returns the original names of the
// stored files in upload order.
func (uc *ArtifactUseCase) Upload(ctx context.Context, owner model.OwnerID, uploads []Upload) ([]string, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	logger := logging.From(ctx)
	names := make([]string, 0, len(uploads))

	for _, u := range uploads {
		if u.Size == 0 || u.Body == nil {
			logger.Debug("skip empty upload", slog.String("name", u.Name))
			continue
		}

		stored, err := uc.store.Put(ctx, owner, u.Name, u.Body)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to store upload", goerr.V("name", u.Name))
		}

		if uc.index != nil {
			if err := uc.index.Put(ctx, stored); err != nil {
				// lookups fall back to scanning the store
				_ = errutil.Handle(ctx, err, "failed to index artifact")
			}
		}

		logger.Info("artifact stored",
			slog.String("owner", owner.String()),
			slog.String("physical_name", stored.PhysicalName),
			slog.Int64("size", stored.Size),
		)

		name := u.Name
		if name == "" {
			name = model.UnnamedArtifact
		}
		names = append(names, name)
	}

	return names, nil
}

// Open returns the content of one artifact by its physical name
func (uc *ArtifactUseCase) Open(ctx context.Context, owner model.OwnerID, physicalName string) (io.ReadCloser, *model.StoredArtifact, error) {
	return uc.store.Open(ctx, owner, physicalName)
}

// Resolve maps each requested name to a stored artifact. The result has one
// slot per requested name; unresolved names leave their slot nil.
//
// The index is consulted first. Names it cannot answer are matched against
// a single listing of the owner's artifacts, scanned newest first so that
// the most recent upload wins when several artifacts match.
func (uc *ArtifactUseCase) Resolve(ctx context.Context, owner model.OwnerID, requested []string) ([]*model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	resolved := make([]*model.StoredArtifact, len(requested))
	pending := make([]int, 0, len(requested))

	for i, name := range requested {
		if name == "" {
			continue
		}
		if uc.index != nil {
			found, err := uc.index.Lookup(ctx, owner, name)
			if err != nil {
				_ = errutil.Handle(ctx, err, "artifact index lookup failed")
			} else if found != nil {
				resolved[i] = found
				continue
			}
		}
		pending = append(pending, i)
	}

	if len(pending) == 0 {
		return resolved, nil
	}

	artifacts, err := uc.store.List(ctx, owner)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list artifacts", goerr.V(model.OwnerIDKey, owner))
	}
	sortNewestFirst(artifacts)

	for _, i := range pending {
		resolved[i] = matchArtifact(artifacts, requested[i])
	}
	return resolved, nil
}

// sortNewestFirst orders by physical name descending. Prefixes are UUIDv7,
// so this is creation order, newest first.
func sortNewestFirst(artifacts []*model.StoredArtifact) {
	sort.SliceStable(artifacts, func(i, j int) bool {
		return artifacts[i].PhysicalName > artifacts[j].PhysicalName
	})
}

// matchArtifact picks the best ranked artifact. Exact matches beat suffix
// matches; within a rank the first in artifacts wins, so callers sort
// newest first.
func matchArtifact(artifacts []*model.StoredArtifact, requested string) *model.StoredArtifact {
	var best *model.StoredArtifact
	bestRank := model.MatchNone
	for _, a := range artifacts {
		rank := a.Rank(requested)
		if rank > bestRank {
			best, bestRank = a, rank
			if rank == model.MatchExact {
				break
			}
		}
	}
	return best
}

// BuildContentBundle resolves and extracts every requested name. It never
// fails because of one document: unresolved names become not-found entries
// and unreadable documents become size-only entries.
func (uc *ArtifactUseCase) BuildContentBundle(ctx context.Context, owner model.OwnerID, requested []string) (*model.ContentBundle, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	resolved, err := uc.Resolve(ctx, owner, requested)
	if err != nil {
		_ = errutil.Handle(ctx, err, "artifact resolution failed, continuing without documents")
		resolved = make([]*model.StoredArtifact, len(requested))
	}

	entries := make([]model.ContentEntry, len(requested))

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(uc.parallelism)

	for i, name := range requested {
		artifact := resolved[i]
		if artifact == nil {
			entries[i] = model.ContentEntry{
				RequestedName: name,
				Status:        types.ContentStatusNotFound,
				Note:          model.NoteNotFound,
			}
			continue
		}

		eg.Go(func() error {
			entries[i] = uc.extractEntry(egCtx, owner, name, artifact)
			return egCtx.Err()
		})
	}

	if err := eg.Wait(); err != nil {
		return nil, goerr.Wrap(err, "content extraction interrupted")
	}

	return &model.ContentBundle{Entries: entries}, nil
}

// extractEntry reads one artifact. The extension of the requested name
// selects the extractor.
func (uc *ArtifactUseCase) extractEntry(ctx context.Context, owner model.OwnerID, requested string, artifact *model.StoredArtifact) model.ContentEntry {
	if types.ClassifyName(requested) == types.DocumentClassOpaque {
		return uc.extractor.Extract(ctx, requested, nil, artifact.Size).Entry(requested, artifact.Size)
	}

	r, opened, err := uc.store.Open(ctx, owner, artifact.PhysicalName)
	if err != nil {
		logging.From(ctx).Warn("failed to open resolved artifact",
			slog.String("physical_name", artifact.PhysicalName),
			slog.Any("error", err))
		return model.ContentEntry{
			RequestedName: requested,
			Status:        types.ContentStatusSizeOnly,
			Size:          artifact.Size,
			Note:          model.NoteExtractionFailed,
		}
	}
	defer safe.Close(ctx, r)

	return uc.extractor.Extract(ctx, requested, r, opened.Size).Entry(requested, opened.Size)
}

// Summarize asks the backend to summarize the requested documents from the
// point of view of identity.
func (uc *ArtifactUseCase) Summarize(ctx context.Context, owner model.OwnerID, fileNames []string, identity types.Role) (string, error) {
	if len(fileNames) == 0 {
		return "", goerr.Wrap(ErrMissingFileNames, "no file to summarize")
	}
	if !identity.IsParty() {
		return "", goerr.Wrap(ErrInvalidRequest, "identity must be plaintiff or defendant", goerr.V(FieldKey, "identity"), goerr.V(ValueKey, identity))
	}

	bundle, err := uc.BuildContentBundle(ctx, owner, fileNames)
	if err != nil {
		return "", err
	}

	summary, err := uc.backend.Summarize(ctx, &model.SummaryRequest{
		FileNames:    fileNames,
		FileContents: bundle.Contents(),
		Identity:     identity.String(),
	})
	if err != nil {
		return "", goerr.Wrap(err, "failed to summarize case", goerr.V(model.OwnerIDKey, owner))
	}
	return summary, nil
}

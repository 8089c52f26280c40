package memory

import (
	"context"
	"sync"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
)

type indexKey struct {
	owner       model.OwnerID
	logicalName string
}

// Index is an in-process ArtifactIndex. Its content is lost on restart, so
// it only speeds up lookups for artifacts uploaded by this process.
type Index struct {
	mu      sync.RWMutex
	entries map[indexKey]*model.StoredArtifact
}

var _ interfaces.ArtifactIndex = &Index{}

func NewIndex() *Index {
	return &Index{
		entries: make(map[indexKey]*model.StoredArtifact),
	}
}

func (x *Index) Put(ctx context.Context, artifact *model.StoredArtifact) error {
	if artifact == nil {
		return goerr.Wrap(model.ErrInvalidArtifact, "artifact is nil")
	}
	if err := artifact.Owner.Validate(); err != nil {
		return err
	}

	key := indexKey{owner: artifact.Owner, logicalName: artifact.OriginalName}

	x.mu.Lock()
	defer x.mu.Unlock()

	if current, ok := x.entries[key]; ok && !newer(artifact, current) {
		return nil
	}
	x.entries[key] = copyArtifact(artifact)
	return nil
}

func (x *Index) Lookup(ctx context.Context, owner model.OwnerID, logicalName string) (*model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	x.mu.RLock()
	defer x.mu.RUnlock()

	found, ok := x.entries[indexKey{owner: owner, logicalName: model.Sanitize(logicalName)}]
	if !ok {
		return nil, nil
	}
	return copyArtifact(found), nil
}

func (x *Index) Close() error {
	return nil
}

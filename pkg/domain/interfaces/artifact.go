package interfaces

import (
	"context"
	"io"

	"github.com/mootai/moot/pkg/domain/model"
)

// ArtifactStore keeps uploaded case documents under
// <root>/<owner>/<uniquePrefix>_<sanitizedName>.
type ArtifactStore interface {
	// Put writes a new artifact. The unique prefix is generated by the store.
	Put(ctx context.Context, owner model.OwnerID, originalName string, r io.Reader) (*model.StoredArtifact, error)

	// List returns the owner's artifacts. An owner with no artifacts yields
	// an empty list, not an error. Order is storage-defined.
	List(ctx context.Context, owner model.OwnerID) ([]*model.StoredArtifact, error)

	// Open returns a reader for one artifact. Returns ErrArtifactNotFound
	// when the artifact does not exist.
	Open(ctx context.Context, owner model.OwnerID, physicalName string) (io.ReadCloser, *model.StoredArtifact, error)
}

// ArtifactIndex maps (owner, sanitized logical name) to the most recently
// written artifact, maintained alongside ArtifactStore.Put.
type ArtifactIndex interface {
	Put(ctx context.Context, artifact *model.StoredArtifact) error

	// Lookup returns nil, nil if nothing is indexed under the name
	Lookup(ctx context.Context, owner model.OwnerID, logicalName string) (*model.StoredArtifact, error)

	Close() error
}

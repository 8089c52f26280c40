package filesystem

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/utils/safe"
)

const (
	dirPerm  = 0o750
	filePerm = 0o640

	// Uploads are written under a dot-prefixed temporary name and renamed
	// into place, so a concurrent List never sees a partial artifact.
	tempPattern = ".upload-*"
)

// Store keeps artifacts on the local filesystem at <root>/<owner>/<physical>
type Store struct {
	root string
	now  func() time.Time
}

var _ interfaces.ArtifactStore = &Store{}

type Option func(*Store)

// WithClock overrides the time source used for CreatedAt
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// New creates a Store rooted at root, creating the directory if needed
func New(root string, opts ...Option) (*Store, error) {
	if root == "" {
		return nil, goerr.New("storage root is required")
	}
	if err := os.MkdirAll(root, dirPerm); err != nil {
		return nil, goerr.Wrap(err, "failed to create storage root", goerr.V("root", root))
	}

	s := &Store{
		root: root,
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) ownerDir(owner model.OwnerID) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	return filepath.Join(s.root, string(owner)), nil
}

func (s *Store) Put(ctx context.Context, owner model.OwnerID, originalName string, r io.Reader) (*model.StoredArtifact, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, goerr.Wrap(err, "failed to create owner directory", goerr.V(model.OwnerIDKey, owner))
	}

	tmp, err := os.CreateTemp(dir, tempPattern)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create temporary file", goerr.V(model.OwnerIDKey, owner))
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	size, err := io.Copy(tmp, r)
	if err != nil {
		safe.Close(ctx, tmp)
		return nil, goerr.Wrap(err, "failed to write artifact", goerr.V(model.OwnerIDKey, owner))
	}
	if err := tmp.Chmod(filePerm); err != nil {
		safe.Close(ctx, tmp)
		return nil, goerr.Wrap(err, "failed to set artifact permission")
	}
	if err := tmp.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to close artifact", goerr.V(model.OwnerIDKey, owner))
	}

	physical := model.PhysicalName(model.NewArtifactPrefix(), originalName)
	if err := os.Rename(tmpName, filepath.Join(dir, physical)); err != nil {
		return nil, goerr.Wrap(err, "failed to move artifact into place",
			goerr.V(model.OwnerIDKey, owner),
			goerr.V(model.ArtifactKey, physical))
	}

	return model.NewStoredArtifact(owner, physical, size, s.now().UTC()), nil
}

func (s *Store) List(ctx context.Context, owner model.OwnerID) ([]*model.StoredArtifact, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []*model.StoredArtifact{}, nil
		}
		return nil, goerr.Wrap(err, "failed to list owner directory", goerr.V(model.OwnerIDKey, owner))
	}

	artifacts := make([]*model.StoredArtifact, 0, len(entries))
	for _, entry := range entries {
		if !entry.Type().IsRegular() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// removed between ReadDir and Info
			continue
		}
		artifacts = append(artifacts, model.NewStoredArtifact(owner, entry.Name(), info.Size(), info.ModTime().UTC()))
	}
	return artifacts, nil
}

func (s *Store) Open(ctx context.Context, owner model.OwnerID, physicalName string) (io.ReadCloser, *model.StoredArtifact, error) {
	dir, err := s.ownerDir(owner)
	if err != nil {
		return nil, nil, err
	}
	if err := model.ValidatePhysicalName(physicalName); err != nil {
		return nil, nil, err
	}

	// #nosec G304 - owner and physical name are validated above
	f, err := os.Open(filepath.Join(dir, physicalName))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil, goerr.Wrap(model.ErrArtifactNotFound, "artifact does not exist",
				goerr.V(model.OwnerIDKey, owner),
				goerr.V(model.ArtifactKey, physicalName))
		}
		return nil, nil, goerr.Wrap(err, "failed to open artifact", goerr.V(model.ArtifactKey, physicalName))
	}

	info, err := f.Stat()
	if err != nil {
		safe.Close(ctx, f)
		return nil, nil, goerr.Wrap(err, "failed to stat artifact", goerr.V(model.ArtifactKey, physicalName))
	}

	return f, model.NewStoredArtifact(owner, physicalName, info.Size(), info.ModTime().UTC()), nil
}

package gcs

import (
	"context"
	"errors"
	"io"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"google.golang.org/api/iterator"
)

// Store keeps artifacts in a Cloud Storage bucket at
// gs://<bucket>/<prefix>/<owner>/<physical>
type Store struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.ArtifactStore = &Store{}

type Option func(*Store)

// WithPrefix sets the object name prefix acting as the storage root
func WithPrefix(prefix string) Option {
	return func(s *Store) {
		s.prefix = strings.Trim(prefix, "/")
	}
}

// New creates a Store for bucket. The caller must Close the store.
func New(ctx context.Context, bucket string, opts ...Option) (*Store, error) {
	if bucket == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	s := &Store{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}

func (s *Store) ownerPrefix(owner model.OwnerID) (string, error) {
	if err := owner.Validate(); err != nil {
		return "", err
	}
	if s.prefix == "" {
		return string(owner) + "/", nil
	}
	return path.Join(s.prefix, string(owner)) + "/", nil
}

func (s *Store) Put(ctx context.Context, owner model.OwnerID, originalName string, r io.Reader) (*model.StoredArtifact, error) {
	dir, err := s.ownerPrefix(owner)
	if err != nil {
		return nil, err
	}

	physical := model.PhysicalName(model.NewArtifactPrefix(), originalName)
	obj := s.client.Bucket(s.bucket).Object(dir + physical).If(storage.Conditions{DoesNotExist: true})

	// Closing the writer commits the object, so a failed copy aborts the
	// upload by cancelling its context instead.
	wctx, cancel := context.WithCancel(ctx)
	defer cancel()

	w := obj.NewWriter(wctx)
	if _, err := io.Copy(w, r); err != nil {
		cancel()
		return nil, goerr.Wrap(err, "failed to upload artifact",
			goerr.V(model.OwnerIDKey, owner),
			goerr.V(model.ArtifactKey, physical))
	}
	if err := w.Close(); err != nil {
		return nil, goerr.Wrap(err, "failed to finalize artifact upload",
			goerr.V(model.OwnerIDKey, owner),
			goerr.V(model.ArtifactKey, physical))
	}

	attrs := w.Attrs()
	return model.NewStoredArtifact(owner, physical, attrs.Size, attrs.Created.UTC()), nil
}

func (s *Store) List(ctx context.Context, owner model.OwnerID) ([]*model.StoredArtifact, error) {
	dir, err := s.ownerPrefix(owner)
	if err != nil {
		return nil, err
	}

	it := s.client.Bucket(s.bucket).Objects(ctx, &storage.Query{Prefix: dir, Delimiter: "/"})

	artifacts := []*model.StoredArtifact{}
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list artifacts", goerr.V(model.OwnerIDKey, owner))
		}
		if attrs.Name == "" {
			// synthetic directory entry
			continue
		}
		physical := strings.TrimPrefix(attrs.Name, dir)
		artifacts = append(artifacts, model.NewStoredArtifact(owner, physical, attrs.Size, attrs.Created.UTC()))
	}
	return artifacts, nil
}

func (s *Store) Open(ctx context.Context, owner model.OwnerID, physicalName string) (io.ReadCloser, *model.StoredArtifact, error) {
	dir, err := s.ownerPrefix(owner)
	if err != nil {
		return nil, nil, err
	}
	if err := model.ValidatePhysicalName(physicalName); err != nil {
		return nil, nil, err
	}

	obj := s.client.Bucket(s.bucket).Object(dir + physicalName)
	r, err := obj.NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, nil, goerr.Wrap(model.ErrArtifactNotFound, "artifact does not exist",
				goerr.V(model.OwnerIDKey, owner),
				goerr.V(model.ArtifactKey, physicalName))
		}
		return nil, nil, goerr.Wrap(err, "failed to open artifact", goerr.V(model.ArtifactKey, physicalName))
	}

	return r, model.NewStoredArtifact(owner, physicalName, r.Attrs.Size, r.Attrs.LastModified.UTC()), nil
}

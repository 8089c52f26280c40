package memory

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
)

type storedObject struct {
	artifact *model.StoredArtifact
	data     []byte
}

// Store is an in-process ArtifactStore
type Store struct {
	mu      sync.RWMutex
	objects map[model.OwnerID]map[string]*storedObject
}

var _ interfaces.ArtifactStore = &Store{}

func NewStore() *Store {
	return &Store{
		objects: make(map[model.OwnerID]map[string]*storedObject),
	}
}

func (s *Store) Put(ctx context.Context, owner model.OwnerID, originalName string, r io.Reader) (*model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read artifact", goerr.V(model.OwnerIDKey, owner))
	}

	physical := model.PhysicalName(model.NewArtifactPrefix(), originalName)
	artifact := model.NewStoredArtifact(owner, physical, int64(len(data)), time.Now().UTC())

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.objects[owner]; !ok {
		s.objects[owner] = make(map[string]*storedObject)
	}
	s.objects[owner][physical] = &storedObject{artifact: artifact, data: data}

	return copyArtifact(artifact), nil
}

func (s *Store) List(ctx context.Context, owner model.OwnerID) ([]*model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	artifacts := make([]*model.StoredArtifact, 0, len(s.objects[owner]))
	for _, obj := range s.objects[owner] {
		artifacts = append(artifacts, copyArtifact(obj.artifact))
	}
	return artifacts, nil
}

func (s *Store) Open(ctx context.Context, owner model.OwnerID, physicalName string) (io.ReadCloser, *model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, nil, err
	}
	if err := model.ValidatePhysicalName(physicalName); err != nil {
		return nil, nil, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	obj, ok := s.objects[owner][physicalName]
	if !ok {
		return nil, nil, goerr.Wrap(model.ErrArtifactNotFound, "artifact does not exist",
			goerr.V(model.OwnerIDKey, owner),
			goerr.V(model.ArtifactKey, physicalName))
	}
	return io.NopCloser(bytes.NewReader(obj.data)), copyArtifact(obj.artifact), nil
}

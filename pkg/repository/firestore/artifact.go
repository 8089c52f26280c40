package firestore

import (
	"context"
	"errors"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ArtifactCollection is the collection holding the artifact index
const ArtifactCollection = "artifacts"

// artifactDoc is the Firestore document representation of model.StoredArtifact.
// The document ID is the physical name, unique by construction.
type artifactDoc struct {
	OwnerID      string    `firestore:"owner_id"`
	LogicalName  string    `firestore:"logical_name"`
	PhysicalName string    `firestore:"physical_name"`
	Size         int64     `firestore:"size"`
	CreatedAt    time.Time `firestore:"created_at"`
}

func toArtifactDoc(a *model.StoredArtifact) *artifactDoc {
	return &artifactDoc{
		OwnerID:      a.Owner.String(),
		LogicalName:  a.OriginalName,
		PhysicalName: a.PhysicalName,
		Size:         a.Size,
		CreatedAt:    a.CreatedAt,
	}
}

func docToArtifact(doc *firestore.DocumentSnapshot) (*model.StoredArtifact, error) {
	var d artifactDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, err
	}
	return model.NewStoredArtifact(model.OwnerID(d.OwnerID), d.PhysicalName, d.Size, d.CreatedAt), nil
}

func (f *Firestore) artifacts() *firestore.CollectionRef {
	return f.client.Collection(f.collectionPrefix + ArtifactCollection)
}

func (f *Firestore) Put(ctx context.Context, artifact *model.StoredArtifact) error {
	if artifact == nil {
		return goerr.Wrap(model.ErrInvalidArtifact, "artifact is nil")
	}
	if err := artifact.Owner.Validate(); err != nil {
		return err
	}
	if err := model.ValidatePhysicalName(artifact.PhysicalName); err != nil {
		return err
	}

	// Physical names never repeat, so an existing document is already current
	docRef := f.artifacts().Doc(artifact.PhysicalName)
	if _, err := docRef.Create(ctx, toArtifactDoc(artifact)); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return nil
		}
		return goerr.Wrap(err, "failed to index artifact",
			goerr.V(model.OwnerIDKey, artifact.Owner),
			goerr.V(model.ArtifactKey, artifact.PhysicalName))
	}
	return nil
}

func (f *Firestore) Lookup(ctx context.Context, owner model.OwnerID, logicalName string) (*model.StoredArtifact, error) {
	if err := owner.Validate(); err != nil {
		return nil, err
	}

	iter := f.artifacts().
		Where("owner_id", "==", owner.String()).
		Where("logical_name", "==", model.Sanitize(logicalName)).
		OrderBy("created_at", firestore.Desc).
		OrderBy("physical_name", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if errors.Is(err, iterator.Done) {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query artifact index",
			goerr.V(model.OwnerIDKey, owner),
			goerr.V(model.RequestedNameKey, logicalName))
	}

	artifact, err := docToArtifact(doc)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal artifact", goerr.V("docID", doc.Ref.ID))
	}
	return artifact, nil
}

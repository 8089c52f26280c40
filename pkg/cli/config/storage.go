package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/repository/filesystem"
	"github.com/mootai/moot/pkg/repository/firestore"
	"github.com/mootai/moot/pkg/repository/gcs"
	"github.com/mootai/moot/pkg/repository/memory"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Storage holds CLI flags for the artifact store and its index
type Storage struct {
	backend   string
	root      string
	gcsBucket string
	gcsPrefix string

	index               string
	firestoreProjectID  string
	firestoreDatabaseID string
	collectionPrefix    string
}

// Flags returns CLI flags for storage configuration
func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "storage-backend",
			Usage:       "Artifact store (fs, gcs or memory)",
			Category:    "Storage",
			Value:       "fs",
			Sources:     cli.EnvVars("MOOT_STORAGE_BACKEND"),
			Destination: &x.backend,
		},
		&cli.StringFlag{
			Name:        "storage-root",
			Usage:       "Root directory of the fs artifact store",
			Category:    "Storage",
			Value:       "./uploads",
			Sources:     cli.EnvVars("MOOT_STORAGE_ROOT"),
			Destination: &x.root,
		},
		&cli.StringFlag{
			Name:        "gcs-bucket",
			Usage:       "Bucket of the gcs artifact store",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOOT_GCS_BUCKET"),
			Destination: &x.gcsBucket,
		},
		&cli.StringFlag{
			Name:        "gcs-prefix",
			Usage:       "Object prefix of the gcs artifact store",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOOT_GCS_PREFIX"),
			Destination: &x.gcsPrefix,
		},
		&cli.StringFlag{
			Name:        "index-backend",
			Usage:       "Artifact index (none, memory or firestore)",
			Category:    "Storage",
			Value:       "none",
			Sources:     cli.EnvVars("MOOT_INDEX_BACKEND"),
			Destination: &x.index,
		},
		&cli.StringFlag{
			Name:        "firestore-project-id",
			Usage:       "Firestore Project ID (required when using the firestore index)",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOOT_FIRESTORE_PROJECT_ID"),
			Destination: &x.firestoreProjectID,
		},
		&cli.StringFlag{
			Name:        "firestore-database-id",
			Usage:       "Firestore Database ID",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOOT_FIRESTORE_DATABASE_ID"),
			Destination: &x.firestoreDatabaseID,
		},
		&cli.StringFlag{
			Name:        "firestore-collection-prefix",
			Usage:       "Prefix prepended to Firestore collection names",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOOT_FIRESTORE_COLLECTION_PREFIX"),
			Destination: &x.collectionPrefix,
		},
	}
}

// LogAttrs returns log attributes for the storage configuration
func (x *Storage) LogAttrs() []slog.Attr {
	return []slog.Attr{
		slog.String("backend", x.backend),
		slog.String("root", x.root),
		slog.String("gcs_bucket", x.gcsBucket),
		slog.String("index", x.index),
		slog.String("firestore_project_id", x.firestoreProjectID),
	}
}

// Artifacts is the configured store and optional index. Close releases
// both.
type Artifacts struct {
	Store   interfaces.ArtifactStore
	Index   interfaces.ArtifactIndex
	closers []func() error
}

func (a *Artifacts) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return goerr.New("failed to close storage", goerr.V("errors", errs))
	}
	return nil
}

// Configure opens the artifact store and index. The caller is responsible
// for calling Close on the result.
func (x *Storage) Configure(ctx context.Context) (*Artifacts, error) {
	a := &Artifacts{}

	switch x.backend {
	case "fs", "":
		store, err := filesystem.New(x.root)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize fs artifact store")
		}
		a.Store = store
		logging.Default().Info("Using filesystem artifact store", "root", x.root)

	case "gcs":
		if x.gcsBucket == "" {
			return nil, missingRequired("gcs-bucket", "gcs-bucket is required when using the gcs store")
		}
		store, err := gcs.New(ctx, x.gcsBucket, gcs.WithPrefix(x.gcsPrefix))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to initialize gcs artifact store")
		}
		a.Store = store
		a.closers = append(a.closers, store.Close)
		logging.Default().Info("Using GCS artifact store", "bucket", x.gcsBucket, "prefix", x.gcsPrefix)

	case "memory":
		a.Store = memory.NewStore()
		logging.Default().Info("Using in-memory artifact store (development mode)")

	default:
		return nil, unknownChoice("storage-backend", x.backend)
	}

	switch x.index {
	case "none", "":
		logging.Default().Info("Artifact index disabled, names are resolved by scanning the store")

	case "memory":
		idx := memory.NewIndex()
		a.Index = idx
		a.closers = append(a.closers, idx.Close)

	case "firestore":
		if x.firestoreProjectID == "" {
			_ = a.Close()
			return nil, missingRequired("firestore-project-id", "firestore-project-id is required when using the firestore index")
		}
		idx, err := firestore.New(ctx, x.firestoreProjectID, x.firestoreDatabaseID,
			firestore.WithCollectionPrefix(x.collectionPrefix))
		if err != nil {
			_ = a.Close()
			return nil, goerr.Wrap(err, "failed to initialize firestore artifact index")
		}
		a.Index = idx
		a.closers = append(a.closers, idx.Close)
		logging.Default().Info("Using Firestore artifact index",
			"project_id", x.firestoreProjectID,
			"database_id", x.firestoreDatabaseID,
		)

	default:
		_ = a.Close()
		return nil, unknownChoice("index-backend", x.index)
	}

	return a, nil
}

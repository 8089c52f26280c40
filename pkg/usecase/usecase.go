package usecase

import (
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/service/directive"
	"github.com/mootai/moot/pkg/service/extract"
	"github.com/mootai/moot/pkg/service/policy"
)

// DefaultParallelism bounds concurrent extractions within one request
const DefaultParallelism = 4

type UseCases struct {
	store       interfaces.ArtifactStore
	index       interfaces.ArtifactIndex
	backend     interfaces.Backend
	extractor   *extract.Extractor
	policy      *policy.Table
	parallelism int

	Artifact *ArtifactUseCase
	Debate   *DebateUseCase
}

type Option func(*UseCases)

// WithIndex enables index lookups before falling back to a store scan
func WithIndex(index interfaces.ArtifactIndex) Option {
	return func(uc *UseCases) {
		uc.index = index
	}
}

// WithPolicy replaces the built-in policy table
func WithPolicy(table *policy.Table) Option {
	return func(uc *UseCases) {
		uc.policy = table
	}
}

func WithExtractor(x *extract.Extractor) Option {
	return func(uc *UseCases) {
		uc.extractor = x
	}
}

// WithParallelism bounds concurrent extractions within one request
func WithParallelism(n int) Option {
	return func(uc *UseCases) {
		if n > 0 {
			uc.parallelism = n
		}
	}
}

func New(store interfaces.ArtifactStore, backend interfaces.Backend, opts ...Option) *UseCases {
	uc := &UseCases{
		store:       store,
		backend:     backend,
		parallelism: DefaultParallelism,
	}

	for _, opt := range opts {
		opt(uc)
	}

	if uc.extractor == nil {
		uc.extractor = extract.New()
	}
	if uc.policy == nil {
		uc.policy = policy.Default()
	}

	uc.Artifact = NewArtifactUseCase(store, uc.index, backend, uc.extractor, uc.parallelism)
	uc.Debate = NewDebateUseCase(uc.Artifact, backend, directive.New(uc.policy))

	return uc
}

package interfaces

import (
	"context"

	"github.com/mootai/moot/pkg/domain/model"
)

// Backend is the external generative-dialogue service. Every method is a
// single blocking round trip without retries; failures are reported as
// ErrBackendUnreachable, ErrBackendError or ErrMalformedResponse.
type Backend interface {
	Generate(ctx context.Context, directive *model.Directive) (string, error)
	Summarize(ctx context.Context, req *model.SummaryRequest) (string, error)
	Verdict(ctx context.Context, req *model.VerdictRequest) (*model.Verdict, error)

	Health(ctx context.Context) error
	InitModel(ctx context.Context) (model.ModelStatus, error)
	ModelStatus(ctx context.Context) (model.ModelStatus, error)
}

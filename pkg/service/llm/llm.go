package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gollem"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
)

// Backend serves the backend contract directly from an LLM instead of the
// HTTP generation service.
type Backend struct {
	llmClient gollem.LLMClient
	provider  string
}

var _ interfaces.Backend = &Backend{}

type Option func(*Backend)

// WithProvider sets the provider name reported by ModelStatus
func WithProvider(name string) Option {
	return func(b *Backend) {
		b.provider = name
	}
}

func New(llmClient gollem.LLMClient, opts ...Option) (*Backend, error) {
	if llmClient == nil {
		return nil, goerr.New("LLM client is required")
	}

	b := &Backend{
		llmClient: llmClient,
		provider:  "gemini",
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

func (b *Backend) generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	session, err := b.llmClient.NewSession(ctx, gollem.WithSessionSystemPrompt(systemPrompt))
	if err != nil {
		return "", goerr.Wrap(model.ErrBackendUnreachable, "failed to create LLM session", goerr.V("cause", err.Error()))
	}

	resp, err := session.GenerateContent(ctx, gollem.Text(userPrompt))
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", goerr.Wrap(ctxErr, "LLM generation canceled")
		}
		return "", goerr.Wrap(model.ErrBackendError, err.Error(), goerr.V(model.UpstreamErrorKey, err.Error()))
	}

	text := strings.TrimSpace(strings.Join(resp.Texts, "\n"))
	if text == "" {
		return "", goerr.Wrap(model.ErrMalformedResponse, "LLM returned no text")
	}
	return text, nil
}

func (b *Backend) Generate(ctx context.Context, directive *model.Directive) (string, error) {
	return b.generate(ctx, debateSystemPrompt(directive), debateUserPrompt(directive))
}

func (b *Backend) Summarize(ctx context.Context, req *model.SummaryRequest) (string, error) {
	if len(req.FileNames) == 0 {
		return "", goerr.Wrap(model.ErrBackendError, "file_names参数不能为空")
	}
	return b.generate(ctx, summarySystemPrompt, summaryUserPrompt(req))
}

func (b *Backend) Verdict(ctx context.Context, req *model.VerdictRequest) (*model.Verdict, error) {
	if req.CaseDescription == "" {
		return nil, goerr.Wrap(model.ErrBackendError, "case_description参数不能为空")
	}

	text, err := b.generate(ctx, verdictSystemPrompt, verdictUserPrompt(req))
	if err != nil {
		return nil, err
	}
	return &model.Verdict{Verdict: text}, nil
}

// Health always succeeds; the LLM client is created at startup
func (b *Backend) Health(ctx context.Context) error {
	return nil
}

// InitModel has nothing to load for a hosted model and reports the status
func (b *Backend) InitModel(ctx context.Context) (model.ModelStatus, error) {
	return b.ModelStatus(ctx)
}

func (b *Backend) ModelStatus(ctx context.Context) (model.ModelStatus, error) {
	raw, err := json.Marshal(map[string]any{
		"loaded":   true,
		"loading":  false,
		"provider": b.provider,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode model status")
	}
	return model.ModelStatus(raw), nil
}

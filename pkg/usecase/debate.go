package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/domain/types"
	"github.com/mootai/moot/pkg/service/directive"
	"github.com/mootai/moot/pkg/utils/logging"
)

// DebateRequest asks for the next utterance of the debate
type DebateRequest struct {
	Owner    model.OwnerID
	Persona  model.PersonaConfig
	Messages model.Transcript
	// CaseDescription is used as the background as is, unless FileNames is
	// set, in which case it becomes the narrative of a composed background.
	CaseDescription string
	FileNames       []string
}

// Validate checks the fields the backend cannot do without
func (r *DebateRequest) Validate() error {
	if r.Persona.CurrentRole.Normalize() == "" {
		return goerr.Wrap(ErrInvalidRequest, "current role is required", goerr.V(FieldKey, "currentRole"))
	}
	if !r.Persona.UserIdentity.Normalize().IsParty() {
		return goerr.Wrap(ErrInvalidRequest, "user identity must be plaintiff or defendant",
			goerr.V(FieldKey, "userIdentity"),
			goerr.V(ValueKey, r.Persona.UserIdentity))
	}
	return nil
}

// VerdictInput asks for the judgment after the debate
type VerdictInput struct {
	CaseDescription string
	Messages        model.Transcript
	Identity        types.Role
}

type DebateUseCase struct {
	artifact *ArtifactUseCase
	backend  interfaces.Backend
	compiler *directive.Compiler
}

func NewDebateUseCase(artifact *ArtifactUseCase, backend interfaces.Backend, compiler *directive.Compiler) *DebateUseCase {
	return &DebateUseCase{
		artifact: artifact,
		backend:  backend,
		compiler: compiler,
	}
}

// Directive compiles the directive for req without sending it
func (uc *DebateUseCase) Directive(ctx context.Context, req *DebateRequest) (*model.Directive, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	background := req.CaseDescription
	if len(req.FileNames) > 0 {
		bundle, err := uc.artifact.BuildContentBundle(ctx, req.Owner, req.FileNames)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to build case materials")
		}
		background = uc.compiler.ComposeBackground(req.Persona.UserIdentity, bundle, req.CaseDescription)
	}

	return uc.compiler.Compile(model.DirectiveInput{
		Persona:    req.Persona,
		Background: background,
		Transcript: req.Messages,
	}), nil
}

// Generate compiles the directive and returns the backend's utterance
func (uc *DebateUseCase) Generate(ctx context.Context, req *DebateRequest) (string, error) {
	d, err := uc.Directive(ctx, req)
	if err != nil {
		return "", err
	}

	logging.From(ctx).Info("generating utterance",
		slog.String("agent_role", d.AgentRole),
		slog.String("directive_version", d.SchemaVersion),
		slog.Int("turns", len(req.Messages)),
		slog.Int("background_len", len(d.Background)),
	)

	text, err := uc.backend.Generate(ctx, d)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate utterance", goerr.V("agent_role", d.AgentRole))
	}
	return text, nil
}

// Verdict asks the backend for the judgment of the finished debate
func (uc *DebateUseCase) Verdict(ctx context.Context, input *VerdictInput) (*model.Verdict, error) {
	if strings.TrimSpace(input.CaseDescription) == "" {
		return nil, goerr.Wrap(ErrMissingCaseDescription, "verdict needs a case description")
	}

	messages := input.Messages
	if messages == nil {
		messages = model.Transcript{}
	}

	verdict, err := uc.backend.Verdict(ctx, &model.VerdictRequest{
		CaseDescription: input.CaseDescription,
		Messages:        messages,
		Identity:        input.Identity.Normalize().String(),
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to generate verdict")
	}
	return verdict, nil
}

func (uc *DebateUseCase) Health(ctx context.Context) error {
	return uc.backend.Health(ctx)
}

func (uc *DebateUseCase) InitModel(ctx context.Context) (model.ModelStatus, error) {
	return uc.backend.InitModel(ctx)
}

func (uc *DebateUseCase) ModelStatus(ctx context.Context) (model.ModelStatus, error) {
	return uc.backend.ModelStatus(ctx)
}

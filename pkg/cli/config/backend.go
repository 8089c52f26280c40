package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/service/backend"
	"github.com/mootai/moot/pkg/service/llm"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// DefaultBackendURL is where the generation service listens by default
const DefaultBackendURL = "http://localhost:5000"

// Backend holds CLI flags selecting the generative backend
type Backend struct {
	kind    string
	url     string
	timeout time.Duration
	gemini  Gemini
}

// Flags returns CLI flags for backend configuration
func (x *Backend) Flags() []cli.Flag {
	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "backend",
			Usage:       "Generative backend (http or gemini)",
			Category:    "Backend",
			Value:       "http",
			Sources:     cli.EnvVars("MOOT_BACKEND"),
			Destination: &x.kind,
		},
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Base URL of the http generation service",
			Category:    "Backend",
			Value:       DefaultBackendURL,
			Sources:     cli.EnvVars("MOOT_BACKEND_URL"),
			Destination: &x.url,
		},
		&cli.DurationFlag{
			Name:        "backend-timeout",
			Usage:       "Per-request timeout of the http backend (0 for none)",
			Category:    "Backend",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("MOOT_BACKEND_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
	return append(flags, x.gemini.Flags()...)
}

// LogAttrs returns log attributes for the backend configuration
func (x *Backend) LogAttrs() []slog.Attr {
	attrs := []slog.Attr{
		slog.String("kind", x.kind),
		slog.String("url", x.url),
		slog.Duration("timeout", x.timeout),
	}
	if x.kind == "gemini" {
		attrs = append(attrs, slog.Attr{Key: "gemini", Value: slog.GroupValue(x.gemini.LogAttrs()...)})
	}
	return attrs
}

// Configure returns the backend selected by the flags
func (x *Backend) Configure(ctx context.Context) (interfaces.Backend, error) {
	switch x.kind {
	case "http", "":
		client, err := backend.New(x.url, backend.WithTimeout(x.timeout))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create backend client", goerr.V("url", x.url))
		}
		logging.Default().Info("Using HTTP generation backend", "url", x.url)
		return client, nil

	case "gemini":
		llmClient, err := x.gemini.Configure(ctx)
		if err != nil {
			return nil, err
		}
		if llmClient == nil {
			return nil, missingRequired("gemini-project", "gemini-project is required when using the gemini backend")
		}
		b, err := llm.New(llmClient, llm.WithProvider("gemini"))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create LLM backend")
		}
		logging.Default().Info("Using Gemini backend", "project_id", x.gemini.projectID)
		return b, nil

	default:
		return nil, unknownChoice("backend", x.kind)
	}
}

package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/cli/config"
	httpctrl "github.com/mootai/moot/pkg/controller/http"
	"github.com/mootai/moot/pkg/domain/interfaces"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/mootai/moot/pkg/utils/safe"
	"github.com/urfave/cli/v3"
)

func cmdCompile() *cli.Command {
	var input string
	var output string
	var owner string
	var send bool
	var storageCfg config.Storage
	var backendCfg config.Backend
	var policyCfg config.Policy

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Debate request JSON file (- for stdin)",
			Value:       "-",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Output file (- for stdout)",
			Value:       "-",
			Destination: &output,
		},
		&cli.StringFlag{
			Name:        "owner",
			Usage:       "Owner whose artifacts are resolved for fileNames",
			Value:       string(httpctrl.DefaultOwner),
			Sources:     cli.EnvVars("MOOT_ACCESS_OWNER"),
			Destination: &owner,
		},
		&cli.BoolFlag{
			Name:        "send",
			Usage:       "Send the directive to the backend and print the reply",
			Destination: &send,
		},
	}
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)

	return &cli.Command{
		Name:    "compile",
		Aliases: []string{"c"},
		Usage:   "Compile a debate request into a backend directive",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			req, err := readDebateRequest(input)
			if err != nil {
				return err
			}

			artifacts, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}
			defer func() {
				if err := artifacts.Close(); err != nil {
					logging.Default().Error("failed to close storage", "error", err.Error())
				}
			}()

			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load persona policy")
			}

			var be interfaces.Backend = offlineBackend{}
			if send {
				if be, err = backendCfg.Configure(ctx); err != nil {
					return goerr.Wrap(err, "failed to initialize backend")
				}
			}

			ucOpts := []usecase.Option{usecase.WithPolicy(table)}
			if artifacts.Index != nil {
				ucOpts = append(ucOpts, usecase.WithIndex(artifacts.Index))
			}
			uc := usecase.New(artifacts.Store, be, ucOpts...)
			debateReq := req.ToUseCase(model.OwnerID(owner))

			w, closeOutput, err := openOutput(output)
			if err != nil {
				return err
			}
			defer closeOutput()

			d, err := uc.Debate.Directive(ctx, debateReq)
			if err != nil {
				return goerr.Wrap(err, "failed to compile directive")
			}
			if err := printDirective(w, d); err != nil {
				return err
			}

			if !send {
				return nil
			}

			text, err := uc.Debate.Generate(ctx, debateReq)
			if err != nil {
				return goerr.Wrap(err, "failed to generate utterance")
			}
			_, _ = color.New(color.FgGreen, color.Bold).Fprintln(w, "# reply")
			_, err = fmt.Fprintln(w, text)
			return err
		},
	}
}

func readDebateRequest(path string) (*httpctrl.DebateRequest, error) {
	var r io.Reader = os.Stdin
	if path != "-" {
		// #nosec G304 - path is provided by CLI argument
		f, err := os.Open(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open debate request", goerr.V("path", path))
		}
		defer safe.Close(context.Background(), f)
		r = f
	}

	var req httpctrl.DebateRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, goerr.Wrap(err, "failed to decode debate request", goerr.V("path", path))
	}
	return &req, nil
}

func openOutput(path string) (io.Writer, func(), error) {
	if path == "-" || path == "" {
		return os.Stdout, func() {}, nil
	}
	// #nosec G304 - path is provided by CLI argument
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, goerr.Wrap(err, "failed to create output file", goerr.V("path", path))
	}
	return f, func() { safe.Close(context.Background(), f) }, nil
}

func printDirective(w io.Writer, d *model.Directive) error {
	_, _ = color.New(color.FgCyan, color.Bold).Fprintf(w, "# directive (policy %s)\n", d.SchemaVersion)

	body, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return goerr.Wrap(err, "failed to marshal directive")
	}
	_, err = fmt.Fprintln(w, string(body))
	return err
}

// offlineBackend refuses every call. compile only reaches a backend with
// --send.
type offlineBackend struct{}

var errOffline = goerr.Wrap(model.ErrBackendUnreachable, "no backend configured, use --send")

func (offlineBackend) Generate(context.Context, *model.Directive) (string, error) {
	return "", errOffline
}

func (offlineBackend) Summarize(context.Context, *model.SummaryRequest) (string, error) {
	return "", errOffline
}

func (offlineBackend) Verdict(context.Context, *model.VerdictRequest) (*model.Verdict, error) {
	return nil, errOffline
}

func (offlineBackend) Health(context.Context) error {
	return errOffline
}

func (offlineBackend) InitModel(context.Context) (model.ModelStatus, error) {
	return nil, errOffline
}

func (offlineBackend) ModelStatus(context.Context) (model.ModelStatus, error) {
	return nil, errOffline
}

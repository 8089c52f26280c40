package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/cli/config"
	httpctrl "github.com/mootai/moot/pkg/controller/http"
	"github.com/mootai/moot/pkg/service/worker"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/async"
	"github.com/mootai/moot/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe() *cli.Command {
	var addr string
	var parallelism int
	var maxUploadBytes int64
	var initModel bool
	var monitorInterval time.Duration
	var storageCfg config.Storage
	var backendCfg config.Backend
	var policyCfg config.Policy
	var accessCfg config.Access

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("MOOT_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "parallelism",
			Usage:       "Concurrent text extractions per request",
			Value:       usecase.DefaultParallelism,
			Sources:     cli.EnvVars("MOOT_PARALLELISM"),
			Destination: &parallelism,
		},
		&cli.Int64Flag{
			Name:        "max-upload-bytes",
			Usage:       "Maximum size of one upload request",
			Value:       httpctrl.DefaultMaxUploadBytes,
			Sources:     cli.EnvVars("MOOT_MAX_UPLOAD_BYTES"),
			Destination: &maxUploadBytes,
		},
		&cli.BoolFlag{
			Name:        "init-model",
			Usage:       "Ask the backend to load its model when the server starts",
			Sources:     cli.EnvVars("MOOT_INIT_MODEL"),
			Destination: &initModel,
		},
		&cli.DurationFlag{
			Name:        "monitor-interval",
			Usage:       "Interval of background backend health probes (0 disables)",
			Sources:     cli.EnvVars("MOOT_MONITOR_INTERVAL"),
			Destination: &monitorInterval,
		},
	}

	// Add shared config flags
	flags = append(flags, storageCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)
	flags = append(flags, policyCfg.Flags()...)
	flags = append(flags, accessCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			artifacts, err := storageCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize storage")
			}
			defer func() {
				if err := artifacts.Close(); err != nil {
					logging.Default().Error("failed to close storage", "error", err.Error())
				}
			}()

			be, err := backendCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize backend")
			}

			table, err := policyCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to load persona policy")
			}

			owner, err := accessCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure access")
			}

			ucOpts := []usecase.Option{
				usecase.WithPolicy(table),
				usecase.WithParallelism(parallelism),
			}
			if artifacts.Index != nil {
				ucOpts = append(ucOpts, usecase.WithIndex(artifacts.Index))
			}
			uc := usecase.New(artifacts.Store, be, ucOpts...)

			logging.Default().Info("Configuration loaded",
				group("storage", storageCfg.LogAttrs()),
				group("backend", backendCfg.LogAttrs()),
				group("policy", policyCfg.LogAttrs()),
				group("access", accessCfg.LogAttrs()),
				"policy_version", table.Version,
			)

			if initModel {
				async.Dispatch(ctx, func(ctx context.Context) error {
					status, err := uc.Debate.InitModel(ctx)
					if err != nil {
						return err
					}
					logging.From(ctx).Info("Backend model initialization requested", "status", string(status))
					return nil
				})
			}

			httpOpts := []httpctrl.Options{
				httpctrl.WithOwnerResolver(owner),
				httpctrl.WithMaxUploadBytes(maxUploadBytes),
			}
			if monitorInterval > 0 {
				monitor := worker.NewBackendMonitor(be, monitorInterval)
				if err := monitor.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start backend monitor")
				}
				defer monitor.Stop()
				httpOpts = append(httpOpts, httpctrl.WithBackendMonitor(monitor))
			}

			httpHandler := httpctrl.New(uc, httpOpts...)
			server := &http.Server{
				Addr:              addr,
				Handler:           httpHandler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server", "addr", addr)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

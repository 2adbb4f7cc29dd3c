package cli

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/doowon-lab/dwportal/pkg/cli/config"
	httpctrl "github.com/doowon-lab/dwportal/pkg/controller/http"
	"github.com/doowon-lab/dwportal/pkg/usecase"
	"github.com/doowon-lab/dwportal/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var storeCfg config.Store
	var trackerCfg config.Tracker

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("DWPORTAL_ADDR"),
			Destination: &addr,
		},
	}
	flags = append(flags, storeCfg.Flags()...)
	flags = append(flags, trackerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			repo, err := storeCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize field config store")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close field config store", "error", err.Error())
				}
			}()

			tracker, err := trackerCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure tracker client")
			}

			uc := usecase.New(repo, tracker)

			handler, err := httpctrl.New(uc, tracker)
			if err != nil {
				return goerr.Wrap(err, "failed to create http server")
			}
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

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

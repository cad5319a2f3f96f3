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

	"github.com/remedios-lab/remedios/pkg/cli/config"
	httpctrl "github.com/remedios-lab/remedios/pkg/controller/http"
	"github.com/remedios-lab/remedios/pkg/service/worker"
	"github.com/remedios-lab/remedios/pkg/usecase"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

func cmdServe() *cli.Command {
	var addr string
	var configPath string
	var repoCfg config.Repository
	var dialogflowCfg config.Dialogflow
	var messengerCfg config.Messenger

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("REMEDIOS_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "config",
			Usage:       "Path to TOML tuning file (optional)",
			Sources:     cli.EnvVars("REMEDIOS_CONFIG"),
			Destination: &configPath,
		},
	}

	// Add shared config flags
	flags = append(flags, repoCfg.Flags()...)
	flags = append(flags, dialogflowCfg.Flags()...)
	flags = append(flags, messengerCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start webhook server and reminder scheduler",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			appCfg, err := config.LoadAppConfig(configPath)
			if err != nil {
				return goerr.Wrap(err, "failed to load app configuration")
			}

			repo, err := repoCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to initialize repository")
			}
			defer func() {
				if err := repo.Close(); err != nil {
					logging.Default().Error("failed to close repository", "error", err.Error())
				}
			}()

			resolver, err := dialogflowCfg.Configure(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to configure intent resolution")
			}

			notifier, err := messengerCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "failed to configure messenger")
			}

			uc := usecase.New(repo, resolver, notifier,
				usecase.WithFailureReply(appCfg.Dialog.FailureReply),
			)

			poller := worker.NewReminderPoller(repo, notifier, appCfg.Scheduler.PollInterval.Std())
			if err := poller.Start(ctx); err != nil {
				return goerr.Wrap(err, "failed to start reminder poller")
			}

			reaper := worker.NewSessionReaper(repo, appCfg.Scheduler.ReapInterval.Std(), appCfg.Scheduler.SessionTTL.Std())
			if err := reaper.Start(ctx); err != nil {
				poller.Stop()
				return goerr.Wrap(err, "failed to start session reaper")
			}

			httpOpts := []httpctrl.Options{}
			if secret := messengerCfg.AppSecret(); secret != "" {
				httpOpts = append(httpOpts, httpctrl.WithAppSecret(secret))
			} else {
				logging.Default().Warn("Webhook signature verification disabled (no app secret)")
			}

			handler := httpctrl.New(uc, messengerCfg.VerifyToken(), httpOpts...)
			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"poll_interval", appCfg.Scheduler.PollInterval.Std(),
					"reap_interval", appCfg.Scheduler.ReapInterval.Std(),
					"session_ttl", appCfg.Scheduler.SessionTTL.Std(),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			select {
			case err := <-errCh:
				poller.Stop()
				reaper.Stop()
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				// Stop background workers before refusing new requests so
				// an in-flight poll finishes cleanly
				poller.Stop()
				reaper.Stop()

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

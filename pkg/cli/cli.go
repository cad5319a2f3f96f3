package cli

import (
	"context"

	"github.com/remedios-lab/remedios/pkg/cli/config"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func Run(ctx context.Context, args []string, version string) error {
	var loggerCfg config.Logger
	var sentryCfg config.Sentry
	var closers []func()

	flags := loggerCfg.Flags()
	flags = append(flags, sentryCfg.Flags()...)

	app := &cli.Command{
		Name:    "remedios",
		Usage:   "Recurring medicine reminder bot",
		Version: version,
		Flags:   flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			logCloser, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closers = append(closers, logCloser)

			sentryCloser, err := sentryCfg.Configure(version)
			if err != nil {
				return ctx, err
			}
			closers = append(closers, sentryCloser)

			logging.Default().Info("Starting remedios", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			for _, closer := range closers {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdMigrate(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}

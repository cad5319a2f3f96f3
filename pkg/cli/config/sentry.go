package config

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

// Sentry holds CLI flags for error tracking
type Sentry struct {
	dsn string
	env string
}

// Flags returns CLI flags for Sentry configuration
func (s *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "sentry-dsn",
			Usage:       "Sentry DSN (error tracking disabled when empty)",
			Sources:     cli.EnvVars("REMEDIOS_SENTRY_DSN"),
			Destination: &s.dsn,
		},
		&cli.StringFlag{
			Name:        "sentry-env",
			Usage:       "Sentry environment name",
			Sources:     cli.EnvVars("REMEDIOS_SENTRY_ENV"),
			Destination: &s.env,
		},
	}
}

// Configure initializes the Sentry client when a DSN is set. The returned
// closer flushes buffered events.
func (s *Sentry) Configure(release string) (func(), error) {
	if s.dsn == "" {
		return func() {}, nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         s.dsn,
		Environment: s.env,
		Release:     release,
	}); err != nil {
		return nil, goerr.Wrap(err, "failed to initialize sentry")
	}

	logging.Default().Info("Sentry error tracking enabled", "env", s.env)
	return func() {
		sentry.Flush(2 * time.Second)
	}, nil
}

package config

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/service/messenger"
	"github.com/urfave/cli/v3"
)

// Messenger holds CLI flags for the messaging platform credentials
type Messenger struct {
	pageToken   string
	verifyToken string
	appSecret   string
}

// Flags returns CLI flags for Messenger configuration
func (m *Messenger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "messenger-page-token",
			Usage:       "Page access token for the Send API (required)",
			Sources:     cli.EnvVars("REMEDIOS_MESSENGER_PAGE_TOKEN"),
			Destination: &m.pageToken,
		},
		&cli.StringFlag{
			Name:        "messenger-verify-token",
			Usage:       "Webhook subscription verify token (required)",
			Sources:     cli.EnvVars("REMEDIOS_MESSENGER_VERIFY_TOKEN"),
			Destination: &m.verifyToken,
		},
		&cli.StringFlag{
			Name:        "messenger-app-secret",
			Usage:       "App secret for webhook payload signature verification",
			Sources:     cli.EnvVars("REMEDIOS_MESSENGER_APP_SECRET"),
			Destination: &m.appSecret,
		},
	}
}

// VerifyToken returns the webhook subscription verify token
func (m *Messenger) VerifyToken() string {
	return m.verifyToken
}

// AppSecret returns the webhook signature secret
func (m *Messenger) AppSecret() string {
	return m.appSecret
}

// Configure builds the Send API client.
func (m *Messenger) Configure() (messenger.Service, error) {
	if m.verifyToken == "" {
		return nil, goerr.New("messenger-verify-token is required")
	}

	svc, err := messenger.New(m.pageToken)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize messenger client")
	}
	return svc, nil
}

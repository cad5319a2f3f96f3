package config

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/service/dialogflow"
	"github.com/urfave/cli/v3"
)

// Dialogflow holds CLI flags for the intent resolution agent
type Dialogflow struct {
	projectID       string
	credentialsFile string
	language        string
}

// Flags returns CLI flags for Dialogflow configuration
func (d *Dialogflow) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "dialogflow-project-id",
			Usage:       "Dialogflow agent project ID (required)",
			Sources:     cli.EnvVars("REMEDIOS_DIALOGFLOW_PROJECT_ID"),
			Destination: &d.projectID,
		},
		&cli.StringFlag{
			Name:        "dialogflow-credentials-file",
			Usage:       "Service account credentials file for the Dialogflow API",
			Sources:     cli.EnvVars("REMEDIOS_DIALOGFLOW_CREDENTIALS_FILE"),
			Destination: &d.credentialsFile,
		},
		&cli.StringFlag{
			Name:        "dialogflow-language",
			Usage:       "Query language code",
			Value:       "en",
			Sources:     cli.EnvVars("REMEDIOS_DIALOGFLOW_LANGUAGE"),
			Destination: &d.language,
		},
	}
}

// Configure builds the Dialogflow intent resolver.
func (d *Dialogflow) Configure(ctx context.Context) (dialogflow.Service, error) {
	if d.projectID == "" {
		return nil, goerr.New("dialogflow-project-id is required")
	}

	opts := []dialogflow.Option{
		dialogflow.WithLanguage(d.language),
	}
	if d.credentialsFile != "" {
		opts = append(opts, dialogflow.WithCredentialsFile(d.credentialsFile))
	}

	svc, err := dialogflow.New(ctx, d.projectID, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize dialogflow client")
	}
	return svc, nil
}

package dialogflow

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	df "google.golang.org/api/dialogflow/v2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DefaultLanguageCode is the query language sent to the agent
const DefaultLanguageCode = "en-US"

// client implements Service on the Dialogflow ES detectIntent API
type client struct {
	svc       *df.Service
	projectID string
	language  string

	clientOpts []option.ClientOption
}

// Option is a functional option for client configuration
type Option func(*client)

// WithLanguage sets the query language code
func WithLanguage(code string) Option {
	return func(c *client) {
		c.language = code
	}
}

// WithCredentialsFile points the client at a service account key file.
// Application default credentials are used otherwise.
func WithCredentialsFile(path string) Option {
	return func(c *client) {
		c.clientOpts = append(c.clientOpts, option.WithCredentialsFile(path))
	}
}

// New creates a Dialogflow-backed Service for the given agent project
func New(ctx context.Context, projectID string, opts ...Option) (Service, error) {
	if projectID == "" {
		return nil, goerr.New("dialogflow project ID is required")
	}

	c := &client{
		projectID: projectID,
		language:  DefaultLanguageCode,
	}

	for _, opt := range opts {
		opt(c)
	}

	svc, err := df.NewService(ctx, c.clientOpts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create dialogflow service", goerr.V("projectID", projectID))
	}
	c.svc = svc

	return c, nil
}

func (c *client) sessionPath(sessionID types.SessionID) string {
	return fmt.Sprintf("projects/%s/agent/sessions/%s", c.projectID, sessionID)
}

// Resolve sends the text to the agent and maps the query result into the
// domain shape. A query that matches no intent returns the empty-intent
// sentinel, not an error.
func (c *client) Resolve(ctx context.Context, text string, sessionID types.SessionID) (*model.ResolvedIntent, error) {
	req := &df.GoogleCloudDialogflowV2DetectIntentRequest{
		QueryInput: &df.GoogleCloudDialogflowV2QueryInput{
			Text: &df.GoogleCloudDialogflowV2TextInput{
				Text:         text,
				LanguageCode: c.language,
			},
		},
	}

	resp, err := c.svc.Projects.Agent.Sessions.DetectIntent(c.sessionPath(sessionID), req).Context(ctx).Do()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to detect intent", goerr.V("sessionID", sessionID))
	}

	qr := resp.QueryResult
	if qr == nil || qr.Intent == nil {
		return model.NoIntent(), nil
	}

	fields, err := parseParameters(qr.Parameters)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse intent parameters",
			goerr.V("intent", qr.Intent.DisplayName))
	}

	resolved := &model.ResolvedIntent{
		Intent:   types.Intent(qr.Intent.DisplayName),
		Response: qr.FulfillmentText,
		Fields:   fields,
	}

	// The agent echoes the period back to the user; round the echoed value
	// to two decimals. Display concern only.
	if resolved.Intent == types.IntentSetReminder {
		if f := resolved.Fields.Get(model.ParamNumber); f.Kind == model.FieldNumber {
			resolved.Fields[model.ParamNumber] = f.Rounded(2)
		}
	}

	return resolved, nil
}

// parseParameters maps the protobuf Struct parameters into the Field sum
// type. Only string and number kinds are meaningful to the dialogue flow;
// anything else is dropped and handled as missing downstream.
func parseParameters(raw googleapi.RawMessage) (model.Fields, error) {
	fields := model.Fields{}
	if len(raw) == 0 {
		return fields, nil
	}

	var params map[string]any
	if err := json.Unmarshal(raw, &params); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal parameters")
	}

	for name, value := range params {
		switch v := value.(type) {
		case string:
			if v != "" {
				fields[name] = model.StringField(v)
			}
		case float64:
			fields[name] = model.NumberField(v)
		}
	}

	return fields, nil
}

package messenger

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/url"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"github.com/remedios-lab/remedios/pkg/utils/safe"
)

// DefaultEndpoint is the Graph API Send endpoint
const DefaultEndpoint = "https://graph.facebook.com/v19.0/me/messages"

// Service delivers a text message to a user. Delivery is fire-and-forget
// from the core's perspective; retry semantics belong to the platform.
type Service interface {
	Send(ctx context.Context, userID types.UserID, text string) error
}

// client implements Service on the Messenger Send API
type client struct {
	httpClient *http.Client
	endpoint   string
	pageToken  string
}

// Option is a functional option for client configuration
type Option func(*client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(hc *http.Client) Option {
	return func(c *client) {
		c.httpClient = hc
	}
}

// WithEndpoint overrides the Send API endpoint, used in tests
func WithEndpoint(endpoint string) Option {
	return func(c *client) {
		c.endpoint = endpoint
	}
}

// New creates a Messenger service with the provided page access token
func New(pageToken string, opts ...Option) (Service, error) {
	if pageToken == "" {
		return nil, goerr.New("messenger page access token is required")
	}

	c := &client{
		httpClient: http.DefaultClient,
		endpoint:   DefaultEndpoint,
		pageToken:  pageToken,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// sendRequest is the Send API payload
type sendRequest struct {
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Message struct {
		Text string `json:"text"`
	} `json:"message"`
}

// graphError is the error envelope the Graph API returns with 2xx-adjacent
// failures
type graphError struct {
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    int    `json:"code"`
	} `json:"error"`
}

func (c *client) Send(ctx context.Context, userID types.UserID, text string) error {
	var payload sendRequest
	payload.Recipient.ID = string(userID)
	payload.Message.Text = text

	body, err := json.Marshal(payload)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal send request")
	}

	u, err := url.Parse(c.endpoint)
	if err != nil {
		return goerr.Wrap(err, "invalid send endpoint", goerr.V("endpoint", c.endpoint))
	}
	q := u.Query()
	q.Set("access_token", c.pageToken)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u.String(), bytes.NewReader(body))
	if err != nil {
		return goerr.Wrap(err, "failed to build send request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return goerr.Wrap(err, "failed to call send API", goerr.V("userID", userID))
	}
	defer safe.Close(ctx, resp.Body)

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return goerr.Wrap(err, "failed to read send API response")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return goerr.New("send API returned non-2xx status",
			goerr.V("status", resp.StatusCode),
			goerr.V("body", string(respBody)),
		)
	}

	var ge graphError
	if err := json.Unmarshal(respBody, &ge); err == nil && ge.Error != nil {
		return goerr.New("send API returned an error",
			goerr.V("message", ge.Error.Message),
			goerr.V("type", ge.Error.Type),
			goerr.V("code", ge.Error.Code),
		)
	}

	return nil
}

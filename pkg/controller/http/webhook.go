package http

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"github.com/remedios-lab/remedios/pkg/utils/async"
	"github.com/remedios-lab/remedios/pkg/utils/errutil"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
	"github.com/remedios-lab/remedios/pkg/utils/safe"
)

// webhookEvent is the page event envelope delivered to the webhook.
type webhookEvent struct {
	Object string         `json:"object"`
	Entry  []webhookEntry `json:"entry"`
}

type webhookEntry struct {
	ID        string             `json:"id"`
	Time      int64              `json:"time"`
	Messaging []messagingPayload `json:"messaging"`
}

type messagingPayload struct {
	Sender struct {
		ID string `json:"id"`
	} `json:"sender"`
	Recipient struct {
		ID string `json:"id"`
	} `json:"recipient"`
	Timestamp int64 `json:"timestamp"`
	Message   struct {
		MID  string `json:"mid"`
		Text string `json:"text"`
	} `json:"message"`
}

// handleVerify answers the platform's subscription handshake: echo the
// challenge when the verify token matches, refuse otherwise.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	mode := q.Get("hub.mode")
	token := q.Get("hub.verify_token")
	challenge := q.Get("hub.challenge")

	if mode != "subscribe" || token != s.verifyToken {
		logging.From(r.Context()).Warn("webhook verification refused", "mode", mode)
		http.Error(w, "Forbidden", http.StatusForbidden)
		return
	}

	w.WriteHeader(http.StatusOK)
	safe.Write(r.Context(), w, []byte(challenge))
}

// verifySignature checks the payload signature header against an HMAC-SHA256
// of the body keyed with the app secret.
func verifySignature(appSecret, header string, body []byte) error {
	if header == "" {
		return goerr.New("missing signature header")
	}

	signature, ok := strings.CutPrefix(header, "sha256=")
	if !ok {
		return goerr.New("malformed signature header")
	}

	mac := hmac.New(sha256.New, []byte(appSecret))
	if _, err := mac.Write(body); err != nil {
		return goerr.Wrap(err, "failed to compute HMAC")
	}
	expected := hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(expected), []byte(signature)) {
		return goerr.New("signature mismatch")
	}

	return nil
}

// SignatureMiddleware verifies X-Hub-Signature-256 on webhook deliveries.
// An empty app secret disables verification.
func SignatureMiddleware(appSecret string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()

			body, err := io.ReadAll(r.Body)
			if err != nil {
				errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
				return
			}
			safe.Close(ctx, r.Body)

			if appSecret != "" {
				header := r.Header.Get("X-Hub-Signature-256")
				if err := verifySignature(appSecret, header, body); err != nil {
					errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "webhook signature verification failed"), http.StatusUnauthorized)
					return
				}
			}

			r.Body = io.NopCloser(bytes.NewBuffer(body))
			next.ServeHTTP(w, r)
		})
	}
}

// handleEvent accepts page webhook deliveries. It acknowledges immediately
// and processes each text message in the background so slow downstream calls
// cannot trip the platform's delivery timeout.
func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to read request body"), http.StatusBadRequest)
		return
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to parse webhook event"), http.StatusBadRequest)
		return
	}

	if event.Object != "page" {
		logging.From(ctx).Warn("unknown webhook object", "object", event.Object)
		http.NotFound(w, r)
		return
	}

	w.WriteHeader(http.StatusOK)
	safe.Write(ctx, w, []byte("EVENT_RECEIVED"))

	for _, entry := range event.Entry {
		for _, msg := range entry.Messaging {
			userID := types.UserID(msg.Sender.ID)
			text := msg.Message.Text
			if userID == "" || text == "" {
				continue
			}

			async.Dispatch(ctx, func(ctx context.Context) error {
				if err := s.uc.Conversation.HandleMessage(ctx, userID, text); err != nil {
					return goerr.Wrap(err, "failed to handle message", goerr.V("userID", userID))
				}
				return nil
			})
		}
	}
}

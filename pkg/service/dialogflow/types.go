package dialogflow

import (
	"context"

	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// Service resolves free-form user text into an intent with typed parameters.
// The session ID correlates consecutive messages so the agent can carry
// multi-turn context (follow-up and confirmation intents).
type Service interface {
	Resolve(ctx context.Context, text string, sessionID types.SessionID) (*model.ResolvedIntent, error)
}

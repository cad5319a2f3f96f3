package model

import "github.com/remedios-lab/remedios/pkg/domain/types"

// Parameter names the NLU agent uses for the reminder intents
const (
	ParamMedicine      = "medicine"
	ParamNumber        = "number"
	ParamTimeFrequency = "timefrequency"
	ParamTime          = "time"
)

// ResolvedIntent is the NLU collaborator's verdict on one user message: the
// matched intent (IntentNone when nothing matched), the agent-composed reply
// text, and the loosely-typed parameter fields.
type ResolvedIntent struct {
	Intent   types.Intent
	Response string
	Fields   Fields
}

// NoIntent returns the empty-intent sentinel
func NoIntent() *ResolvedIntent {
	return &ResolvedIntent{Intent: types.IntentNone, Fields: Fields{}}
}

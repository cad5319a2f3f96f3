package types

// DialogStage is the explicit state of a multi-turn dialogue session
type DialogStage string

const (
	// StageCollecting is the initial stage: the session is still
	// accumulating reminder parameters.
	StageCollecting DialogStage = "collecting"

	// StageAwaitingConfirmation means a set-reminder flow is waiting for
	// the user to confirm before the reminder is persisted.
	StageAwaitingConfirmation DialogStage = "awaiting_confirmation"

	// StageAwaitingDeleteConfirmation means a delete-reminder flow is
	// waiting for the user to confirm before matching reminders are removed.
	StageAwaitingDeleteConfirmation DialogStage = "awaiting_delete_confirmation"
)

// IsValid checks if the dialog stage is valid
func (s DialogStage) IsValid() bool {
	switch s {
	case StageCollecting,
		StageAwaitingConfirmation,
		StageAwaitingDeleteConfirmation:
		return true
	default:
		return false
	}
}

// Normalize returns the stage, treating empty as StageCollecting
func (s DialogStage) Normalize() DialogStage {
	if s == "" {
		return StageCollecting
	}
	return s
}

// String returns the string representation of the dialog stage
func (s DialogStage) String() string {
	return string(s)
}

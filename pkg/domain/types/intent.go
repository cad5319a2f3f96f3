package types

// Intent is a classified user intention resolved by the NLU collaborator.
// The values are the agent's intent display names.
type Intent string

const (
	// IntentNone is the empty-intent sentinel returned when no intent matched
	IntentNone Intent = ""

	IntentSetReminder        Intent = "Set Medicine Reminder"
	IntentSetReminderTime    Intent = "Set Medicine Reminder - Time"
	IntentSetReminderYes     Intent = "Set Medicine Reminder - yes"
	IntentSetReminderTimeYes Intent = "Set Medicine Reminder - Time - yes"
	IntentDeleteReminder     Intent = "Delete Medicine Reminder"
	IntentDeleteReminderYes  Intent = "Delete Medicine Reminder - yes"
)

// AllIntents returns the intents the dialogue state machine handles
func AllIntents() []Intent {
	return []Intent{
		IntentSetReminder,
		IntentSetReminderTime,
		IntentSetReminderYes,
		IntentSetReminderTimeYes,
		IntentDeleteReminder,
		IntentDeleteReminderYes,
	}
}

// Known checks if the intent is one the dialogue state machine handles.
// Unknown intents abandon the current dialogue.
func (i Intent) Known() bool {
	switch i {
	case IntentSetReminder,
		IntentSetReminderTime,
		IntentSetReminderYes,
		IntentSetReminderTimeYes,
		IntentDeleteReminder,
		IntentDeleteReminderYes:
		return true
	default:
		return false
	}
}

// IsConfirmation checks if the intent confirms a pending multi-turn flow
func (i Intent) IsConfirmation() bool {
	switch i {
	case IntentSetReminderYes, IntentSetReminderTimeYes, IntentDeleteReminderYes:
		return true
	default:
		return false
	}
}

// String returns the string representation of the intent
func (i Intent) String() string {
	return string(i)
}

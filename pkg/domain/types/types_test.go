package types_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

func TestRecurrenceUnit(t *testing.T) {
	for _, unit := range types.AllRecurrenceUnits() {
		gt.Bool(t, unit.IsValid()).True()
	}
	gt.Bool(t, types.RecurrenceUnit("fortnights").IsValid()).False()
	gt.Bool(t, types.RecurrenceUnit("Days").IsValid()).False()

	gt.Value(t, types.RecurrenceUnit("").Normalize()).Equal(types.UnitDays)
	gt.Value(t, types.UnitHours.Normalize()).Equal(types.UnitHours)
}

func TestIntent(t *testing.T) {
	for _, intent := range types.AllIntents() {
		gt.Bool(t, intent.Known()).True()
	}
	gt.Bool(t, types.IntentNone.Known()).False()
	gt.Bool(t, types.Intent("smalltalk.greetings").Known()).False()

	gt.Bool(t, types.IntentSetReminderYes.IsConfirmation()).True()
	gt.Bool(t, types.IntentSetReminderTimeYes.IsConfirmation()).True()
	gt.Bool(t, types.IntentDeleteReminderYes.IsConfirmation()).True()
	gt.Bool(t, types.IntentSetReminder.IsConfirmation()).False()
}

func TestDialogStage(t *testing.T) {
	gt.Bool(t, types.StageCollecting.IsValid()).True()
	gt.Bool(t, types.StageAwaitingConfirmation.IsValid()).True()
	gt.Bool(t, types.StageAwaitingDeleteConfirmation.IsValid()).True()
	gt.Bool(t, types.DialogStage("confirmed").IsValid()).False()

	gt.Value(t, types.DialogStage("").Normalize()).Equal(types.StageCollecting)
}

func TestUserIDValidate(t *testing.T) {
	gt.NoError(t, types.UserID("user-1").Validate())
	gt.Error(t, types.UserID("").Validate())
}

func TestNewIDs(t *testing.T) {
	gt.String(t, types.NewReminderID().String()).NotEqual("")
	gt.String(t, types.NewSessionID().String()).NotEqual("")
	gt.Value(t, types.NewSessionID()).NotEqual(types.NewSessionID())
}

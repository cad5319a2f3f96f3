package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/jmhodges/clock"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"github.com/remedios-lab/remedios/pkg/repository/memory"
	"github.com/remedios-lab/remedios/pkg/usecase"
)

type fakeResolver struct {
	results  []*model.ResolvedIntent
	err      error
	sessions []types.SessionID
}

func (f *fakeResolver) Resolve(ctx context.Context, text string, sessionID types.SessionID) (*model.ResolvedIntent, error) {
	f.sessions = append(f.sessions, sessionID)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.results) == 0 {
		return model.NoIntent(), nil
	}
	next := f.results[0]
	f.results = f.results[1:]
	return next, nil
}

type sentMessage struct {
	userID types.UserID
	text   string
}

type fakeNotifier struct {
	sent []sentMessage
	err  error
}

func (f *fakeNotifier) Send(ctx context.Context, userID types.UserID, text string) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, sentMessage{userID: userID, text: text})
	return nil
}

// failingReminderRepo breaks Create to exercise the failure reply path.
type failingReminderRepo struct {
	interfaces.ReminderRepository
}

func (r *failingReminderRepo) Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error) {
	return nil, goerr.New("storage unavailable")
}

type failingRepo struct {
	interfaces.Repository
}

func (r *failingRepo) Reminder() interfaces.ReminderRepository {
	return &failingReminderRepo{ReminderRepository: r.Repository.Reminder()}
}

func newFakeClock(t time.Time) clock.FakeClock {
	clk := clock.NewFake()
	clk.Set(t)
	return clk
}

func TestConversationSetFlow(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := memory.New()
	resolver := &fakeResolver{
		results: []*model.ResolvedIntent{
			{
				Intent:   types.IntentSetReminder,
				Response: "You want a reminder to take Vitamin D every 1 days, right?",
				Fields: model.Fields{
					model.ParamMedicine:      model.StringField("Vitamin D"),
					model.ParamNumber:        model.NumberField(1),
					model.ParamTimeFrequency: model.StringField("days"),
				},
			},
			{
				Intent:   types.IntentSetReminderYes,
				Response: "Great, I will remind you.",
			},
		},
	}
	notifier := &fakeNotifier{}
	uc := usecase.New(repo, resolver, notifier, usecase.WithClock(newFakeClock(now)))
	ctx := context.Background()

	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "Remind me to take Vitamin D every day")).Required()

	session, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, session).NotNil().Required()
	gt.Value(t, session.SubjectName).Equal("Vitamin D")
	gt.Value(t, session.Stage).Equal(types.StageAwaitingConfirmation)

	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "yes")).Required()

	// Both turns ran against the same session.
	gt.Array(t, resolver.sessions).Length(2)
	gt.Value(t, resolver.sessions[0]).Equal(resolver.sessions[1])

	reminders, err := repo.Reminder().ListByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Array(t, reminders).Length(1).Required()
	gt.Value(t, reminders[0].SubjectName).Equal("Vitamin D")
	gt.Bool(t, reminders[0].NextFireAt.Equal(now.AddDate(0, 0, 1))).True()

	ended, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, ended).Nil()

	gt.Array(t, notifier.sent).Length(2).Required()
	gt.Value(t, notifier.sent[0].text).Equal("You want a reminder to take Vitamin D every 1 days, right?")
	gt.Value(t, notifier.sent[1].text).Equal("Great, I will remind you.")
}

func TestConversationDeleteFlow(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := memory.New()
	ctx := context.Background()

	for _, subject := range []string{"Vitamin D", "Vitamin D", "Aspirin"} {
		_, err := repo.Reminder().Create(ctx, &model.Reminder{
			UserID:      "user-1",
			SubjectName: subject,
			AnchorTime:  now,
			NextFireAt:  now.AddDate(0, 0, 1),
			Period:      1,
			Unit:        types.UnitDays,
		})
		gt.NoError(t, err).Required()
	}

	resolver := &fakeResolver{
		results: []*model.ResolvedIntent{
			{
				Intent:   types.IntentDeleteReminder,
				Response: "Do you really want to delete reminders for Vitamin D?",
				Fields: model.Fields{
					model.ParamMedicine: model.StringField("Vitamin D"),
				},
			},
			{
				Intent:   types.IntentDeleteReminderYes,
				Response: "Done, reminders deleted.",
			},
		},
	}
	notifier := &fakeNotifier{}
	uc := usecase.New(repo, resolver, notifier, usecase.WithClock(newFakeClock(now)))

	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "Delete my Vitamin D reminders")).Required()
	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "yes")).Required()

	reminders, err := repo.Reminder().ListByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Array(t, reminders).Length(1).Required()
	gt.Value(t, reminders[0].SubjectName).Equal("Aspirin")

	ended, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, ended).Nil()
}

func TestConversationEmptyReply(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := memory.New()
	resolver := &fakeResolver{}
	notifier := &fakeNotifier{}
	uc := usecase.New(repo, resolver, notifier, usecase.WithClock(newFakeClock(now)))
	ctx := context.Background()

	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "mumble")).Required()

	// Nothing to say, nothing dispatched. The abandoned session is gone.
	gt.Array(t, notifier.sent).Length(0)
	ended, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, ended).Nil()
}

func TestConversationStoreFailure(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := &failingRepo{Repository: memory.New()}
	resolver := &fakeResolver{
		results: []*model.ResolvedIntent{
			{
				Intent:   types.IntentSetReminderYes,
				Response: "Great, I will remind you.",
			},
		},
	}
	notifier := &fakeNotifier{}
	uc := usecase.New(repo, resolver, notifier, usecase.WithClock(newFakeClock(now)))
	ctx := context.Background()

	_, err := repo.Session().Create(ctx, &model.Session{
		UserID:      "user-1",
		Stage:       types.StageAwaitingConfirmation,
		SubjectName: "Vitamin D",
		Time:        now,
		Period:      1,
		Unit:        types.UnitDays,
		CreatedAt:   now,
	})
	gt.NoError(t, err).Required()

	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "yes")).Required()

	// The user hears about the failure instead of a false confirmation.
	gt.Array(t, notifier.sent).Length(1).Required()
	gt.Value(t, notifier.sent[0].text).Equal(usecase.DefaultFailureReply)

	// The dialogue still ends so the user is not stuck mid-flow.
	ended, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, ended).Nil()
}

func TestConversationDispatchFailure(t *testing.T) {
	now := time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)
	repo := memory.New()
	resolver := &fakeResolver{
		results: []*model.ResolvedIntent{
			{
				Intent:   types.IntentSetReminder,
				Response: "You want a reminder, right?",
				Fields: model.Fields{
					model.ParamMedicine: model.StringField("Vitamin D"),
				},
			},
		},
	}
	notifier := &fakeNotifier{err: goerr.New("messenger unreachable")}
	uc := usecase.New(repo, resolver, notifier, usecase.WithClock(newFakeClock(now)))
	ctx := context.Background()

	// Dispatch failures are logged, not returned, and the session change
	// still sticks.
	gt.NoError(t, uc.Conversation.HandleMessage(ctx, "user-1", "Remind me")).Required()

	session, err := repo.Session().GetLatestByUser(ctx, "user-1")
	gt.NoError(t, err).Required()
	gt.Value(t, session).NotNil().Required()
	gt.Value(t, session.Stage).Equal(types.StageAwaitingConfirmation)
}

func TestConversationRejectsEmptyUser(t *testing.T) {
	repo := memory.New()
	uc := usecase.New(repo, &fakeResolver{}, &fakeNotifier{})

	gt.Error(t, uc.Conversation.HandleMessage(context.Background(), "", "hello"))
}

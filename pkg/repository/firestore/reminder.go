package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const reminderCollection = "reminders"

// reminderDoc is the Firestore document representation of model.Reminder
type reminderDoc struct {
	ID          string    `firestore:"ID"`
	UserID      string    `firestore:"UserID"`
	SubjectName string    `firestore:"SubjectName"`
	AnchorTime  time.Time `firestore:"AnchorTime"`
	NextFireAt  time.Time `firestore:"NextFireAt"`
	Period      float64   `firestore:"Period"`
	Unit        string    `firestore:"Unit"`
}

func toReminderDoc(r *model.Reminder) *reminderDoc {
	return &reminderDoc{
		ID:          string(r.ID),
		UserID:      string(r.UserID),
		SubjectName: r.SubjectName,
		AnchorTime:  r.AnchorTime,
		NextFireAt:  r.NextFireAt,
		Period:      r.Period,
		Unit:        string(r.Unit),
	}
}

func fromReminderDoc(d *reminderDoc) *model.Reminder {
	return &model.Reminder{
		ID:          types.ReminderID(d.ID),
		UserID:      types.UserID(d.UserID),
		SubjectName: d.SubjectName,
		AnchorTime:  d.AnchorTime,
		NextFireAt:  d.NextFireAt,
		Period:      d.Period,
		Unit:        types.RecurrenceUnit(d.Unit),
	}
}

type reminderRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReminderRepository(client *firestore.Client) *reminderRepository {
	return &reminderRepository{client: client}
}

func (r *reminderRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + reminderCollection)
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error) {
	if err := reminder.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid reminder")
	}

	created := *reminder
	if created.ID == "" {
		created.ID = types.NewReminderID()
	}

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toReminderDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create reminder", goerr.V("id", created.ID))
	}

	return &created, nil
}

func (r *reminderRepository) Get(ctx context.Context, id types.ReminderID) (*model.Reminder, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "reminder not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get reminder", goerr.V("id", id))
	}

	var d reminderDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal reminder", goerr.V("id", id))
	}

	return fromReminderDoc(&d), nil
}

func (r *reminderRepository) ListDue(ctx context.Context, t time.Time) ([]*model.Reminder, error) {
	iter := r.collection().Where("NextFireAt", "<=", t).Documents(ctx)
	defer iter.Stop()

	reminders := make([]*model.Reminder, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate due reminders")
		}

		var d reminderDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal reminder")
		}

		reminders = append(reminders, fromReminderDoc(&d))
	}

	return reminders, nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Reminder, error) {
	iter := r.collection().Where("UserID", "==", string(userID)).Documents(ctx)
	defer iter.Stop()

	reminders := make([]*model.Reminder, 0)
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reminders", goerr.V("userID", userID))
		}

		var d reminderDoc
		if err := doc.DataTo(&d); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal reminder")
		}

		reminders = append(reminders, fromReminderDoc(&d))
	}

	return reminders, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	docRef := r.collection().Doc(string(reminder.ID))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "reminder not found", goerr.V("id", reminder.ID))
		}
		return goerr.Wrap(err, "failed to get reminder", goerr.V("id", reminder.ID))
	}

	if _, err := docRef.Set(ctx, toReminderDoc(reminder)); err != nil {
		return goerr.Wrap(err, "failed to update reminder", goerr.V("id", reminder.ID))
	}

	return nil
}

func (r *reminderRepository) DeleteByUserAndSubject(ctx context.Context, userID types.UserID, subjectName string) (int, error) {
	iter := r.collection().
		Where("UserID", "==", string(userID)).
		Where("SubjectName", "==", subjectName).
		Documents(ctx)
	defer iter.Stop()

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return deleted, goerr.Wrap(err, "failed to iterate reminders for deletion",
				goerr.V("userID", userID),
				goerr.V("subjectName", subjectName),
			)
		}

		if _, err := doc.Ref.Delete(ctx); err != nil {
			return deleted, goerr.Wrap(err, "failed to delete reminder", goerr.V("id", doc.Ref.ID))
		}
		deleted++
	}

	return deleted, nil
}

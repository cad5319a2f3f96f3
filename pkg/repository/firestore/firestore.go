package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Firestore is a Cloud Firestore backed repository
type Firestore struct {
	client   *firestore.Client
	reminder *reminderRepository
	session  *sessionRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix prefixes collection names, used to isolate test runs
// against a shared project.
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.reminder.collectionPrefix = prefix
		f.session.collectionPrefix = prefix
	}
}

func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	var client *firestore.Client
	var err error
	if databaseID != "" {
		client, err = firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	} else {
		client, err = firestore.NewClient(ctx, projectID)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID),
		)
	}

	f := &Firestore{
		client:   client,
		reminder: newReminderRepository(client),
		session:  newSessionRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Reminder() interfaces.ReminderRepository {
	return f.reminder
}

func (f *Firestore) Session() interfaces.SessionRepository {
	return f.session
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

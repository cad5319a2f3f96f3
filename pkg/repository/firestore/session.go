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

const sessionCollection = "sessions"

// sessionDoc is the Firestore document representation of model.Session
type sessionDoc struct {
	ID          string    `firestore:"ID"`
	UserID      string    `firestore:"UserID"`
	Stage       string    `firestore:"Stage"`
	SubjectName string    `firestore:"SubjectName"`
	Time        time.Time `firestore:"Time"`
	Period      float64   `firestore:"Period"`
	Unit        string    `firestore:"Unit"`
	CreatedAt   time.Time `firestore:"CreatedAt"`
}

func toSessionDoc(s *model.Session) *sessionDoc {
	return &sessionDoc{
		ID:          string(s.ID),
		UserID:      string(s.UserID),
		Stage:       string(s.Stage),
		SubjectName: s.SubjectName,
		Time:        s.Time,
		Period:      s.Period,
		Unit:        string(s.Unit),
		CreatedAt:   s.CreatedAt,
	}
}

func fromSessionDoc(d *sessionDoc) *model.Session {
	return &model.Session{
		ID:          types.SessionID(d.ID),
		UserID:      types.UserID(d.UserID),
		Stage:       types.DialogStage(d.Stage),
		SubjectName: d.SubjectName,
		Time:        d.Time,
		Period:      d.Period,
		Unit:        types.RecurrenceUnit(d.Unit),
		CreatedAt:   d.CreatedAt,
	}
}

type sessionRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newSessionRepository(client *firestore.Client) *sessionRepository {
	return &sessionRepository{client: client}
}

func (r *sessionRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(r.collectionPrefix + sessionCollection)
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	created := *session
	if created.ID == "" {
		created.ID = types.NewSessionID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Stage = created.Stage.Normalize()

	docRef := r.collection().Doc(string(created.ID))
	if _, err := docRef.Set(ctx, toSessionDoc(&created)); err != nil {
		return nil, goerr.Wrap(err, "failed to create session", goerr.V("id", created.ID))
	}

	return &created, nil
}

// GetLatestByUser queries by user ordered by creation time descending; it
// needs the composite index installed by the migrate command.
func (r *sessionRepository) GetLatestByUser(ctx context.Context, userID types.UserID) (*model.Session, error) {
	iter := r.collection().
		Where("UserID", "==", string(userID)).
		OrderBy("CreatedAt", firestore.Desc).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, nil
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query latest session", goerr.V("userID", userID))
	}

	var d sessionDoc
	if err := doc.DataTo(&d); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal session", goerr.V("userID", userID))
	}

	return fromSessionDoc(&d), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	docRef := r.collection().Doc(string(session.ID))

	doc, err := docRef.Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", session.ID))
		}
		return goerr.Wrap(err, "failed to get session", goerr.V("id", session.ID))
	}

	var existing sessionDoc
	if err := doc.DataTo(&existing); err != nil {
		return goerr.Wrap(err, "failed to unmarshal session", goerr.V("id", session.ID))
	}

	updated := *session
	// CreatedAt is immutable after creation
	updated.CreatedAt = existing.CreatedAt

	if _, err := docRef.Set(ctx, toSessionDoc(&updated)); err != nil {
		return goerr.Wrap(err, "failed to update session", goerr.V("id", session.ID))
	}

	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id types.SessionID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get session", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete session", goerr.V("id", id))
	}

	return nil
}

func (r *sessionRepository) DeleteCreatedBefore(ctx context.Context, t time.Time) (int, error) {
	iter := r.collection().Where("CreatedAt", "<=", t).Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)

	deleted := 0
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			bw.End()
			return deleted, goerr.Wrap(err, "failed to iterate stale sessions")
		}

		if _, err := bw.Delete(doc.Ref); err != nil {
			bw.End()
			return deleted, goerr.Wrap(err, "failed to enqueue session deletion", goerr.V("id", doc.Ref.ID))
		}
		deleted++
	}

	bw.End()
	return deleted, nil
}

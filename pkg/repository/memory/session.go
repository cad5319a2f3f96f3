package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

type sessionRepository struct {
	mu       sync.RWMutex
	sessions map[types.SessionID]*model.Session
}

func newSessionRepository() *sessionRepository {
	return &sessionRepository{
		sessions: make(map[types.SessionID]*model.Session),
	}
}

func copySession(s *model.Session) *model.Session {
	copied := *s
	return &copied
}

func (r *sessionRepository) Create(ctx context.Context, session *model.Session) (*model.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	created := copySession(session)
	if created.ID == "" {
		created.ID = types.NewSessionID()
	}
	if created.CreatedAt.IsZero() {
		created.CreatedAt = time.Now().UTC()
	}
	created.Stage = created.Stage.Normalize()

	r.sessions[created.ID] = created
	return copySession(created), nil
}

func (r *sessionRepository) GetLatestByUser(ctx context.Context, userID types.UserID) (*model.Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var latest *model.Session
	for _, session := range r.sessions {
		if session.UserID != userID {
			continue
		}
		if latest == nil || session.CreatedAt.After(latest.CreatedAt) {
			latest = session
		}
	}

	if latest == nil {
		return nil, nil
	}

	return copySession(latest), nil
}

func (r *sessionRepository) Update(ctx context.Context, session *model.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, exists := r.sessions[session.ID]
	if !exists {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", session.ID))
	}

	updated := copySession(session)
	// CreatedAt is immutable after creation
	updated.CreatedAt = existing.CreatedAt

	r.sessions[updated.ID] = updated
	return nil
}

func (r *sessionRepository) Delete(ctx context.Context, id types.SessionID) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.sessions[id]; !exists {
		return goerr.Wrap(ErrNotFound, "session not found", goerr.V("id", id))
	}

	delete(r.sessions, id)
	return nil
}

func (r *sessionRepository) DeleteCreatedBefore(ctx context.Context, t time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, session := range r.sessions {
		if !session.CreatedAt.After(t) {
			delete(r.sessions, id)
			deleted++
		}
	}

	return deleted, nil
}

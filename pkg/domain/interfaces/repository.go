package interfaces

import (
	"context"
	"time"

	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

// Repository defines the interface for data persistence
type Repository interface {
	Reminder() ReminderRepository
	Session() SessionRepository
	Close() error
}

// ReminderRepository persists recurring reminder records
type ReminderRepository interface {
	// Create persists a new reminder, assigning an ID when unset
	Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error)

	// Get retrieves a reminder by ID
	Get(ctx context.Context, id types.ReminderID) (*model.Reminder, error)

	// ListDue retrieves all reminders with NextFireAt at or before t.
	// Ordering across reminders is unspecified.
	ListDue(ctx context.Context, t time.Time) ([]*model.Reminder, error)

	// ListByUser retrieves all reminders owned by a user
	ListByUser(ctx context.Context, userID types.UserID) ([]*model.Reminder, error)

	// Update overwrites an existing reminder
	Update(ctx context.Context, reminder *model.Reminder) error

	// DeleteByUserAndSubject removes every reminder matching the pair and
	// returns the number removed. Zero matches is not an error.
	DeleteByUserAndSubject(ctx context.Context, userID types.UserID, subjectName string) (int, error)
}

// SessionRepository persists ephemeral dialogue sessions
type SessionRepository interface {
	// Create persists a new session, assigning an ID when unset
	Create(ctx context.Context, session *model.Session) (*model.Session, error)

	// GetLatestByUser retrieves the most-recently-created session for a
	// user, or nil when the user has none. Duplicate rows from racing
	// messages may exist; only the newest is ever returned.
	GetLatestByUser(ctx context.Context, userID types.UserID) (*model.Session, error)

	// Update overwrites an existing session
	Update(ctx context.Context, session *model.Session) error

	// Delete removes a session by ID
	Delete(ctx context.Context, id types.SessionID) error

	// DeleteCreatedBefore removes every session created at or before t and
	// returns the number removed.
	DeleteCreatedBefore(ctx context.Context, t time.Time) (int, error)
}

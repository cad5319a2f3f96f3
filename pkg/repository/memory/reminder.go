package memory

import (
	"context"
	"sync"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/model"
	"github.com/remedios-lab/remedios/pkg/domain/types"
)

type reminderRepository struct {
	mu        sync.RWMutex
	reminders map[types.ReminderID]*model.Reminder
}

func newReminderRepository() *reminderRepository {
	return &reminderRepository{
		reminders: make(map[types.ReminderID]*model.Reminder),
	}
}

// copyReminder creates a deep copy so callers never share a mutable handle
// with the store.
func copyReminder(r *model.Reminder) *model.Reminder {
	copied := *r
	return &copied
}

func (r *reminderRepository) Create(ctx context.Context, reminder *model.Reminder) (*model.Reminder, error) {
	if err := reminder.Validate(); err != nil {
		return nil, goerr.Wrap(err, "invalid reminder")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	created := copyReminder(reminder)
	if created.ID == "" {
		created.ID = types.NewReminderID()
	}

	r.reminders[created.ID] = created
	return copyReminder(created), nil
}

func (r *reminderRepository) Get(ctx context.Context, id types.ReminderID) (*model.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reminder, exists := r.reminders[id]
	if !exists {
		return nil, goerr.Wrap(ErrNotFound, "reminder not found", goerr.V("id", id))
	}

	return copyReminder(reminder), nil
}

func (r *reminderRepository) ListDue(ctx context.Context, t time.Time) ([]*model.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	due := make([]*model.Reminder, 0)
	for _, reminder := range r.reminders {
		if !reminder.NextFireAt.After(t) {
			due = append(due, copyReminder(reminder))
		}
	}

	return due, nil
}

func (r *reminderRepository) ListByUser(ctx context.Context, userID types.UserID) ([]*model.Reminder, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]*model.Reminder, 0)
	for _, reminder := range r.reminders {
		if reminder.UserID == userID {
			result = append(result, copyReminder(reminder))
		}
	}

	return result, nil
}

func (r *reminderRepository) Update(ctx context.Context, reminder *model.Reminder) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.reminders[reminder.ID]; !exists {
		return goerr.Wrap(ErrNotFound, "reminder not found", goerr.V("id", reminder.ID))
	}

	r.reminders[reminder.ID] = copyReminder(reminder)
	return nil
}

func (r *reminderRepository) DeleteByUserAndSubject(ctx context.Context, userID types.UserID, subjectName string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	deleted := 0
	for id, reminder := range r.reminders {
		if reminder.UserID == userID && reminder.SubjectName == subjectName {
			delete(r.reminders, id)
			deleted++
		}
	}

	return deleted, nil
}

package memory

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
)

// ErrNotFound is returned when a requested record does not exist
var ErrNotFound = goerr.New("record not found")

// Memory is an in-memory repository for development and tests
type Memory struct {
	reminder *reminderRepository
	session  *sessionRepository
}

var _ interfaces.Repository = &Memory{}

func New() *Memory {
	return &Memory{
		reminder: newReminderRepository(),
		session:  newSessionRepository(),
	}
}

func (m *Memory) Reminder() interfaces.ReminderRepository {
	return m.reminder
}

func (m *Memory) Session() interfaces.SessionRepository {
	return m.session
}

func (m *Memory) Close() error {
	return nil
}

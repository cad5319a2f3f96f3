package usecase

import (
	"github.com/jmhodges/clock"
	"github.com/remedios-lab/remedios/pkg/domain/interfaces"
	"github.com/remedios-lab/remedios/pkg/service/dialogflow"
	"github.com/remedios-lab/remedios/pkg/service/messenger"
)

type UseCases struct {
	repo interfaces.Repository
	clk  clock.Clock

	failureReply string

	Conversation *Conversation
}

type Option func(*UseCases)

// WithClock replaces the wall clock, mainly for tests.
func WithClock(clk clock.Clock) Option {
	return func(uc *UseCases) {
		uc.clk = clk
	}
}

// WithFailureReply overrides the reply sent when a dialogue turn fails to
// persist its effects.
func WithFailureReply(reply string) Option {
	return func(uc *UseCases) {
		uc.failureReply = reply
	}
}

func New(repo interfaces.Repository, resolver dialogflow.Service, notifier messenger.Service, opts ...Option) *UseCases {
	uc := &UseCases{
		repo:         repo,
		clk:          clock.New(),
		failureReply: DefaultFailureReply,
	}

	for _, opt := range opts {
		opt(uc)
	}

	uc.Conversation = newConversation(repo, resolver, notifier, uc.clk, uc.failureReply)

	return uc
}

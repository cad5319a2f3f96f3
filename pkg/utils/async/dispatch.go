package async

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

// Dispatch executes a handler function asynchronously in a new goroutine.
// The webhook handler uses this to acknowledge the platform within its
// delivery timeout while the NLU round-trip and store mutations proceed in
// the background; one slow message never blocks another.
//
// A fresh background context is used so the handler survives the HTTP
// request's cancellation, but the request's logger is preserved.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.Background(), logging.From(ctx))

	go func() {
		defer func() {
			if r := recover(); r != nil {
				logging.From(bgCtx).Error("panic in async handler", "panic", r)
			}
		}()

		if err := handler(bgCtx); err != nil {
			logging.From(bgCtx).Error("async handler failed", "error", goerr.Unwrap(err))
		}
	}()
}

package errutil

import (
	"context"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/remedios-lab/remedios/pkg/utils/logging"
)

// Handle logs the error with a message and reports it to Sentry when a hub is
// configured. It returns the error as-is so callers can keep propagating it.
// No error in this service is fatal; callers typically log-and-continue
// through this function.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error(msg,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error(msg, "error", err.Error())
	}

	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.CaptureException(err)
	}

	return err
}

// HandleHTTP logs the error and writes an appropriate HTTP error response
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int) {
	if err == nil {
		return
	}

	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		logger.Error("HTTP error",
			"status", statusCode,
			"error", err.Error(),
		)
	}

	http.Error(w, err.Error(), statusCode)
}

package errutil

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/utils/logging"
)

// Handle logs the error with a message and forwards it to Sentry when a
// Sentry client is bound. The error is returned unchanged.
func Handle(ctx context.Context, err error, msg string) error {
	if err == nil {
		return nil
	}

	logError(ctx, msg, err)
	report(ctx, err)
	return err
}

// HandleHTTP logs the error and writes a JSON error response of the form
// {"code": statusCode, "message": msg}. Only 5xx errors are reported to
// Sentry; client errors are logged at warn level.
func HandleHTTP(ctx context.Context, w http.ResponseWriter, err error, statusCode int, msg string) {
	if err == nil {
		return
	}

	if statusCode >= http.StatusInternalServerError {
		logError(ctx, "HTTP error", err, "status", statusCode)
		report(ctx, err)
	} else {
		logging.From(ctx).Warn("HTTP request rejected", "error", err.Error(), "status", statusCode)
	}

	body, _ := json.Marshal(struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}{Code: statusCode, Message: msg})

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(statusCode)
	_, _ = w.Write(body)
}

func logError(ctx context.Context, msg string, err error, args ...any) {
	logger := logging.From(ctx)

	var ge *goerr.Error
	if errors.As(err, &ge) {
		args = append(args,
			"error", err.Error(),
			"values", ge.Values(),
			"stack", ge.Stacks(),
		)
	} else {
		args = append(args, "error", err.Error())
	}
	logger.Error(msg, args...)
}

func report(ctx context.Context, err error) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	if hub.Client() == nil {
		return
	}

	var ge *goerr.Error
	if errors.As(err, &ge) {
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetContext("goerr", ge.Values())
			hub.CaptureException(err)
		})
		return
	}
	hub.CaptureException(err)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/m-mizutani/goerr/v2"
	"github.com/mootai/moot/pkg/domain/model"
	"github.com/mootai/moot/pkg/usecase"
	"github.com/mootai/moot/pkg/utils/errutil"
	"github.com/mootai/moot/pkg/utils/logging"
)

var errBadRequest = errors.New("bad request")

// envelope wraps every JSON response. Code mirrors the HTTP status.
type envelope struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func writeOK(w http.ResponseWriter, r *http.Request, msg string, data any) {
	body, err := json.Marshal(envelope{Code: http.StatusOK, Message: msg, Data: data})
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		logging.From(r.Context()).Warn("failed to write response", "error", err)
	}
}

// writeError reports err with the status it maps to. The message is
// prefixed the way the web client shows it.
func writeError(w http.ResponseWriter, r *http.Request, err error, prefix string) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err), prefix+": "+err.Error())
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, usecase.ErrInvalidRequest),
		errors.Is(err, usecase.ErrMissingCaseDescription),
		errors.Is(err, usecase.ErrMissingFileNames),
		errors.Is(err, model.ErrInvalidOwner),
		errors.Is(err, model.ErrInvalidArtifact):
		return http.StatusBadRequest
	case errors.Is(err, model.ErrArtifactNotFound):
		return http.StatusNotFound
	case errors.Is(err, model.ErrBackendUnreachable),
		errors.Is(err, model.ErrBackendError):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "failed to decode request body", goerr.V("cause", err.Error()))
	}
	return nil
}

func ownerOf(r *http.Request) (model.OwnerID, error) {
	return model.OwnerFromContext(r.Context())
}

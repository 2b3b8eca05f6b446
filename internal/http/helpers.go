package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"opsboard/internal/boards"
	"opsboard/internal/finance"
	applog "opsboard/internal/log"
	"opsboard/internal/middleware/trace"
	"opsboard/internal/ports"
	"opsboard/internal/schema"
)

// maxBodyBytes caps JSON request bodies.
const maxBodyBytes = 1 << 20

var errBadRequest = errors.New("bad request")

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Error     string                   `json:"error"`
	Details   []schema.ValidationError `json:"details,omitempty"`
	RequestID string                   `json:"requestId,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrNotFound),
		errors.Is(err, ports.ErrUnknownEntity),
		errors.Is(err, boards.ErrUnknownBoard):
		return http.StatusNotFound
	case schema.IsValidationError(err),
		errors.Is(err, errBadRequest),
		errors.Is(err, boards.ErrEmptyColumn),
		errors.Is(err, boards.ErrInvalidDirection),
		errors.Is(err, boards.ErrInvalidOperator),
		errors.Is(err, finance.ErrUnknownRange),
		errors.Is(err, finance.ErrUnknownType):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// writeError logs err and writes the mapped status. Internal errors are not
// echoed to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	body := errorBody{Error: err.Error(), RequestID: trace.GetRequestID(r.Context())}
	if ve := schema.GetValidationErrors(err); ve != nil {
		body.Error = "validation failed"
		body.Details = ve.Errors
	}

	logger := applog.FromContext(r.Context())
	if status >= http.StatusInternalServerError {
		body.Error = http.StatusText(status)
		logger.ErrorContext(r.Context(), "Request failed",
			"method", r.Method, "path", r.URL.Path, applog.FieldError, err)
	} else {
		logger.DebugContext(r.Context(), "Request rejected",
			"method", r.Method, "path", r.URL.Path, "status", status, applog.FieldError, err)
	}
	writeJSON(w, status, body)
}

// decodeJSON reads one JSON value from the body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errBadRequest)
		}
		return fmt.Errorf("%w: invalid JSON: %v", errBadRequest, err)
	}
	return nil
}

// queryFilter returns a query parameter, treating blanks as "all".
func queryFilter(r *http.Request, name string) string {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return finance.All
	}
	return v
}

package api

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"

	"StakingLedger/internal/logger"
	"StakingLedger/internal/staking"
)

type httpError struct {
	cause  error
	status int
}

func (e *httpError) Error() string {
	return e.cause.Error()
}

// HTTPError creates an error carrying an HTTP status code.
func HTTPError(cause error, status int) error {
	return &httpError{cause: cause, status: status}
}

// BadRequest creates a 400 error.
func BadRequest(cause error) error {
	return HTTPError(cause, http.StatusBadRequest)
}

// NotFound creates a 404 error.
func NotFound(cause error) error {
	return HTTPError(cause, http.StatusNotFound)
}

// HandlerFunc is like http.HandlerFunc but returns an error.
type HandlerFunc func(http.ResponseWriter, *http.Request) error

// errorBody is the JSON body of every failed request.
type errorBody struct {
	Code  string `json:"code,omitempty"`
	Error string `json:"error"`
}

// WrapHandlerFunc converts a HandlerFunc to http.HandlerFunc. Ledger errors are mapped
// to a status by code, httpError carries its own status and anything else is a 500.
func WrapHandlerFunc(f HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		err := f(w, r)
		if err == nil {
			return
		}
		status := http.StatusInternalServerError
		var he *httpError
		if errors.As(err, &he) {
			status = he.status
		}
		code := staking.Code(err)
		if code != "" {
			status = StatusFor(code)
		}
		if status == http.StatusInternalServerError {
			logger.WithError(err).Error("request failed: ", r.Method, " ", r.URL.Path)
		}
		w.Header().Set("Content-Type", JSONContentType)
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(errorBody{Code: code, Error: err.Error()})
	}
}

// StatusFor maps a ledger error code to an HTTP status.
func StatusFor(code string) int {
	switch code {
	case staking.CodeInvalidAmount, staking.CodeInsufficientStake, staking.CodeNothingToClaim:
		return http.StatusBadRequest
	case staking.CodePoolClosed, staking.CodeInsufficientRewardPool:
		return http.StatusConflict
	case staking.CodeTransferFailed:
		return http.StatusPaymentRequired
	}
	return http.StatusInternalServerError
}

// JSONContentType is the content type of every response body.
const JSONContentType = "application/json; charset=utf-8"

// ParseJSON decodes a JSON object in strict mode.
func ParseJSON(r io.Reader, v interface{}) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

// WriteJSON responds with obj in JSON encoding.
func WriteJSON(w http.ResponseWriter, obj interface{}) error {
	w.Header().Set("Content-Type", JSONContentType)
	return json.NewEncoder(w).Encode(obj)
}

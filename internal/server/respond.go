package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/graphedit/pkg/errors"
)

// errorBody is the JSON shape of every error response.
type errorBody struct {
	Code  errors.Code `json:"code"`
	Error string      `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	writeJSON(w, statusFor(code), errorBody{Code: code, Error: errors.UserMessage(err)})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidChange, errors.ErrCodeInvalidKey, errors.ErrCodeImportParse:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeNodeNotFound, errors.ErrCodeEdgeNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDuplicateID, errors.ErrCodeNotEditing, errors.ErrCodeImportInFlight:
		return http.StatusConflict
	case errors.ErrCodeStorage:
		return http.StatusServiceUnavailable
	case errors.ErrCodeUnsupported:
		return http.StatusUnsupportedMediaType
	default:
		return http.StatusInternalServerError
	}
}

// decode reads a JSON request body into v.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err)
	}
	return nil
}

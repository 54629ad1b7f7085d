package server

import (
	"encoding/json"
	"net/http"

	errs "github.com/matzehuels/gridpath/pkg/errors"
)

type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Code    errs.Code `json:"code"`
	Message string    `json:"message"`
}

// statusOf maps an error code to an HTTP status.
func statusOf(err error) int {
	switch errs.GetCode(err) {
	case errs.ErrCodeInvalidArgument, errs.ErrCodeInvalidConfig, errs.ErrCodeInvalidFormat:
		return http.StatusBadRequest
	case errs.ErrCodeNodeNotFound:
		return http.StatusNotFound
	case errs.ErrCodeNoPath:
		return http.StatusUnprocessableEntity
	case errs.ErrCodeUnsupported:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeErrorStatus(w, statusOf(err), err)
}

func writeErrorStatus(w http.ResponseWriter, status int, err error) {
	code := errs.GetCode(err)
	if code == "" {
		code = errs.ErrCodeInternal
	}
	writeJSON(w, status, errorBody{Error: errorDetail{Code: code, Message: errs.UserMessage(err)}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}

func write(w http.ResponseWriter, contentType string, data []byte) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

package utils

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-transactions/internal/apperr"
	"ms-transactions/internal/logger"
)

type APIResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Data      interface{}       `json:"data,omitempty"`
	Error     string            `json:"error,omitempty"`
	Fields    map[string]string `json:"fields,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}

func SuccessResponse(message string, data interface{}) APIResponse {
	return APIResponse{
		Success:   true,
		Message:   message,
		Data:      data,
		Timestamp: time.Now(),
	}
}

func ErrorResponse(message, error string) APIResponse {
	return APIResponse{
		Success:   false,
		Message:   message,
		Error:     error,
		Timestamp: time.Now(),
	}
}

func WriteJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func WriteSuccess(w http.ResponseWriter, status int, message string, data interface{}) {
	WriteJSON(w, status, SuccessResponse(message, data))
}

// WriteError maps err to a status code. Business errors are answered with their own
// message; anything else is logged and answered generically.
func WriteError(w http.ResponseWriter, r *http.Request, log *logger.Logger, err error) {
	status := apperr.HTTPStatus(err)
	message := apperr.PublicMessage(err)

	switch {
	case status >= http.StatusInternalServerError:
		log.Error("API", fmt.Sprintf("%s %s failed: %v", r.Method, r.URL.Path, err))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		log.LogSecurity(apperr.KindOf(err).String(), fmt.Sprintf("%s %s: %s", r.Method, r.URL.Path, message))
	default:
		log.Debug("API", fmt.Sprintf("%s %s rejected: %s", r.Method, r.URL.Path, message))
	}

	resp := ErrorResponse(message, apperr.KindOf(err).String())
	resp.Fields = apperr.FieldsOf(err)
	WriteJSON(w, status, resp)
}

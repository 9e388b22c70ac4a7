package response

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Response is the envelope of every JSON body the API returns.
type Response struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Data    interface{}  `json:"data,omitempty"`
	Error   *ErrorDetail `json:"error,omitempty"`
}

type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, statusCode int, payload Response) {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("Failed to encode response", "error", err)
		statusCode = http.StatusInternalServerError
		body, _ = json.Marshal(Response{
			Error: &ErrorDetail{Code: "ENCODING_ERROR", Message: "Failed to encode response"},
		})
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_, _ = w.Write(append(body, '\n'))
}

func writeError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	writeJSON(w, statusCode, Response{
		Success: false,
		Error:   &ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// Success responses
func Success(w http.ResponseWriter, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Data: data})
}

func SuccessWithMessage(w http.ResponseWriter, message string, data interface{}) {
	writeJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Error responses
func BadRequest(w http.ResponseWriter, message string, details map[string]string) {
	writeError(w, http.StatusBadRequest, "BAD_REQUEST", message, details)
}

func ValidationError(w http.ResponseWriter, details map[string]string) {
	UnprocessableEntity(w, "Validation failed", details)
}

// UnprocessableEntity is used for well-formed requests the payroll rules reject.
func UnprocessableEntity(w http.ResponseWriter, message string, details map[string]string) {
	writeError(w, http.StatusUnprocessableEntity, "VALIDATION_ERROR", message, details)
}

func Unauthorized(w http.ResponseWriter, message string) {
	writeError(w, http.StatusUnauthorized, "UNAUTHORIZED", message, nil)
}

func Forbidden(w http.ResponseWriter, message string) {
	writeError(w, http.StatusForbidden, "FORBIDDEN", message, nil)
}

func NotFound(w http.ResponseWriter, message string) {
	writeError(w, http.StatusNotFound, "NOT_FOUND", message, nil)
}

func Conflict(w http.ResponseWriter, message string) {
	writeError(w, http.StatusConflict, "CONFLICT", message, nil)
}

func InternalServerError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", message, nil)
}

// ConfigError reports a server-side configuration problem, such as a missing
// tax table, that the caller cannot fix by changing the request.
func ConfigError(w http.ResponseWriter, message string) {
	writeError(w, http.StatusInternalServerError, "CONFIG_ERROR", message, nil)
}

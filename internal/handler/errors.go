package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	apperrors "maintenance-tracker-api/pkg/errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrorResponse is the JSON body of every failed request
type ErrorResponse struct {
	Error   string            `json:"error"`
	Code    string            `json:"code,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// SuccessResponse wraps the result of create, update and delete operations
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ErrorHandler provides centralized error handling functionality for handlers
type ErrorHandler struct {
	Logger *zap.Logger
}

// NewErrorHandler creates a new ErrorHandler instance
func NewErrorHandler(logger *zap.Logger) *ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ErrorHandler{
		Logger: logger,
	}
}

// SendErrorResponse sends a structured error response
func (e *ErrorHandler) SendErrorResponse(w http.ResponseWriter, statusCode int, message, code string, details map[string]string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("failed to encode error response", zap.Error(err))
	}
}

// SendSuccessResponse sends a structured success response
func (e *ErrorHandler) SendSuccessResponse(w http.ResponseWriter, statusCode int, message string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	response := SuccessResponse{
		Message: message,
		Data:    data,
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		e.Logger.Error("failed to encode success response", zap.Error(err))
	}
}

// SendJSONResponse sends a generic JSON response
func (e *ErrorHandler) SendJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	body, err := json.Marshal(data)
	if err != nil {
		e.Logger.Error("failed to encode JSON response", zap.Error(err))
		e.SendErrorResponse(w, http.StatusInternalServerError, "Failed to encode response", "ENCODING_ERROR", nil)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if _, err := w.Write(append(body, '\n')); err != nil {
		e.Logger.Debug("failed to write response", zap.Error(err))
	}
}

// HandleServiceError maps a service error to an HTTP response. Errors without
// an application code are reported as internal errors.
func (e *ErrorHandler) HandleServiceError(w http.ResponseWriter, err error, operation string) {
	appErr, ok := apperrors.AsAppError(err)
	if !ok {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			appErr = apperrors.TimeoutError(operation, err)
		default:
			appErr = apperrors.InternalError("failed to "+operation, err)
		}
	}

	status := appErr.GetHTTPStatus()
	fields := []zap.Field{
		zap.String("operation", operation),
		zap.String("code", string(appErr.Code)),
		zap.Int("status", status),
	}
	if appErr.Cause != nil {
		fields = append(fields, zap.NamedError("cause", appErr.Cause))
	}
	if status >= http.StatusInternalServerError {
		e.Logger.Error(appErr.Message, fields...)
	} else {
		e.Logger.Debug(appErr.Message, fields...)
	}

	e.SendErrorResponse(w, status, appErr.Message, string(appErr.Code), appErr.Details)
}

// HandleJSONDecodeError handles JSON decoding errors
func (e *ErrorHandler) HandleJSONDecodeError(w http.ResponseWriter, err error) {
	e.Logger.Debug("JSON decode error", zap.Error(err))

	var maxBytes *http.MaxBytesError
	if errors.As(err, &maxBytes) {
		e.SendErrorResponse(w, http.StatusRequestEntityTooLarge, "Request body too large", string(apperrors.ErrorCodeBadRequest), nil)
		return
	}
	e.SendErrorResponse(w, http.StatusBadRequest, "Invalid JSON format", string(apperrors.ErrorCodeInvalidJSON), nil)
}

// HandleParameterError reports an unusable query or path parameter
func (e *ErrorHandler) HandleParameterError(w http.ResponseWriter, name, message string) {
	e.SendErrorResponse(w, http.StatusBadRequest, "Invalid parameter", string(apperrors.ErrorCodeInvalidParameter),
		map[string]string{name: message})
}

// ParseAndValidateUUID parses and validates UUID from string
func (e *ErrorHandler) ParseAndValidateUUID(w http.ResponseWriter, idStr string) (uuid.UUID, bool) {
	if idStr == "" {
		e.SendErrorResponse(w, http.StatusBadRequest, "ID is required", "INVALID_UUID", nil)
		return uuid.Nil, false
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		e.Logger.Debug("UUID parse error", zap.String("value", idStr), zap.Error(err))
		e.SendErrorResponse(w, http.StatusBadRequest, "Invalid UUID format", "INVALID_UUID", nil)
		return uuid.Nil, false
	}

	return id, true
}

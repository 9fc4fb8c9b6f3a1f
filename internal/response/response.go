// Package response defines the API response envelope and the application
// error taxonomy shared by services and handlers.
package response

import "github.com/gin-gonic/gin"

// Error codes used across the service layer
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeForbidden      = "FORBIDDEN"
	ErrCodeAlreadyDeleted = "ALREADY_DELETED"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeStorageIO      = "STORAGE_IO"
	ErrCodeInternal       = "INTERNAL_ERROR"
)

// AppError is the error type returned by the service layer.
// Details carries internal context for logging and is never sent to clients
// for INTERNAL_ERROR/STORAGE_IO responses.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return e.Code + ": " + e.Message + " (" + e.Details + ")"
	}
	return e.Code + ": " + e.Message
}

// NewAppError creates a new AppError
func NewAppError(code, message, details string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Details: details,
	}
}

// ErrorBody is the error payload inside an ErrorResponse
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// ErrorResponse is the envelope for failed requests
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// SuccessResponse is the envelope for successful requests
type SuccessResponse struct {
	Data interface{} `json:"data"`
}

// SendError writes an error envelope with the given HTTP status
func SendError(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{
		Error: ErrorBody{
			Code:    code,
			Message: message,
		},
	})
}

// SendSuccess writes a success envelope with the given HTTP status
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, SuccessResponse{Data: data})
}

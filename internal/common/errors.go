package common

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
)

// Machine-readable error codes returned by the request pipeline and the
// route guards. Client tooling switches on these to render the right
// remediation UI.
const (
	CodeTenantNotFound        = "tenant_not_found"
	CodeConfigurationError    = "configuration_error"
	CodeMFARequired           = "mfa_required"
	CodeTenantArchived        = "tenant_archived"
	CodeStudentAccessDisabled = "student_access_disabled"
	CodeFeatureNotEnabled     = "feature_not_enabled"
	CodeInsufficientRole      = "insufficient_role"
	CodeForbidden             = "forbidden"
	CodeUnauthorized          = "unauthorized"
	CodeNotFound              = "not_found"
	CodeValidationError       = "validation_error"
	CodeServerError           = "server_error"
)

// FeatureDisabledCode builds the code for a disabled-feature rejection.
// The key rides in the code itself so clients can tell which upgrade
// prompt to show without parsing details.
func FeatureDisabledCode(key string) string {
	return CodeFeatureNotEnabled + ":" + key
}

// ErrorResponse represents a standardized error response
type ErrorResponse struct {
	Error struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details,omitempty"`
	} `json:"error"`
}

// CreateErrorResponse creates a standardized error response
func CreateErrorResponse(code string, message string, details map[string]string) *ErrorResponse {
	var resp ErrorResponse
	resp.Error.Code = code
	resp.Error.Message = message
	resp.Error.Details = details
	return &resp
}

// SendError sends an error response with an explicit status and code.
func SendError(c echo.Context, status int, code, message string, details map[string]string) error {
	return c.JSON(status, CreateErrorResponse(code, message, details))
}

// SendValidationError sends a validation error response
func SendValidationError(c echo.Context, field, message string) error {
	details := map[string]string{
		field: message,
	}
	return c.JSON(http.StatusBadRequest, CreateErrorResponse(CodeValidationError, "Validation failed", details))
}

// SendServerError sends a server error response
func SendServerError(c echo.Context, message string) error {
	return c.JSON(http.StatusInternalServerError, CreateErrorResponse(CodeServerError, message, nil))
}

// SendNotFoundError sends a not found error response
func SendNotFoundError(c echo.Context, resource string) error {
	return c.JSON(http.StatusNotFound, CreateErrorResponse(CodeNotFound, fmt.Sprintf("%s not found", resource), nil))
}

// SendUnauthorizedError sends an unauthorized error response
func SendUnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, CreateErrorResponse(CodeUnauthorized, "Unauthorized access", nil))
}

// SendForbiddenError sends a forbidden response with a machine code.
func SendForbiddenError(c echo.Context, code, message string, details map[string]string) error {
	return c.JSON(http.StatusForbidden, CreateErrorResponse(code, message, details))
}

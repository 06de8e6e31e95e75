package errors

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime"
)

// ErrorType classifies an AppError for logging and for the status shown to callers.
type ErrorType string

const (
	ErrorTypeValidation ErrorType = "validation"
	ErrorTypeNotFound   ErrorType = "not_found"
	ErrorTypeDatabase   ErrorType = "database"
	ErrorTypeExternal   ErrorType = "external_api"
	ErrorTypeInternal   ErrorType = "internal"
	ErrorTypeTimeout    ErrorType = "timeout"
)

// Codes shared by the sentinels below and the constructors that match them.
const (
	CodeInvalidInput        = "INVALID_INPUT"
	CodeMedicationNotFound  = "MEDICATION_NOT_FOUND"
	CodeDoseNotFound        = "DOSE_NOT_FOUND"
	CodeDuplicate           = "DUPLICATE"
	CodeDatabase            = "DB_ERROR"
	CodeCorrupt             = "DB_CORRUPT"
	CodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	CodeTimeout             = "TIMEOUT"
	CodeInternal            = "INTERNAL"
)

// AppError carries a user-facing message, a stable code and the wrapped cause.
type AppError struct {
	Type     ErrorType
	Code     string
	Message  string
	Internal error
	Context  map[string]any
	Source   string
}

func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (internal: %v)", e.Type, e.Message, e.Internal)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Internal
}

// Is matches another AppError by type and code, so a sentinel matches every
// error built with the same code whatever its message.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Type == t.Type && e.Code == t.Code
	}
	return false
}

// WithContext attaches a structured field that is logged with the error.
func (e *AppError) WithContext(key string, value any) *AppError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// LogFields flattens the error into slog key/value pairs.
func (e *AppError) LogFields() []any {
	fields := []any{
		"error_type", e.Type,
		"error_code", e.Code,
		"error_message", e.Message,
		"source", e.Source,
	}
	if e.Internal != nil {
		fields = append(fields, "internal_error", e.Internal.Error())
	}
	for k, v := range e.Context {
		fields = append(fields, k, v)
	}
	return fields
}

func build(skip int, errorType ErrorType, code, message string, cause error) *AppError {
	_, file, line, _ := runtime.Caller(skip + 1)
	return &AppError{
		Type:     errorType,
		Code:     code,
		Message:  message,
		Internal: cause,
		Source:   fmt.Sprintf("%s:%d", file, line),
	}
}

func New(errorType ErrorType, code, message string) *AppError {
	return build(1, errorType, code, message, nil)
}

func Wrap(err error, errorType ErrorType, code, message string) *AppError {
	return build(1, errorType, code, message, err)
}

// TypeOf returns the ErrorType of err, or ErrorTypeInternal for plain errors.
func TypeOf(err error) ErrorType {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Type
	}
	return ErrorTypeInternal
}

// UserMessage returns the text that is safe to show to the user for err.
// Collaborator failures collapse into a generic retry hint.
func UserMessage(err error) string {
	switch TypeOf(err) {
	case ErrorTypeValidation, ErrorTypeNotFound:
		var appErr *AppError
		errors.As(err, &appErr)
		return appErr.Message
	case ErrorTypeExternal, ErrorTypeTimeout:
		return "The service is temporarily unavailable. Please try again in a few minutes."
	default:
		return "Something went wrong. Please try again."
	}
}

// HTTPStatus maps err onto the status code the API answers with.
func HTTPStatus(err error) int {
	switch TypeOf(err) {
	case ErrorTypeValidation:
		return http.StatusBadRequest
	case ErrorTypeNotFound:
		return http.StatusNotFound
	case ErrorTypeExternal:
		return http.StatusBadGateway
	case ErrorTypeTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// Handler logs errors at a level chosen by their type.
type Handler struct {
	logger *slog.Logger
}

func NewHandler(logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{logger: logger}
}

func (h *Handler) Handle(ctx context.Context, err error) {
	if err == nil {
		return
	}

	var appErr *AppError
	if !errors.As(err, &appErr) {
		h.logger.ErrorContext(ctx, "Unhandled error", "error", err.Error())
		return
	}

	switch appErr.Type {
	case ErrorTypeValidation:
		h.logger.WarnContext(ctx, "Validation error", appErr.LogFields()...)
	case ErrorTypeNotFound:
		h.logger.WarnContext(ctx, "Not found", appErr.LogFields()...)
	default:
		h.logger.ErrorContext(ctx, "Critical error", appErr.LogFields()...)
	}
}

var (
	ErrInvalidInput        = New(ErrorTypeValidation, CodeInvalidInput, "Invalid input provided")
	ErrMedicationNotFound  = New(ErrorTypeNotFound, CodeMedicationNotFound, "Medication not found")
	ErrDoseNotFound        = New(ErrorTypeNotFound, CodeDoseNotFound, "Dose record not found")
	ErrDuplicateMedication = New(ErrorTypeDatabase, CodeDuplicate, "Medication already exists")
	ErrCorruptData         = New(ErrorTypeDatabase, CodeCorrupt, "Stored data is invalid")
	ErrUpstreamUnavailable = New(ErrorTypeExternal, CodeUpstreamUnavailable, "External service unavailable")
)

// NewValidationError reports structurally invalid input. It matches ErrInvalidInput.
func NewValidationError(message string) *AppError {
	return build(1, ErrorTypeValidation, CodeInvalidInput, message, nil)
}

func NewNotFoundError(code, message string) *AppError {
	return build(1, ErrorTypeNotFound, code, message, nil)
}

func NewDatabaseError(err error) *AppError {
	return build(1, ErrorTypeDatabase, CodeDatabase, "Database operation failed", err)
}

// NewCorruptDataError reports a stored value that no longer decodes. It matches ErrCorruptData.
func NewCorruptDataError(err error, message string) *AppError {
	return build(1, ErrorTypeDatabase, CodeCorrupt, message, err)
}

// NewExternalAPIError marks a collaborator failure. It matches ErrUpstreamUnavailable.
func NewExternalAPIError(err error, api string) *AppError {
	return build(1, ErrorTypeExternal, CodeUpstreamUnavailable, fmt.Sprintf("%s API error", api), err).
		WithContext("api", api)
}

func NewInternalError(err error) *AppError {
	return build(1, ErrorTypeInternal, CodeInternal, "Internal server error", err)
}

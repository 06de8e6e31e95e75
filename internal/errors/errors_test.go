package errors

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsMatchesByTypeAndCode(t *testing.T) {
	err := NewNotFoundError(CodeDoseNotFound, "Dose record not found").WithContext("dose_id", "d1")
	wrapped := fmt.Errorf("delete: %w", err)

	assert.ErrorIs(t, wrapped, ErrDoseNotFound)
	assert.NotErrorIs(t, wrapped, ErrMedicationNotFound)
	assert.ErrorIs(t, NewValidationError("Image is empty"), ErrInvalidInput)
	assert.ErrorIs(t, NewCorruptDataError(stderrors.New("bad json"), "Stored dose log is invalid"), ErrCorruptData)
}

func TestExternalErrorUnwrapsCause(t *testing.T) {
	cause := stderrors.New("quota exceeded")
	err := NewExternalAPIError(cause, "gemini")

	assert.ErrorIs(t, err, ErrUpstreamUnavailable)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "gemini", err.Context["api"])
	assert.Contains(t, err.Source, "errors_test.go")
}

func TestUserMessageHidesInternals(t *testing.T) {
	assert.Equal(t, "Medication name is required", UserMessage(NewValidationError("Medication name is required")))
	assert.NotContains(t, UserMessage(NewExternalAPIError(stderrors.New("quota exceeded"), "gemini")), "quota")
	assert.NotContains(t, UserMessage(NewDatabaseError(stderrors.New("connection refused"))), "refused")
	assert.Equal(t, "Something went wrong. Please try again.", UserMessage(stderrors.New("plain")))
}

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{NewValidationError("bad"), http.StatusBadRequest},
		{ErrMedicationNotFound, http.StatusNotFound},
		{NewExternalAPIError(stderrors.New("x"), "openai"), http.StatusBadGateway},
		{New(ErrorTypeTimeout, CodeTimeout, "slow"), http.StatusGatewayTimeout},
		{NewDatabaseError(stderrors.New("x")), http.StatusInternalServerError},
		{stderrors.New("plain"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, HTTPStatus(tt.err), tt.err.Error())
	}
}

func TestHandlerLogLevels(t *testing.T) {
	var buf bytes.Buffer
	h := NewHandler(slog.New(slog.NewTextHandler(&buf, nil)))

	h.Handle(context.Background(), nil)
	assert.Empty(t, buf.String())

	h.Handle(context.Background(), NewValidationError("bad time"))
	assert.Contains(t, buf.String(), "level=WARN")

	buf.Reset()
	h.Handle(context.Background(), NewDatabaseError(stderrors.New("down")))
	assert.Contains(t, buf.String(), "level=ERROR")
	assert.Contains(t, buf.String(), "error_code=DB_ERROR")
}

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
		expectedMsg    string
	}{
		{name: "not found", err: NotFound("course not found"), expectedStatus: http.StatusNotFound, expectedMsg: "course not found"},
		{name: "conflict", err: Conflict("already enrolled"), expectedStatus: http.StatusConflict, expectedMsg: "already enrolled"},
		{name: "limit exceeded", err: LimitExceeded("maximum attempts (%d) reached", 3), expectedStatus: http.StatusConflict, expectedMsg: "maximum attempts (3) reached"},
		{name: "forbidden", err: Forbidden("access denied"), expectedStatus: http.StatusForbidden, expectedMsg: "access denied"},
		{name: "unauthenticated", err: Unauthenticated("invalid credentials"), expectedStatus: http.StatusUnauthorized, expectedMsg: "invalid credentials"},
		{name: "validation", err: Validation("progress is required"), expectedStatus: http.StatusBadRequest, expectedMsg: "progress is required"},
		{name: "wrapped kind", err: fmt.Errorf("enroll: %w", Conflict("already enrolled")), expectedStatus: http.StatusConflict, expectedMsg: "already enrolled"},
		{name: "internal", err: Internal(errors.New("connection refused"), "failed to query course"), expectedStatus: http.StatusInternalServerError, expectedMsg: "internal server error"},
		{name: "plain error", err: errors.New("boom"), expectedStatus: http.StatusInternalServerError, expectedMsg: "internal server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expectedStatus, HTTPStatus(tt.err))
			assert.Equal(t, tt.expectedMsg, Message(tt.err))
		})
	}
}

func TestIs(t *testing.T) {
	cause := errors.New("duplicate entry")
	err := fmt.Errorf("create enrollment: %w", &Error{Kind: KindConflict, Message: "already enrolled", Err: cause})

	assert.True(t, Is(err, KindConflict))
	assert.False(t, Is(err, KindNotFound))
	assert.False(t, Is(nil, KindConflict))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "already enrolled: duplicate entry", errors.Unwrap(err).Error())
}

package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	wrapped := fmt.Errorf("store: %w", NewNotFoundError("appointment not found"))
	assert.Equal(t, KindNotFound, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindNotFound))

	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestScheduleConflictKeepsCause(t *testing.T) {
	cause := errors.New("duplicated key")
	err := NewScheduleConflictError("slot already taken", cause)

	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "SCHEDULE_CONFLICT")
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindUnauthorized:      http.StatusUnauthorized,
		KindValidation:        http.StatusBadRequest,
		KindUnknownAction:     http.StatusBadRequest,
		KindInvalidSchedule:   http.StatusUnprocessableEntity,
		KindInvalidTransition: http.StatusUnprocessableEntity,
		KindScheduleConflict:  http.StatusConflict,
		KindNotFound:          http.StatusNotFound,
		KindForbidden:         http.StatusForbidden,
		KindInternal:          http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, HTTPStatus(kind), string(kind))
	}
}

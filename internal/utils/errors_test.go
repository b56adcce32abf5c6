package utils

import (
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOfAndStatus(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		code   string
		status int
	}{
		{"validation", NewValidationError("bad %s", "input"), ErrValidation, http.StatusBadRequest},
		{"invalid parent", NewInvalidParentError("nope"), ErrInvalidParent, http.StatusBadRequest},
		{"not found", NewNotFoundError("post", 3), ErrNotFound, http.StatusNotFound},
		{"forbidden", NewForbiddenError("admin only"), ErrForbidden, http.StatusForbidden},
		{"wrapped", errors.Wrap(NewNotFoundError("reply", 1), "outer"), ErrNotFound, http.StatusNotFound},
		{"plain error", errors.New("boom"), ErrDatabase, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, CodeOf(tt.err))
			assert.Equal(t, tt.status, HTTPStatus(tt.err))
			assert.True(t, IsErrorCode(tt.err, tt.code))
		})
	}
	assert.Equal(t, "", CodeOf(nil))
}

func TestPublicMessageHidesStorageDetails(t *testing.T) {
	err := NewDatabaseError("insert reply", errors.New("pq: relation replies does not exist"))
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "insert reply")

	assert.Equal(t, "post not found: 7", PublicMessage(NewNotFoundError("post", 7)))
}

func TestParseID(t *testing.T) {
	id, err := ParseID("42")
	assert.NoError(t, err)
	assert.Equal(t, uint(42), id)

	for _, bad := range []string{"", "0", "-1", "abc", "1.5"} {
		_, err := ParseID(bad)
		assert.True(t, IsErrorCode(err, ErrValidation), bad)
	}
}

package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAppErrorPredicates(t *testing.T) {
	wrapped := fmt.Errorf("failed to find ticket: %w", NewNotFoundError("ticket not found", "channel 42"))

	assert.True(t, IsNotFoundError(wrapped))
	assert.False(t, IsConflictError(wrapped))
	assert.Equal(t, http.StatusNotFound, GetAppError(wrapped).Code)
	assert.Equal(t, "not_found: ticket not found (channel 42)", GetAppError(wrapped).Error())

	assert.True(t, IsPreconditionError(NewPreconditionError("thread")))
	assert.True(t, IsForbiddenError(NewForbiddenError("no role")))
	assert.Nil(t, GetAppError(errors.New("plain")))
}

func TestIsDuplicateError(t *testing.T) {
	assert.True(t, IsDuplicateError(errors.New(`ERROR: duplicate key value violates unique constraint "idx_ticket_channel"`)))
	assert.True(t, IsDuplicateError(errors.New("UNIQUE constraint failed: ticket_metadata.channel_id")))
	assert.False(t, IsDuplicateError(errors.New("connection refused")))
	assert.False(t, IsDuplicateError(nil))
}

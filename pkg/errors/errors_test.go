package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromErrorKeepsTypedErrors(t *testing.T) {
	wrapped := fmt.Errorf("load: %w", Clone(ErrNoData, "nothing uploaded"))

	appErr := FromError(wrapped)
	assert.Equal(t, ErrNoData.Code, appErr.Code)
	assert.Equal(t, "nothing uploaded", appErr.Message)
	assert.True(t, errors.Is(wrapped, ErrNoData))
}

func TestFromErrorFallsBackToInternal(t *testing.T) {
	appErr := FromError(errors.New("disk full"))
	assert.Equal(t, http.StatusInternalServerError, appErr.Status)
	assert.EqualError(t, appErr, "internal server error: disk full")
	assert.Nil(t, FromError(nil))
}

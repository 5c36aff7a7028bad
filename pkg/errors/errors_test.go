package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAppErrorMessageFormatting(t *testing.T) {
	err := NewNotFound("Team %s not found", "ops")
	require.Equal(t, "Team ops not found", err.Error())
	require.Equal(t, CodeNotFound, err.Code)
	require.Equal(t, http.StatusNotFound, err.StatusCode)
}

func TestWithInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewUpstream("Failed to create team").WithInternal(cause)

	require.ErrorIs(t, err, cause)
	require.Equal(t, "Failed to create team: disk full", err.Error())

	// The copy must not mutate the original.
	base := NewUpstream("Failed to create team")
	require.Nil(t, base.Internal)
}

func TestIsMatchesByCode(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewVersionNotFound("Version 3 not found"))
	require.True(t, IsCode(wrapped, CodeVersionNotFound))
	require.True(t, IsNotFound(wrapped))
	require.False(t, IsCode(wrapped, CodeConflict))
}

func TestFromError(t *testing.T) {
	require.Nil(t, FromError(nil))

	appErr := NewValidation("No valid fields to update")
	require.Equal(t, appErr, FromError(appErr))

	plain := errors.New("boom")
	converted := FromError(plain)
	require.Equal(t, ErrInternalServer.Code, converted.Code)
	require.ErrorIs(t, converted, plain)
}

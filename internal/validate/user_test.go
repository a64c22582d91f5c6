package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateUserData(t *testing.T) {
	res := ValidateUserData(map[string]any{})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "user uid required")
	assert.Contains(t, res.Errors, "user email required")

	res = ValidateUserData(map[string]any{"uid": "short", "email": "u@example.com"})
	assert.Contains(t, res.Errors, "invalid user uid")

	res = ValidateUserData(map[string]any{
		"uid":         "user-12345678",
		"email":       "u@example.com",
		"displayName": string(make([]byte, 101)),
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Warnings, "display name is very long")
}

func TestValidateUserAssignment(t *testing.T) {
	user := map[string]any{"uid": "user-12345678", "email": "u@example.com"}

	for _, status := range []string{StatusCompleted, StatusCancelled} {
		res := ValidateUserAssignment(user, map[string]any{"status": status})
		require.False(t, res.Valid, "status %s must reject assignment", status)
		assert.Contains(t, res.Errors, "cannot assign user to a completed or cancelled task")
	}

	res := ValidateUserAssignment(user, map[string]any{"status": StatusInProgress})
	assert.True(t, res.Valid)

	// Invalid user data propagates into the assignment result.
	res = ValidateUserAssignment(map[string]any{}, map[string]any{"status": StatusPending})
	assert.False(t, res.Valid)
}

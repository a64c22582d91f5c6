package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateClientData(t *testing.T) {
	res := ValidateClientData(map[string]any{})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "client name required")

	res = ValidateClientData(map[string]any{"name": "x"})
	assert.Contains(t, res.Errors, "client name must be at least 2 characters")

	res = ValidateClientData(map[string]any{
		"name":   "TechCorp",
		"email":  "no-es-email",
		"active": "yes",
	})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "invalid client email: invalid email format")
	assert.Contains(t, res.Errors, "field 'active' must be true or false")

	res = ValidateClientData(map[string]any{
		"name":    "TechCorp",
		"email":   "contact@techcorp.cl",
		"country": "República Democrática de los Ejemplos Extremadamente Larga",
		"active":  true,
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Warnings, "country name is very long")
}

func TestValidateClientSearchParams(t *testing.T) {
	res := ValidateClientSearchParams(map[string]any{
		"pageSize":   float64(0),
		"offset":     float64(-1),
		"order":      "UP",
		"orderField": "score",
	})
	require.False(t, res.Valid)
	assert.Contains(t, res.Errors, "pageSize must be a positive integer")
	assert.Contains(t, res.Errors, "offset must be a non-negative integer")
	assert.Contains(t, res.Errors, "order must be 'ASC' or 'DESC'")
	assert.Contains(t, res.Warnings, "orderField 'score' may not be supported")

	res = ValidateClientSearchParams(map[string]any{
		"pageSize":   float64(250),
		"offset":     float64(0),
		"order":      "DESC",
		"orderField": "name",
	})
	assert.True(t, res.Valid)
	assert.Contains(t, res.Warnings, "pageSize very large (>100), may affect performance")
}

func TestValidateEmailTwoStages(t *testing.T) {
	ok, msg := ValidateEmail("user@example.com")
	assert.True(t, ok)
	assert.Empty(t, msg)

	ok, msg = ValidateEmail("")
	assert.False(t, ok)
	assert.Equal(t, "email required", msg)

	// Structurally plausible but rejected by the stricter pattern stage.
	ok, _ = ValidateEmail("user@localhost")
	assert.False(t, ok)

	ok, _ = ValidateEmail("not an email")
	assert.False(t, ok)
}

func TestValidateDateRange(t *testing.T) {
	ok, _ := ValidateDateRange("2026-01-01T00:00:00Z", "2026-06-01T00:00:00Z")
	assert.True(t, ok)

	ok, msg := ValidateDateRange("2026-06-01T00:00:00Z", "2026-01-01T00:00:00Z")
	assert.False(t, ok)
	assert.Equal(t, "start date must be before end date", msg)

	ok, msg = ValidateDateRange("2024-01-01T00:00:00Z", "2026-06-01T00:00:00Z")
	assert.False(t, ok)
	assert.Equal(t, "date range cannot exceed 2 years", msg)

	ok, _ = ValidateDateRange("ayer", "2026-01-01T00:00:00Z")
	assert.False(t, ok)
}

package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{"type": "string"},
			"limit":  map[string]any{"type": "integer"},
		},
		"required": []any{"action"},
	}

	assert.NoError(t, ValidateParameters(map[string]any{"action": "search"}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"action": "search", "limit": float64(5)}, schema))
	assert.NoError(t, ValidateParameters(map[string]any{"action": "search", "extra": true}, schema),
		"unknown fields pass through")

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "action", verr.Field)

	err = ValidateParameters(map[string]any{"action": 42}, schema)
	require.Error(t, err)

	err = ValidateParameters(map[string]any{"action": "search", "limit": 2.5}, schema)
	assert.Error(t, err, "fractional value is not an integer")
}

func TestIsValidType(t *testing.T) {
	assert.True(t, isValidType(nil, "string"), "null is always acceptable")
	assert.True(t, isValidType("x", "string"))
	assert.True(t, isValidType(float64(3), "integer"))
	assert.False(t, isValidType(3.14, "integer"))
	assert.True(t, isValidType(3.14, "number"))
	assert.True(t, isValidType(true, "boolean"))
	assert.True(t, isValidType([]any{"a"}, "array"))
	assert.True(t, isValidType(map[string]any{}, "object"))
	assert.False(t, isValidType("x", "boolean"))
	assert.True(t, isValidType("anything", "unknown-type"), "unknown type names do not reject")
}

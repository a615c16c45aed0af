package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateImageContentType(t *testing.T) {
	assert.NoError(t, ValidateImageContentType("image/jpeg"))
	assert.NoError(t, ValidateImageContentType("image/png"))
	assert.NoError(t, ValidateImageContentType("IMAGE/WEBP"))
	assert.NoError(t, ValidateImageContentType("image/gif; charset=binary"))

	assert.Error(t, ValidateImageContentType("image/tiff"))
	assert.Error(t, ValidateImageContentType("application/pdf"))
	assert.Error(t, ValidateImageContentType(""))
}

func TestValidatePlantName(t *testing.T) {
	assert.NoError(t, ValidatePlantName("Balcony basil"))
	assert.Error(t, ValidatePlantName(""))
	assert.Error(t, ValidatePlantName("   "))
	assert.Error(t, ValidatePlantName(strings.Repeat("a", 101)))
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateCoordinates(0, 0))
	assert.NoError(t, ValidateCoordinates(-90, 180))
	assert.Error(t, ValidateCoordinates(90.1, 0))
	assert.Error(t, ValidateCoordinates(0, -180.5))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "hello", SanitizeString("hello\x00"))
	assert.Equal(t, "a\tb", SanitizeString("a\tb\x07"))
	assert.Equal(t, "trimmed", SanitizeString("  trimmed  "))
}

func TestValidateTenantID(t *testing.T) {
	assert.NoError(t, ValidateTenantID("acme"))
	assert.NoError(t, ValidateTenantID("acme_prod-1"))
	assert.Error(t, ValidateTenantID(""))
	assert.Error(t, ValidateTenantID("acme corp"))
	assert.Error(t, ValidateTenantID(strings.Repeat("a", 65)))
}

func TestValidateProfileID(t *testing.T) {
	assert.NoError(t, ValidateProfileID("123e4567-e89b-12d3-a456-426614174000"))
	assert.Error(t, ValidateProfileID(""))
	assert.Error(t, ValidateProfileID("not-a-uuid"))
}

func TestValidateLimit(t *testing.T) {
	assert.Equal(t, 20, ValidateLimit(0))
	assert.Equal(t, 20, ValidateLimit(-5))
	assert.Equal(t, 50, ValidateLimit(50))
	assert.Equal(t, 100, ValidateLimit(500))
}

package wishlistauth

import (
	"testing"

	"github.com/tj/assert"
)

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	assert.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.NoError(t, CheckPassword(hash, "hunter22"))
	assert.Equal(t, ErrInvalidCredentials, CheckPassword(hash, "hunter23"))

	// same password hashes to different salts
	other, err := HashPassword("hunter22")
	assert.NoError(t, err)
	assert.NotEqual(t, hash, other)
}

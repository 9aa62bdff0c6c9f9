package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("hunter2")
	require.NoError(t, err)

	assert.NotEqual(t, "hunter2", hash)
	assert.True(t, CheckPassword(hash, "hunter2"))
	assert.False(t, CheckPassword(hash, "hunter3"))

	again, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.NotEqual(t, hash, again, "hashes are salted")
}

func TestCheckPassword_GarbageHash(t *testing.T) {
	assert.False(t, CheckPassword("not-a-bcrypt-hash", "anything"))
}

func TestCheckPassword_LegacyDigest(t *testing.T) {
	// sha256("hunter2") as stored by older releases.
	legacy := "f52fbd32b2b3b86ff88ef6c490628285f482af15ddcb29541f94bcf526a3f6c7"

	assert.True(t, IsLegacyHash(legacy))
	assert.True(t, CheckPassword(legacy, "hunter2"))
	assert.False(t, CheckPassword(legacy, "hunter3"))

	hash, err := HashPassword("hunter2")
	require.NoError(t, err)
	assert.False(t, IsLegacyHash(hash))
}

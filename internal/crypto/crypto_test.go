package crypto

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndVerify(t *testing.T) {
	// Cost 4 keeps the test fast; the property holds for any cost >= 4.
	for _, password := range []string{"password123", "P@ssw0rd!XY", "a", ""} {
		hashed, err := Hash(password, 4)
		require.NoError(t, err)
		assert.NotEqual(t, password, hashed)
		assert.True(t, Verify(password, hashed), "password %q should verify", password)
	}
}

func TestVerify_SingleCharacterMutation(t *testing.T) {
	const password = "password123"
	hashed, err := Hash(password, 4)
	require.NoError(t, err)

	for i := 0; i < len(password); i++ {
		mutated := []byte(password)
		mutated[i]++
		assert.False(t, Verify(string(mutated), hashed), "mutation at index %d should not verify", i)
	}
}

func TestVerify_MalformedHash(t *testing.T) {
	assert.False(t, Verify("password123", ""))
	assert.False(t, Verify("password123", "not-a-bcrypt-hash"))
	assert.False(t, Verify("password123", "$2a$garbage"))
}

func TestHash_NonDeterministic(t *testing.T) {
	h1, err := Hash("password123", 4)
	require.NoError(t, err)
	h2, err := Hash("password123", 4)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h2)
}

func TestRandomToken(t *testing.T) {
	token, err := RandomToken(32)
	require.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := RandomToken(32)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)

	short, err := RandomToken(8)
	require.NoError(t, err)
	assert.Len(t, short, 16)
}

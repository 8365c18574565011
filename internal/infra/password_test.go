package infra

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

func init() { BcryptCost = bcrypt.MinCost }

func TestHashPassword_Bcrypt(t *testing.T) {
	h, err := HashPassword("rahasia123")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "rahasia123"))
	assert.False(t, CheckPassword(h, "salah"))
	assert.False(t, NeedsRehash(h))
}

func TestCheckPassword_LegacyPBKDF2(t *testing.T) {
	salt := "Qm9Ub0dGbGFzaw"
	key := pbkdf2.Key([]byte("admin123"), []byte(salt), 1000, 32, sha256.New)
	stored := "pbkdf2:sha256:1000$" + salt + "$" + hex.EncodeToString(key)

	assert.True(t, CheckPassword(stored, "admin123"))
	assert.False(t, CheckPassword(stored, "admin124"))
	assert.True(t, NeedsRehash(stored))
}

func TestCheckPassword_LegacyScrypt(t *testing.T) {
	salt := "c2FsdHNhbHQ"
	key, err := scrypt.Key([]byte("gudang"), []byte(salt), 1024, 8, 1, 64)
	require.NoError(t, err)
	stored := "scrypt:1024:8:1$" + salt + "$" + hex.EncodeToString(key)

	assert.True(t, CheckPassword(stored, "gudang"))
	assert.False(t, CheckPassword(stored, "Gudang"))
}

func TestCheckPassword_Malformed(t *testing.T) {
	for _, stored := range []string{"", "plain", "md5$x$y", "pbkdf2:sha256:abc$s$00", "pbkdf2:sha256:10$s$zz"} {
		assert.False(t, CheckPassword(stored, "x"), stored)
	}
}

package infra

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"crypto/subtle"
	"encoding/hex"
	"hash"
	"strconv"
	"strings"

	"golang.org/x/crypto/bcrypt"
	"golang.org/x/crypto/pbkdf2"
	"golang.org/x/crypto/scrypt"
)

// BcryptCost is the work factor for new password hashes.
var BcryptCost = 12

// HashPassword returns a bcrypt hash of password.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(h), nil
}

// CheckPassword verifies password against a stored hash. Besides bcrypt it
// understands the "method$salt$hex" format of accounts created by the
// previous desktop release ("pbkdf2:sha256:600000" and "scrypt:32768:8:1").
func CheckPassword(stored, password string) bool {
	if strings.HasPrefix(stored, "$2") {
		return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}

	parts := strings.SplitN(stored, "$", 3)
	if len(parts) != 3 {
		return false
	}
	method, salt, want := parts[0], parts[1], parts[2]
	wantBytes, err := hex.DecodeString(want)
	if err != nil {
		return false
	}

	got, ok := legacyDerive(method, salt, password, len(wantBytes))
	if !ok {
		return false
	}
	return subtle.ConstantTimeCompare(got, wantBytes) == 1
}

// NeedsRehash is true for hashes that are not bcrypt.
func NeedsRehash(stored string) bool { return !strings.HasPrefix(stored, "$2") }

func legacyDerive(method, salt, password string, keyLen int) ([]byte, bool) {
	fields := strings.Split(method, ":")
	switch fields[0] {
	case "pbkdf2":
		hashName := "sha256"
		iterations := 600000
		if len(fields) > 1 {
			hashName = fields[1]
		}
		if len(fields) > 2 {
			n, err := strconv.Atoi(fields[2])
			if err != nil || n <= 0 {
				return nil, false
			}
			iterations = n
		}
		h := hashFunc(hashName)
		if h == nil {
			return nil, false
		}
		return pbkdf2.Key([]byte(password), []byte(salt), iterations, keyLen, h), true

	case "scrypt":
		n, r, p := 32768, 8, 1
		if len(fields) == 4 {
			var err error
			if n, err = strconv.Atoi(fields[1]); err != nil {
				return nil, false
			}
			if r, err = strconv.Atoi(fields[2]); err != nil {
				return nil, false
			}
			if p, err = strconv.Atoi(fields[3]); err != nil {
				return nil, false
			}
		}
		key, err := scrypt.Key([]byte(password), []byte(salt), n, r, p, keyLen)
		if err != nil {
			return nil, false
		}
		return key, true
	}
	return nil, false
}

func hashFunc(name string) func() hash.Hash {
	switch name {
	case "sha1":
		return sha1.New
	case "sha256":
		return sha256.New
	case "sha512":
		return sha512.New
	}
	return nil
}

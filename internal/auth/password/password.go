// Package password wraps bcrypt credential hashing.
package password

import "golang.org/x/crypto/bcrypt"

// bcrypt truncates beyond 72 bytes; transport validation caps input length.
const hashCost = bcrypt.DefaultCost

// Hash derives a bcrypt hash from a plaintext password.
func Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), hashCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// Verify reports whether the plaintext matches the stored hash.
func Verify(hash, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

// hash.go - Password digest used by registration and sign-in.
package server

import (
	"crypto/sha1"
	"encoding/hex"
)

// hashPassword returns the lowercase hex SHA-1 digest of password.
//
// The digest is deterministic on purpose: sign-in matches users by
// {email, password digest} in a single lookup, so registration and
// verification must produce identical output for identical input. SHA-1 is
// the format every existing user record was created with; changing it
// requires a migration of the users collection, not just a code change.
func hashPassword(password string) string {
	sum := sha1.Sum([]byte(password))
	return hex.EncodeToString(sum[:])
}

// errors.go - Error taxonomy and JSON error responses.
package server

import (
	"encoding/json"
	"errors"
	"net/http"
)

// Sentinel errors shared across the package. Handlers translate these into
// HTTP responses in exactly one place so that credential failures are never
// distinguishable from each other on the wire.
var (
	// ErrMalformedCredential covers a missing, unparseable, or incomplete
	// Authorization header.
	ErrMalformedCredential = errors.New("malformed credential")

	// ErrInvalidCredential covers a well-formed credential with no matching
	// user record. Callers must not reveal which part was wrong.
	ErrInvalidCredential = errors.New("invalid credential")

	// ErrTokenNotFound covers a session token absent from the key-value
	// store: never issued, expired, or already revoked.
	ErrTokenNotFound = errors.New("token not found")

	// ErrStoreUnavailable covers a backing store whose connection is down
	// when a call is attempted.
	ErrStoreUnavailable = errors.New("store unavailable")

	// ErrNotFound covers a document lookup that matched nothing.
	ErrNotFound = errors.New("record not found")
)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes the canonical {"error": msg} body.
func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// unauthorized is the single 401 shape used for every credential or token
// failure. MalformedCredential, InvalidCredential and TokenNotFound all end
// up here and are indistinguishable to the client.
func unauthorized(w http.ResponseWriter) {
	writeError(w, http.StatusUnauthorized, "Unauthorized")
}

// isAuthFailure reports whether err is one of the credential/token errors
// that map to a 401. Store-level failures are deliberately excluded: a down
// Redis or Mongo must surface as a server error, not as bad credentials.
func isAuthFailure(err error) bool {
	return errors.Is(err, ErrMalformedCredential) ||
		errors.Is(err, ErrInvalidCredential) ||
		errors.Is(err, ErrTokenNotFound)
}

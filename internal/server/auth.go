// auth.go - Credential verification and the sign-in/sign-out handlers.
//
// Sign-in converts a one-time Basic credential into a session token stored
// in Redis; sign-out deletes the token. Every credential failure, whatever
// its cause, is surfaced as the same 401 body.
package server

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// tokenHeader carries the session token on authenticated requests.
const tokenHeader = "X-Token"

// CredentialVerifier decodes a Basic Authorization header and matches the
// credential against a stored user record. It never compares plaintext
// passwords: the supplied password is digested and matched against the
// stored digest in a single lookup, so an unknown email and a wrong
// password are indistinguishable.
type CredentialVerifier struct {
	store DocumentStore
}

// NewCredentialVerifier builds a verifier over the given store handle.
func NewCredentialVerifier(store DocumentStore) *CredentialVerifier {
	return &CredentialVerifier{store: store}
}

// parseBasicCredentials splits an Authorization header of the form
// "Basic base64(email:password)". Any structural defect, including an
// empty email or password, is ErrMalformedCredential.
func parseBasicCredentials(header string) (email, password string, err error) {
	if header == "" {
		return "", "", ErrMalformedCredential
	}
	_, payload, found := strings.Cut(header, " ")
	if !found || payload == "" {
		return "", "", ErrMalformedCredential
	}
	decoded, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", "", ErrMalformedCredential
	}
	// Split on the first colon only: passwords may contain colons.
	email, password, found = strings.Cut(string(decoded), ":")
	if !found || email == "" || password == "" {
		return "", "", ErrMalformedCredential
	}
	return email, password, nil
}

// Verify resolves an Authorization header to the matching user record.
// Failures are ErrMalformedCredential, ErrInvalidCredential, or a store
// error; the first two map to the same 401 upstream.
func (v *CredentialVerifier) Verify(ctx context.Context, header string) (*User, error) {
	email, password, err := parseBasicCredentials(header)
	if err != nil {
		return nil, err
	}

	var u User
	err = v.store.FindOne(ctx, usersCollection, bson.M{
		"email":    email,
		"password": hashPassword(password),
	}, &u)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrInvalidCredential
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// currentUser resolves the X-Token header on r to a full user record. It
// returns ErrTokenNotFound for a missing, expired, or revoked token, and
// also when the user record was deleted after issuance: a stale token must
// never resolve to a phantom user.
func (s *Server) currentUser(ctx context.Context, r *http.Request) (*User, error) {
	token := r.Header.Get(tokenHeader)
	if token == "" {
		return nil, ErrTokenNotFound
	}

	userID, ok, err := s.sessions.Resolve(ctx, token)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrTokenNotFound
	}

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return nil, ErrTokenNotFound
	}

	var u User
	err = s.store.FindOne(ctx, usersCollection, bson.M{"_id": oid}, &u)
	if errors.Is(err, ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// handleConnect implements GET /connect: Basic credentials in, fresh
// session token out. Concurrent sign-ins for the same user mint
// independent tokens; there is no single-session enforcement.
func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	user, err := s.verifier.Verify(r.Context(), r.Header.Get("Authorization"))
	if err != nil {
		if isAuthFailure(err) {
			unauthorized(w)
			return
		}
		s.log.Error("sign-in failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	token, err := s.sessions.Issue(r.Context(), user.ID.Hex())
	if err != nil {
		s.log.Error("token issuance failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// handleDisconnect implements GET /disconnect. Revocation is idempotent:
// signing out with an already-revoked token still succeeds, only a missing
// token header is rejected.
func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	token := r.Header.Get(tokenHeader)
	if token == "" {
		unauthorized(w)
		return
	}

	if err := s.sessions.Revoke(r.Context(), token); err != nil {
		s.log.Error("sign-out failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

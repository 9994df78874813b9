// users.go - User records, registration, and the current-user endpoint.
package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User is a persisted account record. Password holds the hex SHA-1 digest
// of the account password, never the plaintext; it is excluded from every
// JSON response.
type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty" json:"-"`
	Email    string             `bson:"email" json:"email"`
	Password string             `bson:"password" json:"-"`
}

// userResponse is the public shape of a user record.
type userResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// handleCreateUser implements POST /users. Email uniqueness is enforced by
// a lookup-before-insert: two racing registrations for the same email can
// in principle both pass the lookup, which the single-writer deployment
// tolerates today.
func (s *Server) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	// An unparseable body carries no email; report it the same way as an
	// empty one.
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Missing email")
		return
	}
	if body.Email == "" {
		writeError(w, http.StatusBadRequest, "Missing email")
		return
	}
	if body.Password == "" {
		writeError(w, http.StatusBadRequest, "Missing password")
		return
	}

	var existing User
	err := s.store.FindOne(r.Context(), usersCollection, bson.M{"email": body.Email}, &existing)
	if err == nil {
		writeError(w, http.StatusBadRequest, "Already exist")
		return
	}
	if !errors.Is(err, ErrNotFound) {
		s.log.Error("registration lookup failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Error creating user.")
		return
	}

	id, err := s.store.InsertOne(r.Context(), usersCollection, User{
		Email:    body.Email,
		Password: hashPassword(body.Password),
	})
	if err != nil {
		s.log.Error("registration insert failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Error creating user.")
		return
	}

	writeJSON(w, http.StatusCreated, userResponse{ID: id, Email: body.Email})
}

// handleCurrentUser implements GET /users/me: token in, owning user out.
func (s *Server) handleCurrentUser(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method Not Allowed")
		return
	}

	user, err := s.currentUser(r.Context(), r)
	if err != nil {
		if isAuthFailure(err) {
			unauthorized(w)
			return
		}
		s.log.Error("current-user lookup failed", logFields(r, nil), err)
		writeError(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}

	writeJSON(w, http.StatusOK, userResponse{ID: user.ID.Hex(), Email: user.Email})
}

package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func basicHeader(email, password string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(email+":"+password))
}

func TestParseBasicCredentials(t *testing.T) {
	cases := []struct {
		name     string
		header   string
		email    string
		password string
		wantErr  bool
	}{
		{name: "valid", header: basicHeader("bob@dylan.com", "toto1234!"), email: "bob@dylan.com", password: "toto1234!"},
		{name: "password with colon", header: basicHeader("bob@dylan.com", "to:to"), email: "bob@dylan.com", password: "to:to"},
		{name: "missing header", header: "", wantErr: true},
		{name: "no payload", header: "Basic", wantErr: true},
		{name: "empty payload", header: "Basic ", wantErr: true},
		{name: "bad base64", header: "Basic %%%%", wantErr: true},
		{name: "no colon", header: "Basic " + base64.StdEncoding.EncodeToString([]byte("bobdylan.com")), wantErr: true},
		{name: "empty email", header: basicHeader("", "pw"), wantErr: true},
		{name: "empty password", header: basicHeader("bob@dylan.com", ""), wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			email, password, err := parseBasicCredentials(tc.header)
			if tc.wantErr {
				if !errors.Is(err, ErrMalformedCredential) {
					t.Fatalf("expected ErrMalformedCredential, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if email != tc.email || password != tc.password {
				t.Fatalf("got (%q, %q), want (%q, %q)", email, password, tc.email, tc.password)
			}
		})
	}
}

func TestConnectIssuesToken(t *testing.T) {
	srv, kv, store := newTestServer(Config{})
	user := store.addUser("bob@dylan.com", hashPassword("toto1234!"))

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.Header.Set("Authorization", basicHeader("bob@dylan.com", "toto1234!"))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}

	var body struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Token == "" {
		t.Fatalf("expected a token in the response")
	}

	got, ok, err := kv.Get(req.Context(), authKeyPrefix+body.Token)
	if err != nil || !ok {
		t.Fatalf("token not stored: ok=%v err=%v", ok, err)
	}
	if got != user.ID.Hex() {
		t.Fatalf("token maps to %q, want %q", got, user.ID.Hex())
	}
}

func TestConnectUnauthorized(t *testing.T) {
	srv, _, store := newTestServer(Config{})
	store.addUser("bob@dylan.com", hashPassword("toto1234!"))

	headers := map[string]string{
		"wrong password":   basicHeader("bob@dylan.com", "nope"),
		"unknown email":    basicHeader("alice@dylan.com", "toto1234!"),
		"malformed header": "Basic not-base64!!!",
		"absent header":    "",
	}

	for name, header := range headers {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/connect", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rr := httptest.NewRecorder()
			srv.Handler().ServeHTTP(rr, req)

			if rr.Code != http.StatusUnauthorized {
				t.Fatalf("expected 401, got %d", rr.Code)
			}
			// The body must never reveal which part of the credential
			// failed.
			if strings.TrimSpace(rr.Body.String()) != `{"error":"Unauthorized"}` {
				t.Fatalf("unexpected body: %s", rr.Body.String())
			}
		})
	}
}

func TestConnectStoreFailureIsNotUnauthorized(t *testing.T) {
	srv, _, store := newTestServer(Config{})
	store.findErr = ErrStoreUnavailable

	req := httptest.NewRequest(http.MethodGet, "/connect", nil)
	req.Header.Set("Authorization", basicHeader("bob@dylan.com", "toto1234!"))
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500 for a down store, got %d", rr.Code)
	}
}

func TestDisconnectRevokesToken(t *testing.T) {
	srv, _, store := newTestServer(Config{})
	user := store.addUser("bob@dylan.com", hashPassword("toto1234!"))

	token, err := srv.sessions.Issue(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	req.Header.Set(tokenHeader, token)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rr.Code)
	}
	if rr.Body.Len() != 0 {
		t.Fatalf("expected empty body, got %s", rr.Body.String())
	}

	if _, ok, _ := srv.sessions.Resolve(context.Background(), token); ok {
		t.Fatalf("token still resolves after sign-out")
	}

	// Signing out again with the same token is a no-op, not an error.
	rr = httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected 204 on repeated sign-out, got %d", rr.Code)
	}
}

func TestDisconnectWithoutToken(t *testing.T) {
	srv, _, _ := newTestServer(Config{})

	req := httptest.NewRequest(http.MethodGet, "/disconnect", nil)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rr.Code)
	}
}

func TestCurrentUserStaleToken(t *testing.T) {
	srv, _, store := newTestServer(Config{})
	user := store.addUser("bob@dylan.com", hashPassword("toto1234!"))

	token, err := srv.sessions.Issue(context.Background(), user.ID.Hex())
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	// Delete the record behind a live token: it must not resolve to a
	// phantom user.
	store.removeUser(user.ID)

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	req.Header.Set(tokenHeader, token)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a stale token, got %d", rr.Code)
	}
}

package server

import (
	"context"
	"io"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeKV is an in-memory KeyValue with TTL semantics driven by an
// injectable clock, so expiry tests never sleep.
type fakeKV struct {
	mu     sync.Mutex
	data   map[string]fakeEntry
	now    func() time.Time
	alive  bool
	setErr error
	getErr error
}

type fakeEntry struct {
	value     string
	expiresAt time.Time
}

func newFakeKV() *fakeKV {
	return &fakeKV{
		data:  make(map[string]fakeEntry),
		now:   time.Now,
		alive: true,
	}
}

func (f *fakeKV) IsAlive() bool { return f.alive }

func (f *fakeKV) Get(ctx context.Context, key string) (string, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return "", false, f.getErr
	}
	e, ok := f.data[key]
	if !ok || !f.now().Before(e.expiresAt) {
		// Expired keys read exactly like keys that never existed.
		delete(f.data, key)
		return "", false, nil
	}
	return e.value, true, nil
}

func (f *fakeKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.data[key] = fakeEntry{value: value, expiresAt: f.now().Add(ttl)}
	return nil
}

func (f *fakeKV) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.data, key)
	return nil
}

func (f *fakeKV) len() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.data)
}

// fakeStore is an in-memory DocumentStore holding user records plus a bare
// file count.
type fakeStore struct {
	mu       sync.Mutex
	alive    bool
	users    []User
	files    int64
	countErr error
	findErr  error
}

func newFakeStore() *fakeStore {
	return &fakeStore{alive: true}
}

// addUser seeds a user record and returns it with a generated id.
func (f *fakeStore) addUser(email, passwordDigest string) User {
	f.mu.Lock()
	defer f.mu.Unlock()
	u := User{ID: primitive.NewObjectID(), Email: email, Password: passwordDigest}
	f.users = append(f.users, u)
	return u
}

func (f *fakeStore) removeUser(id primitive.ObjectID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.users[:0]
	for _, u := range f.users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	f.users = kept
}

func (f *fakeStore) IsAlive() bool { return f.alive }

func (f *fakeStore) Count(ctx context.Context, collection string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	switch collection {
	case usersCollection:
		return int64(len(f.users)), nil
	case filesCollection:
		return f.files, nil
	}
	return 0, nil
}

func (f *fakeStore) FindOne(ctx context.Context, collection string, filter, out any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return f.findErr
	}
	q, ok := filter.(bson.M)
	if !ok || collection != usersCollection {
		return ErrNotFound
	}
	for _, u := range f.users {
		if matchUser(q, u) {
			*out.(*User) = u
			return nil
		}
	}
	return ErrNotFound
}

func (f *fakeStore) InsertOne(ctx context.Context, collection string, doc any) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := doc.(User)
	if !ok || collection != usersCollection {
		return primitive.NewObjectID().Hex(), nil
	}
	u.ID = primitive.NewObjectID()
	f.users = append(f.users, u)
	return u.ID.Hex(), nil
}

func matchUser(q bson.M, u User) bool {
	for k, v := range q {
		switch k {
		case "email":
			if v != u.Email {
				return false
			}
		case "password":
			if v != u.Password {
				return false
			}
		case "_id":
			if v != u.ID {
				return false
			}
		default:
			return false
		}
	}
	return true
}

// newTestServer wires a Server over fresh fakes with a silent logger.
func newTestServer(cfg Config) (*Server, *fakeKV, *fakeStore) {
	kv := newFakeKV()
	store := newFakeStore()
	log := NewLogger(io.Discard, "error", false)
	return New(cfg, kv, store, log), kv, store
}

// Package server implements the files-manager HTTP backend: credential
// verification, Redis-backed session tokens, user registration, and the
// status/stats reporting endpoints. It wires handlers to injected store
// handles (Redis, MongoDB) and provides lifecycle helpers used by tests
// and the production binary.
package server

// Package store holds retrieved payloads for the viewer, scoped to a
// browsing session.
//
// A Session is the injected dependency handed to the navigation controller
// and the viewer; it maps content identifiers to the last payload retrieved
// for them. Entries expire with the session (the backend TTL), there is no
// other eviction.
package store

import (
	"context"
	"errors"
	"time"

	"meshbrowse/contentid"
	"meshbrowse/daemon"
)

// ErrClosed is returned by a backend after Close.
var ErrClosed = errors.New("store: closed")

// Payload is the stored form of a successful retrieval.
type Payload struct {
	Content   string        `json:"content"`
	MimeType  string        `json:"mimeType"`
	Source    daemon.Source `json:"source"`
	Timestamp time.Time     `json:"timestamp"`
}

// FromResult converts a successful retrieval into a payload stamped at now.
func FromResult(r daemon.Result, now time.Time) Payload {
	return Payload{
		Content:   r.Content,
		MimeType:  r.MimeType,
		Source:    r.Source,
		Timestamp: now,
	}
}

// Backend is a key-value store with per-key expiry.
type Backend interface {
	Put(ctx context.Context, key string, p Payload, ttl time.Duration) error
	// Get returns ok=false, not an error, for missing or expired keys.
	Get(ctx context.Context, key string) (p Payload, ok bool, err error)
	Close() error
}

const keyPrefix = "meshbrowse:"

// Session scopes a Backend to one browsing session.
type Session struct {
	id      string
	backend Backend
	ttl     time.Duration
}

// NewSession binds backend to the session id. Entries live for ttl after
// their last write.
func NewSession(backend Backend, id string, ttl time.Duration) *Session {
	return &Session{id: id, backend: backend, ttl: ttl}
}

// ID returns the session identifier.
func (s *Session) ID() string { return s.id }

// Put overwrites any existing entry for id.
func (s *Session) Put(ctx context.Context, id contentid.ID, p Payload) error {
	return s.backend.Put(ctx, s.key(id), p, s.ttl)
}

// Get returns the entry for id, or ok=false if there is none.
func (s *Session) Get(ctx context.Context, id contentid.ID) (Payload, bool, error) {
	return s.backend.Get(ctx, s.key(id))
}

func (s *Session) key(id contentid.ID) string {
	return keyPrefix + s.id + ":content_" + id.String()
}

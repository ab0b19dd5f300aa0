// Package session stores generated concept maps so they can be reloaded.
//
// A session is one generated map: the topic the user asked about and the
// markup the content service returned. Layouts are not stored; they are
// recomputed from the content on every load so stored maps always reflect
// the current layout rules.
//
// Three backends implement [Store]:
//   - memory: in-process map, for tests and single-shot servers
//   - file: one JSON file per session, for the CLI
//   - mongo: a MongoDB collection with a TTL index, for shared deployments
//
// # Usage
//
//	store, err := session.Open(ctx, session.Options{Backend: session.BackendFile})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	sess, err := session.New("Gout", content, session.DefaultTTL)
//	if err != nil {
//	    return err
//	}
//	store.Set(ctx, sess)
//
//	sess, err = store.Get(ctx, id)
//	if err != nil {
//	    return err
//	}
//	if sess == nil {
//	    // Session not found or expired
//	}
package session

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultTTL is how long a session is kept when no TTL is given.
const DefaultTTL = 30 * 24 * time.Hour

// Session is one saved concept map.
type Session struct {
	ID        string    `json:"id" bson:"_id"`
	Topic     string    `json:"topic" bson:"topic"`
	Content   string    `json:"content" bson:"content"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
}

// IsExpired returns true if the session has expired.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// Summary is the listing form of a session, without content.
type Summary struct {
	ID        string    `json:"id" bson:"_id"`
	Topic     string    `json:"topic" bson:"topic"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// Summary returns the listing form of s.
func (s *Session) Summary() Summary {
	return Summary{ID: s.ID, Topic: s.Topic, CreatedAt: s.CreatedAt}
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist or has expired.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session, replacing any session with the same ID.
	Set(ctx context.Context, sess *Session) error

	// Delete removes a session. Deleting a missing session is not an error.
	Delete(ctx context.Context, id string) error

	// List returns unexpired sessions, newest first.
	List(ctx context.Context) ([]Summary, error)

	// Cleanup removes expired sessions.
	Cleanup(ctx context.Context) error

	// Close releases backend resources.
	Close() error
}

// New creates a session with a random UUID. A non-positive ttl means
// [DefaultTTL].
func New(topic, content string, ttl time.Duration) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, fmt.Errorf("generate session id: %w", err)
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	now := time.Now().UTC()
	return &Session{
		ID:        id.String(),
		Topic:     strings.TrimSpace(topic),
		Content:   content,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}, nil
}

// sortNewestFirst orders summaries by creation time, newest first, with the
// ID as tie-breaker so listings are stable.
func sortNewestFirst(list []Summary) {
	slices.SortFunc(list, func(a, b Summary) int {
		if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
			return c
		}
		return strings.Compare(a.ID, b.ID)
	})
}

//go:build unit

package handler

import (
	"context"
	"testing"

	"stormcenter/internal/data"
)

// stubAuthorDirectory resolves usernames from a fixed map.
type stubAuthorDirectory struct {
	byUsername map[string]*data.Author
}

func (s *stubAuthorDirectory) GetByUsername(ctx context.Context, username string) (*data.Author, error) {
	if a, ok := s.byUsername[username]; ok {
		return a, nil
	}
	return nil, data.ErrNotFound
}

func TestAuthHandler_StoreAuthorID(t *testing.T) {
	authors := &stubAuthorDirectory{byUsername: map[string]*data.Author{
		"jdoe": {ID: 7, Username: "jdoe"},
	}}
	ctx := context.Background()

	t.Run("preferred username resolves to the author row", func(t *testing.T) {
		sessions := &stubSessionManager{}
		h := NewAuthHandler(nil, sessions, authors)

		h.storeAuthorID(ctx, "jdoe", "jdoe@example.org")

		if got := sessions.GetString(ctx, sessionAuthorIDKey); got != "7" {
			t.Errorf("expected author id '7' in the session, got '%s'", got)
		}
	})

	t.Run("falls back to the subject when the claim is absent", func(t *testing.T) {
		sessions := &stubSessionManager{}
		h := NewAuthHandler(nil, sessions, authors)

		h.storeAuthorID(ctx, "", "jdoe")

		if got := sessions.GetString(ctx, sessionAuthorIDKey); got != "7" {
			t.Errorf("expected author id '7' in the session, got '%s'", got)
		}
	})

	t.Run("a login without an author row stores nothing", func(t *testing.T) {
		sessions := &stubSessionManager{}
		h := NewAuthHandler(nil, sessions, authors)

		h.storeAuthorID(ctx, "visitor", "visitor@example.org")

		if got := sessions.GetString(ctx, sessionAuthorIDKey); got != "" {
			t.Errorf("expected no author id, got '%s'", got)
		}
	})

	t.Run("nil directory is a no-op", func(t *testing.T) {
		sessions := &stubSessionManager{}
		h := NewAuthHandler(nil, sessions, nil)

		h.storeAuthorID(ctx, "jdoe", "jdoe@example.org")

		if got := sessions.GetString(ctx, sessionAuthorIDKey); got != "" {
			t.Errorf("expected no author id, got '%s'", got)
		}
	})
}

package dialog

import (
	"context"
	"strings"
)

// Store persists each user's remembered zodiac sign.
type Store interface {
	SaveSign(ctx context.Context, userID, sign string) error
	// Sign returns the remembered sign code, or "" when none is stored.
	Sign(ctx context.Context, userID string) (string, error)
	Close() error
}

// NewStore creates a postgres-backed store when configured, otherwise
// in-memory.
func NewStore(ctx context.Context, databaseURL string) (Store, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return NewInMemoryStore(), nil
	}
	return NewPostgresStore(ctx, databaseURL)
}

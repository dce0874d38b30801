package repository

import (
	"context"
)

// SessionRepository is the user-state provider: it answers whether a
// session exists and which loyalty programs its owner prefers. The
// planner consumes the programs purely as a ranking input.
type SessionRepository interface {
	Exists(ctx context.Context, sessionID string) (bool, error)
	GetPreferredPrograms(ctx context.Context, sessionID string) ([]string, error)
}

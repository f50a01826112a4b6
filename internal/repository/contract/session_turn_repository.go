package contract

import (
	"context"

	"smart-triage-be/internal/entity"

	"github.com/google/uuid"
)

type SessionTurnRepository interface {
	Create(ctx context.Context, turn *entity.SessionTurn) error
	FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.SessionTurn, error)
}

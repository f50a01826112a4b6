package contract

import (
	"context"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/repository/specification"

	"github.com/google/uuid"
)

type StageArtifactRepository interface {
	// Upsert inserts the artifact or, for a sanctioned symptoms overwrite,
	// replaces the existing (session, stage) row with the new version.
	Upsert(ctx context.Context, artifact *entity.StageArtifact) error
	FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.StageArtifact, error)
	FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StageArtifact, error)
	Count(ctx context.Context, specs ...specification.Specification) (int64, error)
}

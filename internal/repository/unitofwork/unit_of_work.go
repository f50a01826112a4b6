package unitofwork

import (
	"context"

	"smart-triage-be/internal/repository/contract"
)

type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	TriageSessionRepository() contract.TriageSessionRepository
	StageArtifactRepository() contract.StageArtifactRepository
	SessionTurnRepository() contract.SessionTurnRepository
	KnowledgeChunkRepository() contract.KnowledgeChunkRepository
}

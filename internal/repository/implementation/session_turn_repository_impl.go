package implementation

import (
	"context"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/mapper"
	"smart-triage-be/internal/model"
	"smart-triage-be/internal/repository/contract"
	"smart-triage-be/internal/repository/scope"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SessionTurnRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TriageMapper
}

func NewSessionTurnRepository(db *gorm.DB) contract.SessionTurnRepository {
	return &SessionTurnRepositoryImpl{
		db:     db,
		mapper: mapper.NewTriageMapper(),
	}
}

func (r *SessionTurnRepositoryImpl) Create(ctx context.Context, turn *entity.SessionTurn) error {
	m := r.mapper.TurnToModel(turn)
	if err := r.db.WithContext(ctx).Create(m).Error; err != nil {
		return err
	}
	*turn = *r.mapper.TurnToEntity(m)
	return nil
}

func (r *SessionTurnRepositoryImpl) FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.SessionTurn, error) {
	var models []*model.SessionTurn
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Scopes(scope.OrderByCreatedAsc).
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.TurnsToEntities(models), nil
}

package implementation

import (
	"context"
	"errors"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/mapper"
	"smart-triage-be/internal/model"
	"smart-triage-be/internal/repository/contract"
	"smart-triage-be/internal/repository/specification"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StageArtifactRepositoryImpl struct {
	db     *gorm.DB
	mapper *mapper.TriageMapper
}

func NewStageArtifactRepository(db *gorm.DB) contract.StageArtifactRepository {
	return &StageArtifactRepositoryImpl{
		db:     db,
		mapper: mapper.NewTriageMapper(),
	}
}

func (r *StageArtifactRepositoryImpl) applySpecifications(db *gorm.DB, specs ...specification.Specification) *gorm.DB {
	for _, spec := range specs {
		db = spec.Apply(db)
	}
	return db
}

func (r *StageArtifactRepositoryImpl) Upsert(ctx context.Context, artifact *entity.StageArtifact) error {
	m := r.mapper.ArtifactToModel(artifact)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "stage_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "producer", "version", "updated_at"}),
	}).Create(m).Error
	if err != nil {
		return err
	}
	*artifact = *r.mapper.ArtifactToEntity(m)
	return nil
}

func (r *StageArtifactRepositoryImpl) FindBySession(ctx context.Context, sessionId uuid.UUID) ([]*entity.StageArtifact, error) {
	var models []*model.StageArtifact
	err := r.db.WithContext(ctx).
		Where("session_id = ?", sessionId).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	return r.mapper.ArtifactsToEntities(models), nil
}

func (r *StageArtifactRepositoryImpl) FindOne(ctx context.Context, specs ...specification.Specification) (*entity.StageArtifact, error) {
	var m model.StageArtifact
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	if err := query.First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return r.mapper.ArtifactToEntity(&m), nil
}

func (r *StageArtifactRepositoryImpl) Count(ctx context.Context, specs ...specification.Specification) (int64, error) {
	var count int64
	query := r.applySpecifications(r.db.WithContext(ctx), specs...)
	err := query.Model(&model.StageArtifact{}).Count(&count).Error
	return count, err
}

package mapper

import (
	"time"

	"smart-triage-be/internal/entity"
	"smart-triage-be/internal/model"

	"gorm.io/datatypes"
)

type TriageMapper struct{}

func NewTriageMapper() *TriageMapper {
	return &TriageMapper{}
}

func (m *TriageMapper) SessionToEntity(s *model.TriageSession) *entity.TriageSession {
	if s == nil {
		return nil
	}

	var updatedAt *time.Time
	if !s.UpdatedAt.IsZero() {
		t := s.UpdatedAt
		updatedAt = &t
	}

	return &entity.TriageSession{
		Id:              s.Id,
		PatientId:       s.PatientId,
		Location:        s.Location,
		Status:          s.Status,
		RequestedFields: []string(s.RequestedFields),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *TriageMapper) SessionToModel(s *entity.TriageSession) *model.TriageSession {
	if s == nil {
		return nil
	}

	var updatedAt time.Time
	if s.UpdatedAt != nil {
		updatedAt = *s.UpdatedAt
	}

	return &model.TriageSession{
		Id:              s.Id,
		PatientId:       s.PatientId,
		Location:        s.Location,
		Status:          s.Status,
		RequestedFields: datatypes.NewJSONSlice(s.RequestedFields),
		CreatedAt:       s.CreatedAt,
		UpdatedAt:       updatedAt,
	}
}

func (m *TriageMapper) ArtifactToEntity(a *model.StageArtifact) *entity.StageArtifact {
	if a == nil {
		return nil
	}
	return &entity.StageArtifact{
		Id:        a.Id,
		SessionId: a.SessionId,
		StageKey:  a.StageKey,
		Payload:   []byte(a.Payload),
		Producer:  a.Producer,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
	}
}

func (m *TriageMapper) ArtifactToModel(a *entity.StageArtifact) *model.StageArtifact {
	if a == nil {
		return nil
	}
	return &model.StageArtifact{
		Id:        a.Id,
		SessionId: a.SessionId,
		StageKey:  a.StageKey,
		Payload:   datatypes.JSON(a.Payload),
		Producer:  a.Producer,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
	}
}

func (m *TriageMapper) TurnToEntity(t *model.SessionTurn) *entity.SessionTurn {
	if t == nil {
		return nil
	}
	return &entity.SessionTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func (m *TriageMapper) TurnToModel(t *entity.SessionTurn) *model.SessionTurn {
	if t == nil {
		return nil
	}
	return &model.SessionTurn{
		Id:        t.Id,
		SessionId: t.SessionId,
		Role:      t.Role,
		Content:   t.Content,
		CreatedAt: t.CreatedAt,
	}
}

func (m *TriageMapper) ArtifactsToEntities(artifacts []*model.StageArtifact) []*entity.StageArtifact {
	entities := make([]*entity.StageArtifact, len(artifacts))
	for i, a := range artifacts {
		entities[i] = m.ArtifactToEntity(a)
	}
	return entities
}

func (m *TriageMapper) TurnsToEntities(turns []*model.SessionTurn) []*entity.SessionTurn {
	entities := make([]*entity.SessionTurn, len(turns))
	for i, t := range turns {
		entities[i] = m.TurnToEntity(t)
	}
	return entities
}

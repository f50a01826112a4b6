package specification

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BySessionId filters artifacts and turns by their owning session
type BySessionId struct {
	SessionId uuid.UUID
}

func (s BySessionId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("session_id = ?", s.SessionId)
}

// ByPatientId filters sessions by patient
type ByPatientId struct {
	PatientId string
}

func (s ByPatientId) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("patient_id = ?", s.PatientId)
}

// ByStageKey filters artifacts by stage
type ByStageKey struct {
	StageKey string
}

func (s ByStageKey) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("stage_key = ?", s.StageKey)
}

// ByStatus filters sessions by lifecycle status
type ByStatus struct {
	Status string
}

func (s ByStatus) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("status = ?", s.Status)
}

// ByCollection filters knowledge chunks by collection name
type ByCollection struct {
	Collection string
}

func (s ByCollection) Apply(db *gorm.DB) *gorm.DB {
	return db.Where("collection = ?", s.Collection)
}

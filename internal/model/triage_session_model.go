package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type TriageSession struct {
	Id              uuid.UUID                   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PatientId       string                      `gorm:"type:text;not null;index"`
	Location        string                      `gorm:"type:text"`
	Status          string                      `gorm:"type:text;not null;default:'active'"` // active | completed
	RequestedFields datatypes.JSONSlice[string] `gorm:"type:jsonb"`                          // fields already re-asked via the back-edge
	CreatedAt       time.Time                   `gorm:"autoCreateTime"`
	UpdatedAt       time.Time                   `gorm:"autoUpdateTime"`
	DeletedAt       gorm.DeletedAt              `gorm:"index"`
}

func (TriageSession) TableName() string {
	return "triage_sessions"
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type TriageSession struct {
	Id              uuid.UUID
	PatientId       string
	Location        string
	Status          string
	RequestedFields []string
	CreatedAt       time.Time
	UpdatedAt       *time.Time
}

type StageArtifact struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	StageKey  string
	Payload   []byte
	Producer  string
	Version   int
	CreatedAt time.Time
}

type SessionTurn struct {
	Id        uuid.UUID
	SessionId uuid.UUID
	Role      string
	Content   string
	CreatedAt time.Time
}

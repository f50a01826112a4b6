package dto

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type CreateTriageSessionRequest struct {
	PatientId string `json:"patient_id" validate:"required"`
	Location  string `json:"location,omitempty"`
}

type CreateTriageSessionResponse struct {
	Id        uuid.UUID `json:"id"`
	PatientId string    `json:"patient_id"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

type SendTurnRequest struct {
	Message string `json:"message" validate:"required"`
}

type StageArtifactDTO struct {
	StageKey  string          `json:"stage_key"`
	Payload   json.RawMessage `json:"payload"`
	Producer  string          `json:"producer"`
	Version   int             `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
}

type SendTurnResponse struct {
	SessionId       uuid.UUID          `json:"session_id"`
	Reply           string             `json:"reply"`
	CurrentStage    string             `json:"current_stage"`
	Completed       bool               `json:"completed"`
	MissingFields   []string           `json:"missing_fields,omitempty"`
	CommittedStages []StageArtifactDTO `json:"committed_stages,omitempty"`
}

type GetSessionResponse struct {
	Id        uuid.UUID          `json:"id"`
	PatientId string             `json:"patient_id"`
	Status    string             `json:"status"`
	CreatedAt time.Time          `json:"created_at"`
	Artifacts []StageArtifactDTO `json:"artifacts"`
	Turns     []TurnDTO          `json:"turns"`
}

type TurnDTO struct {
	Role      string    `json:"role"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

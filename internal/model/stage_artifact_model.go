package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

type StageArtifact struct {
	Id        uuid.UUID      `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	SessionId uuid.UUID      `gorm:"type:uuid;not null;index:idx_artifact_session_stage,unique"`
	StageKey  string         `gorm:"type:text;not null;index:idx_artifact_session_stage,unique"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	Producer  string         `gorm:"type:text;not null"`
	Version   int            `gorm:"not null;default:1"`
	CreatedAt time.Time      `gorm:"autoCreateTime"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime"`
}

func (StageArtifact) TableName() string {
	return "stage_artifacts"
}

package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

type KnowledgeChunk struct {
	Id             uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ChunkKey       string          `gorm:"type:text;not null;uniqueIndex"` // {collection}_{index}_{md5}
	Collection     string          `gorm:"type:text;not null;index"`
	SourceName     string          `gorm:"type:text;not null"`
	ChunkIndex     int             `gorm:"not null;default:0"`
	ChunkSize      int             `gorm:"not null;default:0"` // byte length of Document
	Document       string          `gorm:"type:text;not null"`
	EmbeddingValue pgvector.Vector `gorm:"type:vector(768)"` // text-embedding-004 dimensionality
	CreatedAt      time.Time       `gorm:"autoCreateTime"`
	UpdatedAt      time.Time       `gorm:"autoUpdateTime"`
}

func (KnowledgeChunk) TableName() string {
	return "knowledge_chunks"
}

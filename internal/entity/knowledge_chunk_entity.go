package entity

import (
	"time"

	"github.com/google/uuid"
)

type KnowledgeChunk struct {
	Id         uuid.UUID
	ChunkKey   string
	Collection string
	SourceName string
	ChunkIndex int
	ChunkSize  int
	Document   string
	Embedding  []float32
	CreatedAt  time.Time
}

package service

import (
	"context"
	"encoding/json"
	"log"

	"smart-triage-be/internal/config"
	"smart-triage-be/internal/dto"
	"smart-triage-be/pkg/knowledge"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IConsumerService interface {
	Consume(ctx context.Context) error
}

// consumerService drains ingestion jobs off the in-process bus so corpus
// loads never block an HTTP request or server startup.
type consumerService struct {
	pubSub    *gochannel.GoChannel
	topicName string
	pipeline  *knowledge.Pipeline
	cfg       config.KnowledgeConfig
}

func NewConsumerService(
	pubSub *gochannel.GoChannel,
	topicName string,
	pipeline *knowledge.Pipeline,
	cfg config.KnowledgeConfig,
) IConsumerService {
	return &consumerService{
		pubSub:    pubSub,
		topicName: topicName,
		pipeline:  pipeline,
		cfg:       cfg,
	}
}

func (cs *consumerService) Consume(ctx context.Context) error {
	messages, err := cs.pubSub.Subscribe(ctx, cs.topicName)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			cs.processMessage(ctx, msg)
		}
	}()

	return nil
}

func (cs *consumerService) processMessage(ctx context.Context, msg *message.Message) {
	var payload dto.IngestSourceMessage
	if err := json.Unmarshal(msg.Payload, &payload); err != nil {
		log.Printf("[ERROR] Failed to unmarshal ingest message: %v", err)
		msg.Ack() // Ack invalid messages to prevent infinite retry
		return
	}

	log.Printf("[INFO] Processing ingest job for collection: %s (force=%v)", payload.Collection, payload.Force)

	source := knowledge.FileSource(cs.cfg.DataDir, payload.Collection)

	report, err := cs.pipeline.IngestSource(ctx, source, payload.Force)
	if err != nil {
		log.Printf("[ERROR] Ingest failed for collection %s: %v", payload.Collection, err)
		msg.Nack() // Nack for retriable errors
		return
	}

	if report.Skipped {
		log.Printf("[INFO] Collection %s already populated, skipped", payload.Collection)
	} else {
		log.Printf("[SUCCESS] Collection %s ingested: %d stored, %d failed of %d chunks",
			payload.Collection, report.StoredChunks, report.FailedChunks, report.TotalChunks)
	}
	msg.Ack()
}

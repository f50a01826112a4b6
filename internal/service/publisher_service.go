package service

import (
	"encoding/json"
	"fmt"

	"smart-triage-be/internal/dto"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type IPublisherService interface {
	EnqueueIngest(collection string, force bool) error
}

// publisherService enqueues background ingestion jobs on the in-process bus.
type publisherService struct {
	topicName string
	pubSub    *gochannel.GoChannel
}

func NewPublisherService(topicName string, pubSub *gochannel.GoChannel) IPublisherService {
	return &publisherService{
		topicName: topicName,
		pubSub:    pubSub,
	}
}

func (p *publisherService) EnqueueIngest(collection string, force bool) error {
	payload, err := json.Marshal(dto.IngestSourceMessage{
		Collection: collection,
		Force:      force,
	})
	if err != nil {
		return fmt.Errorf("marshal ingest message: %w", err)
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	return p.pubSub.Publish(p.topicName, msg)
}

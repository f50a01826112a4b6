package websocket

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"smart-triage-be/internal/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// StageNotification is the wire payload pushed to session watchers.
type StageNotification struct {
	SessionID   string    `json:"session_id"`
	Kind        string    `json:"kind"` // stage_completed | session_completed
	StageKey    string    `json:"stage_key,omitempty"`
	Version     int       `json:"version,omitempty"`
	TriageLevel string    `json:"triage_level,omitempty"`
	OccurredAt  time.Time `json:"occurred_at"`
}

type Hub struct {
	// Registered clients map: SessionID -> watchers (patient + staff views)
	clients map[string][]*Client

	// Register requests from the clients.
	register chan *Client

	// Unregister requests from clients.
	unregister chan *Client

	// Lock for safe map access
	mu sync.RWMutex

	// Redis connection for cross-instance communication
	rdb *redis.Client

	// Dedicated Logger
	logger logger.ILogger
}

func NewHub(rdb *redis.Client, log logger.ILogger) *Hub {
	return &Hub{
		register:   make(chan *Client),
		unregister: make(chan *Client),
		clients:    make(map[string][]*Client),
		rdb:        rdb,
		logger:     log,
	}
}

func (h *Hub) Run() {
	// Start Redis Subscriber if Redis is available
	if h.rdb != nil {
		go h.subscribeToRedis()
	}

	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client.SessionID] = append(h.clients[client.SessionID], client)
			h.mu.Unlock()
			h.logger.Info("Hub", "Client registered", map[string]interface{}{"session_id": client.SessionID})

		case client := <-h.unregister:
			h.mu.Lock()
			if clients, ok := h.clients[client.SessionID]; ok {
				for i, c := range clients {
					if c == client {
						h.clients[client.SessionID] = append(clients[:i], clients[i+1:]...)
						close(client.Send)
						break
					}
				}
				if len(h.clients[client.SessionID]) == 0 {
					delete(h.clients, client.SessionID)
					h.logger.Info("Hub", "Session has no more watchers", map[string]interface{}{"session_id": client.SessionID})
				}
			}
			h.mu.Unlock()
		}
	}
}

// NotifyStageCompleted implements the service notifier contract.
func (h *Hub) NotifyStageCompleted(sessionID, stageKey string, version int) {
	h.send(sessionID, StageNotification{
		SessionID:  sessionID,
		Kind:       "stage_completed",
		StageKey:   stageKey,
		Version:    version,
		OccurredAt: time.Now(),
	})
}

func (h *Hub) NotifySessionCompleted(sessionID, triageLevel string) {
	h.send(sessionID, StageNotification{
		SessionID:   sessionID,
		Kind:        "session_completed",
		TriageLevel: triageLevel,
		OccurredAt:  time.Now(),
	})
}

func (h *Hub) send(sessionID string, notification StageNotification) {
	data, _ := json.Marshal(map[string]interface{}{
		"type": "triage_progress",
		"data": notification,
	})

	// Local watchers first
	h.mu.RLock()
	clients, localFound := h.clients[sessionID]
	h.mu.RUnlock()

	if localFound {
		for _, client := range clients {
			select {
			case client.Send <- data:
			default:
				h.logger.Warn("Hub", "Client Send buffer full, dropping message", map[string]interface{}{"session_id": sessionID})
				// the unregister path owns closing Send
				h.unregister <- client
			}
		}
	}

	// Fan out to other instances; they deliver to watchers they hold.
	if h.rdb != nil {
		payload := map[string]interface{}{
			"target_session_id": sessionID,
			"message":           data,
		}
		jsonPayload, _ := json.Marshal(payload)
		h.rdb.Publish(context.Background(), "cluster_events", jsonPayload)
	}
}

func (h *Hub) subscribeToRedis() {
	// All instances subscribe to "cluster_events". When a message arrives,
	// deliver it if the target session has watchers on this instance.
	ctx := context.Background()
	pubsub := h.rdb.Subscribe(ctx, "cluster_events")
	defer pubsub.Close()

	ch := pubsub.Channel()

	for msg := range ch {
		var payload struct {
			TargetSessionID string          `json:"target_session_id"`
			Message         json.RawMessage `json:"message"`
		}
		if err := json.Unmarshal([]byte(msg.Payload), &payload); err != nil {
			log.Printf("Redis msg parse error: %v", err)
			continue
		}

		h.mu.RLock()
		clients, ok := h.clients[payload.TargetSessionID]
		h.mu.RUnlock()

		if ok {
			for _, client := range clients {
				select {
				case client.Send <- payload.Message:
				default:
					h.unregister <- client
				}
			}
		}
	}
}

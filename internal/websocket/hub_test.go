package websocket

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type quietLogger struct{}

func (quietLogger) Debug(module, message string, details map[string]interface{}) {}
func (quietLogger) Info(module, message string, details map[string]interface{})  {}
func (quietLogger) Warn(module, message string, details map[string]interface{})  {}
func (quietLogger) Error(module, message string, details map[string]interface{}) {}
func (quietLogger) Sync() error                                                  { return nil }

func (h *Hub) watcherCount(sessionID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[sessionID])
}

func TestHubDeliversToRegisteredWatcher(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	client := &Client{Hub: h, SessionID: "s1", Send: make(chan []byte, 4)}
	h.register <- client
	require.Eventually(t, func() bool {
		return h.watcherCount("s1") == 1
	}, time.Second, 5*time.Millisecond)

	h.NotifyStageCompleted("s1", "symptoms", 1)
	select {
	case msg := <-client.Send:
		assert.Contains(t, string(msg), "stage_completed")
		assert.Contains(t, string(msg), "symptoms")
	case <-time.After(time.Second):
		t.Fatal("watcher never received the stage notification")
	}
}

func TestHubDropsSlowWatcherWithoutPanic(t *testing.T) {
	h := NewHub(nil, quietLogger{})
	go h.Run()

	// unbuffered channel with no reader: every delivery hits the
	// buffer-full branch
	slow := &Client{Hub: h, SessionID: "s2", Send: make(chan []byte)}
	h.register <- slow
	require.Eventually(t, func() bool {
		return h.watcherCount("s2") == 1
	}, time.Second, 5*time.Millisecond)

	h.NotifyStageCompleted("s2", "symptoms", 1)

	require.Eventually(t, func() bool {
		return h.watcherCount("s2") == 0
	}, time.Second, 5*time.Millisecond)

	// the dropped watcher's channel was closed exactly once, on the
	// unregister path; sending again must not reach it
	h.NotifySessionCompleted("s2", "Urgent")
	assert.Equal(t, 0, h.watcherCount("s2"))
}

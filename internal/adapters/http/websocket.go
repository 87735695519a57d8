package http

import (
	"encoding/json"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/nats-io/nats.go"

	natsadapter "github.com/samirrijal/travelplan/internal/adapters/nats"
	"github.com/samirrijal/travelplan/internal/core/domain"
	"github.com/samirrijal/travelplan/internal/pkg/metrics"
)

// wsMessage is sent from client to subscribe/unsubscribe to travels.
type wsMessage struct {
	Action   string `json:"action"`    // "subscribe" | "unsubscribe"
	TravelID int64  `json:"travel_id"` // 0 = every travel
}

// travelFilter is the set of travels a websocket client follows. An empty
// set with all=true forwards everything.
type travelFilter struct {
	mu      sync.RWMutex
	all     bool
	travels map[int64]bool
}

func (f *travelFilter) set(id int64, on bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if id == 0 {
		f.all = on
		return
	}
	if on {
		f.travels[id] = true
	} else {
		delete(f.travels, id)
	}
}

func (f *travelFilter) matches(ev *domain.ItineraryEvent) bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	if f.all {
		return true
	}
	return slices.ContainsFunc(ev.TravelIDs, func(id int64) bool { return f.travels[id] })
}

// WebSocketHandler returns a handler that upgrades to WebSocket and relays
// itinerary events from NATS to connected clients.
// Clients send JSON: {"action":"subscribe","travel_id":42}
// travel_id 0 follows every travel. Nothing is forwarded before the first
// subscribe.
func WebSocketHandler(nc *nats.Conn) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		remoteAddr := c.RemoteAddr().String()
		slog.Info("ws client connected", "remote", remoteAddr)
		metrics.ActiveWebSockets.Inc()
		defer metrics.ActiveWebSockets.Dec()

		var mu sync.Mutex
		writeJSON := func(v interface{}) error {
			data, err := json.Marshal(v)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			return c.WriteMessage(websocket.TextMessage, data)
		}

		filter := &travelFilter{travels: make(map[int64]bool)}
		sub, err := nc.Subscribe(natsadapter.SubjectAll, func(msg *nats.Msg) {
			var ev domain.ItineraryEvent
			if err := json.Unmarshal(msg.Data, &ev); err != nil {
				return
			}
			if filter.matches(&ev) {
				_ = writeJSON(json.RawMessage(msg.Data))
			}
		})
		if err != nil {
			slog.Error("ws subscribe", "error", err)
			return
		}
		defer func() { _ = sub.Unsubscribe() }()

		// Keep-alive ping
		done := make(chan struct{})
		defer close(done)
		go func() {
			ticker := time.NewTicker(30 * time.Second)
			defer ticker.Stop()
			for {
				select {
				case <-ticker.C:
					mu.Lock()
					err := c.WriteMessage(websocket.PingMessage, nil)
					mu.Unlock()
					if err != nil {
						return
					}
				case <-done:
					return
				}
			}
		}()

		for {
			_, msg, err := c.ReadMessage()
			if err != nil {
				break
			}

			var m wsMessage
			if err := json.Unmarshal(msg, &m); err != nil {
				_ = writeJSON(map[string]string{"error": "invalid JSON"})
				continue
			}
			if m.TravelID < 0 {
				_ = writeJSON(map[string]string{"error": "travel_id must not be negative"})
				continue
			}

			switch m.Action {
			case "subscribe":
				filter.set(m.TravelID, true)
				_ = writeJSON(map[string]any{"status": "subscribed", "travel_id": m.TravelID})
			case "unsubscribe":
				filter.set(m.TravelID, false)
				_ = writeJSON(map[string]any{"status": "unsubscribed", "travel_id": m.TravelID})
			default:
				_ = writeJSON(map[string]string{"error": "unknown action: " + m.Action})
			}
		}

		slog.Info("ws client disconnected", "remote", remoteAddr)
	}
}

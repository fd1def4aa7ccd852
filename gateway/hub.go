package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"nhooyr.io/websocket"

	"nftmarket/core/events"
	"nftmarket/observability"
)

const (
	wsWriteTimeout       = 10 * time.Second
	defaultSubscriberCap = 256
)

type subscriber struct {
	ch     chan []byte
	filter map[string]struct{}
}

func (s *subscriber) wants(eventType string) bool {
	if len(s.filter) == 0 {
		return true
	}
	_, ok := s.filter[eventType]
	return ok
}

// Hub fans committed events out to websocket subscribers. A subscriber whose
// queue is full is disconnected rather than blocking the publisher.
type Hub struct {
	mu       sync.Mutex
	subs     map[*subscriber]struct{}
	origins  []string
	capacity int
	logger   *slog.Logger
}

func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		subs:     make(map[*subscriber]struct{}),
		origins:  []string{"*"},
		capacity: defaultSubscriberCap,
		logger:   logger,
	}
}

// SetAllowedOrigins restricts which browser origins may open a stream, using
// the same allow list as CORS: an empty list allows any origin. Entries are
// full origins ("https://app.example") or bare host patterns.
func (h *Hub) SetAllowedOrigins(origins []string) {
	patterns := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin == "" {
			continue
		}
		if u, err := url.Parse(origin); err == nil && u.Host != "" {
			origin = u.Host
		}
		patterns = append(patterns, origin)
	}
	if len(patterns) == 0 {
		patterns = []string{"*"}
	}
	h.mu.Lock()
	h.origins = patterns
	h.mu.Unlock()
}

func (h *Hub) originPatterns() []string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]string(nil), h.origins...)
}

// Emit implements events.Emitter.
func (h *Hub) Emit(evt events.Event) {
	payload, ok := evt.(events.Payload)
	if !ok {
		return
	}
	data, err := json.Marshal(payload.Event())
	if err != nil {
		h.logger.Error("encode event", "type", evt.EventType(), "error", err)
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	for sub := range h.subs {
		if !sub.wants(evt.EventType()) {
			continue
		}
		select {
		case sub.ch <- data:
		default:
			delete(h.subs, sub)
			close(sub.ch)
			observability.Events().SubscriberDelta(-1)
			h.logger.Warn("dropping slow event subscriber")
		}
	}
}

// Subscribers reports the number of connected streams.
func (h *Hub) Subscribers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

func (h *Hub) subscribe(types []string) *subscriber {
	sub := &subscriber{ch: make(chan []byte, h.capacity)}
	if len(types) > 0 {
		sub.filter = make(map[string]struct{}, len(types))
		for _, t := range types {
			sub.filter[t] = struct{}{}
		}
	}
	h.mu.Lock()
	h.subs[sub] = struct{}{}
	h.mu.Unlock()
	observability.Events().SubscriberDelta(1)
	return sub
}

func (h *Hub) unsubscribe(sub *subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.subs[sub]; !ok {
		return
	}
	delete(h.subs, sub)
	close(sub.ch)
	observability.Events().SubscriberDelta(-1)
}

// ServeHTTP upgrades the request and streams events until either side closes.
// The optional "types" query parameter is a comma separated filter.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: h.originPatterns()})
	if err != nil {
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "stream closed")

	sub := h.subscribe(parseTypes(r.URL.Query().Get("types")))
	defer h.unsubscribe(sub)

	ctx := conn.CloseRead(r.Context())
	if err := h.stream(ctx, conn, sub); err != nil {
		if status := websocket.CloseStatus(err); status == -1 && !errors.Is(err, context.Canceled) {
			_ = conn.Close(websocket.StatusInternalError, "stream error")
		}
	}
}

func (h *Hub) stream(ctx context.Context, conn *websocket.Conn, sub *subscriber) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case data, ok := <-sub.ch:
			if !ok {
				return conn.Close(websocket.StatusPolicyViolation, "subscriber too slow")
			}
			writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				return err
			}
		}
	}
}

func parseTypes(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

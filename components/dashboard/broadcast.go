package dashboard

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
)

// Stream event types.
const (
	StreamTabChange     = "tab_change"
	StreamContextReport = "context_report"
)

// StreamEvent is the envelope pushed to broadcast subscribers.
type StreamEvent struct {
	Type      string          `json:"type"`
	TabChange *TabChangeEvent `json:"tab_change,omitempty"`
	Report    *ContextReport  `json:"report,omitempty"`
}

// BroadcastHook fans coordinator events out to in-process subscribers. Slow
// subscribers miss events rather than block the coordinator.
type BroadcastHook struct {
	mu   sync.RWMutex
	subs map[int]chan StreamEvent
	next int
}

var _ Observer = (*BroadcastHook)(nil)

// NewBroadcastHook creates a broadcast hook.
func NewBroadcastHook() *BroadcastHook {
	return &BroadcastHook{
		subs: make(map[int]chan StreamEvent),
	}
}

// TabChanged satisfies Observer.
func (h *BroadcastHook) TabChanged(_ context.Context, event TabChangeEvent) {
	h.publish(StreamEvent{Type: StreamTabChange, TabChange: &event})
}

// ContextReported satisfies Observer.
func (h *BroadcastHook) ContextReported(_ context.Context, report ContextReport) {
	h.publish(StreamEvent{Type: StreamContextReport, Report: &report})
}

func (h *BroadcastHook) publish(event StreamEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, ch := range h.subs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Subscribe returns a channel of stream events and a cancel func.
func (h *BroadcastHook) Subscribe() (<-chan StreamEvent, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.next
	h.next++
	ch := make(chan StreamEvent, 8)
	h.subs[id] = ch
	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		if sub, ok := h.subs[id]; ok {
			delete(h.subs, id)
			close(sub)
		}
	}
	return ch, cancel
}

// Subscribers reports how many subscriptions are open.
func (h *BroadcastHook) Subscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs)
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ServeWebSocket upgrades the request and streams events as JSON text
// frames until the client disconnects.
func (h *BroadcastHook) ServeWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	events, cancel := h.Subscribe()
	defer cancel()

	// Clients never send data; reading surfaces close frames and dropped
	// connections.
	gone := make(chan struct{})
	go func() {
		defer close(gone)
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-gone:
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		}
	}
}

// ServeSSE provides a Server-Sent Events endpoint for coordinator events.
// It returns once the request ends or a write fails.
func (h *BroadcastHook) ServeSSE(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	events, cancel := h.Subscribe()
	defer cancel()

	flusher, _ := w.(http.Flusher)
	if flusher != nil {
		flusher.Flush()
	}

	for {
		select {
		case <-r.Context().Done():
			return
		case event, ok := <-events:
			if !ok {
				return
			}
			if err := writeSSE(w, event); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
	}
}

func writeSSE(w io.Writer, event StreamEvent) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data)
	return err
}

// ObserverFuncs adapts plain functions to Observer. Nil funcs are skipped.
type ObserverFuncs struct {
	OnTabChange     func(ctx context.Context, event TabChangeEvent)
	OnContextReport func(ctx context.Context, report ContextReport)
}

// TabChanged satisfies Observer.
func (f ObserverFuncs) TabChanged(ctx context.Context, event TabChangeEvent) {
	if f.OnTabChange != nil {
		f.OnTabChange(ctx, event)
	}
}

// ContextReported satisfies Observer.
func (f ObserverFuncs) ContextReported(ctx context.Context, report ContextReport) {
	if f.OnContextReport != nil {
		f.OnContextReport(ctx, report)
	}
}

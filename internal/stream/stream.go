package stream

import (
	"context"
	"sync"
	"time"
)

// InspectionEvent describes a registry change pushed to live dashboard
// clients over SSE.
type InspectionEvent struct {
	Kind         string    `json:"kind"` // "registered", "inspected", "overridden", "deleted"
	ISNumber     string    `json:"is_number"`
	RecordID     string    `json:"record_id,omitempty"`
	Location     string    `json:"location,omitempty"`
	NonCompliant bool      `json:"non_compliant"`
	Defects      []string  `json:"defects,omitempty"`
	Timestamp    time.Time `json:"timestamp"`
}

// Stream fan-outs inspection events to all active subscribers.
type Stream struct {
	mu   sync.RWMutex
	subs map[int]chan InspectionEvent
	next int
}

// New initialises an empty stream.
func New() *Stream {
	return &Stream{subs: make(map[int]chan InspectionEvent)}
}

// Subscribe registers a subscriber and returns a channel which will receive events.
// The channel is closed when the provided context ends.
func (s *Stream) Subscribe(ctx context.Context) <-chan InspectionEvent {
	ch := make(chan InspectionEvent, 16)

	s.mu.Lock()
	id := s.next
	s.next++
	s.subs[id] = ch
	s.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.mu.Lock()
		delete(s.subs, id)
		close(ch)
		s.mu.Unlock()
	}()

	return ch
}

// Publish fan-outs the event to all subscribers.
func (s *Stream) Publish(evt InspectionEvent) {
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now().UTC()
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, ch := range s.subs {
		select {
		case ch <- evt:
		default:
			// Drop when subscriber is slow to avoid blocking.
		}
	}
}

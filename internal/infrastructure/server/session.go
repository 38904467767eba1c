package server

import (
	"context"
	"encoding/json"
	"sync"
	"time"
)

// Session is one client's conversational state. All mutable fields are
// guarded by mu; concurrent POSTs on the same session may interleave.
type Session struct {
	id        string
	createdAt time.Time

	mu           sync.Mutex
	lastActivity time.Time
	initialized  bool
	capabilities json.RawMessage

	queue     []interface{}
	maxQueued int
	dropped   int
	// signal has capacity 1 and wakes the consumer after a push.
	signal chan struct{}
}

func newSession(id string, now time.Time, maxQueued int) *Session {
	return &Session{
		id:           id,
		createdAt:    now,
		lastActivity: now,
		maxQueued:    maxQueued,
		signal:       make(chan struct{}, 1),
	}
}

// ID returns the session token.
func (s *Session) ID() string {
	return s.id
}

// CreatedAt returns the creation time.
func (s *Session) CreatedAt() time.Time {
	return s.createdAt
}

// LastActivity returns the time of the last successful lookup.
func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Initialized reports whether initialize has completed on this session.
func (s *Session) Initialized() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.initialized
}

// Capabilities returns the raw capabilities sent by the client in initialize.
func (s *Session) Capabilities() json.RawMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capabilities
}

// Initialize marks the session initialized and stores the client
// capabilities verbatim. Missing capabilities are stored as an empty object.
func (s *Session) Initialize(capabilities json.RawMessage) {
	if len(capabilities) == 0 || string(capabilities) == "null" {
		capabilities = json.RawMessage("{}")
	}
	s.mu.Lock()
	s.initialized = true
	s.capabilities = capabilities
	s.mu.Unlock()
}

// MarkInitialized flips the initialized flag without touching capabilities.
func (s *Session) MarkInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastActivity = now
	s.mu.Unlock()
}

func (s *Session) expired(now time.Time, timeout time.Duration) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return now.Sub(s.lastActivity) > timeout
}

// Enqueue appends a message for the session's SSE stream. With a queue bound
// the oldest message is dropped on overflow and Enqueue reports false.
func (s *Session) Enqueue(message interface{}) bool {
	s.mu.Lock()
	s.queue = append(s.queue, message)
	kept := true
	if s.maxQueued > 0 && len(s.queue) > s.maxQueued {
		s.queue[0] = nil
		s.queue = s.queue[1:]
		s.dropped++
		kept = false
	}
	s.mu.Unlock()

	select {
	case s.signal <- struct{}{}:
	default:
	}
	return kept
}

// Pending returns the number of queued messages.
func (s *Session) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queue)
}

// Dropped returns how many messages were discarded by the queue bound.
func (s *Session) Dropped() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dropped
}

func (s *Session) pop() (interface{}, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return nil, false
	}
	message := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	return message, true
}

// Next waits up to timeout for the next queued message. It returns
// (nil, false, nil) on timeout and ctx.Err() when ctx is done.
func (s *Session) Next(ctx context.Context, timeout time.Duration) (interface{}, bool, error) {
	if message, ok := s.pop(); ok {
		return message, true, nil
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, false, ctx.Err()
		case <-timer.C:
			return nil, false, nil
		case <-s.signal:
			if message, ok := s.pop(); ok {
				return message, true, nil
			}
		}
	}
}

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/FreePeak/openapi-mcp-server/internal/infrastructure/logging"
)

// DefaultHeartbeatInterval is how long a GET stream waits for a queued
// message before writing a heartbeat comment.
const DefaultHeartbeatInterval = 30 * time.Second

const contentTypeEventStream = "text/event-stream"

func setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", contentTypeEventStream)
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
}

// writeSSEData writes a single unnamed data frame.
func writeSSEData(w io.Writer, payload []byte) error {
	_, err := fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// writeSSEEvent writes a data frame carrying an event id.
func writeSSEEvent(w io.Writer, id string, payload []byte) error {
	_, err := fmt.Fprintf(w, "id: %s\ndata: %s\n\n", id, payload)
	return err
}

// writeSSEComment writes a comment frame, ignored by clients.
func writeSSEComment(w io.Writer, comment string) error {
	_, err := fmt.Fprintf(w, ": %s\n\n", comment)
	return err
}

// eventStream drains one session's message queue onto a GET response.
type eventStream struct {
	writer    http.ResponseWriter
	flusher   http.Flusher
	session   *Session
	heartbeat time.Duration
	logger    *logging.Logger
}

func newEventStream(w http.ResponseWriter, session *Session, heartbeat time.Duration, logger *logging.Logger) (*eventStream, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, ErrResponseWriterNotFlusher
	}
	if heartbeat <= 0 {
		heartbeat = DefaultHeartbeatInterval
	}
	return &eventStream{
		writer:    w,
		flusher:   flusher,
		session:   session,
		heartbeat: heartbeat,
		logger:    logger,
	}, nil
}

// run streams until ctx is done or a write fails. Cancellation by the client
// is a normal exit and returns nil.
func (s *eventStream) run(ctx context.Context) error {
	setSSEHeaders(s.writer)
	s.writer.WriteHeader(http.StatusOK)
	s.flusher.Flush()

	for {
		message, ok, err := s.session.Next(ctx, s.heartbeat)
		if err != nil {
			// context cancelled: the client went away
			return nil
		}

		if !ok {
			if err := writeSSEComment(s.writer, "heartbeat"); err != nil {
				return errors.Wrap(err, "writing heartbeat")
			}
			s.flusher.Flush()
			continue
		}

		payload, err := json.Marshal(message)
		if err != nil {
			s.logger.Error("Dropping unencodable queued message", logging.Fields{
				"session_id": s.session.ID(),
				"error":      err,
			})
			continue
		}
		if err := writeSSEEvent(s.writer, uuid.New().String(), payload); err != nil {
			return errors.Wrap(err, "writing event")
		}
		s.flusher.Flush()
	}
}

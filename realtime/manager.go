package realtime

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/TestimonyAdegoke/montessa-sub006/logger"
)

// Manager runs the lifecycle of individual streaming requests.
type Manager struct {
	registry     *Registry
	heartbeat    time.Duration
	writeTimeout time.Duration
	metrics      *Metrics
	log          *logger.Logger
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithManagerMetrics records stream counters on m.
func WithManagerMetrics(m *Metrics) ManagerOption {
	return func(mg *Manager) { mg.metrics = m }
}

// WithManagerLogger sets the manager logger.
func WithManagerLogger(log *logger.Logger) ManagerOption {
	return func(mg *Manager) { mg.log = log }
}

// NewManager creates a manager registering streams in registry. Zero
// durations in cfg fall back to the defaults.
func NewManager(registry *Registry, cfg Config, opts ...ManagerOption) *Manager {
	cfg.ApplyDefaults()
	m := &Manager{
		registry:     registry,
		heartbeat:    cfg.HeartbeatInterval,
		writeTimeout: cfg.WriteTimeout,
		log:          logger.Nop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Serve streams events for userID until the client disconnects, a write
// fails, or the stream is closed from outside. It returns an error only
// when w cannot stream; in that case nothing has been written.
func (m *Manager) Serve(w http.ResponseWriter, r *http.Request, userID string) error {
	stream, err := NewStream(w, m.writeTimeout)
	if err != nil {
		return err
	}

	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	sess := &session{
		manager: m,
		stream:  stream,
		userID:  userID,
		log: m.log.WithFields(logger.Fields(
			logger.FieldUserID, userID,
			logger.FieldHandleID, stream.ID(),
		)),
	}
	return sess.run(r.Context())
}

// session is the Init → Active → Closed state machine of one stream.
type session struct {
	manager *Manager
	stream  *Stream
	userID  string
	log     *logger.Logger

	ticker     *time.Ticker
	registered bool
	once       sync.Once
	openedAt   time.Time
}

func (s *session) run(ctx context.Context) error {
	m := s.manager
	s.openedAt = time.Now()

	// Init: the handshake goes out before the stream becomes visible to
	// dispatchers, so it is always the first frame.
	hello, err := NewEvent(s.userID, KindConnected, connectedData{
		HandleID:          s.stream.ID(),
		HeartbeatInterval: m.heartbeat.Milliseconds(),
	})
	if err == nil {
		var frame []byte
		if frame, err = hello.Frame(); err == nil {
			err = s.stream.Send(frame)
		}
	}
	if err != nil {
		s.teardown(ctx, "handshake failed")
		return nil
	}

	m.registry.Register(s.userID, s.stream)
	s.registered = true
	m.metrics.streamOpened(ctx)
	s.log.Info("Stream opened")

	// Active.
	s.ticker = time.NewTicker(m.heartbeat)
	defer s.teardown(ctx, "returned")

	for {
		select {
		case <-ctx.Done():
			s.teardown(ctx, "client disconnected")
			return nil
		case <-s.stream.Done():
			s.teardown(ctx, "stream closed")
			return nil
		case <-s.ticker.C:
			if err := s.stream.Send(PingFrame); err != nil {
				s.teardown(ctx, "heartbeat failed")
				return nil
			}
			m.metrics.heartbeat(ctx)
		}
	}
}

// teardown moves the session to Closed. Only the first call has any effect.
func (s *session) teardown(ctx context.Context, reason string) {
	s.once.Do(func() {
		if s.ticker != nil {
			s.ticker.Stop()
		}
		if s.registered {
			s.manager.registry.Deregister(s.userID, s.stream)
			s.manager.metrics.streamClosed(context.WithoutCancel(ctx))
		}
		_ = s.stream.Close()

		if s.registered {
			fields := logger.DurationFields("stream", time.Since(s.openedAt))
			fields["reason"] = reason
			s.log.Info("Stream closed", fields)
		}
	})
}

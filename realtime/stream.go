package realtime

import (
	stderrors "errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/TestimonyAdegoke/montessa-sub006/errors"
)

// ErrStreamClosed is returned by Send once a stream has been closed.
var ErrStreamClosed = stderrors.New("realtime: stream closed")

// Handle is one open delivery path to a single browser tab.
type Handle interface {
	ID() string
	// Send writes one complete frame. A non-nil error means the handle is
	// dead and will never accept another frame.
	Send(frame []byte) error
	// Close marks the handle dead. It is safe to call more than once.
	Close() error
}

// Stream is the Handle backed by an http.ResponseWriter. Writes are
// serialized so a heartbeat and a dispatched event never interleave, and
// nothing reaches the ResponseWriter after Close returns.
type Stream struct {
	id           string
	w            http.ResponseWriter
	rc           *http.ResponseController
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
	done   chan struct{}
}

var _ Handle = (*Stream)(nil)

// NewStream prepares w for event streaming. It fails when w cannot flush.
// The server-wide read and write deadlines are lifted; writeTimeout, when
// positive, bounds each individual Send instead.
func NewStream(w http.ResponseWriter, writeTimeout time.Duration) (*Stream, error) {
	if _, ok := w.(http.Flusher); !ok {
		return nil, errors.StreamingUnsupported()
	}
	rc := http.NewResponseController(w)
	// ResponseRecorder and some middleware writers cannot set deadlines.
	_ = rc.SetWriteDeadline(time.Time{})
	_ = rc.SetReadDeadline(time.Time{})

	return &Stream{
		id:           uuid.NewString(),
		w:            w,
		rc:           rc,
		writeTimeout: writeTimeout,
		done:         make(chan struct{}),
	}, nil
}

// ID returns the stream's unique handle id.
func (s *Stream) ID() string { return s.id }

// Done is closed when the stream is closed, by its owner, by the
// dispatcher after a failed write, or at shutdown.
func (s *Stream) Done() <-chan struct{} { return s.done }

// Send writes and flushes frame. The first failed write closes the stream.
func (s *Stream) Send(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStreamClosed
	}

	if s.writeTimeout > 0 {
		if err := s.rc.SetWriteDeadline(time.Now().Add(s.writeTimeout)); err == nil {
			defer s.rc.SetWriteDeadline(time.Time{})
		}
	}

	if _, err := s.w.Write(frame); err != nil {
		s.closeLocked()
		return err
	}
	if err := s.rc.Flush(); err != nil {
		s.closeLocked()
		return err
	}
	return nil
}

// Close marks the stream closed. It never touches the underlying writer.
func (s *Stream) Close() error {
	s.mu.Lock()
	s.closeLocked()
	s.mu.Unlock()
	return nil
}

// Closed reports whether the stream has been closed.
func (s *Stream) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *Stream) closeLocked() {
	if s.closed {
		return
	}
	s.closed = true
	close(s.done)
}

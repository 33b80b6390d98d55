package realtime

import (
	"fmt"
	"sync"
	"testing"
	"time"
)

type fakeHandle struct {
	id string

	mu     sync.Mutex
	frames [][]byte
	fail   bool
	closed bool
}

func newFakeHandle(id string) *fakeHandle { return &fakeHandle{id: id} }

func (f *fakeHandle) ID() string { return f.id }

func (f *fakeHandle) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed || f.fail {
		f.closed = true
		return ErrStreamClosed
	}
	f.frames = append(f.frames, append([]byte(nil), frame...))
	return nil
}

func (f *fakeHandle) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeHandle) Frames() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([][]byte(nil), f.frames...)
}

func (f *fakeHandle) IsClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

// assertNoEmptyChannels fails if any user maps to an empty handle set.
func assertNoEmptyChannels(t *testing.T, r *Registry) {
	t.Helper()
	r.mu.RLock()
	defer r.mu.RUnlock()
	for user, set := range r.channels {
		if len(set) == 0 {
			t.Fatalf("user %q retained an empty channel", user)
		}
	}
}

func waitFor(t *testing.T, timeout time.Duration, cond func() bool, format string, args ...any) {
	t.Helper()
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting: %s", fmt.Sprintf(format, args...))
}

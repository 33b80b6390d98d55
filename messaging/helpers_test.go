package messaging

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/TestimonyAdegoke/montessa-sub006/database"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
)

type fakeEmitter struct {
	mu     sync.Mutex
	events []realtime.Event
	fail   bool
}

func (f *fakeEmitter) Emit(_ context.Context, ev realtime.Event) (realtime.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return realtime.Result{}, errors.New("broker down")
	}
	f.events = append(f.events, ev)
	return realtime.Result{Recipients: 1, Delivered: 1}, nil
}

func (f *fakeEmitter) Events() []realtime.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]realtime.Event(nil), f.events...)
}

type nilSource struct{}

func (nilSource) DB() *database.DB { return nil }

func startDatabase(t *testing.T) *database.Component {
	t.Helper()
	comp := database.NewComponent(database.Config{
		Enabled:     true,
		Driver:      database.DriverSQLite,
		DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate: true,
		MaxRetries:  1,
	}, logger.Nop()).WithAutoMigrate(&Message{})
	if err := comp.Start(t.Context()); err != nil {
		t.Fatalf("start database: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(context.Background()) })
	return comp
}

var fixedNow = time.Date(2026, 5, 4, 9, 30, 0, 0, time.UTC)

func newTestService(t *testing.T) (*Service, *fakeEmitter, *Store) {
	t.Helper()
	store := NewStore(startDatabase(t))
	emitter := &fakeEmitter{}
	svc := NewService(store, emitter, logger.Nop(), WithClock(func() time.Time { return fixedNow }))
	return svc, emitter, store
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"

	"github.com/TestimonyAdegoke/montessa-sub006/component"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
	"github.com/TestimonyAdegoke/montessa-sub006/resilience"
)

func startComponent(t *testing.T) (*miniredis.Miniredis, *Component) {
	t.Helper()
	mr := miniredis.RunT(t)
	comp := NewComponent(Config{Enabled: true, Addr: mr.Addr()}, logger.Nop())
	if err := comp.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}
	t.Cleanup(func() { _ = comp.Stop(context.Background()) })
	return mr, comp
}

func TestConfigApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.Addr != "localhost:6379" {
		t.Errorf("expected default addr, got %q", cfg.Addr)
	}
	if cfg.PoolSize != 10 {
		t.Errorf("expected pool size 10, got %d", cfg.PoolSize)
	}
	if cfg.DialTimeout != 5*time.Second {
		t.Errorf("expected 5s dial timeout, got %s", cfg.DialTimeout)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"disabled skips checks", Config{}, false},
		{"valid", Config{Enabled: true, Addr: "localhost:6379", PoolSize: 5}, false},
		{"missing addr", Config{Enabled: true, PoolSize: 5}, true},
		{"zero pool", Config{Enabled: true, Addr: "x:1"}, true},
		{"negative db", Config{Enabled: true, Addr: "x:1", PoolSize: 1, DB: -1}, true},
		{"backoff inverted", Config{Enabled: true, Addr: "x:1", PoolSize: 1, MinRetryBackoff: time.Second, MaxRetryBackoff: time.Millisecond}, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.cfg.Validate(); (err != nil) != tc.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tc.wantErr)
			}
		})
	}
}

func TestNew_Disabled(t *testing.T) {
	if _, err := New(Config{}, nil); err == nil {
		t.Fatal("expected error for disabled redis")
	}
}

func TestComponent_Lifecycle(t *testing.T) {
	mr := miniredis.RunT(t)
	comp := NewComponent(Config{Enabled: true, Addr: mr.Addr()}, logger.Nop())

	if h := comp.Health(t.Context()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := comp.Start(t.Context()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if h := comp.Health(t.Context()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy, got %s (%s)", h.Status, h.Message)
	}

	client := comp.Client()
	if err := comp.Stop(t.Context()); err != nil {
		t.Fatalf("stop: %v", err)
	}
	if !client.Closed() {
		t.Error("expected client closed after stop")
	}
	if comp.Client() != nil {
		t.Error("expected no client after stop")
	}
	if err := comp.Stop(t.Context()); err != nil {
		t.Errorf("second stop should be a no-op, got %v", err)
	}
}

func TestComponent_DisabledIsNoop(t *testing.T) {
	comp := NewComponent(Config{}, logger.Nop())

	if err := comp.Start(t.Context()); err != nil {
		t.Fatalf("start of a disabled component should succeed, got %v", err)
	}
	if comp.Client() != nil {
		t.Error("expected no client when disabled")
	}
	h := comp.Health(t.Context())
	if h.Status != component.StatusHealthy || h.Message != "disabled" {
		t.Errorf("expected healthy/disabled, got %s (%s)", h.Status, h.Message)
	}
	if d := comp.Describe(); d.Details != "disabled" {
		t.Errorf("expected disabled description, got %q", d.Details)
	}
	if err := comp.Stop(t.Context()); err != nil {
		t.Errorf("stop of a disabled component should succeed, got %v", err)
	}
}

func TestComponent_StartFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	comp := NewComponent(Config{Enabled: true, Addr: addr, DialTimeout: 200 * time.Millisecond, MaxRetries: 1}, logger.Nop())
	if err := comp.Start(t.Context()); err == nil {
		t.Fatal("expected start to fail")
	}
}

func TestPubSub_NotConnected(t *testing.T) {
	ps := NewPubSub(NewComponent(Config{}, nil), "ch", nil)

	ev, _ := realtime.NewEvent("u-1", realtime.KindNotification, nil)
	if err := ps.Publish(t.Context(), ev); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
	if err := ps.Subscribe(t.Context(), func(realtime.Event) {}); err != ErrNotConnected {
		t.Errorf("expected ErrNotConnected, got %v", err)
	}
}

func TestPubSub_PublishSubscribe(t *testing.T) {
	_, comp := startComponent(t)
	ps := NewPubSub(comp, "montessa:realtime", logger.Nop())

	var (
		mu  sync.Mutex
		got []realtime.Event
	)
	received := make(chan struct{}, 1)
	ctx, cancel := context.WithCancel(t.Context())
	defer cancel()

	err := ps.Subscribe(ctx, func(ev realtime.Event) {
		mu.Lock()
		got = append(got, ev)
		mu.Unlock()
		received <- struct{}{}
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	ev, err := realtime.NewEvent("u-7", realtime.KindMessageCreated, map[string]string{"id": "m-1"})
	if err != nil {
		t.Fatal(err)
	}
	if err := ps.Publish(t.Context(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}

	mu.Lock()
	defer mu.Unlock()
	if got[0].TargetUserID != "u-7" || got[0].Kind != realtime.KindMessageCreated {
		t.Errorf("unexpected event %+v", got[0])
	}
	var data map[string]string
	if err := json.Unmarshal(got[0].Data, &data); err != nil || data["id"] != "m-1" {
		t.Errorf("expected data to survive the round trip, got %s", got[0].Data)
	}
}

func TestPubSub_BreakerOpensWhenRedisIsGone(t *testing.T) {
	mr, comp := startComponent(t)
	ps := NewPubSub(comp, "montessa:realtime", logger.Nop())
	ev, _ := realtime.NewEvent("u-1", realtime.KindNotification, nil)

	if err := ps.Publish(t.Context(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}
	mr.Close()

	for i := 0; i < publishMaxFailures; i++ {
		if err := ps.Publish(t.Context(), ev); err == nil {
			t.Fatal("expected publish to fail without a server")
		}
	}
	if ps.BreakerState() != resilience.StateOpen {
		t.Fatalf("expected open breaker, got %s", ps.BreakerState())
	}
	if err := ps.Publish(t.Context(), ev); !errors.Is(err, resilience.ErrOpen) {
		t.Fatalf("expected fast failure, got %v", err)
	}
}

func TestPubSub_SkipsBadPayload(t *testing.T) {
	mr, comp := startComponent(t)
	ps := NewPubSub(comp, "montessa:realtime", logger.Nop())

	received := make(chan realtime.Event, 2)
	if err := ps.Subscribe(t.Context(), func(ev realtime.Event) { received <- ev }); err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	mr.Publish("montessa:realtime", "{not json")
	ev, _ := realtime.NewEvent("u-2", realtime.KindNotification, nil)
	if err := ps.Publish(t.Context(), ev); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case got := <-received:
		if got.TargetUserID != "u-2" {
			t.Errorf("expected the valid event, got %+v", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for event")
	}
}

func TestPubSub_RelaysThroughDispatcher(t *testing.T) {
	_, comp := startComponent(t)

	hub := realtime.NewComponent(realtime.Config{Relay: realtime.RelayConfig{Enabled: true}}, logger.Nop(),
		realtime.WithBroker(NewPubSub(comp, "montessa:realtime", logger.Nop())))
	if err := hub.Start(t.Context()); err != nil {
		t.Fatalf("hub start: %v", err)
	}
	defer func() { _ = hub.Stop(context.Background()) }()

	h := newRecordingHandle("h-1")
	hub.Registry().Register("u-9", h)

	ev, _ := realtime.NewEvent("u-9", realtime.KindNotification, map[string]int{"n": 1})
	res, err := hub.Emitter().Emit(t.Context(), ev)
	if err != nil {
		t.Fatalf("emit: %v", err)
	}
	if !res.Relayed {
		t.Error("expected event to be relayed through redis")
	}

	select {
	case frame := <-h.frames:
		if len(frame) == 0 {
			t.Error("expected a frame")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for relayed frame")
	}
}

type recordingHandle struct {
	id     string
	frames chan []byte
}

func newRecordingHandle(id string) *recordingHandle {
	return &recordingHandle{id: id, frames: make(chan []byte, 4)}
}

func (h *recordingHandle) ID() string { return h.id }

func (h *recordingHandle) Send(frame []byte) error {
	h.frames <- frame
	return nil
}

func (h *recordingHandle) Close() error { return nil }

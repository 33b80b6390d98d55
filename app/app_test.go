package app

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"

	"github.com/TestimonyAdegoke/montessa-sub006/auth"
	"github.com/TestimonyAdegoke/montessa-sub006/bootstrap"
	"github.com/TestimonyAdegoke/montessa-sub006/config"
	"github.com/TestimonyAdegoke/montessa-sub006/database"
	"github.com/TestimonyAdegoke/montessa-sub006/logger"
	"github.com/TestimonyAdegoke/montessa-sub006/realtime"
)

const testSecret = "test-secret-at-least-32-bytes-long!!"

func TestConfigApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()

	if cfg.Name != ServiceName {
		t.Errorf("expected name %q, got %q", ServiceName, cfg.Name)
	}
	if cfg.Realtime.HeartbeatInterval != realtime.DefaultHeartbeatInterval {
		t.Errorf("expected default heartbeat, got %s", cfg.Realtime.HeartbeatInterval)
	}
	if cfg.Auth.QueryParam != "access_token" {
		t.Errorf("expected access_token query param, got %q", cfg.Auth.QueryParam)
	}
	if cfg.RateLimit.Stream != 30 || cfg.RateLimit.API != 300 {
		t.Errorf("unexpected rate limits %+v", cfg.RateLimit)
	}
	if cfg.Logging.ServiceName != ServiceName {
		t.Errorf("expected logging service name to follow name, got %q", cfg.Logging.ServiceName)
	}
	if !cfg.Server.Debug {
		t.Error("expected development defaults to put the server in debug mode")
	}

	prod := Config{}
	prod.Environment = "production"
	prod.ApplyDefaults()
	if prod.Server.Debug {
		t.Error("expected production to keep the server out of debug mode")
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing secret", func(c *Config) { c.Auth.JWT.Secret = "" }, "auth.jwt"},
		{"relay without redis", func(c *Config) { c.Realtime.Relay.Enabled = true }, "requires redis.enabled"},
		{"negative rate limit", func(c *Config) { c.RateLimit.API = -1 }, "rate_limit"},
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "config.environment"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Config{}
			cfg.Auth.JWT.Secret = testSecret
			tc.mutate(&cfg)
			cfg.ApplyDefaults()

			err := cfg.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tc.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yml")
	yml := `
name: montessa
environment: staging
server:
  port: 9090
realtime:
  heartbeat_interval: 20s
  relay:
    enabled: true
redis:
  enabled: true
  addr: cache:6379
auth:
  jwt:
    secret: from-file
`
	if err := os.WriteFile(path, []byte(yml), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("REALTIME_HEARTBEAT_INTERVAL", "5s")

	cfg, err := LoadConfig(config.WithConfigFile(path), config.WithEnvFile(filepath.Join(dir, "missing.env")))
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.Environment != "staging" {
		t.Errorf("expected staging, got %q", cfg.Environment)
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Realtime.HeartbeatInterval != 5*time.Second {
		t.Errorf("expected env override 5s, got %s", cfg.Realtime.HeartbeatInterval)
	}
	if !cfg.Realtime.Relay.Enabled || cfg.Realtime.Relay.Channel != realtime.DefaultRelayChannel {
		t.Errorf("unexpected relay config %+v", cfg.Realtime.Relay)
	}
	if cfg.Redis.Addr != "cache:6379" {
		t.Errorf("expected redis addr from file, got %q", cfg.Redis.Addr)
	}
	if cfg.Auth.JWT.Secret != "from-file" {
		t.Errorf("expected secret from file, got %q", cfg.Auth.JWT.Secret)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should validate: %v", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	cfg := &Config{}
	if _, err := New(cfg, bootstrap.WithLogger(logger.Nop())); err == nil {
		t.Fatal("expected an error for a config without a JWT secret")
	}
}

// --- end to end ---

func freePort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

// testConfig mirrors the shipped defaults: Redis and the relay stay off.
func testConfig(t *testing.T) *Config {
	t.Helper()
	cfg := &Config{}
	cfg.Environment = "production"
	cfg.Server.Host = "127.0.0.1"
	cfg.Server.Port = freePort(t)
	cfg.Auth.JWT.Secret = testSecret
	cfg.Realtime.HeartbeatInterval = time.Hour
	cfg.Database = database.Config{
		Enabled:     true,
		Driver:      database.DriverSQLite,
		DSN:         fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()),
		AutoMigrate: true,
		LogLevel:    "silent",
	}
	return cfg
}

func startService(t *testing.T, cfg *Config) (*Service, string) {
	t.Helper()
	s, err := New(cfg, bootstrap.WithLogger(logger.Nop()), bootstrap.WithSummaryOutput(io.Discard))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	stopped := false
	t.Cleanup(func() {
		if !stopped {
			_ = s.Shutdown()
		}
	})
	s.OnStop(func(context.Context) error {
		stopped = true
		return nil
	})
	return s, "http://" + s.Server.Server().Addr()
}

func token(t *testing.T, s *Service, userID, role string) string {
	t.Helper()
	tok, err := s.Tokens.GenerateAccess(&auth.Claims{UserID: userID, TenantID: "school-1", Role: role})
	if err != nil {
		t.Fatalf("GenerateAccess: %v", err)
	}
	return tok
}

// openStream returns data frames only; ping comments are skipped.
func openStream(t *testing.T, base, tok string) <-chan string {
	t.Helper()
	resp, err := http.Get(base + "/api/realtime/stream?access_token=" + tok)
	if err != nil {
		t.Fatalf("GET stream: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.HasPrefix(ct, "text/event-stream") {
		t.Fatalf("unexpected content type %q", ct)
	}
	t.Cleanup(func() { resp.Body.Close() })

	frames := make(chan string, 16)
	go func() {
		defer close(frames)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			if line, ok := strings.CutPrefix(sc.Text(), "data: "); ok {
				frames <- line
			}
		}
	}()
	return frames
}

func nextEvent(t *testing.T, frames <-chan string) realtime.Event {
	t.Helper()
	select {
	case f, ok := <-frames:
		if !ok {
			t.Fatal("stream ended unexpectedly")
		}
		var ev realtime.Event
		if err := json.Unmarshal([]byte(f), &ev); err != nil {
			t.Fatalf("bad frame %q: %v", f, err)
		}
		return ev
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for an event")
	}
	return realtime.Event{}
}

func waitForHandles(t *testing.T, s *Service, userID string, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if len(s.Realtime.Registry().Handles(userID)) == n {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected %d handles for %s, got %d", n, userID, len(s.Realtime.Registry().Handles(userID)))
}

func postJSON(t *testing.T, url, tok, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(http.MethodPost, url, strings.NewReader(body))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+tok)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST %s: %v", url, err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestService_MessageReachesOpenStream(t *testing.T) {
	s, base := startService(t, testConfig(t))

	frames := openStream(t, base, token(t, s, "u-alice", auth.RoleTeacher))
	if ev := nextEvent(t, frames); ev.Kind != realtime.KindConnected {
		t.Fatalf("expected connected frame, got %q", ev.Kind)
	}
	waitForHandles(t, s, "u-alice", 1)

	resp := postJSON(t, base+"/api/messages", token(t, s, "u-bob", auth.RoleParent),
		`{"recipientId":"u-alice","body":"see you at pickup"}`)
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 201, got %d: %s", resp.StatusCode, b)
	}

	ev := nextEvent(t, frames)
	if ev.Kind != realtime.KindMessageCreated {
		t.Fatalf("expected %s, got %q", realtime.KindMessageCreated, ev.Kind)
	}
	if ev.TargetUserID != "u-alice" {
		t.Errorf("expected target u-alice, got %q", ev.TargetUserID)
	}
	var msg struct {
		SenderID string `json:"senderId"`
		Body     string `json:"body"`
	}
	if err := json.Unmarshal(ev.Data, &msg); err != nil {
		t.Fatalf("decode message: %v", err)
	}
	if msg.SenderID != "u-bob" || msg.Body != "see you at pickup" {
		t.Errorf("unexpected message payload %+v", msg)
	}

	if err := s.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	select {
	case _, ok := <-frames:
		if ok {
			t.Fatal("expected no more frames after shutdown")
		}
	case <-time.After(3 * time.Second):
		t.Fatal("stream still open after shutdown")
	}
	if users, handles := s.Realtime.Registry().Count(); users != 0 || handles != 0 {
		t.Errorf("expected empty registry after shutdown, got %d users %d handles", users, handles)
	}
}

func TestService_DefaultConfigStartsWithoutRedis(t *testing.T) {
	cfg := testConfig(t)
	if cfg.Redis.Enabled || cfg.Realtime.Relay.Enabled {
		t.Fatal("test config must keep redis and the relay disabled")
	}
	s, base := startService(t, cfg)

	if err := s.ReadyCheck(context.Background()); err != nil {
		t.Errorf("ReadyCheck: %v", err)
	}

	resp, err := http.Get(base + "/ready")
	if err != nil {
		t.Fatal(err)
	}
	b, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected /ready 200, got %d: %s", resp.StatusCode, b)
	}

	frames := openStream(t, base, token(t, s, "u-erin", auth.RoleParent))
	if ev := nextEvent(t, frames); ev.Kind != realtime.KindConnected {
		t.Fatalf("expected connected frame, got %q", ev.Kind)
	}
	waitForHandles(t, s, "u-erin", 1)

	res, err := s.Realtime.Dispatcher().Dispatch(context.Background(), "u-erin", realtime.KindNotification, map[string]string{"title": "Assembly"})
	if err != nil {
		t.Fatalf("Dispatch: %v", err)
	}
	if res.Delivered != 1 {
		t.Fatalf("expected one delivery, got %+v", res)
	}
	if ev := nextEvent(t, frames); ev.Kind != realtime.KindNotification {
		t.Fatalf("expected notification frame, got %q", ev.Kind)
	}
}

func TestService_StreamRequiresToken(t *testing.T) {
	s, base := startService(t, testConfig(t))
	_ = s

	resp, err := http.Get(base + "/api/realtime/stream")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	resp, err = http.Get(base + "/api/realtime/stream?access_token=not-a-jwt")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for a bad token, got %d", resp.StatusCode)
	}
}

func TestService_ActiveUsersRequiresAdmin(t *testing.T) {
	s, base := startService(t, testConfig(t))

	frames := openStream(t, base, token(t, s, "u-carol", auth.RoleStudent))
	nextEvent(t, frames)
	waitForHandles(t, s, "u-carol", 1)

	get := func(tok string) *http.Response {
		req, _ := http.NewRequest(http.MethodGet, base+"/api/realtime/users", nil)
		req.Header.Set("Authorization", "Bearer "+tok)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			t.Fatal(err)
		}
		t.Cleanup(func() { resp.Body.Close() })
		return resp
	}

	if resp := get(token(t, s, "u-carol", auth.RoleStudent)); resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403 for a student, got %d", resp.StatusCode)
	}

	resp := get(token(t, s, "u-root", auth.RoleAdmin))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 for an admin, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(b), "u-carol") {
		t.Errorf("expected u-carol among active users, got %s", b)
	}
}

func TestService_HealthEndpoint(t *testing.T) {
	_, base := startService(t, testConfig(t))

	resp, err := http.Get(base + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	b, _ := io.ReadAll(resp.Body)
	for _, name := range []string{"realtime", "database", "redis", "http-server"} {
		if !strings.Contains(string(b), name) {
			t.Errorf("expected %s in health body, got %s", name, b)
		}
	}
}

func TestService_NotificationThroughRelay(t *testing.T) {
	mr := miniredis.RunT(t)

	cfg := testConfig(t)
	cfg.Redis.Enabled = true
	cfg.Redis.Addr = mr.Addr()
	cfg.Realtime.Relay.Enabled = true
	s, base := startService(t, cfg)

	frames := openStream(t, base, token(t, s, "u-dana", auth.RoleParent))
	nextEvent(t, frames)
	waitForHandles(t, s, "u-dana", 1)

	resp := postJSON(t, base+"/api/notifications", token(t, s, "u-office", auth.RoleStaff),
		`{"recipientUserId":"u-dana","kind":"notification","data":{"title":"Trip"}}`)
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		t.Fatalf("expected 200, got %d: %s", resp.StatusCode, b)
	}
	var body struct {
		Data realtime.Result `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if !body.Data.Relayed {
		t.Errorf("expected a relayed result, got %+v", body.Data)
	}

	ev := nextEvent(t, frames)
	if ev.Kind != realtime.KindNotification {
		t.Fatalf("expected notification, got %q", ev.Kind)
	}
	if !strings.Contains(string(ev.Data), "Trip") {
		t.Errorf("unexpected data %s", ev.Data)
	}
}

package ratelimit

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func TestLimiter_AllowsUpToLimit(t *testing.T) {
	l := New(3, time.Minute)
	defer l.Close()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Error("4th attempt should be blocked")
	}
	if ok, _ := l.Allow(ctx, "other"); !ok {
		t.Error("keys should be independent")
	}
}

func TestLimiter_WindowExpires(t *testing.T) {
	l := New(1, 20*time.Millisecond)
	defer l.Close()
	ctx := context.Background()

	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, _ := l.Allow(ctx, "k"); ok {
		t.Fatal("second attempt should be blocked")
	}
	time.Sleep(30 * time.Millisecond)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after window should pass")
	}
}

func TestLimiter_Reset(t *testing.T) {
	l := New(1, time.Minute)
	defer l.Close()
	ctx := context.Background()

	l.Allow(ctx, "k")
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after reset should pass")
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name   string
		xff    string
		realIP string
		remote string
		want   string
	}{
		{"forwarded first hop", "203.0.113.7, 10.0.0.1", "", "10.0.0.2:4000", "203.0.113.7"},
		{"real ip header", "", "198.51.100.4", "10.0.0.2:4000", "198.51.100.4"},
		{"remote addr", "", "", "192.0.2.9:5555", "192.0.2.9"},
		{"remote without port", "", "", "192.0.2.9", "192.0.2.9"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("POST", "/login", nil)
			r.RemoteAddr = tt.remote
			if tt.xff != "" {
				r.Header.Set("X-Forwarded-For", tt.xff)
			}
			if tt.realIP != "" {
				r.Header.Set("X-Real-IP", tt.realIP)
			}
			if got := ClientIP(r); got != tt.want {
				t.Errorf("ClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisLimiter_FixedWindow(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "test:", 2, time.Minute)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		ok, err := l.Allow(ctx, "k")
		if err != nil || !ok {
			t.Fatalf("attempt %d: ok=%v err=%v", i+1, ok, err)
		}
	}
	ok, err := l.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("3rd attempt should be blocked")
	}

	if ttl := mr.TTL("test:k"); ttl <= 0 || ttl > time.Minute {
		t.Errorf("TTL = %v, want (0, 1m]", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after window should pass")
	}
}

func TestRedisLimiter_KeyWithoutTTLGetsOne(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "test:", 2, time.Minute)
	ctx := context.Background()

	// A counter left over past its limit with no expiry must not lock the
	// key out forever.
	if err := mr.Set("test:k", "5"); err != nil {
		t.Fatalf("seed key: %v", err)
	}

	ok, err := l.Allow(ctx, "k")
	if err != nil {
		t.Fatalf("Allow: %v", err)
	}
	if ok {
		t.Error("over-limit counter should still block inside the window")
	}
	if ttl := mr.TTL("test:k"); ttl <= 0 || ttl > time.Minute {
		t.Fatalf("TTL = %v, want (0, 1m]", ttl)
	}

	mr.FastForward(time.Minute + time.Second)
	if ok, _ := l.Allow(ctx, "k"); !ok {
		t.Error("attempt after the repaired window should pass")
	}
}

func TestRedisLimiter_Reset(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "test:", 1, time.Minute)
	ctx := context.Background()

	l.Allow(ctx, "k")
	if err := l.Reset(ctx, "k"); err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if mr.Exists("test:k") {
		t.Error("key should be deleted")
	}
}

func TestRedisLimiter_Unavailable(t *testing.T) {
	mr, client := newTestRedis(t)
	l := NewRedisLimiter(client, "test:", 1, time.Minute)
	mr.Close()

	if _, err := l.Allow(context.Background(), "k"); err == nil {
		t.Error("expected error with redis down")
	}
}

type failingCounter struct{}

func (failingCounter) Allow(context.Context, string) (bool, error) {
	return false, errors.New("down")
}
func (failingCounter) Reset(context.Context, string) error { return errors.New("down") }

func TestLoginLimiter_EmailLimit(t *testing.T) {
	ll := NewMemoryLoginLimiter(2, time.Minute, zap.NewNop())

	check := func(ip, email string) bool {
		r := httptest.NewRequest("POST", "/login", nil)
		r.RemoteAddr = ip + ":1234"
		ok, _ := ll.Check(r, email)
		return ok
	}

	if !check("192.0.2.1", "ana@uni.cv") || !check("192.0.2.2", "ANA@uni.cv ") {
		t.Fatal("first two attempts should pass")
	}
	if check("192.0.2.3", "ana@uni.cv") {
		t.Error("third attempt for the same email should be blocked across IPs")
	}
	if !check("192.0.2.3", "rui@uni.cv") {
		t.Error("other email should pass")
	}

	ll.ResetEmail(context.Background(), "Ana@Uni.cv")
	if !check("192.0.2.4", "ana@uni.cv") {
		t.Error("attempt after ResetEmail should pass")
	}
}

func TestLoginLimiter_IPLimit(t *testing.T) {
	ll := NewLoginLimiter(New(1, time.Minute), New(100, time.Minute), zap.NewNop())

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	if ok, _ := ll.Check(r, "a@uni.cv"); !ok {
		t.Fatal("first attempt should pass")
	}
	ok, msg := ll.Check(r, "b@uni.cv")
	if ok {
		t.Error("second attempt from same IP should be blocked")
	}
	if msg == "" {
		t.Error("blocked attempt should carry a message")
	}
}

func TestLoginLimiter_FailsOpen(t *testing.T) {
	ll := NewLoginLimiter(failingCounter{}, failingCounter{}, zap.NewNop())

	r := httptest.NewRequest("POST", "/login", nil)
	if ok, _ := ll.Check(r, "a@uni.cv"); !ok {
		t.Error("counter errors should let the attempt through")
	}
	ll.ResetEmail(context.Background(), "a@uni.cv")
}

func TestRedisLoginLimiter(t *testing.T) {
	_, client := newTestRedis(t)
	ll := NewRedisLoginLimiter(client, 1, time.Minute, zap.NewNop())

	r := httptest.NewRequest("POST", "/login", nil)
	r.RemoteAddr = "192.0.2.1:1234"
	if ok, _ := ll.Check(r, "a@uni.cv"); !ok {
		t.Fatal("first attempt should pass")
	}
	if ok, _ := ll.Check(r, "a@uni.cv"); ok {
		t.Error("second attempt for same email should be blocked")
	}
}

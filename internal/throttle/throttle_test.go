package throttle

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)}
}

func mustCheck(t *testing.T, limiter *ResendLimiter, email string) Decision {
	t.Helper()
	decision, err := limiter.Check(context.Background(), email)
	if err != nil {
		t.Fatalf("resend check failed: %v", err)
	}
	return decision
}

func TestResendLimiterHourlyWindow(t *testing.T) {
	clock := newFakeClock()
	limiter := NewResendLimiter(NewMemoryStore(), 3, 10).WithClock(clock.Now)

	for i := 0; i < 3; i++ {
		if d := mustCheck(t, limiter, "user@example.com"); !d.Allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	clock.Advance(10 * time.Minute)
	denied := mustCheck(t, limiter, "user@example.com")
	if denied.Allowed {
		t.Fatalf("4th call within the hour should be rejected")
	}
	if denied.Window != "hour" {
		t.Fatalf("expected hour window, got %q", denied.Window)
	}
	if got := denied.RetryAfterSeconds(); got != 50*60 {
		t.Fatalf("retry after want %d got %d", 50*60, got)
	}

	clock.Advance(50 * time.Minute)
	if d := mustCheck(t, limiter, "user@example.com"); !d.Allowed {
		t.Fatalf("call after the hour window should be allowed")
	}
}

func TestResendLimiterDailyWindowPersistsAcrossHours(t *testing.T) {
	clock := newFakeClock()
	limiter := NewResendLimiter(NewMemoryStore(), 3, 10).WithClock(clock.Now)

	for hour := 0; hour < 3; hour++ {
		for i := 0; i < 3; i++ {
			if d := mustCheck(t, limiter, "daily@example.com"); !d.Allowed {
				t.Fatalf("hour %d call %d should be allowed", hour, i+1)
			}
		}
		clock.Advance(time.Hour)
	}
	if d := mustCheck(t, limiter, "daily@example.com"); !d.Allowed {
		t.Fatalf("10th call should be allowed")
	}
	denied := mustCheck(t, limiter, "daily@example.com")
	if denied.Allowed || denied.Window != "day" {
		t.Fatalf("11th call should hit the day window, got %+v", denied)
	}
	if got, want := denied.RetryAfter, 21*time.Hour; got != want {
		t.Fatalf("retry after want %s got %s", want, got)
	}
}

func TestResendLimiterBothWindowsUseLaterReset(t *testing.T) {
	clock := newFakeClock()
	limiter := NewResendLimiter(NewMemoryStore(), 3, 3).WithClock(clock.Now)
	for i := 0; i < 3; i++ {
		mustCheck(t, limiter, "both@example.com")
	}
	denied := mustCheck(t, limiter, "both@example.com")
	if denied.Allowed || denied.Window != "day" || denied.RetryAfter != 24*time.Hour {
		t.Fatalf("expected day window retry, got %+v", denied)
	}
}

func TestResendLimiterKeyIsNormalizedEmail(t *testing.T) {
	clock := newFakeClock()
	limiter := NewResendLimiter(NewMemoryStore(), 1, 10).WithClock(clock.Now)
	if d := mustCheck(t, limiter, "  Mixed@Example.COM "); !d.Allowed {
		t.Fatalf("first call should be allowed")
	}
	if d := mustCheck(t, limiter, "mixed@example.com"); d.Allowed {
		t.Fatalf("same normalized email should share the counter")
	}
	if d := mustCheck(t, limiter, "other@example.com"); !d.Allowed {
		t.Fatalf("other email should have its own counter")
	}
}

func TestMemoryStoreDeniedCallsDoNotCount(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	windows := []Window{{Name: "w", Limit: 1, Size: time.Minute}}
	ctx := context.Background()

	if d, _ := store.Take(ctx, "k", windows, clock.Now()); !d.Allowed {
		t.Fatalf("first take should be allowed")
	}
	for i := 0; i < 5; i++ {
		if d, _ := store.Take(ctx, "k", windows, clock.Now()); d.Allowed {
			t.Fatalf("take %d should be denied", i+2)
		}
	}
	clock.Advance(time.Minute)
	if d, _ := store.Take(ctx, "k", windows, clock.Now()); !d.Allowed {
		t.Fatalf("take after reset should be allowed")
	}
}

func TestMemoryStoreSweepsExpiredCounters(t *testing.T) {
	clock := newFakeClock()
	store := NewMemoryStore()
	windows := []Window{{Name: "w", Limit: 5, Size: time.Minute}}
	ctx := context.Background()

	for _, key := range []string{"a", "b", "c"} {
		if _, err := store.Take(ctx, key, windows, clock.Now()); err != nil {
			t.Fatalf("take failed: %v", err)
		}
	}
	if store.Len() != 3 {
		t.Fatalf("expected 3 counters, got %d", store.Len())
	}
	clock.Advance(2 * time.Minute)
	if _, err := store.Take(ctx, "d", windows, clock.Now()); err != nil {
		t.Fatalf("take failed: %v", err)
	}
	if store.Len() != 1 {
		t.Fatalf("expired counters should be swept, got %d", store.Len())
	}
}

func TestRedisStoreFixedWindow(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewResendLimiter(NewRedisStore(client, "jd:throttle"), 3, 10)
	for i := 0; i < 3; i++ {
		if d := mustCheck(t, limiter, "redis@example.com"); !d.Allowed {
			t.Fatalf("call %d should be allowed", i+1)
		}
	}
	denied := mustCheck(t, limiter, "redis@example.com")
	if denied.Allowed || denied.Window != "hour" {
		t.Fatalf("4th call should be denied by hour window, got %+v", denied)
	}
	if denied.RetryAfterSeconds() <= 0 || denied.RetryAfter > time.Hour {
		t.Fatalf("unexpected retry after: %s", denied.RetryAfter)
	}
	if got := mr.Exists("jd:throttle:resend:redis@example.com:day"); !got {
		t.Fatalf("day counter key should exist")
	}

	mr.FastForward(time.Hour + time.Second)
	if d := mustCheck(t, limiter, "redis@example.com"); !d.Allowed {
		t.Fatalf("call after hour window should be allowed")
	}
	dayCount, err := mr.Get("jd:throttle:resend:redis@example.com:day")
	if err != nil {
		t.Fatalf("read day counter failed: %v", err)
	}
	if dayCount != "4" {
		t.Fatalf("day counter should keep counting, got %s", dayCount)
	}
}

func TestRedisStoreBothWindowsUseLaterReset(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	limiter := NewResendLimiter(NewRedisStore(client, "jd:throttle"), 3, 3)
	for i := 0; i < 3; i++ {
		mustCheck(t, limiter, "both@example.com")
	}
	denied := mustCheck(t, limiter, "both@example.com")
	if denied.Allowed || denied.Window != "day" {
		t.Fatalf("expected day window denial, got %+v", denied)
	}
	if denied.RetryAfter <= time.Hour || denied.RetryAfter > 24*time.Hour {
		t.Fatalf("retry after should follow the day window, got %s", denied.RetryAfter)
	}
}

func TestRedisStoreUnavailable(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	mr.Close()

	store := NewRedisStore(client, "")
	_, err = store.Take(context.Background(), "k", []Window{{Name: "w", Limit: 1, Size: time.Minute}}, time.Now())
	if !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("expected ErrStoreUnavailable, got %v", err)
	}
}

func TestLockoutCheckLocked(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	lockout := NewLockout(0, 0)

	cases := []struct {
		name        string
		lockedUntil *time.Time
		wantLocked  bool
		wantExpired bool
		wantMinutes int
	}{
		{name: "never locked", lockedUntil: nil},
		{name: "full duration", lockedUntil: ptrTime(now.Add(DefaultLockDuration)), wantLocked: true, wantMinutes: 15},
		{name: "partial minute rounds up", lockedUntil: ptrTime(now.Add(61 * time.Second)), wantLocked: true, wantMinutes: 2},
		{name: "one second left", lockedUntil: ptrTime(now.Add(time.Second)), wantLocked: true, wantMinutes: 1},
		{name: "boundary is unlocked", lockedUntil: ptrTime(now), wantExpired: true},
		{name: "past", lockedUntil: ptrTime(now.Add(-time.Minute)), wantExpired: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			state := lockout.CheckLocked(tc.lockedUntil, now)
			if state.Locked != tc.wantLocked || state.Expired != tc.wantExpired || state.MinutesRemaining != tc.wantMinutes {
				t.Fatalf("unexpected state: %+v", state)
			}
		})
	}
}

func TestLockoutRegisterFailure(t *testing.T) {
	now := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	lockout := NewLockout(DefaultMaxAttempts, DefaultLockDuration)

	attempts := 0
	var until *time.Time
	for i := 0; i < DefaultMaxAttempts-1; i++ {
		attempts, until = lockout.RegisterFailure(attempts, now)
		if until != nil {
			t.Fatalf("attempt %d should not lock", attempts)
		}
	}
	attempts, until = lockout.RegisterFailure(attempts, now)
	if attempts != DefaultMaxAttempts || until == nil {
		t.Fatalf("5th failure should lock, attempts=%d until=%v", attempts, until)
	}
	state := lockout.CheckLocked(until, now)
	if !state.Locked || state.MinutesRemaining != 15 || state.RetryAfterSeconds != 15*60 {
		t.Fatalf("unexpected lock state after threshold: %+v", state)
	}
}

func ptrTime(t time.Time) *time.Time {
	return &t
}

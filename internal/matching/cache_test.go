package matching

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/mediplus/clinic-platform/internal/doctors"
	"github.com/mediplus/clinic-platform/pkg/logging"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewCache(client, ttl, logging.New("error")), mr
}

func TestCacheRoundTrip(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	if got := cache.Get(ctx, "chest pain"); got != nil {
		t.Fatalf("cold cache returned %+v", got)
	}

	m := &Match{
		Doctor: doctors.Doctor{ID: uuid.New(), FullName: "Dr. Heart", Specialty: "Cardiology"},
		Score:  0.92,
		Reason: "closest specialty match",
	}
	cache.Put(ctx, "chest pain", m)

	got := cache.Get(ctx, "chest pain")
	if got == nil {
		t.Fatal("cache miss after put")
	}
	if got.Doctor.ID != m.Doctor.ID || got.Reason != m.Reason {
		t.Fatalf("got %+v, want %+v", got, m)
	}
}

func TestCacheNormalizesSymptoms(t *testing.T) {
	cache, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	m := &Match{Doctor: doctors.Doctor{ID: uuid.New(), FullName: "Dr. Heart"}}
	cache.Put(ctx, "Chest   Pain", m)

	if got := cache.Get(ctx, "chest pain"); got == nil {
		t.Fatal("whitespace and case differences should hit the same entry")
	}
}

func TestCacheExpires(t *testing.T) {
	cache, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	cache.Put(ctx, "chest pain", &Match{Doctor: doctors.Doctor{ID: uuid.New()}})
	mr.FastForward(2 * time.Minute)

	if got := cache.Get(ctx, "chest pain"); got != nil {
		t.Fatalf("entry survived TTL: %+v", got)
	}
}

func TestNilCacheIsNoop(t *testing.T) {
	var cache *Cache
	ctx := context.Background()

	// Must not panic.
	cache.Put(ctx, "chest pain", &Match{})
	if got := cache.Get(ctx, "chest pain"); got != nil {
		t.Fatalf("nil cache returned %+v", got)
	}
}

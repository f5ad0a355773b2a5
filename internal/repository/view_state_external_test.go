package repository

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap/zaptest"

	"optionstracker/internal/database"
	"optionstracker/internal/domain"
)

// These run against real stores when TEST_DATABASE_URL / TEST_REDIS_URL are set.

func exerciseRepository(t *testing.T, repo domain.ViewStateRepository) {
	t.Helper()
	ctx := context.Background()

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}

	st := sampleState()
	st.UpdatedAt = time.Now().Add(-3 * time.Hour).UTC().Truncate(time.Millisecond)
	if err := repo.Save(ctx, st); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := repo.Get(ctx, st.SessionID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.Snapshots[domain.BucketActive][1].Ticker != "MSFT" {
		t.Errorf("second ticker = %q, want MSFT", got.Snapshots[domain.BucketActive][1].Ticker)
	}
	if !got.Snapshots[domain.BucketActive][0].StrikePrice.Equal(st.Snapshots[domain.BucketActive][0].StrikePrice) {
		t.Errorf("strike price = %s, want 150", got.Snapshots[domain.BucketActive][0].StrikePrice)
	}

	n, err := repo.DeleteIdle(ctx, time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("DeleteIdle() error = %v", err)
	}
	if n < 1 {
		t.Errorf("DeleteIdle() = %d, want at least 1", n)
	}
	if _, err := repo.Get(ctx, st.SessionID); !errors.Is(err, domain.ErrViewStateNotFound) {
		t.Errorf("Get() after DeleteIdle error = %v, want ErrViewStateNotFound", err)
	}
}

func TestPostgresViewStateRepository(t *testing.T) {
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	ctx := context.Background()

	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		t.Fatalf("pgxpool.New() error = %v", err)
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("RunMigrations() error = %v", err)
	}
	exerciseRepository(t, NewPostgresViewStateRepository(pool))
}

func TestRedisViewStateRepository(t *testing.T) {
	url := os.Getenv("TEST_REDIS_URL")
	if url == "" {
		t.Skip("TEST_REDIS_URL not set")
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		t.Fatalf("redis.ParseURL() error = %v", err)
	}
	client := redis.NewClient(opts)
	defer client.Close()

	// no ttl so DeleteIdle has something to sweep
	exerciseRepository(t, NewRedisViewStateRepository(client, 0))
}

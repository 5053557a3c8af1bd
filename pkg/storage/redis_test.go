package storage

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

// setupRedisContainer starts a Redis container, skipping the test when
// Docker is unavailable.
func setupRedisContainer(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping Redis container test in short mode")
	}

	ctx := context.Background()
	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections"),
	}

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		t.Skipf("Redis container not available: %v", err)
	}

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatalf("Failed to get container host: %v", err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatalf("Failed to get container port: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: host + ":" + port.Port()})
	t.Cleanup(func() {
		client.Close()
		container.Terminate(ctx)
	})
	return client
}

func TestRedisStore(t *testing.T) {
	client := setupRedisContainer(t)
	storeContract(t, NewRedisStore(client, WithPrefix("test:")))
}

func TestRedisStore_PrefixIsolation(t *testing.T) {
	client := setupRedisContainer(t)
	ctx := context.Background()

	base := NewRedisStore(client, WithPrefix("test:"))
	a := base.Scoped("visitor-a:")
	b := base.Scoped("visitor-b:")

	if err := a.Set(ctx, LocaleKey, "lt-LT"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if _, err := b.Get(ctx, LocaleKey); err != ErrNotFound {
		t.Errorf("other scope Get error = %v, want ErrNotFound", err)
	}

	raw, err := client.Get(ctx, "test:visitor-a:"+LocaleKey).Result()
	if err != nil || raw != "lt-LT" {
		t.Errorf("raw key = %q, %v", raw, err)
	}
}

func TestRedisStore_TTL(t *testing.T) {
	client := setupRedisContainer(t)
	ctx := context.Background()

	s := NewRedisStore(client, WithPrefix("ttl:"), WithTTL(time.Hour))
	if err := s.Set(ctx, ConsentKey, "{}"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	ttl, err := client.TTL(ctx, "ttl:"+ConsentKey).Result()
	if err != nil {
		t.Fatalf("TTL() error = %v", err)
	}
	if ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL = %v, want (0, 1h]", ttl)
	}
}

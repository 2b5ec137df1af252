// Package cache guarda las claves Idempotency-Key de las altas de movimientos.
package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	ledgerapp "github.com/jhoicas/bodega-api/internal/application/ledger"
	"github.com/jhoicas/bodega-api/pkg/config"
)

const defaultKeyPrefix = "bodega:idempotency:"

var (
	_ ledgerapp.IdempotencyStore = (*RedisIdempotencyStore)(nil)
	_ ledgerapp.IdempotencyStore = (*MemoryIdempotencyStore)(nil)
)

// RedisIdempotencyStore claves compartidas entre instancias (SET NX con TTL).
type RedisIdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisClient conecta y verifica Redis con un ping.
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("conectar Redis %s: %w", cfg.Addr, err)
	}
	return client, nil
}

// NewRedisIdempotencyStore usa un cliente existente. keyPrefix vacío toma el prefijo por defecto.
func NewRedisIdempotencyStore(client *redis.Client, keyPrefix string) *RedisIdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = defaultKeyPrefix
	}
	return &RedisIdempotencyStore{client: client, keyPrefix: keyPrefix}
}

// Reserve true si la clave no existía; la operación es atómica (SETNX).
func (s *RedisIdempotencyStore) Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reservar clave de idempotencia: %w", err)
	}
	return ok, nil
}

// Release borra la clave para permitir reintentos después de un alta fallida.
func (s *RedisIdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("liberar clave de idempotencia: %w", err)
	}
	return nil
}

// MemoryIdempotencyStore claves en proceso; sirve para una sola instancia y para tests.
// Las claves vencidas se purgan al reservar.
type MemoryIdempotencyStore struct {
	mu      sync.Mutex
	entries map[string]time.Time // clave -> vencimiento
	now     func() time.Time
}

// NewMemoryIdempotencyStore store vacío con reloj real.
func NewMemoryIdempotencyStore() *MemoryIdempotencyStore {
	return &MemoryIdempotencyStore{entries: make(map[string]time.Time), now: time.Now}
}

// WithClock reemplaza el reloj (tests).
func (s *MemoryIdempotencyStore) WithClock(now func() time.Time) *MemoryIdempotencyStore {
	s.now = now
	return s
}

func (s *MemoryIdempotencyStore) Reserve(_ context.Context, key string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for k, exp := range s.entries {
		if !now.Before(exp) {
			delete(s.entries, k)
		}
	}
	if _, exists := s.entries[key]; exists {
		return false, nil
	}
	s.entries[key] = now.Add(ttl)
	return true, nil
}

func (s *MemoryIdempotencyStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, key)
	return nil
}

// Len claves almacenadas (tests).
func (s *MemoryIdempotencyStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

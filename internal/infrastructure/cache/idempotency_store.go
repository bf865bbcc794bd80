package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Estados de una llave de idempotencia.
const (
	StatePending = "pending"
	StateDone    = "done"
)

// IdempotentResponse respuesta guardada para una llave. Mientras la petición original se
// procesa State es pending y no hay cuerpo.
type IdempotentResponse struct {
	State       string `json:"state"`
	Fingerprint string `json:"fingerprint"`
	StatusCode  int    `json:"status_code,omitempty"`
	ContentType string `json:"content_type,omitempty"`
	Body        []byte `json:"body,omitempty"`
}

// IdempotencyStore llaves Idempotency-Key en Redis con TTL. La reserva usa SETNX para que
// dos réplicas no procesen la misma petición a la vez.
type IdempotencyStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewIdempotencyStore construye el store con un cliente existente.
func NewIdempotencyStore(client *redis.Client, keyPrefix string, ttl time.Duration) *IdempotencyStore {
	if keyPrefix == "" {
		keyPrefix = "kardex:idempotency:"
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &IdempotencyStore{client: client, keyPrefix: keyPrefix, ttl: ttl}
}

// NewClient abre el cliente Redis y verifica la conexión.
func NewClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{Addr: addr, Password: password, DB: db})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// Reserve marca la llave como pending. Devuelve false si ya existía.
func (s *IdempotencyStore) Reserve(ctx context.Context, key, fingerprint string) (bool, error) {
	raw, err := json.Marshal(IdempotentResponse{State: StatePending, Fingerprint: fingerprint})
	if err != nil {
		return false, err
	}
	ok, err := s.client.SetNX(ctx, s.keyPrefix+key, raw, s.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("reserve idempotency key: %w", err)
	}
	return ok, nil
}

// Get devuelve la respuesta guardada o nil si la llave no existe (o expiró).
func (s *IdempotencyStore) Get(ctx context.Context, key string) (*IdempotentResponse, error) {
	raw, err := s.client.Get(ctx, s.keyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get idempotency key: %w", err)
	}
	var resp IdempotentResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("decode idempotency key: %w", err)
	}
	return &resp, nil
}

// Complete guarda la respuesta final; reinicia el TTL.
func (s *IdempotencyStore) Complete(ctx context.Context, key string, resp IdempotentResponse) error {
	resp.State = StateDone
	raw, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.keyPrefix+key, raw, s.ttl).Err(); err != nil {
		return fmt.Errorf("complete idempotency key: %w", err)
	}
	return nil
}

// Release libera la llave para que un reintento vuelva a ejecutar la operación.
func (s *IdempotencyStore) Release(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.keyPrefix+key).Err(); err != nil {
		return fmt.Errorf("release idempotency key: %w", err)
	}
	return nil
}

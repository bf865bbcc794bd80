package main

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/pkg/config"
)

func TestOpenIdempotency_RedisDisponible(t *testing.T) {
	mr := miniredis.RunT(t)
	var buf bytes.Buffer

	store, closeFn := openIdempotency(context.Background(), config.RedisConfig{Addr: mr.Addr(), IdempotencyTTL: time.Minute}, zerolog.New(&buf))
	defer closeFn()
	require.NotNil(t, store)
	assert.Empty(t, buf.String())
}

func TestOpenIdempotency_SinRedisArrancaIgual(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()
	var buf bytes.Buffer

	store, closeFn := openIdempotency(context.Background(), config.RedisConfig{Addr: addr}, zerolog.New(&buf))
	assert.Nil(t, store)
	require.NotNil(t, closeFn)
	closeFn()
	assert.Contains(t, buf.String(), `"level":"warn"`)
	assert.Contains(t, buf.String(), addr)
}

func TestOpenIdempotency_SinDireccion(t *testing.T) {
	var buf bytes.Buffer
	store, closeFn := openIdempotency(context.Background(), config.RedisConfig{}, zerolog.New(&buf))
	closeFn()
	assert.Nil(t, store)
	assert.Contains(t, buf.String(), "REDIS_ADDR")
}

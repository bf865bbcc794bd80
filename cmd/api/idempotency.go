package main

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
	"github.com/jhoicas/Inventario-kardex/pkg/config"
)

// openIdempotency conecta el almacén de Idempotency-Key. Redis es opcional: sin REDIS_ADDR,
// o si no responde al arrancar, la API sigue sin deduplicar y devuelve nil.
// closeFn nunca es nil.
func openIdempotency(ctx context.Context, cfg config.RedisConfig, log zerolog.Logger) (store *cache.IdempotencyStore, closeFn func()) {
	closeFn = func() {}
	if cfg.Addr == "" {
		log.Warn().Msg("REDIS_ADDR vacío: Idempotency-Key deshabilitado")
		return nil, closeFn
	}
	rdb, err := cache.NewClient(ctx, cfg.Addr, cfg.Password, cfg.DB)
	if err != nil {
		log.Warn().Err(err).Str("addr", cfg.Addr).Msg("Redis no disponible: Idempotency-Key deshabilitado")
		return nil, closeFn
	}
	return cache.NewIdempotencyStore(rdb, "", cfg.IdempotencyTTL), func() { _ = rdb.Close() }
}

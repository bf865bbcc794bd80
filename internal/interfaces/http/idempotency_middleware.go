package http

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
)

// HeaderIdempotencyKey header con la llave elegida por el cliente.
const HeaderIdempotencyKey = "Idempotency-Key"

const maxIdempotencyKeyLen = 128

// idempotencyStore contrato que necesita el middleware; lo implementa *cache.IdempotencyStore.
type idempotencyStore interface {
	Reserve(ctx context.Context, key, fingerprint string) (bool, error)
	Get(ctx context.Context, key string) (*cache.IdempotentResponse, error)
	Complete(ctx context.Context, key string, resp cache.IdempotentResponse) error
	Release(ctx context.Context, key string) error
}

// Idempotency reproduce la respuesta guardada cuando un cliente reintenta una operación con la
// misma Idempotency-Key (un cierre, despacho o recepción no se aplica dos veces).
// Sin header la petición pasa directo. Si Redis falla se procesa sin protección y se registra.
// Debe usarse DESPUÉS de AuthMiddleware: la llave se aísla por empresa.
func Idempotency(store idempotencyStore, log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if store == nil || c.Method() == fiber.MethodGet {
			return c.Next()
		}
		key := strings.TrimSpace(c.Get(HeaderIdempotencyKey))
		if key == "" {
			return c.Next()
		}
		if len(key) > maxIdempotencyKeyLen {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_KEY_INVALID", Message: "Idempotency-Key demasiado larga"})
		}
		scoped := GetCompanyID(c) + ":" + c.Method() + ":" + c.Path() + ":" + key
		sum := sha256.Sum256(c.Body())
		fingerprint := hex.EncodeToString(sum[:])
		ctx := c.Context()

		existing, err := store.Get(ctx, scoped)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotencia no disponible")
			return c.Next()
		}
		if existing != nil {
			return replay(c, existing, fingerprint)
		}

		reserved, err := store.Reserve(ctx, scoped, fingerprint)
		if err != nil {
			log.Warn().Err(err).Str("path", c.Path()).Msg("idempotencia no disponible")
			return c.Next()
		}
		if !reserved {
			// otra petición ganó la reserva entre el Get y el SetNX; puede haber terminado ya
			if existing, err := store.Get(ctx, scoped); err == nil && existing != nil {
				return replay(c, existing, fingerprint)
			}
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "la petición original aún se está procesando"})
		}

		if err := c.Next(); err != nil {
			_ = store.Release(ctx, scoped)
			return err
		}
		status := c.Response().StatusCode()
		if status >= fiber.StatusInternalServerError {
			// fallos operativos (incluido el conflicto de concurrencia) pueden reintentarse
			if err := store.Release(ctx, scoped); err != nil {
				log.Warn().Err(err).Msg("no se pudo liberar la llave de idempotencia")
			}
			return nil
		}
		resp := cache.IdempotentResponse{
			Fingerprint: fingerprint,
			StatusCode:  status,
			ContentType: string(c.Response().Header.ContentType()),
			Body:        append([]byte(nil), c.Response().Body()...),
		}
		if err := store.Complete(ctx, scoped, resp); err != nil {
			log.Warn().Err(err).Msg("no se pudo guardar la respuesta idempotente")
		}
		return nil
	}
}

func replay(c *fiber.Ctx, saved *cache.IdempotentResponse, fingerprint string) error {
	if saved.Fingerprint != fingerprint {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_KEY_REUSED", Message: "la llave ya se usó con otro cuerpo"})
	}
	if saved.State != cache.StateDone {
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Code: "IDEMPOTENCY_IN_PROGRESS", Message: "la petición original aún se está procesando"})
	}
	c.Set("Idempotent-Replayed", "true")
	if saved.ContentType != "" {
		c.Set(fiber.HeaderContentType, saved.ContentType)
	}
	return c.Status(saved.StatusCode).Send(saved.Body)
}

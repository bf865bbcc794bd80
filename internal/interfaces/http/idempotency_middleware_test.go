package http_test

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/Inventario-kardex/internal/infrastructure/cache"
	apphttp "github.com/jhoicas/Inventario-kardex/internal/interfaces/http"
)

// racingStore simula que otra petición con la misma llave reserva y termina entre el Get y el Reserve.
type racingStore struct {
	mu    sync.Mutex
	gets  int
	saved *cache.IdempotentResponse
}

func (s *racingStore) Get(_ context.Context, _ string) (*cache.IdempotentResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gets++
	if s.gets == 1 {
		return nil, nil
	}
	return s.saved, nil
}

func (s *racingStore) Reserve(context.Context, string, string) (bool, error) { return false, nil }

func (s *racingStore) Complete(context.Context, string, cache.IdempotentResponse) error { return nil }

func (s *racingStore) Release(context.Context, string) error { return nil }

func fingerprintOf(body string) string {
	sum := sha256.Sum256([]byte(body))
	return hex.EncodeToString(sum[:])
}

func idempotentApp(store *racingStore, handled *int) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(apphttp.LocalCompanyID, "empresa-1")
		return c.Next()
	})
	app.Use(apphttp.Idempotency(store, zerolog.Nop()))
	app.Post("/ventas/:id/cerrar", func(c *fiber.Ctx) error {
		*handled++
		return c.Status(fiber.StatusOK).SendString("cerrada otra vez")
	})
	return app
}

func postWithKey(t *testing.T, app *fiber.App, body string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/ventas/v-1/cerrar", strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(apphttp.HeaderIdempotencyKey, "llave-1")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, resp.Header.Get("Idempotent-Replayed"), string(raw)
}

func TestIdempotency_ReservaPerdidaReproduceRespuestaTerminada(t *testing.T) {
	body := `{"nota":"cierre"}`
	store := &racingStore{saved: &cache.IdempotentResponse{
		State:       cache.StateDone,
		Fingerprint: fingerprintOf(body),
		StatusCode:  fiber.StatusOK,
		ContentType: fiber.MIMEApplicationJSON,
		Body:        []byte(`{"status":"closed"}`),
	}}
	handled := 0
	app := idempotentApp(store, &handled)

	status, replayed, raw := postWithKey(t, app, body)
	assert.Equal(t, fiber.StatusOK, status)
	assert.Equal(t, "true", replayed)
	assert.JSONEq(t, `{"status":"closed"}`, raw)
	assert.Zero(t, handled, "la operación no se ejecuta dos veces")
	assert.Equal(t, 2, store.gets)
}

func TestIdempotency_ReservaPerdidaEnCursoRetorna409(t *testing.T) {
	body := `{"nota":"cierre"}`
	store := &racingStore{saved: &cache.IdempotentResponse{State: cache.StatePending, Fingerprint: fingerprintOf(body)}}
	handled := 0
	app := idempotentApp(store, &handled)

	status, replayed, raw := postWithKey(t, app, body)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Empty(t, replayed)
	assert.Contains(t, raw, "IDEMPOTENCY_IN_PROGRESS")
	assert.Zero(t, handled)
}

func TestIdempotency_ReservaPerdidaSinRegistroRetorna409(t *testing.T) {
	store := &racingStore{}
	handled := 0
	app := idempotentApp(store, &handled)

	status, _, raw := postWithKey(t, app, `{}`)
	assert.Equal(t, fiber.StatusConflict, status)
	assert.Contains(t, raw, "IDEMPOTENCY_IN_PROGRESS")
	assert.Zero(t, handled)
}

package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

type movementAction func(ctx context.Context, actor inventory.Actor, id string) (*entity.MovementHeader, error)

// movementStep handler genérico para transiciones que solo necesitan el id del encabezado.
func movementStep(log zerolog.Logger, action movementAction) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		out, err := action(c.Context(), actor, c.Params("id"))
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(toMovementResponse(out))
	}
}

// MovementQueryHandler lectura y borrado de encabezados de un proceso concreto.
type MovementQueryHandler struct {
	uc  *inventory.MovementQueryUseCase
	log zerolog.Logger
}

// NewMovementQueryHandler construye el handler.
func NewMovementQueryHandler(uc *inventory.MovementQueryUseCase, log zerolog.Logger) *MovementQueryHandler {
	return &MovementQueryHandler{uc: uc, log: log}
}

// Get devuelve un encabezado del proceso; un id de otro proceso responde 404.
func (h *MovementQueryHandler) Get(process entity.Process) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		out, err := h.uc.Get(c.Context(), actor, process, c.Params("id"))
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(toMovementResponse(out))
	}
}

// List lista encabezados del proceso; ?status= filtra por estado.
func (h *MovementQueryHandler) List(process entity.Process) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		page := pageFrom(c)
		list, err := h.uc.List(c.Context(), actor, process, c.Query("status"), page.Limit, page.Offset)
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(toMovementList(list, page))
	}
}

// Delete borra el encabezado si nunca afectó stock.
func (h *MovementQueryHandler) Delete(process entity.Process) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		if err := h.uc.Delete(c.Context(), actor, process, c.Params("id")); err != nil {
			return respondError(c, h.log, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

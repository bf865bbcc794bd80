package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// CountHandler conteos físicos (protegido).
type CountHandler struct {
	uc  *inventory.CountUseCase
	log zerolog.Logger
}

// NewCountHandler construye el handler.
func NewCountHandler(uc *inventory.CountUseCase, log zerolog.Logger) *CountHandler {
	return &CountHandler{uc: uc, log: log}
}

// Create planifica un conteo; sin product_ids toma todos los saldos activos de la ubicación.
func (h *CountHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateCountRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), actor, inventory.CreateCountInput{
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		CountDate:      timeOrZero(in.CountDate),
		Notes:          in.Notes,
		ProductIDs:     in.ProductIDs,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toCountResponse(out))
}

// Get devuelve el conteo con sus líneas.
func (h *CountHandler) Get(c *fiber.Ctx) error {
	return h.step(h.uc.Get)(c)
}

// List lista conteos; ?status= filtra por estado.
func (h *CountHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageFrom(c)
	list, err := h.uc.List(c.Context(), actor, entity.CountStatus(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.CountResponse, 0, len(list))
	for _, cnt := range list {
		items = append(items, toCountResponse(cnt))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Start pasa el conteo a counting.
func (h *CountHandler) Start(c *fiber.Ctx) error {
	return h.step(h.uc.Start)(c)
}

// RecordCount registra la cantidad contada de una línea o producto.
func (h *CountHandler) RecordCount(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RecordCountRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	if in.LineID == "" && in.ProductID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "line_id o product_id es requerido"})
	}
	out, err := h.uc.RecordCount(c.Context(), actor, c.Params("id"), inventory.RecordCountInput{
		LineID:    in.LineID,
		ProductID: in.ProductID,
		Counted:   in.Counted,
		Notes:     in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toCountResponse(out))
}

// Complete godoc
// @Summary      Completar conteo
// @Description  Cada línea contada con diferencia deja el saldo en la cantidad contada y genera su asiento.
// @Tags         counts
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del conteo"
// @Success      200  {object}  dto.CountResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/counts/{id}/complete [post]
func (h *CountHandler) Complete(c *fiber.Ctx) error {
	return h.step(h.uc.Complete)(c)
}

// Cancel anula un conteo no completado.
func (h *CountHandler) Cancel(c *fiber.Ctx) error {
	return h.step(h.uc.Cancel)(c)
}

// Delete borra un conteo no completado.
func (h *CountHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *CountHandler) step(action func(ctx context.Context, actor inventory.Actor, id string) (*entity.Count, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		out, err := action(c.Context(), actor, c.Params("id"))
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(toCountResponse(out))
	}
}

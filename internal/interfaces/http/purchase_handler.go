package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// PurchaseHandler maneja las peticiones HTTP de compras (protegido).
type PurchaseHandler struct {
	uc  *inventory.PurchaseUseCase
	log zerolog.Logger
}

// NewPurchaseHandler construye el handler.
func NewPurchaseHandler(uc *inventory.PurchaseUseCase, log zerolog.Logger) *PurchaseHandler {
	return &PurchaseHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear compra en borrador
// @Tags         purchases
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreatePurchaseRequest  true  "location_id destino, proveedor, lines"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/purchases [post]
func (h *PurchaseHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreatePurchaseRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), actor, inventory.CreatePurchaseInput{
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		OccurredAt:     timeOrZero(in.OccurredAt),
		Info: entity.PurchaseInfo{
			SupplierName:     in.SupplierName,
			SupplierDocument: in.SupplierDocument,
		},
		Lines: toLineInputs(in.Lines),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// UpdateLines reemplaza las líneas de una compra en borrador.
func (h *PurchaseHandler) UpdateLines(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.UpdateLinesRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.UpdateLines(c.Context(), actor, c.Params("id"), toLineInputs(in.Lines))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toMovementResponse(out))
}

// Advance avanza un paso (draft → ordered → in_transit → received).
func (h *PurchaseHandler) Advance(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Advance)(c)
}

// Revert retrocede un paso; received → in_transit descuenta lo recibido.
func (h *PurchaseHandler) Revert(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Revert)(c)
}

// Cancel anula una compra; si ya estaba recibida descuenta lo que entró.
func (h *PurchaseHandler) Cancel(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Cancel)(c)
}

// Transition lleva la compra al estado del body.
func (h *PurchaseHandler) Transition(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.TransitionRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Transition(c.Context(), actor, c.Params("id"), in.Status)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toMovementResponse(out))
}

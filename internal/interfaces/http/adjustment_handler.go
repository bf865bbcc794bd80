package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// AdjustmentHandler ajustes manuales, consumos internos y producción.
type AdjustmentHandler struct {
	adjustments *inventory.AdjustmentUseCase
	production  *inventory.ProductionUseCase
	log         zerolog.Logger
}

// NewAdjustmentHandler construye el handler.
func NewAdjustmentHandler(adjustments *inventory.AdjustmentUseCase, production *inventory.ProductionUseCase, log zerolog.Logger) *AdjustmentHandler {
	return &AdjustmentHandler{adjustments: adjustments, production: production, log: log}
}

// CreateAdjustment godoc
// @Summary      Registrar ajuste manual
// @Tags         adjustments
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateAdjustmentRequest  true  "direction increase|decrease"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *AdjustmentHandler) CreateAdjustment(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateAdjustmentRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.adjustments.CreateAdjustment(c.Context(), actor, inventory.CreateAdjustmentInput{
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		OccurredAt:     timeOrZero(in.OccurredAt),
		Info: entity.AdjustmentInfo{
			Direction: entity.AdjustmentDirection(in.Direction),
			Reason:    in.Reason,
		},
		Lines: toLineInputs(in.Lines),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// CreateUsage registra un consumo interno (siempre descuenta).
func (h *AdjustmentHandler) CreateUsage(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateUsageRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.adjustments.CreateUsage(c.Context(), actor, inventory.CreateUsageInput{
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		OccurredAt:     timeOrZero(in.OccurredAt),
		Info:           entity.UsageInfo{Requester: in.Requester, Purpose: in.Purpose},
		Lines:          toLineInputs(in.Lines),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// Produce godoc
// @Summary      Registrar orden de producción
// @Description  Descuenta los insumos de la receta y suma el producto terminado en la misma transacción.
// @Tags         productions
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ProduceRequest  true  "product_id fabricado, quantity, location_id"
// @Success      201   {object}  dto.MovementResponse
// @Failure      409   {object}  dto.ErrorResponse  "insumos insuficientes"
// @Router       /api/inventory/productions [post]
func (h *AdjustmentHandler) Produce(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ProduceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.production.Produce(c.Context(), actor, inventory.ProduceInput{
		ProductID:      in.ProductID,
		Quantity:       in.Quantity,
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// RevertProduction devuelve insumos y descuenta el terminado.
func (h *AdjustmentHandler) RevertProduction(c *fiber.Ctx) error {
	return movementStep(h.log, h.production.RevertProduction)(c)
}

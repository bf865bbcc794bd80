package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// SaleHandler maneja las peticiones HTTP de ventas (protegido).
type SaleHandler struct {
	uc  *inventory.SaleUseCase
	log zerolog.Logger
}

// NewSaleHandler construye el handler.
func NewSaleHandler(uc *inventory.SaleUseCase, log zerolog.Logger) *SaleHandler {
	return &SaleHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Crear venta en borrador
// @Tags         sales
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateSaleRequest  true  "location_id, lines (unit_cost = precio unitario)"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/sales [post]
func (h *SaleHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateSaleRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Create(c.Context(), actor, inventory.CreateSaleInput{
		LocationID:     in.LocationID,
		DocumentNumber: in.DocumentNumber,
		OccurredAt:     timeOrZero(in.OccurredAt),
		Info: entity.SaleInfo{
			PaymentMethod:    in.PaymentMethod,
			CustomerName:     in.CustomerName,
			CustomerDocument: in.CustomerDocument,
		},
		Lines: toLineInputs(in.Lines),
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toMovementResponse(out))
}

// UpdateLines reemplaza las líneas de una venta en borrador.
func (h *SaleHandler) UpdateLines(c *fiber.Ctx) error {
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

// Process godoc
// @Summary      Marcar venta como procesada
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/inventory/sales/{id}/process [post]
func (h *SaleHandler) Process(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Process)(c)
}

// Close godoc
// @Summary      Cerrar venta (descuenta stock)
// @Tags         sales
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la venta"
// @Success      200  {object}  dto.MovementResponse
// @Failure      409  {object}  dto.ErrorResponse  "transición inválida o stock insuficiente"
// @Router       /api/inventory/sales/{id}/close [post]
func (h *SaleHandler) Close(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Close)(c)
}

// Cancel anula la venta; si estaba cerrada devuelve el stock.
func (h *SaleHandler) Cancel(c *fiber.Ctx) error {
	return movementStep(h.log, h.uc.Cancel)(c)
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}

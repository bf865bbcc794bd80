package http

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
	"github.com/jhoicas/Inventario-kardex/internal/domain/entity"
)

// TransferHandler traslados entre ubicaciones (protegido).
type TransferHandler struct {
	uc  *inventory.TransferUseCase
	log zerolog.Logger
}

// NewTransferHandler construye el handler.
func NewTransferHandler(uc *inventory.TransferUseCase, log zerolog.Logger) *TransferHandler {
	return &TransferHandler{uc: uc, log: log}
}

// Create godoc
// @Summary      Solicitar traslado
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateTransferRequest  true  "from_location_id, to_location_id, lines"
// @Success      201   {object}  dto.TransferResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers [post]
func (h *TransferHandler) Create(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.CreateTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	lines := make([]inventory.TransferLineInput, 0, len(in.Lines))
	for _, l := range in.Lines {
		lines = append(lines, inventory.TransferLineInput{
			ProductID:   l.ProductID,
			Quantity:    l.Quantity,
			BatchNumber: l.BatchNumber,
			ExpiryDate:  l.ExpiryDate,
			Notes:       l.Notes,
		})
	}
	out, err := h.uc.Create(c.Context(), actor, inventory.CreateTransferInput{
		FromLocationID: in.FromLocationID,
		ToLocationID:   in.ToLocationID,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
		Lines:          lines,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toTransferResponse(out))
}

// Get devuelve el traslado con sus líneas.
func (h *TransferHandler) Get(c *fiber.Ctx) error {
	return h.step(h.uc.Get)(c)
}

// List lista traslados; ?status= filtra por estado.
func (h *TransferHandler) List(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	page := pageFrom(c)
	list, err := h.uc.List(c.Context(), actor, entity.TransferStatus(c.Query("status")), page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	items := make([]dto.TransferResponse, 0, len(list))
	for _, t := range list {
		items = append(items, toTransferResponse(t))
	}
	return c.JSON(fiber.Map{"items": items, "page": dto.PageResponse{Limit: page.Limit, Offset: page.Offset}})
}

// Approve aprueba un traslado pendiente.
func (h *TransferHandler) Approve(c *fiber.Ctx) error {
	return h.step(h.uc.Approve)(c)
}

// Cancel anula un traslado antes del despacho.
func (h *TransferHandler) Cancel(c *fiber.Ctx) error {
	return h.step(h.uc.Cancel)(c)
}

// Reject rechaza un traslado pendiente con motivo.
func (h *TransferHandler) Reject(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.RejectTransferRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.uc.Reject(c.Context(), actor, c.Params("id"), in.Reason)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(out))
}

// Ship godoc
// @Summary      Despachar traslado
// @Description  Descuenta del origen lo despachado al costo promedio vigente. Sin lines se despacha lo solicitado.
// @Tags         transfers
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                   true  "ID del traslado"
// @Param        body  body  dto.ShipTransferRequest  false "cantidades y evidencia de despacho"
// @Success      200   {object}  dto.TransferResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/transfers/{id}/ship [post]
func (h *TransferHandler) Ship(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ShipTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	var evidence *entity.ShippingEvidence
	if in.Carrier != "" || in.TrackingNumber != "" || in.Packages > 0 || in.EvidenceURL != "" || in.Notes != "" {
		evidence = &entity.ShippingEvidence{
			Carrier:        in.Carrier,
			TrackingNumber: in.TrackingNumber,
			Packages:       in.Packages,
			EvidenceURL:    in.EvidenceURL,
			Notes:          in.Notes,
		}
	}
	out, err := h.uc.Ship(c.Context(), actor, c.Params("id"), toShipments(in.Lines), evidence)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(out))
}

// Receive registra la recepción en destino. Sin lines se recibe todo lo despachado.
func (h *TransferHandler) Receive(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.ReceiveTransferRequest
	if len(c.Body()) > 0 {
		if ok, err := bindBody(c, &in); !ok {
			return err
		}
	}
	out, err := h.uc.Receive(c.Context(), actor, c.Params("id"), toShipments(in.Lines))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toTransferResponse(out))
}

// Delete borra un traslado pendiente o rechazado sin asientos.
func (h *TransferHandler) Delete(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	if err := h.uc.Delete(c.Context(), actor, c.Params("id")); err != nil {
		return respondError(c, h.log, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *TransferHandler) step(action func(ctx context.Context, actor inventory.Actor, id string) (*entity.Transfer, error)) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := actorFrom(c)
		if !ok {
			return unauthorized(c)
		}
		out, err := action(c.Context(), actor, c.Params("id"))
		if err != nil {
			return respondError(c, h.log, err)
		}
		return c.JSON(toTransferResponse(out))
	}
}

package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Inventario-kardex/internal/application/dto"
	"github.com/jhoicas/Inventario-kardex/internal/application/inventory"
)

// InventoryHandler saldos, kardex y lista de reposición (protegido).
type InventoryHandler struct {
	query         *inventory.MovementQueryUseCase
	replenishment *inventory.ReplenishmentUseCase
	log           zerolog.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(query *inventory.MovementQueryUseCase, replenishment *inventory.ReplenishmentUseCase, log zerolog.Logger) *InventoryHandler {
	return &InventoryHandler{query: query, replenishment: replenishment, log: log}
}

// InitBalance inicializa el saldo de un producto en una ubicación (en cero, con mínimo y máximo).
func (h *InventoryHandler) InitBalance(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	var in dto.InitBalanceRequest
	if ok, err := bindBody(c, &in); !ok {
		return err
	}
	out, err := h.query.InitBalance(c.Context(), actor, inventory.InitBalanceInput{
		ProductID:    in.ProductID,
		LocationID:   in.LocationID,
		MinimumStock: in.MinimumStock,
		MaximumStock: in.MaximumStock,
	})
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(toBalanceResponse(out))
}

// GetBalance godoc
// @Summary      Saldo de un producto en una ubicación
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id   query  string  true  "UUID del producto"
// @Param        location_id  query  string  true  "UUID de la ubicación"
// @Success      200  {object}  dto.BalanceResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/balances [get]
func (h *InventoryHandler) GetBalance(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	productID, locationID := c.Query("product_id"), c.Query("location_id")
	if productID == "" || locationID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id y location_id son requeridos"})
	}
	out, err := h.query.GetBalance(c.Context(), actor, productID, locationID)
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(toBalanceResponse(out))
}

// Kardex asientos de un producto; location_id opcional.
func (h *InventoryHandler) Kardex(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	productID, locationID := c.Query("product_id"), c.Query("location_id")
	if productID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "VALIDATION", Message: "product_id es requerido"})
	}
	page := pageFrom(c)
	list, err := h.query.Kardex(c.Context(), actor, productID, locationID, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, h.log, err)
	}
	entries := make([]dto.LedgerEntryResponse, 0, len(list))
	for _, e := range list {
		entries = append(entries, toLedgerResponse(e))
	}
	return c.JSON(dto.KardexResponse{
		ProductID:  productID,
		LocationID: locationID,
		Entries:    entries,
		Page:       dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	})
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Saldos activos por debajo del mínimo con la cantidad sugerida de pedido.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        location_id  query  string  true  "UUID de la ubicación"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      401  {object}  dto.ErrorResponse
// @Router       /api/inventory/replenishment-list [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	actor, ok := actorFrom(c)
	if !ok {
		return unauthorized(c)
	}
	list, err := h.replenishment.GenerateReplenishmentList(c.Context(), actor, c.Query("location_id"))
	if err != nil {
		return respondError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"total":          len(list),
		"replenishments": toReplenishmentDTO(list),
	})
}

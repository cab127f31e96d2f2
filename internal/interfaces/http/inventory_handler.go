package http

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator"
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hotel-inventory/internal/application/dto"
	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

var validate = validator.New()

// InventoryHandler entradas, consumos y consultas del libro FIFO (protegido).
type InventoryHandler struct {
	ledger *inventory.LedgerUseCase
	query  *inventory.QueryUseCase
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, query *inventory.QueryUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, query: query, log: log}
}

// RecordInbound godoc
// @Summary      Registrar entrada de stock (nuevo lote)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        hotelID  path  int                 true  "Hotel"
// @Param        body     body  dto.InboundRequest  true  "product_id, quantity, unit_cost, source_type, received_at"
// @Success      201   {object}  dto.InboundResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/hotels/{hotelID}/inventory/inbound [post]
func (h *InventoryHandler) RecordInbound(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	var in dto.InboundRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	res, err := h.ledger.RecordInbound(c.Context(), inventory.InboundInput{
		HotelID:    hotelID,
		ProductID:  in.ProductID,
		Quantity:   in.Quantity,
		UnitCost:   in.UnitCost,
		SourceType: in.SourceType,
		SourceRef:  in.SourceRef,
		ReceivedAt: in.ReceivedAt,
		Actor:      GetUserID(c),
		Note:       in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.InboundResponse{
		Batch:        dto.FromBatch(res.Batch),
		AggregateQty: res.AggregateQty,
	})
}

// Consume godoc
// @Summary      Consumir stock (FIFO, todo o nada)
// @Description  Descuenta del lote más antiguo al más nuevo. Si falta stock responde 409 con el faltante.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        hotelID  path  int                 true  "Hotel"
// @Param        body     body  dto.ConsumeRequest  true  "product_id, quantity, operation_type, reference"
// @Success      201   {object}  dto.ConsumeResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ShortfallResponse
// @Router       /api/hotels/{hotelID}/inventory/consume [post]
func (h *InventoryHandler) Consume(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	var in dto.ConsumeRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	res, err := h.ledger.Consume(c.Context(), inventory.ConsumeInput{
		HotelID:       hotelID,
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		OperationType: in.OperationType,
		Reference:     in.Reference,
		Actor:         GetUserID(c),
		Note:          in.Note,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.ConsumeResponse{
		Reference:       res.Reference,
		CallerReference: res.CallerReference,
		Requested:       res.Requested,
		Allocations:     make([]dto.AllocationDTO, 0, len(res.Allocations)),
		AggregateQty:    res.AggregateQty,
		CostOfGoods:     res.CostOfGoods,
	}
	for _, r := range res.Allocations {
		out.Allocations = append(out.Allocations, dto.FromRecord(r, nil))
	}
	if res.Reconciliation != nil {
		b := dto.FromBatch(res.Reconciliation)
		out.Reconciliation = &b
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetStock godoc
// @Summary      Cantidad actual de un producto
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID    path  int  true  "Hotel"
// @Param        productID  path  int  true  "Producto"
// @Success      200  {object}  dto.StockDTO
// @Router       /api/hotels/{hotelID}/stock/{productID} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	hotelID, productID, ok := hotelAndProduct(c)
	if !ok {
		return badRequest(c, "INVALID_PARAMS", "hotelID o productID inválido")
	}
	agg, err := h.query.Stock(c.Context(), hotelID, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.FromAggregate(agg))
}

// BulkStock godoc
// @Summary      Cantidades de varios productos en una sola consulta
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID      path   int     true  "Hotel"
// @Param        product_ids  query  string  true  "IDs separados por coma"
// @Success      200  {array}  dto.StockDTO
// @Router       /api/hotels/{hotelID}/stock [get]
func (h *InventoryHandler) BulkStock(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	ids, err := parseIDList(c.Query("product_ids"))
	if err != nil {
		return badRequest(c, "INVALID_PRODUCT_IDS", "product_ids debe ser una lista de enteros positivos")
	}
	quantities, err := h.query.BulkStock(c.Context(), hotelID, ids)
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.StockDTO, 0, len(quantities))
	for id, qty := range quantities {
		out = append(out, dto.StockDTO{ProductID: id, Quantity: qty})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ProductID < out[j].ProductID })
	return c.JSON(fiber.Map{"total": len(out), "items": out})
}

// ActiveBatches godoc
// @Summary      Lotes con saldo, del más antiguo al más nuevo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID    path  int  true  "Hotel"
// @Param        productID  path  int  true  "Producto"
// @Success      200  {array}  dto.BatchDTO
// @Router       /api/hotels/{hotelID}/products/{productID}/batches [get]
func (h *InventoryHandler) ActiveBatches(c *fiber.Ctx) error {
	hotelID, productID, ok := hotelAndProduct(c)
	if !ok {
		return badRequest(c, "INVALID_PARAMS", "hotelID o productID inválido")
	}
	batches, err := h.query.ActiveBatches(c.Context(), hotelID, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{"total": len(batches), "batches": dto.FromBatches(batches)})
}

// Movements godoc
// @Summary      Historial de movimientos de un producto (más reciente primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID    path   int     true   "Hotel"
// @Param        productID  path   int     true   "Producto"
// @Param        from       query  string  false  "RFC3339"
// @Param        to         query  string  false  "RFC3339"
// @Param        limit      query  int     false  "máx. 500"
// @Param        offset     query  int     false  "desplazamiento"
// @Success      200  {array}  dto.MovementDTO
// @Router       /api/hotels/{hotelID}/products/{productID}/movements [get]
func (h *InventoryHandler) Movements(c *fiber.Ctx) error {
	hotelID, productID, ok := hotelAndProduct(c)
	if !ok {
		return badRequest(c, "INVALID_PARAMS", "hotelID o productID inválido")
	}
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return badRequest(c, "INVALID_QUERY", "limit/offset inválidos")
	}
	if err := validate.Struct(page); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	page.DefaultPage()
	from, err := parseTime(c.Query("from"))
	if err != nil {
		return badRequest(c, "INVALID_FROM", "from debe ser RFC3339")
	}
	to, err := parseTime(c.Query("to"))
	if err != nil {
		return badRequest(c, "INVALID_TO", "to debe ser RFC3339")
	}
	list, err := h.query.Movements(c.Context(), hotelID, productID, from, to, page.Limit, page.Offset)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(fiber.Map{
		"page":      dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
		"movements": dto.FromMovements(list),
	})
}

// Drift godoc
// @Summary      Deriva entre agregado y libro de lotes (no corrige)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID    path  int  true  "Hotel"
// @Param        productID  path  int  true  "Producto"
// @Success      200  {object}  dto.DriftDTO
// @Router       /api/hotels/{hotelID}/products/{productID}/drift [get]
func (h *InventoryHandler) Drift(c *fiber.Ctx) error {
	hotelID, productID, ok := hotelAndProduct(c)
	if !ok {
		return badRequest(c, "INVALID_PARAMS", "hotelID o productID inválido")
	}
	rep, err := h.query.Drift(c.Context(), hotelID, productID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.DriftDTO{
		ProductID:    rep.ProductID,
		AggregateQty: rep.AggregateQty,
		LedgerQty:    rep.LedgerQty,
		Gap:          rep.Gap,
	})
}

// ExplainConsumption godoc
// @Summary      Lotes de los que salió un consumo
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        hotelID    path  int     true  "Hotel"
// @Param        reference  path  string  true  "Referencia del consumo"
// @Success      200  {array}   dto.AllocationDTO
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/hotels/{hotelID}/consumptions/{reference} [get]
func (h *InventoryHandler) ExplainConsumption(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	lines, err := h.query.ExplainConsumption(c.Context(), hotelID, c.Params("reference"))
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.AllocationDTO, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.FromRecord(l.Record, l.Batch))
	}
	return c.JSON(fiber.Map{"reference": c.Params("reference"), "allocations": out})
}

func hotelAndProduct(c *fiber.Ctx) (int64, int64, bool) {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return 0, 0, false
	}
	productID, ok := paramID(c, "productID")
	if !ok {
		return 0, 0, false
	}
	return hotelID, productID, true
}

func parseIDList(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, strconv.ErrSyntax
	}
	parts := strings.Split(raw, ",")
	ids := make([]int64, 0, len(parts))
	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil || id <= 0 {
			return nil, strconv.ErrSyntax
		}
		ids = append(ids, id)
	}
	return ids, nil
}

func parseTime(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

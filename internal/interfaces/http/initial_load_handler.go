package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/hotel-inventory/internal/application/dto"
	"github.com/jhoicas/hotel-inventory/internal/application/inventory"
	"github.com/jhoicas/hotel-inventory/internal/infrastructure/excel"
	"github.com/jhoicas/hotel-inventory/pkg/logger"
)

// InitialLoadHandler carga única de saldos de apertura por hotel.
type InitialLoadHandler struct {
	uc  *inventory.InitialLoadUseCase
	log *logger.Logger
}

// NewInitialLoadHandler construye el handler.
func NewInitialLoadHandler(uc *inventory.InitialLoadUseCase, log *logger.Logger) *InitialLoadHandler {
	return &InitialLoadHandler{uc: uc, log: log}
}

// Status godoc
// @Summary      Estado de la carga inicial del hotel
// @Tags         initial-load
// @Security     Bearer
// @Produce      json
// @Param        hotelID  path  int  true  "Hotel"
// @Success      200  {object}  dto.InitialLoadStatusResponse
// @Router       /api/hotels/{hotelID}/initial-load [get]
func (h *InitialLoadHandler) Status(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	flag, err := h.uc.Status(c.Context(), hotelID)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.InitialLoadStatusResponse{Loaded: flag.Loaded, LoadedAt: flag.LoadedAt, LoadedBy: flag.LoadedBy})
}

// Submit godoc
// @Summary      Carga inicial de saldos (JSON)
// @Description  Solo una vez por hotel. Las filas sin producto coincidente se devuelven en unmatched.
// @Tags         initial-load
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        hotelID  path  int                     true  "Hotel"
// @Param        body     body  dto.InitialLoadRequest  true  "rows: product_name, quantity"
// @Success      201  {object}  dto.InitialLoadResponse
// @Success      200  {object}  dto.InitialLoadResponse  "ninguna fila cargada; la marca sigue libre"
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/hotels/{hotelID}/initial-load [post]
func (h *InitialLoadHandler) Submit(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	var in dto.InitialLoadRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if err := validate.Struct(in); err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	rows := make([]inventory.InitialLoadRow, 0, len(in.Rows))
	for _, r := range in.Rows {
		rows = append(rows, inventory.InitialLoadRow{ProductName: r.ProductName, Quantity: r.Quantity})
	}
	return h.submit(c, hotelID, rows, nil)
}

// Upload godoc
// @Summary      Carga inicial de saldos desde Excel
// @Description  Primera hoja: columna A nombre del producto, columna B cantidad; fila 1 encabezado.
// @Tags         initial-load
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        hotelID  path      int   true  "Hotel"
// @Param        file     formData  file  true  "Archivo .xlsx"
// @Success      201  {object}  dto.InitialLoadResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      409  {object}  dto.ErrorResponse
// @Router       /api/hotels/{hotelID}/initial-load/upload [post]
func (h *InitialLoadHandler) Upload(c *fiber.Ctx) error {
	hotelID, ok := paramID(c, "hotelID")
	if !ok {
		return badRequest(c, "INVALID_HOTEL", "hotelID inválido")
	}
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "archivo requerido en el campo file")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", "no se pudo abrir el archivo")
	}
	defer f.Close()
	sheet, err := excel.ParseInitialLoad(f)
	if err != nil {
		return badRequest(c, "INVALID_FILE", err.Error())
	}
	return h.submit(c, hotelID, sheet.Rows, sheet.Invalid)
}

func (h *InitialLoadHandler) submit(c *fiber.Ctx, hotelID int64, rows []inventory.InitialLoadRow, invalid []inventory.RowIssue) error {
	res, err := h.uc.Submit(c.Context(), inventory.InitialLoadInput{
		HotelID: hotelID,
		Actor:   GetUserID(c),
		Rows:    rows,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := dto.InitialLoadResponse{
		Loaded:        res.Loaded,
		MatchedLoaded: res.MatchedLoaded,
		Batches:       dto.FromBatches(res.Batches),
		Unmatched:     issues(res.Unmatched),
		Skipped:       issues(res.Skipped),
		Invalid:       issues(invalid),
	}
	status := fiber.StatusOK
	if res.Loaded {
		status = fiber.StatusCreated
		h.log.Info().
			Int64("hotel_id", hotelID).
			Int("loaded", res.MatchedLoaded).
			Int("unmatched", len(res.Unmatched)).
			Str("actor", GetUserID(c)).
			Msg("carga inicial aplicada")
	}
	return c.Status(status).JSON(out)
}

func issues(list []inventory.RowIssue) []dto.RowIssueDTO {
	out := make([]dto.RowIssueDTO, 0, len(list))
	for _, r := range list {
		out = append(out, dto.RowIssueDTO{Row: r.Row, ProductName: r.ProductName, Quantity: r.Quantity, Reason: r.Reason})
	}
	return out
}

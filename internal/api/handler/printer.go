package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-printer-maintenance/internal/application"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

type PrinterHandler struct {
	service PrinterServiceInterface
}

func NewPrinterHandler(s PrinterServiceInterface) *PrinterHandler {
	return &PrinterHandler{service: s}
}

type CreatePrinterRequest struct {
	ID                int    `json:"id" validate:"required,gt=0" example:"7"`
	Type              string `json:"type" validate:"required,oneof=Powder Wire Resin" example:"Resin"`
	CommissioningDate string `json:"commissioning_date" validate:"required" example:"2019-08-10"`
}

type PrinterResponse struct {
	ID                int    `json:"id" example:"7"`
	Type              string `json:"type" example:"Resin"`
	Label             string `json:"label" example:"Resin #7"`
	CommissioningDate string `json:"commissioning_date" example:"2019-08-10"`
}

func toPrinterResponse(p *printer.Printer) PrinterResponse {
	return PrinterResponse{
		ID:                p.ID,
		Type:              string(p.Type),
		Label:             p.Label(),
		CommissioningDate: p.CommissioningDate.Format("2006-01-02"),
	}
}

// Create godoc
// @Summary プリンターを登録
// @Description 保守対象のプリンターを台帳へ登録します
// @Tags printers
// @Accept json
// @Produce json
// @Param request body CreatePrinterRequest true "プリンター情報"
// @Success 201 {object} PrinterResponse
// @Failure 400 {object} map[string]string
// @Failure 409 {object} map[string]string "既に登録済み"
// @Router /printers [post]
func (h *PrinterHandler) Create(c echo.Context) error {
	var req CreatePrinterRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	commissioned, err := time.Parse("2006-01-02", req.CommissioningDate)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "導入日の形式が不正です")
	}
	p, err := h.service.CreatePrinter(c.Request().Context(), application.CreatePrinterInput{
		ID:                req.ID,
		Type:              printer.Type(req.Type),
		CommissioningDate: commissioned,
	})
	if err != nil {
		if errors.Is(err, printer.ErrPrinterAlreadyExists) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, toPrinterResponse(p))
}

// GetByID godoc
// @Summary プリンターを取得
// @Description 指定IDのプリンターを取得します
// @Tags printers
// @Produce json
// @Param id path int true "プリンターID"
// @Success 200 {object} PrinterResponse
// @Failure 404 {object} map[string]string
// @Router /printers/{id} [get]
func (h *PrinterHandler) GetByID(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "プリンターIDが不正です")
	}
	p, err := h.service.GetPrinter(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, printer.ErrPrinterNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, toPrinterResponse(p))
}

// List godoc
// @Summary プリンター一覧を取得
// @Description 登録済みプリンターの一覧を指定の並び順で取得します
// @Tags printers
// @Produce json
// @Param sort query string false "並び順 (id / type / date)" default(id)
// @Success 200 {array} PrinterResponse
// @Router /printers [get]
func (h *PrinterHandler) List(c echo.Context) error {
	sortBy := printer.SortKey(c.QueryParam("sort"))
	switch sortBy {
	case printer.SortByID, printer.SortByType, printer.SortByDate:
	case "":
		sortBy = printer.SortByID
	default:
		return echo.NewHTTPError(http.StatusBadRequest, "並び順が不正です")
	}
	printers, err := h.service.ListPrinters(c.Request().Context(), sortBy)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	resp := make([]PrinterResponse, len(printers))
	for i, p := range printers {
		resp[i] = toPrinterResponse(p)
	}
	return c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary プリンターを削除
// @Description プリンターを台帳から取り除きます
// @Tags printers
// @Produce json
// @Param id path int true "プリンターID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Router /printers/{id} [delete]
func (h *PrinterHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "プリンターIDが不正です")
	}
	if err := h.service.DeletePrinter(c.Request().Context(), id); err != nil {
		if errors.Is(err, printer.ErrPrinterNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.NoContent(http.StatusNoContent)
}

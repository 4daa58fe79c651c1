package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

type MaintenanceHandler struct {
	service MaintenanceServiceInterface
}

func NewMaintenanceHandler(s MaintenanceServiceInterface) *MaintenanceHandler {
	return &MaintenanceHandler{service: s}
}

type ScheduleRequest struct {
	PrinterID int `json:"printer_id" validate:"required,gt=0" example:"7"`
}

type MaintenanceEventResponse struct {
	ID              int     `json:"id" example:"1"`
	PrinterID       int     `json:"printer_id" example:"7"`
	Title           string  `json:"title" example:"Resin #7 maintenance"`
	Date            string  `json:"date" example:"2026-01-12"`
	StartTime       string  `json:"start_time" example:"2026-01-12T08:00:00Z"`
	EndTime         string  `json:"end_time" example:"2026-01-12T12:00:00Z"`
	Location        string  `json:"location,omitempty" example:"Rouen"`
	CalendarEventID *string `json:"calendar_event_id" example:"evt_123"`
}

func toMaintenanceEventResponse(ev *maintenance.Event) MaintenanceEventResponse {
	return MaintenanceEventResponse{
		ID:              ev.ID,
		PrinterID:       ev.PrinterID,
		Title:           ev.Title,
		Date:            ev.Date.Format("2006-01-02"),
		StartTime:       ev.StartTime.Format(time.RFC3339),
		EndTime:         ev.EndTime.Format(time.RFC3339),
		Location:        ev.Location,
		CalendarEventID: ev.CalendarEventID,
	}
}

func toMaintenanceEventResponses(events []*maintenance.Event) []MaintenanceEventResponse {
	resp := make([]MaintenanceEventResponse, len(events))
	for i, ev := range events {
		resp[i] = toMaintenanceEventResponse(ev)
	}
	return resp
}

// Schedule godoc
// @Summary 保守予定を作成
// @Description 指定プリンターの次回保守予定を作成し、カレンダーへ登録します
// @Tags maintenance
// @Accept json
// @Produce json
// @Param request body ScheduleRequest true "対象プリンター"
// @Success 201 {object} MaintenanceEventResponse
// @Failure 400 {object} map[string]string
// @Failure 404 {object} map[string]string "プリンターが存在しない"
// @Failure 409 {object} map[string]string "既に保守予定が存在する"
// @Failure 502 {object} map[string]string "カレンダー登録に失敗"
// @Router /maintenance-events [post]
func (h *MaintenanceHandler) Schedule(c echo.Context) error {
	var req ScheduleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "無効なリクエスト")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}
	ev, err := h.service.Schedule(c.Request().Context(), req.PrinterID)
	if err != nil {
		switch {
		case errors.Is(err, maintenance.ErrAlreadyScheduled):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		case errors.Is(err, printer.ErrPrinterNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, maintenance.ErrCalendarCreate):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.JSON(http.StatusCreated, toMaintenanceEventResponse(ev))
}

// List godoc
// @Summary 保守予定一覧を取得
// @Description 全保守予定、またはプリンター指定で絞り込んだ一覧を取得します
// @Tags maintenance
// @Produce json
// @Param printer_id query int false "プリンターID"
// @Success 200 {array} MaintenanceEventResponse
// @Router /maintenance-events [get]
func (h *MaintenanceHandler) List(c echo.Context) error {
	if raw := c.QueryParam("printer_id"); raw != "" {
		printerID, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "プリンターIDが不正です")
		}
		return c.JSON(http.StatusOK, toMaintenanceEventResponses(h.service.EventsForPrinter(printerID)))
	}
	return c.JSON(http.StatusOK, toMaintenanceEventResponses(h.service.Events()))
}

// Delete godoc
// @Summary 保守予定を削除
// @Description 保守予定をカレンダーとローカル状態の両方から削除します
// @Tags maintenance
// @Produce json
// @Param id path int true "保守予定ID"
// @Success 204
// @Failure 404 {object} map[string]string
// @Failure 502 {object} map[string]string "カレンダー削除に失敗"
// @Router /maintenance-events/{id} [delete]
func (h *MaintenanceHandler) Delete(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "保守予定IDが不正です")
	}
	if err := h.service.DeleteEvent(c.Request().Context(), id); err != nil {
		switch {
		case errors.Is(err, maintenance.ErrEventNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, maintenance.ErrCalendarDelete):
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}
	return c.NoContent(http.StatusNoContent)
}

// Stream godoc
// @Summary 保守予定の変更を購読
// @Description Server-Sent Eventsで保守予定スナップショットの変更を配信します
// @Tags maintenance
// @Produce text/event-stream
// @Param printer_id query int false "プリンターID"
// @Success 200 {string} string "text/event-stream"
// @Router /maintenance-events/stream [get]
func (h *MaintenanceHandler) Stream(c echo.Context) error {
	var printerID *int
	if raw := c.QueryParam("printer_id"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "プリンターIDが不正です")
		}
		printerID = &id
	}

	resp := c.Response()
	resp.Header().Set(echo.HeaderContentType, "text/event-stream")
	resp.Header().Set(echo.HeaderCacheControl, "no-cache")
	resp.Header().Set(echo.HeaderConnection, "keep-alive")
	resp.WriteHeader(http.StatusOK)

	ch, unsubscribe := h.service.Subscribe(printerID)
	defer unsubscribe()

	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case snap, ok := <-ch:
			if !ok {
				return nil
			}
			payload, err := json.Marshal(toMaintenanceEventResponses(snap))
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(resp, "data: %s\n\n", payload); err != nil {
				return err
			}
			resp.Flush()
		}
	}
}

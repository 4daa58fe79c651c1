package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-printer-maintenance/internal/api"
	"github.com/sanosuguru/go-printer-maintenance/internal/api/handler"
	"github.com/sanosuguru/go-printer-maintenance/internal/api/middleware"
	"github.com/sanosuguru/go-printer-maintenance/internal/application"
	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	"github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/googlecal"
	"github.com/sanosuguru/go-printer-maintenance/internal/infrastructure/sqlite"
)

// fakeGoogleCalendar は外部カレンダーAPIの代わりになるテストサーバー
type fakeGoogleCalendar struct {
	mu      sync.Mutex
	nextID  int
	events  map[string]bool
	failing bool
}

func (f *fakeGoogleCalendar) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/calendars/primary/events", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		f.nextID++
		id := fmt.Sprintf("evt_e2e_%d", f.nextID)
		f.events[id] = true
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"id": id})
	})
	mux.HandleFunc("/calendars/primary/events/", func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		if f.failing {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		id := r.URL.Path[len("/calendars/primary/events/"):]
		delete(f.events, id)
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func (f *fakeGoogleCalendar) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

func (f *fakeGoogleCalendar) setFailing(failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = failing
}

// TestServer はE2Eテスト用のサーバー
type TestServer struct {
	Echo     *echo.Echo
	Calendar *fakeGoogleCalendar
}

// NewTestServer はインメモリの永続ストアと疑似カレンダーでサーバーを組み立てる
func NewTestServer(t *testing.T) *TestServer {
	t.Helper()

	db, err := sqlite.NewConnection(&config.StorageConfig{Path: ":memory:"})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, sqlite.RunMigrations(db))

	fake := &fakeGoogleCalendar{events: make(map[string]bool)}
	calendarServer := httptest.NewServer(fake.handler())
	t.Cleanup(calendarServer.Close)

	cfg := &config.Config{
		Calendar: config.CalendarConfig{TimeZone: "UTC"},
		Google: config.GoogleConfig{
			EventsURL: calendarServer.URL + "/calendars/primary/events",
		},
	}
	backend := googlecal.NewBackend(cfg, googlecal.StaticTokenProvider("e2e-token"))

	printerRepo := sqlite.NewPrinterRepository(db)
	eventStore := sqlite.NewEventStore(db)

	maintenanceService := application.NewMaintenanceService(eventStore, backend, printerRepo)
	require.NoError(t, maintenanceService.Load(context.Background()))
	printerService := application.NewPrinterService(printerRepo)

	printerHandler := handler.NewPrinterHandler(printerService)
	maintenanceHandler := handler.NewMaintenanceHandler(maintenanceService)
	healthHandler := handler.NewHealthHandler(db)

	e := echo.New()
	e.Validator = api.NewValidator()
	e.HTTPErrorHandler = api.CustomHTTPErrorHandler
	middleware.SetupMiddleware(e)

	e.GET("/health", healthHandler.Check)

	v1 := e.Group("/api/v1")
	v1.POST("/printers", printerHandler.Create)
	v1.GET("/printers", printerHandler.List)
	v1.GET("/printers/:id", printerHandler.GetByID)
	v1.DELETE("/printers/:id", printerHandler.Delete)

	v1.POST("/maintenance-events", maintenanceHandler.Schedule)
	v1.GET("/maintenance-events", maintenanceHandler.List)
	v1.GET("/maintenance-events/stream", maintenanceHandler.Stream)
	v1.DELETE("/maintenance-events/:id", maintenanceHandler.Delete)

	return &TestServer{Echo: e, Calendar: fake}
}

// Request はテストサーバーへHTTPリクエストを送る
func (s *TestServer) Request(method, path string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	s.Echo.ServeHTTP(rec, req)
	return rec
}

// CreatePrinter はテスト用プリンターを登録する
func (s *TestServer) CreatePrinter(t *testing.T, id int, printerType, commissioned string) {
	t.Helper()
	rec := s.Request(http.MethodPost, "/api/v1/printers", map[string]interface{}{
		"id":                 id,
		"type":               printerType,
		"commissioning_date": commissioned,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
}

// nextMonday はfromより厳密に後の月曜日を返す（検証用）
func nextMonday(from time.Time) time.Time {
	days := (8 - int(from.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	next := from.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, from.Location())
}

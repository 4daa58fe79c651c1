package handler

import (
	"context"

	"github.com/sanosuguru/go-printer-maintenance/internal/application"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

// PrinterServiceInterface はプリンターサービスのインターフェース
type PrinterServiceInterface interface {
	CreatePrinter(ctx context.Context, input application.CreatePrinterInput) (*printer.Printer, error)
	GetPrinter(ctx context.Context, id int) (*printer.Printer, error)
	ListPrinters(ctx context.Context, sortBy printer.SortKey) ([]*printer.Printer, error)
	DeletePrinter(ctx context.Context, id int) error
}

// MaintenanceServiceInterface は保守予定サービスのインターフェース
type MaintenanceServiceInterface interface {
	Schedule(ctx context.Context, printerID int) (*maintenance.Event, error)
	DeleteEvent(ctx context.Context, eventID int) error
	Events() []*maintenance.Event
	EventsForPrinter(printerID int) []*maintenance.Event
	Subscribe(printerID *int) (<-chan []*maintenance.Event, func())
}

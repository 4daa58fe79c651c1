package application

import (
	"context"
	"fmt"
	"time"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

// PrinterService はプリンター台帳の管理を担う
type PrinterService struct {
	repo printer.Repository
}

func NewPrinterService(repo printer.Repository) *PrinterService {
	return &PrinterService{repo: repo}
}

type CreatePrinterInput struct {
	ID                int
	Type              printer.Type
	CommissioningDate time.Time
}

func (s *PrinterService) CreatePrinter(ctx context.Context, input CreatePrinterInput) (*printer.Printer, error) {
	p := printer.New(input.ID, input.Type, input.CommissioningDate)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("プリンター登録に失敗: %w", err)
	}
	return p, nil
}

func (s *PrinterService) GetPrinter(ctx context.Context, id int) (*printer.Printer, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPrinters はプリンター一覧を指定キーの順で返す
func (s *PrinterService) ListPrinters(ctx context.Context, sortBy printer.SortKey) ([]*printer.Printer, error) {
	return s.repo.List(ctx, sortBy)
}

func (s *PrinterService) DeletePrinter(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

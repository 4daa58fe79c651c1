package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

// printerRow はDBの行を表す構造体
type printerRow struct {
	ID                int       `db:"id"`
	Type              string    `db:"type"`
	CommissioningDate time.Time `db:"commissioning_date"`
}

func (r *printerRow) toEntity() *printer.Printer {
	return &printer.Printer{
		ID:                r.ID,
		Type:              printer.Type(r.Type),
		CommissioningDate: r.CommissioningDate,
	}
}

// PrinterRepository はプリンターカタログのSQLite実装
type PrinterRepository struct {
	db *sqlx.DB
}

// NewPrinterRepository はPrinterRepositoryを作成する
func NewPrinterRepository(db *sqlx.DB) *PrinterRepository {
	return &PrinterRepository{db: db}
}

// Create は新しいプリンターを登録する
// IDは外部で採番されるため、重複はErrPrinterAlreadyExistsになる
func (r *PrinterRepository) Create(ctx context.Context, p *printer.Printer) error {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS(SELECT 1 FROM printers WHERE id = ?)`, p.ID)
	if err != nil {
		return fmt.Errorf("プリンターの重複確認に失敗しました: %w", err)
	}
	if exists {
		return printer.ErrPrinterAlreadyExists
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO printers (id, type, commissioning_date) VALUES (?, ?, ?)`,
		p.ID, string(p.Type), p.CommissioningDate)
	if err != nil {
		return fmt.Errorf("プリンターの登録に失敗しました: %w", err)
	}
	return nil
}

// GetByID はIDからプリンターを取得する
func (r *PrinterRepository) GetByID(ctx context.Context, id int) (*printer.Printer, error) {
	var row printerRow
	err := r.db.GetContext(ctx, &row,
		`SELECT id, type, commissioning_date FROM printers WHERE id = ?`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, printer.ErrPrinterNotFound
		}
		return nil, fmt.Errorf("プリンターの取得に失敗しました: %w", err)
	}
	return row.toEntity(), nil
}

// List はプリンター一覧を指定の並び順で取得する
func (r *PrinterRepository) List(ctx context.Context, sortBy printer.SortKey) ([]*printer.Printer, error) {
	var orderBy string
	switch sortBy {
	case printer.SortByType:
		orderBy = "type, id"
	case printer.SortByDate:
		orderBy = "commissioning_date, id"
	default:
		orderBy = "id"
	}

	var rows []printerRow
	err := r.db.SelectContext(ctx, &rows,
		`SELECT id, type, commissioning_date FROM printers ORDER BY `+orderBy)
	if err != nil {
		return nil, fmt.Errorf("プリンター一覧の取得に失敗しました: %w", err)
	}

	printers := make([]*printer.Printer, len(rows))
	for i := range rows {
		printers[i] = rows[i].toEntity()
	}
	return printers, nil
}

// Delete はプリンターを削除する
func (r *PrinterRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM printers WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("プリンターの削除に失敗しました: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("削除結果の確認に失敗しました: %w", err)
	}
	if rowsAffected == 0 {
		return printer.ErrPrinterNotFound
	}
	return nil
}

// インターフェースを満たしているか確認
var _ printer.Repository = (*PrinterRepository)(nil)

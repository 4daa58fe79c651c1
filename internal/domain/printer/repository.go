package printer

import "context"

// SortKey はプリンター一覧の並び順を表す
type SortKey string

const (
	SortByID   SortKey = "id"
	SortByType SortKey = "type"
	SortByDate SortKey = "date"
)

// Repository はプリンターカタログのインターフェース
type Repository interface {
	// Create は新しいプリンターを登録する
	Create(ctx context.Context, p *Printer) error

	// GetByID はIDからプリンターを取得する
	GetByID(ctx context.Context, id int) (*Printer, error)

	// List はプリンター一覧を指定の並び順で取得する
	List(ctx context.Context, sortBy SortKey) ([]*Printer, error)

	// Delete はプリンターを削除する
	Delete(ctx context.Context, id int) error
}

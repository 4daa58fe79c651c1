package sqlite

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
)

func init() {
	// modernc.org/sqlite のドライバー名をsqlxのプレースホルダー形式に対応付ける
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// NewConnection はSQLiteへの接続を作成する
func NewConnection(cfg *config.StorageConfig) (*sqlx.DB, error) {
	db, err := sqlx.Connect("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗しました: %w", err)
	}

	// SQLiteは単一ライターのため接続を1本に固定する
	db.SetMaxOpenConns(1)

	return db, nil
}

// Ping はデータベース接続を確認する
func Ping(ctx context.Context, db *sqlx.DB) error {
	return db.PingContext(ctx)
}

package calendar

import (
	"context"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
)

// Backend は外部カレンダーへの予定作成・削除を抽象化するインターフェース
// エンジンがインフラ層（Google Calendar / 端末カレンダー）に依存しないようにするための抽象化
type Backend interface {
	// CreateEvent は予定を外部カレンダーに登録し、その予定を指す不透明なIDを返す
	CreateEvent(ctx context.Context, ev *maintenance.Event) (string, error)

	// DeleteEvent は外部カレンダー上の予定を削除する
	DeleteEvent(ctx context.Context, ev *maintenance.Event) error
}

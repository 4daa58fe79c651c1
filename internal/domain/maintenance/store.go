package maintenance

import "context"

// Store は保守予定の永続化インターフェース
// 実装はイベント一覧全体を1つの永続レコードとして読み書きする
type Store interface {
	// Load は永続化済みのイベント一覧を復元する
	// 保存データが存在しない場合や復号に失敗した場合は空の一覧を返す（エラーにしない）
	Load(ctx context.Context) ([]*Event, error)

	// Save はイベント一覧で永続レコード全体を上書きする
	Save(ctx context.Context, events []*Event) error
}

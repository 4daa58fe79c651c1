package maintenance

import "errors"

// Maintenance ドメインのエラー定義
var (
	ErrAlreadyScheduled = errors.New("このプリンターには既に保守予定が存在します")
	ErrEventNotFound    = errors.New("保守予定が見つかりません")
	ErrCalendarCreate   = errors.New("カレンダーへの予定登録に失敗しました")
	ErrCalendarDelete   = errors.New("カレンダーの予定削除に失敗しました")
)

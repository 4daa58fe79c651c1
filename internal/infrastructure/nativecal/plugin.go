// Package nativecal は端末のカレンダープラグインを介したローカルバックエンドを提供する
package nativecal

import "time"

// Plugin は端末側カレンダープラグインのコールバック型インターフェースを表す。
// ネイティブブリッジは同期的な戻り値を持たず、結果をコールバックで通知する。
type Plugin interface {
	// CreateEvent はカレンダーへ予定を追加し、結果をコールバックで返す
	CreateEvent(title, location, notes string, start, end time.Time, onSuccess func(), onError func(error))

	// DeleteEvent は一致する予定を削除し、結果をコールバックで返す
	DeleteEvent(title, location, notes string, start, end time.Time, onSuccess func(), onError func(error))

	// HasReadWritePermission は読み書き権限の有無を通知する
	HasReadWritePermission(onResult func(bool), onError func(error))

	// RequestReadWritePermission は読み書き権限を要求する
	RequestReadWritePermission(onResult func(bool), onError func(error))

	// RequestCalendarAccess は権限確認と要求を一度に行う
	RequestCalendarAccess(onResult func(bool), onError func(error))
}

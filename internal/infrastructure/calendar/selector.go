// Package calendar は設定とプラットフォームに応じたバックエンド選択を提供する
package calendar

import (
	"go.uber.org/zap"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	domaincal "github.com/sanosuguru/go-printer-maintenance/internal/domain/calendar"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
)

// Select は同期先のカレンダーバックエンドを決定する。
// 明示指定が最優先で、autoの場合はモバイル端末ならローカル、それ以外はリモートを選ぶ。
// ローカルバックエンドが用意できない環境ではリモートへフォールバックする。
func Select(cfg *config.CalendarConfig, google, native domaincal.Backend) domaincal.Backend {
	choice := cfg.Backend
	if choice == "auto" {
		if cfg.Platform == "ios" || cfg.Platform == "android" {
			choice = "native"
		} else {
			choice = "google"
		}
	}

	if choice == "native" {
		if native == nil {
			logger.Warn("ローカルカレンダーが利用できないためリモートへフォールバック",
				zap.String("platform", cfg.Platform))
			return google
		}
		logger.Info("ローカルカレンダーバックエンドを使用",
			zap.String("platform", cfg.Platform))
		return native
	}

	logger.Info("リモートカレンダーバックエンドを使用")
	return google
}

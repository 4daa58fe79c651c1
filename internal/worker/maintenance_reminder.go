package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
)

// UpcomingEventLister は直近の保守予定を列挙するインターフェース
type UpcomingEventLister interface {
	UpcomingEvents(within time.Duration) []*maintenance.Event
}

// MaintenanceReminder は直近の保守予定を定期的にログへ通知するワーカー。
// 予定の状態には一切触れない読み取り専用の監視役。
type MaintenanceReminder struct {
	maintenanceService UpcomingEventLister
	interval           time.Duration
	lookahead          time.Duration
	stopCh             chan struct{}
	doneCh             chan struct{}
}

// NewMaintenanceReminder は新しいリマインダーを作成
func NewMaintenanceReminder(
	ms UpcomingEventLister,
	interval time.Duration,
	lookahead time.Duration,
) *MaintenanceReminder {
	return &MaintenanceReminder{
		maintenanceService: ms,
		interval:           interval,
		lookahead:          lookahead,
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}
}

// Start はリマインダーを開始
func (r *MaintenanceReminder) Start(ctx context.Context) {
	logger.Info("保守リマインダー開始",
		zap.Duration("interval", r.interval),
		zap.Duration("lookahead", r.lookahead),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	defer close(r.doneCh)

	for {
		select {
		case <-ctx.Done():
			logger.Info("保守リマインダー停止（コンテキストキャンセル）")
			return
		case <-r.stopCh:
			logger.Info("保守リマインダー停止（シグナル受信）")
			return
		case <-ticker.C:
			r.remind()
		}
	}
}

// Stop はリマインダーを停止
func (r *MaintenanceReminder) Stop() {
	close(r.stopCh)
	<-r.doneCh
}

// remind は直近の保守予定をログへ出す
func (r *MaintenanceReminder) remind() {
	log := logger.Get()

	upcoming := r.maintenanceService.UpcomingEvents(r.lookahead)
	if len(upcoming) == 0 {
		log.Debug("直近の保守予定なし")
		return
	}

	for _, ev := range upcoming {
		log.Info("保守予定のリマインド",
			zap.Int("event_id", ev.ID),
			zap.Int("printer_id", ev.PrinterID),
			zap.String("title", ev.Title),
			zap.Time("start_time", ev.StartTime),
		)
	}
}

package nativecal

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	domaincal "github.com/sanosuguru/go-printer-maintenance/internal/domain/calendar"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/metrics"
)

// エラー定義
var (
	// ErrPermissionDenied はカレンダーへの権限が拒否されたことを表す
	ErrPermissionDenied = errors.New("カレンダーへのアクセス権限がありません")
)

// Backend は端末ローカルのカレンダープラグインを保守予定の同期先として使う
type Backend struct {
	plugin   Plugin
	platform string
	location string
}

// NewBackend は新しいローカルバックエンドを作成する
func NewBackend(cfg *config.CalendarConfig, plugin Plugin) *Backend {
	return &Backend{
		plugin:   plugin,
		platform: cfg.Platform,
		location: cfg.Location,
	}
}

// CreateEvent は保守予定を端末カレンダーへ追加する。
// ローカルバックエンドには外部IDの概念がないため、タイトルを識別子として返す。
func (b *Backend) CreateEvent(ctx context.Context, ev *maintenance.Event) (string, error) {
	start := time.Now()
	err := b.mutate(ctx, ev, b.plugin.CreateEvent)
	observe("create", start, err)
	if err != nil {
		return "", err
	}
	return ev.Title, nil
}

// DeleteEvent は端末カレンダーから一致する予定を削除する
func (b *Backend) DeleteEvent(ctx context.Context, ev *maintenance.Event) error {
	start := time.Now()
	err := b.mutate(ctx, ev, b.plugin.DeleteEvent)
	observe("delete", start, err)
	return err
}

// mutate は権限を確認してからプラグインの作成/削除を同期的に実行する
func (b *Backend) mutate(
	ctx context.Context,
	ev *maintenance.Event,
	op func(title, location, notes string, start, end time.Time, onSuccess func(), onError func(error)),
) error {
	granted, err := b.ensurePermission(ctx)
	if err != nil {
		return fmt.Errorf("カレンダー権限の確認に失敗: %w", err)
	}
	if !granted {
		return ErrPermissionDenied
	}

	location := ev.Location
	if location == "" {
		location = b.location
	}

	done := make(chan error, 1)
	op(ev.Title, location, ev.Description(), ev.StartTime, ev.EndTime,
		func() { done <- nil },
		func(err error) { done <- err },
	)
	return <-done
}

// ensurePermission はプラットフォームごとの手順で読み書き権限を確保する。
// iOSは確認と要求を一度に行い、Androidは確認してから不足分を要求する。
// それ以外のプラットフォームでは権限の概念がないため常に許可とみなす。
func (b *Backend) ensurePermission(ctx context.Context) (bool, error) {
	switch b.platform {
	case "ios":
		return b.resolve(b.plugin.RequestCalendarAccess)
	case "android":
		granted, err := b.resolve(b.plugin.HasReadWritePermission)
		if err != nil {
			return false, err
		}
		if granted {
			return true, nil
		}
		return b.resolve(b.plugin.RequestReadWritePermission)
	default:
		logger.Debug(fmt.Sprintf("プラットフォーム %s では権限確認をスキップ", b.platform))
		return true, nil
	}
}

type permissionResult struct {
	granted bool
	err     error
}

func (b *Backend) resolve(check func(onResult func(bool), onError func(error))) (bool, error) {
	done := make(chan permissionResult, 1)
	check(
		func(granted bool) { done <- permissionResult{granted: granted} },
		func(err error) { done <- permissionResult{err: err} },
	)
	res := <-done
	return res.granted, res.err
}

func observe(operation string, start time.Time, err error) {
	m := metrics.Get()
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.CalendarRequestDuration.WithLabelValues("native", operation, status).Observe(time.Since(start).Seconds())
}

// インターフェースを満たしているか確認
var _ domaincal.Backend = (*Backend)(nil)

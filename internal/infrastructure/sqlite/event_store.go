package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
)

// 永続レコードのキー。イベント一覧全体を1件のJSON配列として保持する
const eventsRecordKey = "maintenanceEvents"

// 予定日は日付のみ（時刻なし）の意味を保ったまま往復させる
const dateLayout = "2006-01-02"

// eventRecord は永続レコード内の1イベントのワイヤー形式
// calendarEventId は未登録でも省略せず null として残す（スキーマ互換のため）
type eventRecord struct {
	ID              int       `json:"id"`
	PrinterID       int       `json:"printerId"`
	Title           string    `json:"title"`
	Date            string    `json:"date"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	CalendarEventID *string   `json:"calendarEventId"`
	Location        string    `json:"location,omitempty"`
}

func toRecord(ev *maintenance.Event) eventRecord {
	return eventRecord{
		ID:              ev.ID,
		PrinterID:       ev.PrinterID,
		Title:           ev.Title,
		Date:            ev.Date.Format(dateLayout),
		StartTime:       ev.StartTime,
		EndTime:         ev.EndTime,
		CalendarEventID: ev.CalendarEventID,
		Location:        ev.Location,
	}
}

func (r *eventRecord) toEntity() (*maintenance.Event, error) {
	day, err := time.ParseInLocation(dateLayout, r.Date, time.Local)
	if err != nil {
		return nil, fmt.Errorf("予定日の復元に失敗しました: %w", err)
	}
	return &maintenance.Event{
		ID:              r.ID,
		PrinterID:       r.PrinterID,
		Title:           r.Title,
		Date:            day,
		StartTime:       r.StartTime,
		EndTime:         r.EndTime,
		CalendarEventID: r.CalendarEventID,
		Location:        r.Location,
	}, nil
}

// EventStore は保守予定ストアのSQLite実装
type EventStore struct {
	db *sqlx.DB
}

// NewEventStore はEventStoreを作成する
func NewEventStore(db *sqlx.DB) *EventStore {
	return &EventStore{db: db}
}

// Load は永続レコードからイベント一覧を復元する
// レコードがない場合は空、復号に失敗した場合はログを残して空として扱う
func (s *EventStore) Load(ctx context.Context) ([]*maintenance.Event, error) {
	var payload string
	err := s.db.GetContext(ctx, &payload,
		`SELECT payload FROM maintenance_records WHERE record_key = ?`, eventsRecordKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("保守予定の読み込みに失敗しました: %w", err)
	}

	var records []eventRecord
	if err := json.Unmarshal([]byte(payload), &records); err != nil {
		logger.Warn("保守予定レコードの復号に失敗したため空として扱います", zap.Error(err))
		return nil, nil
	}

	events := make([]*maintenance.Event, 0, len(records))
	for i := range records {
		ev, err := records[i].toEntity()
		if err != nil {
			logger.Warn("保守予定レコードの復元に失敗したため空として扱います",
				zap.Int("event_id", records[i].ID), zap.Error(err))
			return nil, nil
		}
		events = append(events, ev)
	}
	return events, nil
}

// Save はイベント一覧で永続レコード全体を上書きする
func (s *EventStore) Save(ctx context.Context, events []*maintenance.Event) error {
	records := make([]eventRecord, len(events))
	for i, ev := range events {
		records[i] = toRecord(ev)
	}

	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("保守予定の直列化に失敗しました: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO maintenance_records (record_key, payload, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT(record_key) DO UPDATE SET
			payload = excluded.payload,
			updated_at = excluded.updated_at
	`, eventsRecordKey, string(payload), time.Now())
	if err != nil {
		return fmt.Errorf("保守予定の保存に失敗しました: %w", err)
	}
	return nil
}

// インターフェースを満たしているか確認
var _ maintenance.Store = (*EventStore)(nil)

package maintenance

import (
	"fmt"
	"time"

	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

// 保守作業の固定時間枠（予定日のローカルタイム）
const (
	WindowStartHour = 8
	WindowEndHour   = 12
)

// Event は1台のプリンターに紐づく保守予定を表す
// CalendarEventID は外部カレンダーへの登録が成功するまで nil のまま
type Event struct {
	ID              int
	PrinterID       int
	Title           string
	Date            time.Time // 予定日（その日の0時）
	StartTime       time.Time
	EndTime         time.Time
	Location        string
	CalendarEventID *string
}

// NewEvent は次回の保守予定を組み立てる
// 予定日は now より厳密に後の月曜日（now が月曜なら翌週の月曜）になる
func NewEvent(id int, p *printer.Printer, now time.Time) *Event {
	day := NextMonday(now)
	start := time.Date(day.Year(), day.Month(), day.Day(), WindowStartHour, 0, 0, 0, day.Location())
	end := time.Date(day.Year(), day.Month(), day.Day(), WindowEndHour, 0, 0, 0, day.Location())

	return &Event{
		ID:        id,
		PrinterID: p.ID,
		Title:     fmt.Sprintf("%s #%d maintenance", p.Type, p.ID),
		Date:      day,
		StartTime: start,
		EndTime:   end,
	}
}

// NextMonday は from より厳密に後の月曜日を返す（時刻は0時に正規化）
func NextMonday(from time.Time) time.Time {
	days := (8 - int(from.Weekday())) % 7
	if days == 0 {
		days = 7
	}
	next := from.AddDate(0, 0, days)
	return time.Date(next.Year(), next.Month(), next.Day(), 0, 0, 0, 0, from.Location())
}

// Description は外部カレンダーに載せる説明文を返す
func (e *Event) Description() string {
	return fmt.Sprintf("Maintenance for Printer #%d", e.PrinterID)
}

// ExternalID は外部カレンダーIDを返す（未登録なら空文字）
func (e *Event) ExternalID() string {
	if e.CalendarEventID == nil {
		return ""
	}
	return *e.CalendarEventID
}

// Clone はイベントの独立したコピーを返す
// 購読者へ渡すスナップショットが内部状態を共有しないようにするため
func (e *Event) Clone() *Event {
	c := *e
	if e.CalendarEventID != nil {
		id := *e.CalendarEventID
		c.CalendarEventID = &id
	}
	return &c
}

// NextID は既存イベントから次のIDを採番する（max+1、空なら1）
// 単一ライター前提であり、並行採番に対しては安全ではない
func NextID(events []*Event) int {
	max := 0
	for _, ev := range events {
		if ev.ID > max {
			max = ev.ID
		}
	}
	return max + 1
}

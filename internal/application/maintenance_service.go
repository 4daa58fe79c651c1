package application

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domaincal "github.com/sanosuguru/go-printer-maintenance/internal/domain/calendar"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/logger"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/metrics"
)

// subscriber は保守予定スナップショットの購読者を表す
// printerID が nil でなければそのプリンターの予定だけを受け取る
type subscriber struct {
	ch        chan []*maintenance.Event
	printerID *int
}

// MaintenanceService は保守予定のスケジューリングとカレンダー同期を担う
type MaintenanceService struct {
	store       maintenance.Store
	backend     domaincal.Backend
	printerRepo printer.Repository

	// mutationMu は予定の追加・削除を直列化する
	// カレンダー呼び出し中に同じ不変条件を別の操作が破らないようにするため
	mutationMu sync.Mutex

	mu          sync.RWMutex
	events      []*maintenance.Event
	subscribers map[uuid.UUID]*subscriber

	now func() time.Time
}

func NewMaintenanceService(store maintenance.Store, backend domaincal.Backend, pr printer.Repository) *MaintenanceService {
	return &MaintenanceService{
		store:       store,
		backend:     backend,
		printerRepo: pr,
		subscribers: make(map[uuid.UUID]*subscriber),
		now:         time.Now,
	}
}

// Load は永続化済みの保守予定を読み込んで初期状態を復元する
func (s *MaintenanceService) Load(ctx context.Context) error {
	events, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("保守予定の読み込みに失敗: %w", err)
	}

	s.mu.Lock()
	s.events = events
	s.mu.Unlock()

	logger.Info("保守予定を復元", zap.Int("count", len(events)))
	s.publish()
	return nil
}

// Schedule は指定プリンターの次回保守予定を作成しカレンダーへ登録する。
// 1台につき予定は常に1件までで、既存の予定がある間は新規作成できない。
func (s *MaintenanceService) Schedule(ctx context.Context, printerID int) (*maintenance.Event, error) {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	p, err := s.printerRepo.GetByID(ctx, printerID)
	if err != nil {
		return nil, fmt.Errorf("プリンター取得に失敗: %w", err)
	}

	// 不変条件チェックと採番
	s.mu.RLock()
	for _, ev := range s.events {
		if ev.PrinterID == printerID {
			s.mu.RUnlock()
			countOp("schedule", "conflict")
			return nil, maintenance.ErrAlreadyScheduled
		}
	}
	id := maintenance.NextID(s.events)
	s.mu.RUnlock()

	ev := maintenance.NewEvent(id, p, s.now())

	// カレンダー登録が成功するまでローカル状態には触れない
	externalID, err := s.backend.CreateEvent(ctx, ev)
	if err != nil {
		countOp("schedule", "error")
		return nil, fmt.Errorf("%w: %v", maintenance.ErrCalendarCreate, err)
	}
	ev.CalendarEventID = &externalID

	if err := s.commitAppend(ctx, ev); err != nil {
		countOp("schedule", "error")
		return nil, err
	}

	countOp("schedule", "success")
	logger.Info("保守予定を作成",
		zap.Int("event_id", ev.ID),
		zap.Int("printer_id", printerID),
		zap.String("date", ev.Date.Format("2006-01-02")),
		zap.String("calendar_event_id", externalID))
	return ev.Clone(), nil
}

// DeleteEvent は保守予定をカレンダーとローカル状態の両方から削除する
func (s *MaintenanceService) DeleteEvent(ctx context.Context, eventID int) error {
	s.mutationMu.Lock()
	defer s.mutationMu.Unlock()

	s.mu.RLock()
	var target *maintenance.Event
	for _, ev := range s.events {
		if ev.ID == eventID {
			target = ev
			break
		}
	}
	s.mu.RUnlock()

	if target == nil {
		countOp("delete", "not_found")
		return maintenance.ErrEventNotFound
	}

	// カレンダー側の削除が失敗したらローカル状態は変更しない
	if err := s.backend.DeleteEvent(ctx, target); err != nil {
		countOp("delete", "error")
		return fmt.Errorf("%w: %v", maintenance.ErrCalendarDelete, err)
	}

	if err := s.commitRemove(ctx, eventID); err != nil {
		countOp("delete", "error")
		return err
	}

	countOp("delete", "success")
	logger.Info("保守予定を削除",
		zap.Int("event_id", eventID),
		zap.Int("printer_id", target.PrinterID))
	return nil
}

// commitAppend は予定を追加して永続化し、失敗時はメモリ上の変更を巻き戻す
func (s *MaintenanceService) commitAppend(ctx context.Context, ev *maintenance.Event) error {
	s.mu.Lock()
	s.events = append(s.events, ev)
	if err := s.store.Save(ctx, s.events); err != nil {
		s.events = s.events[:len(s.events)-1]
		s.mu.Unlock()
		return fmt.Errorf("保守予定の永続化に失敗: %w", err)
	}
	s.mu.Unlock()

	s.publish()
	return nil
}

// commitRemove は予定を取り除いて永続化し、失敗時はメモリ上の変更を巻き戻す
func (s *MaintenanceService) commitRemove(ctx context.Context, eventID int) error {
	s.mu.Lock()
	previous := s.events
	remaining := make([]*maintenance.Event, 0, len(previous))
	for _, ev := range previous {
		if ev.ID != eventID {
			remaining = append(remaining, ev)
		}
	}
	s.events = remaining
	if err := s.store.Save(ctx, s.events); err != nil {
		s.events = previous
		s.mu.Unlock()
		return fmt.Errorf("保守予定の永続化に失敗: %w", err)
	}
	s.mu.Unlock()

	s.publish()
	return nil
}

// Events は全保守予定のスナップショットをID順で返す
func (s *MaintenanceService) Events() []*maintenance.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.events, nil)
}

// EventsForPrinter は指定プリンターの保守予定のスナップショットを返す
func (s *MaintenanceService) EventsForPrinter(printerID int) []*maintenance.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot(s.events, &printerID)
}

// UpcomingEvents は現在時刻から within 以内に開始する予定を返す
func (s *MaintenanceService) UpcomingEvents(within time.Duration) []*maintenance.Event {
	now := s.now()
	limit := now.Add(within)

	s.mu.RLock()
	defer s.mu.RUnlock()

	upcoming := make([]*maintenance.Event, 0)
	for _, ev := range s.events {
		if ev.StartTime.After(now) && !ev.StartTime.After(limit) {
			upcoming = append(upcoming, ev.Clone())
		}
	}
	sort.Slice(upcoming, func(i, j int) bool { return upcoming[i].StartTime.Before(upcoming[j].StartTime) })
	return upcoming
}

// Subscribe は保守予定スナップショットの購読を開始する。
// 購読直後に現在のスナップショットが届き、以降は状態変化のたびに最新版が届く。
// printerID を指定するとそのプリンターの予定だけに絞り込まれる。
// 返された解除関数を呼ぶとチャネルがクローズされる。
func (s *MaintenanceService) Subscribe(printerID *int) (<-chan []*maintenance.Event, func()) {
	sub := &subscriber{
		ch:        make(chan []*maintenance.Event, 1),
		printerID: printerID,
	}
	key := uuid.New()

	s.mu.Lock()
	s.subscribers[key] = sub
	sub.ch <- snapshot(s.events, printerID)
	s.mu.Unlock()

	unsubscribe := func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if _, ok := s.subscribers[key]; !ok {
			return
		}
		delete(s.subscribers, key)
		close(sub.ch)
	}
	return sub.ch, unsubscribe
}

// publish は全購読者へ最新スナップショットを配る。
// 受信が追いついていない購読者には古いスナップショットを捨てて最新版だけを残す。
func (s *MaintenanceService) publish() {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if m := metrics.Get(); m != nil {
		m.ScheduledEvents.Set(float64(len(s.events)))
	}

	for _, sub := range s.subscribers {
		snap := snapshot(s.events, sub.printerID)
		select {
		case sub.ch <- snap:
		default:
			select {
			case <-sub.ch:
			default:
			}
			sub.ch <- snap
		}
	}
}

// snapshot はイベント列の独立したコピーをID順で返す
func snapshot(events []*maintenance.Event, printerID *int) []*maintenance.Event {
	snap := make([]*maintenance.Event, 0, len(events))
	for _, ev := range events {
		if printerID != nil && ev.PrinterID != *printerID {
			continue
		}
		snap = append(snap, ev.Clone())
	}
	sort.Slice(snap, func(i, j int) bool { return snap[i].ID < snap[j].ID })
	return snap
}

func countOp(operation, status string) {
	if m := metrics.Get(); m != nil {
		m.MaintenanceOpsTotal.WithLabelValues(operation, status).Inc()
	}
}

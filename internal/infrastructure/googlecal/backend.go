package googlecal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	domaincal "github.com/sanosuguru/go-printer-maintenance/internal/domain/calendar"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/pkg/metrics"
)

// リマインダーはメール60分前とポップアップ30分前で固定
var defaultReminders = reminders{
	UseDefault: false,
	Overrides: []reminderOverride{
		{Method: "email", Minutes: 60},
		{Method: "popup", Minutes: 30},
	},
}

// eventBody はGoogle Calendar API v3のイベント作成リクエスト
type eventBody struct {
	Summary     string     `json:"summary"`
	Description string     `json:"description"`
	Start       eventTime  `json:"start"`
	End         eventTime  `json:"end"`
	Reminders   reminders  `json:"reminders"`
}

type eventTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type reminders struct {
	UseDefault bool               `json:"useDefault"`
	Overrides  []reminderOverride `json:"overrides"`
}

type reminderOverride struct {
	Method  string `json:"method"`
	Minutes int    `json:"minutes"`
}

type createdEvent struct {
	ID string `json:"id"`
}

// Backend はGoogle Calendarを使うカレンダーバックエンド
type Backend struct {
	eventsURL string
	timeZone  string
	tokens    TokenProvider
	http      *http.Client
}

// NewBackend はGoogle Calendarバックエンドを作成する
func NewBackend(cfg *config.Config, tokens TokenProvider) *Backend {
	return &Backend{
		eventsURL: cfg.Google.EventsURL,
		timeZone:  cfg.Calendar.TimeZone,
		tokens:    tokens,
		http:      http.DefaultClient,
	}
}

// CreateEvent は予定をGoogle Calendarに登録し、APIが採番したIDを返す
// トークン取得に失敗した場合はネットワークI/Oを行わずに失敗する
func (b *Backend) CreateEvent(ctx context.Context, ev *maintenance.Event) (string, error) {
	start := time.Now()
	id, err := b.createEvent(ctx, ev)
	observe("create", start, err)
	return id, err
}

func (b *Backend) createEvent(ctx context.Context, ev *maintenance.Event) (string, error) {
	token, err := b.tokens.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("アクセストークンの取得に失敗しました: %w", err)
	}

	body := eventBody{
		Summary:     ev.Title,
		Description: ev.Description(),
		Start:       eventTime{DateTime: ev.StartTime.Format(time.RFC3339), TimeZone: b.timeZone},
		End:         eventTime{DateTime: ev.EndTime.Format(time.RFC3339), TimeZone: b.timeZone},
		Reminders:   defaultReminders,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("リクエストの直列化に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.eventsURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("予定の作成リクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("予定の作成に失敗しました: %s", responseError(resp))
	}

	var created createdEvent
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return "", fmt.Errorf("レスポンスの復号に失敗しました: %w", err)
	}
	if created.ID == "" {
		return "", fmt.Errorf("レスポンスに予定IDが含まれていません")
	}
	return created.ID, nil
}

// DeleteEvent はGoogle Calendar上の予定を外部IDで削除する
func (b *Backend) DeleteEvent(ctx context.Context, ev *maintenance.Event) error {
	start := time.Now()
	err := b.deleteEvent(ctx, ev)
	observe("delete", start, err)
	return err
}

func (b *Backend) deleteEvent(ctx context.Context, ev *maintenance.Event) error {
	externalID := ev.ExternalID()
	if externalID == "" {
		return fmt.Errorf("外部カレンダーIDが設定されていません")
	}

	token, err := b.tokens.AccessToken(ctx)
	if err != nil {
		return fmt.Errorf("アクセストークンの取得に失敗しました: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, b.eventsURL+"/"+externalID, nil)
	if err != nil {
		return fmt.Errorf("リクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := b.http.Do(req)
	if err != nil {
		return fmt.Errorf("予定の削除リクエストに失敗しました: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("予定の削除に失敗しました: %s", responseError(resp))
	}
	return nil
}

// responseError はエラーレスポンスの要約を返す（ボディは先頭のみ）
func responseError(resp *http.Response) string {
	snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return fmt.Sprintf("status=%d body=%s", resp.StatusCode, string(snippet))
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
	m.CalendarRequestDuration.WithLabelValues("google", operation, status).Observe(time.Since(start).Seconds())
}

// インターフェースを満たしているか確認
var _ domaincal.Backend = (*Backend)(nil)

package nativecal

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sanosuguru/go-printer-maintenance/internal/config"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/maintenance"
	"github.com/sanosuguru/go-printer-maintenance/internal/domain/printer"
)

// fakePlugin はコールバックを即時に解決するテスト用プラグイン
type fakePlugin struct {
	hasPermission  bool
	grantOnRequest bool
	permissionErr  error
	mutationErr    error
	createCalls    int
	deleteCalls    int
	hasCalls       int
	requestCalls   int
	accessCalls    int
	lastTitle      string
	lastLocation   string
	lastNotes      string
	lastStart      time.Time
	lastEnd        time.Time
}

func (p *fakePlugin) CreateEvent(title, location, notes string, start, end time.Time, onSuccess func(), onError func(error)) {
	p.createCalls++
	p.record(title, location, notes, start, end)
	p.finish(onSuccess, onError)
}

func (p *fakePlugin) DeleteEvent(title, location, notes string, start, end time.Time, onSuccess func(), onError func(error)) {
	p.deleteCalls++
	p.record(title, location, notes, start, end)
	p.finish(onSuccess, onError)
}

func (p *fakePlugin) HasReadWritePermission(onResult func(bool), onError func(error)) {
	p.hasCalls++
	p.answer(p.hasPermission, onResult, onError)
}

func (p *fakePlugin) RequestReadWritePermission(onResult func(bool), onError func(error)) {
	p.requestCalls++
	p.answer(p.grantOnRequest, onResult, onError)
}

func (p *fakePlugin) RequestCalendarAccess(onResult func(bool), onError func(error)) {
	p.accessCalls++
	p.answer(p.hasPermission || p.grantOnRequest, onResult, onError)
}

func (p *fakePlugin) record(title, location, notes string, start, end time.Time) {
	p.lastTitle = title
	p.lastLocation = location
	p.lastNotes = notes
	p.lastStart = start
	p.lastEnd = end
}

func (p *fakePlugin) finish(onSuccess func(), onError func(error)) {
	if p.mutationErr != nil {
		onError(p.mutationErr)
		return
	}
	onSuccess()
}

func (p *fakePlugin) answer(granted bool, onResult func(bool), onError func(error)) {
	if p.permissionErr != nil {
		onError(p.permissionErr)
		return
	}
	onResult(granted)
}

func newBackend(platform string, plugin Plugin) *Backend {
	return NewBackend(&config.CalendarConfig{Platform: platform, Location: "Rouen"}, plugin)
}

func newTestEvent(t *testing.T) *maintenance.Event {
	t.Helper()
	p := printer.New(7, printer.TypeResin, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC))
	return maintenance.NewEvent(1, p, time.Date(2026, 1, 7, 10, 0, 0, 0, time.UTC))
}

func TestNativeBackend_CreateEvent(t *testing.T) {
	t.Run("正常に作成しタイトルを識別子として返す", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: true}
		backend := newBackend("android", plugin)
		ev := newTestEvent(t)

		externalID, err := backend.CreateEvent(context.Background(), ev)

		require.NoError(t, err)
		assert.Equal(t, ev.Title, externalID)
		assert.Equal(t, 1, plugin.createCalls)
		assert.Equal(t, ev.Title, plugin.lastTitle)
		assert.Equal(t, "Rouen", plugin.lastLocation)
		assert.Equal(t, ev.Description(), plugin.lastNotes)
		assert.Equal(t, ev.StartTime, plugin.lastStart)
		assert.Equal(t, ev.EndTime, plugin.lastEnd)
	})

	t.Run("イベント側の場所が優先される", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: true}
		backend := newBackend("android", plugin)
		ev := newTestEvent(t)
		ev.Location = "Lab B"

		_, err := backend.CreateEvent(context.Background(), ev)

		require.NoError(t, err)
		assert.Equal(t, "Lab B", plugin.lastLocation)
	})

	t.Run("権限拒否時はプラグインに触れない", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: false, grantOnRequest: false}
		backend := newBackend("android", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, 0, plugin.createCalls)
	})

	t.Run("プラグインのエラーがそのまま返る", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: true, mutationErr: errors.New("calendar unavailable")}
		backend := newBackend("android", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		assert.ErrorContains(t, err, "calendar unavailable")
	})
}

func TestNativeBackend_DeleteEvent(t *testing.T) {
	t.Run("正常に削除できる", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: true}
		backend := newBackend("android", plugin)
		ev := newTestEvent(t)

		err := backend.DeleteEvent(context.Background(), ev)

		require.NoError(t, err)
		assert.Equal(t, 1, plugin.deleteCalls)
		assert.Equal(t, ev.Title, plugin.lastTitle)
	})

	t.Run("権限拒否時は削除しない", func(t *testing.T) {
		plugin := &fakePlugin{}
		backend := newBackend("android", plugin)

		err := backend.DeleteEvent(context.Background(), newTestEvent(t))

		assert.ErrorIs(t, err, ErrPermissionDenied)
		assert.Equal(t, 0, plugin.deleteCalls)
	})
}

func TestNativeBackend_EnsurePermission(t *testing.T) {
	t.Run("Androidは確認後に不足分を要求する", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: false, grantOnRequest: true}
		backend := newBackend("android", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		require.NoError(t, err)
		assert.Equal(t, 1, plugin.hasCalls)
		assert.Equal(t, 1, plugin.requestCalls)
		assert.Equal(t, 0, plugin.accessCalls)
	})

	t.Run("Androidは権限があれば要求しない", func(t *testing.T) {
		plugin := &fakePlugin{hasPermission: true}
		backend := newBackend("android", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		require.NoError(t, err)
		assert.Equal(t, 1, plugin.hasCalls)
		assert.Equal(t, 0, plugin.requestCalls)
	})

	t.Run("iOSは確認と要求を一度に行う", func(t *testing.T) {
		plugin := &fakePlugin{grantOnRequest: true}
		backend := newBackend("ios", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		require.NoError(t, err)
		assert.Equal(t, 1, plugin.accessCalls)
		assert.Equal(t, 0, plugin.hasCalls)
		assert.Equal(t, 0, plugin.requestCalls)
	})

	t.Run("その他のプラットフォームでは常に許可", func(t *testing.T) {
		plugin := &fakePlugin{}
		backend := newBackend("linux", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		require.NoError(t, err)
		assert.Equal(t, 0, plugin.hasCalls)
		assert.Equal(t, 1, plugin.createCalls)
	})

	t.Run("権限確認のエラーは操作を失敗させる", func(t *testing.T) {
		plugin := &fakePlugin{permissionErr: errors.New("bridge error")}
		backend := newBackend("android", plugin)

		_, err := backend.CreateEvent(context.Background(), newTestEvent(t))

		assert.ErrorContains(t, err, "bridge error")
		assert.Equal(t, 0, plugin.createCalls)
	})
}

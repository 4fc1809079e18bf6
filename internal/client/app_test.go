package client

import (
	"context"
	"path/filepath"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/models"
)

func newTestConfig(serverURL, profileDir string) *config.ClientConfig {
	return &config.ClientConfig{
		Adapter: config.ClientAdapter{BaseURL: serverURL, RequestTimeout: 2 * time.Second},
		Storage: config.ClientStorage{DSN: filepath.Join(profileDir, "notes.db")},
		Workers: config.ClientWorkers{
			SyncInterval:    time.Minute,
			RetryInterval:   time.Second,
			PushConcurrency: 2,
		},
		Notifier: config.ClientNotifier{ProfileDir: profileDir, EventTTL: time.Minute},
	}
}

type eventLog struct {
	mu     sync.Mutex
	events []models.Event
}

func (l *eventLog) add(evt models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, evt)
}

func (l *eventLog) has(typ models.EventType, id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return slices.ContainsFunc(l.events, func(e models.Event) bool {
		return e.Type == typ && e.ID == id
	})
}

func (l *eventLog) len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.events)
}

func TestApp_TabsOfOneProfileSeeEachOther(t *testing.T) {
	a := newAuthority(t)
	profile := t.TempDir()
	ctx := context.Background()

	tab1, err := NewApp(ctx, newTestConfig(a.url, profile), nil, logger.Nop())
	require.NoError(t, err)
	defer tab1.Close()

	tab2, err := NewApp(ctx, newTestConfig(a.url, profile), nil, logger.Nop())
	require.NoError(t, err)
	defer tab2.Close()

	seen1, seen2 := &eventLog{}, &eventLog{}
	tab1.Subscribe(seen1.add)
	tab2.Subscribe(seen2.add)

	note, err := tab1.Services.Lifecycle.Create(ctx, models.NoteDraft{Title: "shared"})
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		return seen2.has(models.EventLocalUpdate, note.ID) && seen2.has(models.EventSyncSuccess, note.ID)
	}, 3*time.Second, 10*time.Millisecond)

	// вкладки делят локальное хранилище: вторая видит заметку без sync
	got, err := tab2.Services.Lifecycle.Get(ctx, note.ID)
	require.NoError(t, err)
	assert.Equal(t, "shared", got.Title)

	// свои события вкладка не получает
	time.Sleep(50 * time.Millisecond)
	assert.Zero(t, seen1.len())

	require.NoError(t, tab2.Services.Lifecycle.Purge(ctx, mustTrash(t, tab2, note.ID)))
	require.Eventually(t, func() bool {
		return seen1.has(models.EventNoteDeleted, note.ID)
	}, 3*time.Second, 10*time.Millisecond)
}

func mustTrash(t *testing.T, app *App, id string) string {
	t.Helper()
	_, err := app.Services.Lifecycle.Trash(context.Background(), id)
	require.NoError(t, err)
	return id
}

func TestApp_WithoutProfileRunsStandalone(t *testing.T) {
	a := newAuthority(t)
	cfg := newTestConfig(a.url, t.TempDir())
	cfg.Notifier.ProfileDir = ""

	app, err := NewApp(context.Background(), cfg, nil, logger.Nop())
	require.NoError(t, err)
	assert.Nil(t, app.bridge)

	_, err = app.Services.Lifecycle.Create(context.Background(), models.NoteDraft{})
	require.NoError(t, err)
	require.NoError(t, app.Close())
}

func TestNewApp_InvalidServerURL(t *testing.T) {
	cfg := newTestConfig("http://", t.TempDir())

	_, err := NewApp(context.Background(), cfg, nil, logger.Nop())
	assert.Error(t, err)
}

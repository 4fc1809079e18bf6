package client

import (
	"bytes"
	"context"
	nethttp "net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/handler/http"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/service"
	"github.com/MKhiriev/go-note-keeper/internal/store"
	"github.com/MKhiriev/go-note-keeper/models"
)

// authority — настоящий сервер заметок на sqlite за httptest.
type authority struct {
	url  string
	repo store.NoteRepository
	down atomic.Bool
}

func newAuthority(t *testing.T) *authority {
	t.Helper()
	ctx := context.Background()

	storages, err := store.NewStorages(ctx, config.ServerDB{
		Driver: config.DriverSQLite,
		DSN:    filepath.Join(t.TempDir(), "authority.db"),
	}, logger.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { storages.Close() })

	services, err := service.NewServices(storages, &config.ServerConfig{Version: "test"}, logger.Nop())
	require.NoError(t, err)

	a := &authority{repo: storages.NoteRepository}
	router := http.NewHandler(services, logger.Nop()).Init()

	srv := httptest.NewServer(nethttp.HandlerFunc(func(w nethttp.ResponseWriter, r *nethttp.Request) {
		if a.down.Load() {
			w.WriteHeader(nethttp.StatusServiceUnavailable)
			return
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	a.url = srv.URL
	return a
}

func (a *authority) note(t *testing.T, id string) (models.Note, bool) {
	t.Helper()
	notes, err := a.repo.List(context.Background())
	require.NoError(t, err)
	for _, n := range notes {
		if n.ID == id {
			return n, true
		}
	}
	return models.Note{}, false
}

// device — один профиль клиента со своей локальной базой.
type device struct {
	dir       string
	authority *authority
}

func newDevice(t *testing.T, a *authority) *device {
	return &device{dir: t.TempDir(), authority: a}
}

func (d *device) args(args ...string) []string {
	return append(args,
		"--server", d.authority.url,
		"--db", filepath.Join(d.dir, "notes.db"),
		"--profile", d.dir,
	)
}

func (d *device) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return d.runContext(t, context.Background(), &bytes.Buffer{}, args...)
}

func (d *device) runContext(t *testing.T, ctx context.Context, out interface {
	Write([]byte) (int, error)
	String() string
}, args ...string) (string, error) {
	t.Helper()
	cli := NewCLI(models.NewAppBuildInfo("1.0.0", "", ""), WithLogger(logger.Nop()))
	cli.Root().SetOut(out)
	cli.Root().SetErr(out)

	err := cli.Run(ctx, d.args(args...))
	return out.String(), err
}

func (d *device) mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := d.run(t, args...)
	require.NoError(t, err, out)
	return out
}

// create создаёт заметку и возвращает её id.
func (d *device) create(t *testing.T, args ...string) (id, state string) {
	t.Helper()
	out := d.mustRun(t, append([]string{"create"}, args...)...)

	rest, ok := strings.CutPrefix(strings.TrimSpace(out), "note ")
	require.True(t, ok, out)
	id, state, ok = strings.Cut(rest, " created (")
	require.True(t, ok, out)
	return id, strings.TrimSuffix(state, ")")
}

// syncBuffer — потокобезопасный буфер для вывода watch.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

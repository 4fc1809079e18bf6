package server

import (
	"context"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-note-keeper/internal/config"
	"github.com/MKhiriev/go-note-keeper/internal/handler"
	"github.com/MKhiriev/go-note-keeper/internal/logger"
	"github.com/MKhiriev/go-note-keeper/internal/mock"
	"github.com/MKhiriev/go-note-keeper/internal/service"
)

func newTestHandlers(t *testing.T) *handler.Handlers {
	t.Helper()
	ctrl := gomock.NewController(t)
	appInfo := mock.NewMockAppInfoService(ctrl)
	appInfo.EXPECT().GetAppVersion(gomock.Any()).Return("test").AnyTimes()

	h, err := handler.NewHandlers(
		&service.Services{AppInfoService: appInfo, AuthorityService: mock.NewMockAuthorityService(ctrl)},
		config.ServerHTTP{Address: "127.0.0.1:0"},
		logger.Nop(),
	)
	require.NoError(t, err)
	return h
}

func TestNewServer_Errors(t *testing.T) {
	_, err := NewServer(nil, config.ServerHTTP{Address: ":8080"}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(&handler.Handlers{}, config.ServerHTTP{Address: ":8080"}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)

	_, err = NewServer(newTestHandlers(t), config.ServerHTTP{}, logger.Nop())
	assert.ErrorIs(t, err, errNoServersAreCreated)
}

func TestServer_RunAndGracefulShutdown(t *testing.T) {
	srv, err := NewServer(newTestHandlers(t), config.ServerHTTP{Address: "127.0.0.1:0", RequestTimeout: time.Second}, logger.Nop())
	require.NoError(t, err)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := srv.(*server)
	s.listener = ln

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.run(ctx)
		close(done)
	}()

	url := "http://" + ln.Addr().String() + "/version"
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return resp.StatusCode == http.StatusOK && string(body) == "test"
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}

	_, err = http.Get(url)
	assert.Error(t, err)
}

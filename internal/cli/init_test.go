package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"typhoondash/internal/config"
	applog "typhoondash/internal/log"
)

type fakeServer struct {
	stop        chan struct{}
	listenErr   error
	shutdownErr error
	shutdowns   int
}

func newFakeServer() *fakeServer { return &fakeServer{stop: make(chan struct{})} }

func (s *fakeServer) ListenAndServe() error {
	if s.listenErr != nil {
		return s.listenErr
	}
	<-s.stop
	return http.ErrServerClosed
}

func (s *fakeServer) Shutdown(context.Context) error {
	s.shutdowns++
	close(s.stop)
	return s.shutdownErr
}

func quietLogger() *applog.Logger {
	return applog.New(applog.Config{Output: io.Discard})
}

func TestServe_ShutsDownOnCancel(t *testing.T) {
	srv := newFakeServer()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, Serve(ctx, quietLogger(), srv, time.Second))
	assert.Equal(t, 1, srv.shutdowns)
}

func TestServe_ListenError(t *testing.T) {
	srv := newFakeServer()
	srv.listenErr = errors.New("address already in use")

	err := Serve(context.Background(), quietLogger(), srv, time.Second)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "address already in use")
	assert.Zero(t, srv.shutdowns)
}

func TestServe_ShutdownError(t *testing.T) {
	srv := newFakeServer()
	srv.shutdownErr = context.DeadlineExceeded
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Serve(ctx, quietLogger(), srv, time.Second)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestSetupLogger(t *testing.T) {
	t.Cleanup(func() { slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil))) })

	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"})
	assert.True(t, logger.Enabled(context.Background(), slog.LevelDebug))
	assert.Equal(t, applog.ComponentApp, logger.Component())
}

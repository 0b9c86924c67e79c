package httpserver_test

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/httpserver"
)

func listen(t *testing.T) net.Listener {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	return ln
}

func waitReady(t *testing.T, url string) {
	t.Helper()
	require.Eventually(t, func() bool {
		resp, err := http.Get(url)
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)
}

func TestServer_Serve(t *testing.T) {
	t.Parallel()

	t.Run("stops on context cancel and runs hooks", func(t *testing.T) {
		t.Parallel()
		ln := listen(t)
		var hooked atomic.Bool
		srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second},
			httpserver.WithShutdownHook("drain", func(context.Context) error {
				hooked.Store(true)
				return nil
			}),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNoContent)
			}))
		}()

		waitReady(t, "http://"+ln.Addr().String())
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(3 * time.Second):
			require.Fail(t, "server did not stop")
		}
		assert.True(t, hooked.Load())
	})

	t.Run("hook error is reported", func(t *testing.T) {
		t.Parallel()
		ln := listen(t)
		boom := errors.New("drain timed out")
		srv := httpserver.New(httpserver.Config{ShutdownTimeout: time.Second},
			httpserver.WithShutdownHook("drain", func(context.Context) error { return boom }),
		)

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() { done <- srv.Serve(ctx, ln, nil) }()

		waitReady(t, "http://"+ln.Addr().String())
		cancel()

		err := <-done
		assert.ErrorIs(t, err, httpserver.ErrShutdown)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("in-flight request completes", func(t *testing.T) {
		t.Parallel()
		ln := listen(t)
		srv := httpserver.New(httpserver.Config{ShutdownTimeout: 2 * time.Second})

		started := make(chan struct{})
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan error, 1)
		go func() {
			done <- srv.Serve(ctx, ln, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path == "/slow" {
					close(started)
					time.Sleep(200 * time.Millisecond)
				}
				w.WriteHeader(http.StatusOK)
			}))
		}()
		waitReady(t, "http://"+ln.Addr().String())

		status := make(chan int, 1)
		go func() {
			resp, err := http.Get("http://" + ln.Addr().String() + "/slow")
			if err != nil {
				status <- 0
				return
			}
			_ = resp.Body.Close()
			status <- resp.StatusCode
		}()

		<-started
		cancel()
		assert.Equal(t, http.StatusOK, <-status)
		assert.NoError(t, <-done)
	})
}

func TestServer_Run_BadAddr(t *testing.T) {
	t.Parallel()
	srv := httpserver.New(httpserver.Config{Addr: "256.0.0.1:-1"})
	err := srv.Run(context.Background(), nil)
	assert.ErrorIs(t, err, httpserver.ErrStart)
}

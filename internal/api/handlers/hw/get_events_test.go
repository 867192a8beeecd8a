package hw_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/hw-bridge/internal/api"
	"github/chapool/hw-bridge/internal/test"
)

func TestGetEventsStreamsLifecycle(t *testing.T) {
	test.WithTestServer(t, func(s *api.Server) {
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()

		req := httptest.NewRequest("GET", "/api/v1/hw/events", nil).WithContext(ctx)
		res := httptest.NewRecorder()

		done := make(chan struct{})
		go func() {
			defer close(done)
			s.Echo.ServeHTTP(res, req)
		}()

		// Let the handler attach its subscription before producing events.
		time.Sleep(100 * time.Millisecond)

		_, err := s.HW.Scan(context.Background())
		require.NoError(t, err)
		_, err = s.HW.Connect(context.Background(), "demo-0")
		require.NoError(t, err)
		require.NoError(t, s.HW.Disconnect(context.Background(), "demo-0"))

		// Give the handler a moment to flush, then end the stream.
		time.Sleep(100 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("event stream handler did not terminate")
		}

		require.Equal(t, http.StatusOK, res.Result().StatusCode)
		assert.Equal(t, "text/event-stream", res.Header().Get("Content-Type"))

		body := res.Body.String()
		assert.Contains(t, body, "event: device_connected")
		assert.Contains(t, body, "event: device_disconnected")
		assert.Contains(t, body, `"deviceId":"demo-0"`)
	})
}

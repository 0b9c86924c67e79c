package notify_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/webhook"
	"github.com/dmitrymomot/churchbilling/svc/notify"
)

func TestFunctionMailer_Send(t *testing.T) {
	t.Parallel()

	t.Run("posts notification json", func(t *testing.T) {
		t.Parallel()
		var (
			body   map[string]any
			auth   string
			verify error
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, _ := io.ReadAll(r.Body)
			auth = r.Header.Get("Authorization")
			verify = webhook.Verify("s3cret", raw, r.Header, time.Minute, time.Now())
			_ = json.Unmarshal(raw, &body)
		}))
		t.Cleanup(srv.Close)

		m, err := notify.NewFunctionMailer(notify.Config{
			FunctionURL:   srv.URL,
			FunctionKey:   "anon-key",
			SigningSecret: "s3cret",
			Timeout:       time.Second,
		})
		require.NoError(t, err)

		require.NoError(t, m.Send(context.Background(), billing.Notification{
			Type:        billing.IntentChurchSuspended,
			To:          "pastor@grace.org",
			ChurchName:  "Grace Church",
			OwnerName:   "Ana",
			DaysOverdue: days(8),
		}))

		assert.NoError(t, verify)
		assert.Equal(t, "Bearer anon-key", auth)
		assert.Equal(t, map[string]any{
			"type":        "church_suspended",
			"to":          "pastor@grace.org",
			"churchName":  "Grace Church",
			"ownerName":   "Ana",
			"daysOverdue": float64(8),
		}, body)
	})

	t.Run("failure is returned and breaker opens", func(t *testing.T) {
		t.Parallel()
		var calls atomic.Int32
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
			w.WriteHeader(http.StatusInternalServerError)
		}))
		t.Cleanup(srv.Close)

		m, err := notify.NewFunctionMailer(notify.Config{
			FunctionURL:      srv.URL,
			FailureThreshold: 1,
			RecoveryTimeout:  time.Hour,
		})
		require.NoError(t, err)

		n := billing.Notification{Type: billing.IntentSubscriptionCancelled, To: "pastor@grace.org"}
		err = m.Send(context.Background(), n)
		assert.ErrorIs(t, err, notify.ErrSendFailed)
		assert.ErrorIs(t, err, webhook.ErrDeliveryFailed)

		err = m.Send(context.Background(), n)
		assert.ErrorIs(t, err, webhook.ErrCircuitOpen)
		assert.Equal(t, int32(1), calls.Load())
	})
}

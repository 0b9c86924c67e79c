package webhook_test

import (
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/webhook"
)

func TestSignAndVerify(t *testing.T) {
	t.Parallel()

	payload := []byte(`{"type":"payment_confirmed"}`)
	at := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	sign := func(t *testing.T) http.Header {
		t.Helper()
		sig, err := webhook.Sign("secret", payload, at)
		require.NoError(t, err)
		h := make(http.Header)
		sig.Apply(h)
		return h
	}

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()
		h := sign(t)
		assert.Equal(t, strconv.FormatInt(at.Unix(), 10), h.Get(webhook.TimestampHeader))
		assert.NotEmpty(t, h.Get(webhook.DeliveryHeader))
		assert.NoError(t, webhook.Verify("secret", payload, h, 5*time.Minute, at.Add(time.Minute)))
	})

	t.Run("wrong secret", func(t *testing.T) {
		t.Parallel()
		err := webhook.Verify("other", payload, sign(t), 0, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("tampered payload", func(t *testing.T) {
		t.Parallel()
		err := webhook.Verify("secret", []byte(`{"type":"church_suspended"}`), sign(t), 0, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("expired", func(t *testing.T) {
		t.Parallel()
		err := webhook.Verify("secret", payload, sign(t), 5*time.Minute, at.Add(6*time.Minute))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("from the future", func(t *testing.T) {
		t.Parallel()
		err := webhook.Verify("secret", payload, sign(t), 5*time.Minute, at.Add(-2*time.Minute))
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("missing headers", func(t *testing.T) {
		t.Parallel()
		err := webhook.Verify("secret", payload, make(http.Header), 0, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidSignature)
	})

	t.Run("empty secret or payload", func(t *testing.T) {
		t.Parallel()
		_, err := webhook.Sign("", payload, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidConfiguration)
		_, err = webhook.Sign("secret", nil, at)
		assert.ErrorIs(t, err, webhook.ErrInvalidPayload)
	})
}

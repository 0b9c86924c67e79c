package email_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/email"
)

func postmarkConfig() email.Config {
	return email.Config{
		PostmarkServerToken:  "server-token",
		PostmarkAccountToken: "account-token",
		SenderEmail:          "billing@churchbilling.app",
		SupportEmail:         "support@churchbilling.app",
	}
}

func TestNewPostmarkClient(t *testing.T) {
	t.Parallel()

	_, err := email.NewPostmarkClient(postmarkConfig())
	require.NoError(t, err)

	tests := []struct {
		name   string
		mutate func(*email.Config)
	}{
		{"missing server token", func(c *email.Config) { c.PostmarkServerToken = "" }},
		{"invalid sender", func(c *email.Config) { c.SenderEmail = "billing" }},
		{"invalid support", func(c *email.Config) { c.SupportEmail = "support@" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := postmarkConfig()
			tt.mutate(&cfg)
			_, err := email.NewPostmarkClient(cfg)
			assert.ErrorIs(t, err, email.ErrInvalidConfig)
			assert.Panics(t, func() { email.MustNewPostmarkClient(cfg) })
		})
	}

	t.Run("support email is optional", func(t *testing.T) {
		t.Parallel()
		cfg := postmarkConfig()
		cfg.SupportEmail = ""
		_, err := email.NewPostmarkClient(cfg)
		assert.NoError(t, err)
	})
}

func TestPostmarkClient_SendEmail(t *testing.T) {
	t.Parallel()

	t.Run("sends message", func(t *testing.T) {
		t.Parallel()
		var got map[string]any
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "server-token", r.Header.Get("X-Postmark-Server-Token"))
			raw, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(raw, &got)
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"To":"pastor@grace.org","MessageID":"m-1","ErrorCode":0,"Message":"OK"}`))
		}))
		defer srv.Close()

		client, err := email.NewPostmarkClient(postmarkConfig(), email.WithBaseURL(srv.URL))
		require.NoError(t, err)
		require.NoError(t, client.SendEmail(context.Background(), validParams()))

		assert.Equal(t, "billing@churchbilling.app", got["From"])
		assert.Equal(t, "support@churchbilling.app", got["ReplyTo"])
		assert.Equal(t, "pastor@grace.org", got["To"])
		assert.Equal(t, "payment_confirmed", got["Tag"])
	})

	t.Run("provider error code", func(t *testing.T) {
		t.Parallel()
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`{"ErrorCode":406,"Message":"Inactive recipient"}`))
		}))
		defer srv.Close()

		client, err := email.NewPostmarkClient(postmarkConfig(), email.WithBaseURL(srv.URL))
		require.NoError(t, err)
		assert.ErrorIs(t, client.SendEmail(context.Background(), validParams()), email.ErrFailedToSendEmail)
	})

	t.Run("validation runs before the request", func(t *testing.T) {
		t.Parallel()
		client, err := email.NewPostmarkClient(postmarkConfig(), email.WithBaseURL("http://127.0.0.1:1"))
		require.NoError(t, err)
		p := validParams()
		p.Subject = ""
		assert.ErrorIs(t, client.SendEmail(context.Background(), p), email.ErrInvalidParams)
	})
}

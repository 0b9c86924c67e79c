package notify_test

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
	"github.com/dmitrymomot/churchbilling/pkg/email"
	"github.com/dmitrymomot/churchbilling/pkg/email/templates"
	"github.com/dmitrymomot/churchbilling/svc/notify"
)

type captureSender struct {
	mu   sync.Mutex
	sent []email.SendEmailParams
	err  error
}

func (c *captureSender) SendEmail(_ context.Context, p email.SendEmailParams) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.sent = append(c.sent, p)
	return nil
}

func (c *captureSender) last(t *testing.T) email.SendEmailParams {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.sent)
	return c.sent[len(c.sent)-1]
}

func days(n int) *int { return &n }

func TestNewEmailMailer_Panics(t *testing.T) {
	t.Parallel()
	assert.PanicsWithValue(t, "notify: EmailSender is required", func() {
		notify.NewEmailMailer(nil)
	})
}

func TestEmailMailer_Send(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	t.Run("payment confirmed", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s, notify.WithSupportEmail("help@churchbilling.io"))

		err := m.Send(ctx, billing.Notification{
			Type:       billing.IntentPaymentConfirmed,
			To:         "pastor@grace.org",
			ChurchName: "Grace Church",
			OwnerName:  "Ana",
			PlanName:   "gold",
		})
		require.NoError(t, err)

		p := s.last(t)
		assert.Equal(t, "pastor@grace.org", p.SendTo)
		assert.Equal(t, "Payment confirmed for Grace Church", p.Subject)
		assert.Equal(t, "payment_confirmed", p.Tag)
		assert.Contains(t, p.BodyHTML, "<p>Hi Ana,</p>")
		assert.Contains(t, p.BodyHTML, "Your Gold plan is active.")
		assert.Contains(t, p.BodyText, "Your Gold plan is active.")
		assert.Contains(t, p.BodyText, "help@churchbilling.io")
	})

	t.Run("first overdue reminder", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:        billing.IntentPaymentOverdue,
			To:          "pastor@grace.org",
			ChurchName:  "Grace Church",
			DaysOverdue: days(0),
		}))

		p := s.last(t)
		assert.Equal(t, "Payment overdue for Grace Church", p.Subject)
		assert.Contains(t, p.BodyText, "Hi,")
		assert.Contains(t, p.BodyText, "is overdue.")
		assert.Contains(t, p.BodyText, "suspended after 7 days")
		assert.NotContains(t, p.BodyText, "Questions?")
	})

	t.Run("overdue after suspension", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:        billing.IntentPaymentOverdue,
			To:          "pastor@grace.org",
			ChurchName:  "Grace Church",
			DaysOverdue: days(9),
		}))
		assert.Contains(t, s.last(t).BodyText, "is 9 days overdue")
		assert.Contains(t, s.last(t).BodyText, "stay suspended")
	})

	t.Run("church suspended", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:        billing.IntentChurchSuspended,
			To:          "pastor@grace.org",
			ChurchName:  "Grace Church",
			DaysOverdue: days(7),
		}))
		p := s.last(t)
		assert.Equal(t, "Grace Church has been suspended", p.Subject)
		assert.Contains(t, p.BodyText, "7 days overdue")
	})

	t.Run("subscription cancelled", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:       billing.IntentSubscriptionCancelled,
			To:         "pastor@grace.org",
			ChurchName: "Grace Church",
		}))
		assert.Contains(t, s.last(t).BodyText, "moved to the Free plan")
	})

	t.Run("escapes html", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:       billing.IntentSubscriptionCancelled,
			To:         "pastor@grace.org",
			ChurchName: "<script>alert(1)</script>",
		}))
		html := s.last(t).BodyHTML
		assert.NotContains(t, html, "<script>")
		assert.Contains(t, html, "&lt;script&gt;")
	})

	t.Run("custom template", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		var got notify.EmailParams
		m := notify.NewEmailMailer(s, notify.WithTemplate(func(p notify.EmailParams) templ.Component {
			got = p
			return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
				_, err := io.WriteString(w, "<h1>"+templ.EscapeString(p.Subject)+"</h1>")
				return err
			})
		}))

		require.NoError(t, m.Send(ctx, billing.Notification{
			Type:        billing.IntentChurchSuspended,
			To:          "pastor@grace.org",
			ChurchName:  "Grace Church",
			DaysOverdue: days(7),
		}))
		assert.Equal(t, "<h1>Grace Church has been suspended</h1>", s.last(t).BodyHTML)
		assert.Equal(t, "Grace Church has been suspended", got.Subject)
		assert.Equal(t, "Hi,", got.Greeting)
		assert.Len(t, got.Paragraphs, 2)
	})

	t.Run("unknown type", func(t *testing.T) {
		t.Parallel()
		s := &captureSender{}
		m := notify.NewEmailMailer(s)

		err := m.Send(ctx, billing.Notification{Type: "welcome", To: "pastor@grace.org"})
		assert.ErrorIs(t, err, notify.ErrUnknownNotification)
		assert.Empty(t, s.sent)
	})

	t.Run("sender error", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("postmark down")
		m := notify.NewEmailMailer(&captureSender{err: boom})

		err := m.Send(ctx, billing.Notification{
			Type:       billing.IntentSubscriptionCancelled,
			To:         "pastor@grace.org",
			ChurchName: "Grace Church",
		})
		assert.ErrorIs(t, err, notify.ErrSendFailed)
		assert.ErrorIs(t, err, boom)
	})
}

func TestDefaultTemplate(t *testing.T) {
	t.Parallel()

	html, err := templates.Render(context.Background(), notify.DefaultTemplate(notify.EmailParams{
		Subject:    "Payment overdue for Grace & Hope",
		Greeting:   "Hi Ana,",
		Paragraphs: []string{"First.", "Second <b>bold</b>."},
		Footer:     "Questions?",
	}))
	require.NoError(t, err)

	assert.Contains(t, html, "<title>Payment overdue for Grace &amp; Hope</title>")
	assert.Contains(t, html, "<p>Hi Ana,</p><p>First.</p><p>Second &lt;b&gt;bold&lt;/b&gt;.</p>")
	assert.Contains(t, html, `<p style="color:#7b8794;font-size:12px">Questions?</p></body></html>`)

	html, err = templates.Render(context.Background(), notify.DefaultTemplate(notify.EmailParams{Greeting: "Hi,"}))
	require.NoError(t, err)
	assert.NotContains(t, html, "style=\"color")
}

func TestNew(t *testing.T) {
	t.Parallel()

	m, err := notify.New(notify.Config{Mode: notify.ModeEmail}, &captureSender{})
	require.NoError(t, err)
	assert.IsType(t, &notify.EmailMailer{}, m)

	_, err = notify.New(notify.Config{Mode: notify.ModeEmail}, nil)
	assert.ErrorIs(t, err, notify.ErrInvalidConfig)

	m, err = notify.New(notify.Config{Mode: notify.ModeFunction, FunctionURL: "https://fn.example.com/send"}, nil)
	require.NoError(t, err)
	assert.IsType(t, &notify.FunctionMailer{}, m)

	_, err = notify.New(notify.Config{Mode: notify.ModeFunction, FunctionURL: "ftp://fn.example.com"}, nil)
	assert.ErrorIs(t, err, notify.ErrInvalidConfig)
}

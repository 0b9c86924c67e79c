package notify

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/churchbilling/pkg/billing"
)

// EmailParams is the content of one notification, independent of its layout.
type EmailParams struct {
	Subject    string
	Greeting   string
	Paragraphs []string
	Footer     string
}

var graceDays = int(billing.GracePeriod / (24 * time.Hour))

func buildMessage(n billing.Notification, catalog *Catalog, supportEmail string) (EmailParams, error) {
	church := strings.TrimSpace(n.ChurchName)
	if church == "" {
		church = "your church"
	}
	m := EmailParams{Greeting: greeting(n.OwnerName)}

	switch n.Type {
	case billing.IntentPaymentConfirmed:
		plan := catalog.PlanName(n.PlanName)
		m.Subject = fmt.Sprintf("Payment confirmed for %s", church)
		m.Paragraphs = []string{fmt.Sprintf("We received the payment for %s. Thank you!", church)}
		if plan != "" {
			m.Paragraphs = append(m.Paragraphs, fmt.Sprintf("Your %s plan is active.", plan))
			if s := catalog.Summary(n.PlanName); s != "" {
				m.Paragraphs = append(m.Paragraphs, s)
			}
		}

	case billing.IntentPaymentOverdue:
		days := daysOf(n)
		m.Subject = fmt.Sprintf("Payment overdue for %s", church)
		if days == 0 {
			m.Paragraphs = []string{fmt.Sprintf("The latest payment for %s is overdue.", church)}
		} else {
			m.Paragraphs = []string{fmt.Sprintf("The latest payment for %s is %s overdue.", church, pluralDays(days))}
		}
		if days < graceDays {
			m.Paragraphs = append(m.Paragraphs, fmt.Sprintf(
				"Please settle it soon. The site and admin panel are suspended after %s without payment.",
				pluralDays(graceDays)))
		} else {
			m.Paragraphs = append(m.Paragraphs, "The site and admin panel stay suspended until the payment is confirmed.")
		}

	case billing.IntentChurchSuspended:
		m.Subject = fmt.Sprintf("%s has been suspended", church)
		m.Paragraphs = []string{
			fmt.Sprintf("The payment for %s is %s overdue, so the site and admin panel were suspended.", church, pluralDays(daysOf(n))),
			"Everything is restored automatically as soon as the payment is confirmed.",
		}

	case billing.IntentSubscriptionCancelled:
		m.Subject = fmt.Sprintf("Subscription cancelled for %s", church)
		m.Paragraphs = []string{
			fmt.Sprintf("The subscription for %s was cancelled and the church moved to the %s plan.", church, catalog.PlanName(string(billing.PlanFree))),
			"You can subscribe again at any time from the admin panel.",
		}

	default:
		return EmailParams{}, fmt.Errorf("%w: %q", ErrUnknownNotification, n.Type)
	}

	if supportEmail != "" {
		m.Footer = fmt.Sprintf("Questions? Reply to this email or write to %s.", supportEmail)
	}
	return m, nil
}

func greeting(name string) string {
	if name = strings.TrimSpace(name); name != "" {
		return fmt.Sprintf("Hi %s,", name)
	}
	return "Hi,"
}

func daysOf(n billing.Notification) int {
	if n.DaysOverdue == nil || *n.DaysOverdue < 0 {
		return 0
	}
	return *n.DaysOverdue
}

func pluralDays(n int) string {
	if n == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", n)
}

// Text returns the plain text body.
func (m EmailParams) Text() string {
	parts := make([]string, 0, len(m.Paragraphs)+2)
	parts = append(parts, m.Greeting)
	parts = append(parts, m.Paragraphs...)
	if m.Footer != "" {
		parts = append(parts, m.Footer)
	}
	return strings.Join(parts, "\n\n") + "\n"
}

// DefaultTemplate is the built-in HTML layout. WithTemplate replaces it, for
// example with a component generated from a .templ file.
func DefaultTemplate(p EmailParams) templ.Component {
	body := make([]templ.Component, 0, len(p.Paragraphs)+2)
	body = append(body, paragraph(p.Greeting, ""))
	for _, text := range p.Paragraphs {
		body = append(body, paragraph(text, ""))
	}
	if p.Footer != "" {
		body = append(body, paragraph(p.Footer, footerStyle))
	}
	return layout(p.Subject, body...)
}

const (
	bodyStyle   = "font-family:sans-serif;line-height:1.5;color:#1f2933"
	footerStyle = "color:#7b8794;font-size:12px"
)

func layout(title string, body ...templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		head := `<!DOCTYPE html><html><head><meta charset="utf-8"><title>` + templ.EscapeString(title) +
			`</title></head><body style="` + bodyStyle + `">`
		if _, err := io.WriteString(w, head); err != nil {
			return err
		}
		for _, c := range body {
			if err := c.Render(ctx, w); err != nil {
				return err
			}
		}
		_, err := io.WriteString(w, `</body></html>`)
		return err
	})
}

func paragraph(text, style string) templ.Component {
	return templ.ComponentFunc(func(_ context.Context, w io.Writer) error {
		open := `<p>`
		if style != "" {
			open = `<p style="` + style + `">`
		}
		_, err := io.WriteString(w, open+templ.EscapeString(text)+`</p>`)
		return err
	})
}

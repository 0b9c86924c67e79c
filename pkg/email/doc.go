// Package email sends transactional email through a provider-agnostic EmailSender.
//
// Two senders are available:
//   - NewPostmarkClient delivers through the Postmark API (mrz1836/postmark).
//   - NewDevSender writes each message as .html and .json files for local inspection.
//
// New picks between them from Config: Postmark when POSTMARK_SERVER_TOKEN is set,
// otherwise the dev sender in EMAIL_DEV_DIR.
//
// Every sender validates SendEmailParams first; invalid messages fail with
// ErrInvalidParams and provider failures with ErrFailedToSendEmail.
//
//	sender, err := email.New(cfg)
//	if err != nil {
//		return err
//	}
//	err = sender.SendEmail(ctx, email.SendEmailParams{
//		SendTo:   "pastor@grace.org",
//		Subject:  "Payment confirmed",
//		BodyHTML: html,
//		Tag:      "payment_confirmed",
//	})
//
// Bodies are usually rendered from templ components with templates.Render.
package email

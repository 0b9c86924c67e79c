// Package notify delivers billing notifications to church owners.
//
// Two billing.Mailer implementations are provided:
//
//   - EmailMailer renders the message with templ and sends it through an
//     email.EmailSender (Postmark in production, files on disk in development).
//     Plan display names come from an embedded YAML catalog.
//   - FunctionMailer posts the raw notification JSON to an HTTP mail function,
//     optionally signed, with one attempt per call behind a circuit breaker.
//
// New picks one according to Config.Mode ("email" or "function").
package notify

package email

// Config holds outbound email configuration.
// Postmark tokens are optional so that development can run with DevDir set
// and no provider account.
type Config struct {
	PostmarkServerToken  string `env:"POSTMARK_SERVER_TOKEN"`
	PostmarkAccountToken string `env:"POSTMARK_ACCOUNT_TOKEN"`
	SenderEmail          string `env:"SENDER_EMAIL,required"`
	SupportEmail         string `env:"SUPPORT_EMAIL"`
	DevDir               string `env:"EMAIL_DEV_DIR"`
}

// UsePostmark reports whether the config carries Postmark credentials.
func (c Config) UsePostmark() bool {
	return c.PostmarkServerToken != ""
}

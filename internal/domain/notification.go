package domain

type EmailSettings struct {
	Enabled  bool
	SMTPHost string
	SMTPPort int
	Username string
	Password string
	From     string
	To       []string
}

type WebhookSettings struct {
	Enabled bool
	URLs    []string
	Secret  string // HMAC secret, empty = unsigned
}

// NotificationSettings groups the channel configurations. Channels are
// independent; a disabled channel is skipped entirely.
type NotificationSettings struct {
	Email    EmailSettings
	Webhooks WebhookSettings
}

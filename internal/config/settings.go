package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/schemadoc/schemadoc/internal/domain"
)

// Settings is the on-disk shape of the schemadoc settings file: the
// notification channels and the monitored databases. Unlike the
// environment-driven Config, settings are editable while the service
// runs and written back to disk on every update.
type Settings struct {
	Email      EmailSettings      `json:"email"`
	Webhooks   WebhookSettings    `json:"webhooks"`
	Monitoring MonitoringSettings `json:"monitoring"`
}

// EmailSettings configures the SMTP notification channel.
type EmailSettings struct {
	Enabled  bool     `json:"enabled"`
	SMTPHost string   `json:"smtp_host"`
	SMTPPort int      `json:"smtp_port"`
	Username string   `json:"username"`
	Password string   `json:"password"`
	From     string   `json:"from"`
	To       []string `json:"to"`
}

// WebhookSettings configures the webhook notification channel.
type WebhookSettings struct {
	Enabled bool     `json:"enabled"`
	URLs    []string `json:"urls"`
	Secret  string   `json:"secret"`
}

// MonitoringSettings configures the schema drift monitor.
type MonitoringSettings struct {
	Enabled         bool             `json:"enabled"`
	IntervalMinutes int              `json:"interval_minutes"`
	Targets         []TargetSettings `json:"targets"`
}

// TargetSettings identifies one monitored database and how to reach
// it. Auth is one of "credentials", "interactive" or
// "service_principal"; the credential fields that apply depend on it.
type TargetSettings struct {
	Database               string `json:"database"`
	ConnectionID           string `json:"connection_id"`
	Auth                   string `json:"auth"`
	Server                 string `json:"server"`
	Port                   int    `json:"port,omitempty"`
	Username               string `json:"username,omitempty"`
	Password               string `json:"password,omitempty"`
	ClientID               string `json:"client_id,omitempty"`
	ClientSecret           string `json:"client_secret,omitempty"`
	TenantID               string `json:"tenant_id,omitempty"`
	TrustServerCertificate bool   `json:"trust_server_certificate,omitempty"`
}

// DefaultSettings returns the settings used when no file exists:
// every channel disabled and nothing monitored.
func DefaultSettings() Settings {
	return Settings{
		Monitoring: MonitoringSettings{IntervalMinutes: 30},
	}
}

// LoadSettings reads the settings file at path. A missing file is not
// an error; it yields DefaultSettings.
func LoadSettings(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("read settings %s: %w", path, err)
	}

	// Unmarshal over the defaults so keys absent from the file keep
	// their default values.
	s := DefaultSettings()
	if err := json.Unmarshal(data, &s); err != nil {
		return Settings{}, fmt.Errorf("parse settings %s: %w", path, err)
	}
	return s, nil
}

// Save writes the settings to path atomically: the JSON goes to a temp
// file in the same directory which is then renamed over the target, so
// a crash mid-write cannot truncate the previous version.
func (s Settings) Save(path string) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode settings: %w", err)
	}
	data = append(data, '\n')

	tmp, err := os.CreateTemp(filepath.Dir(path), ".settings-*.json")
	if err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}
	return nil
}

// Notifications converts the channel blocks to their domain form.
func (s Settings) Notifications() domain.NotificationSettings {
	return domain.NotificationSettings{
		Email: domain.EmailSettings{
			Enabled:  s.Email.Enabled,
			SMTPHost: s.Email.SMTPHost,
			SMTPPort: s.Email.SMTPPort,
			Username: s.Email.Username,
			Password: s.Email.Password,
			From:     s.Email.From,
			To:       s.Email.To,
		},
		Webhooks: domain.WebhookSettings{
			Enabled: s.Webhooks.Enabled,
			URLs:    s.Webhooks.URLs,
			Secret:  s.Webhooks.Secret,
		},
	}
}

// SettingsFile owns the settings file on disk and serializes updates
// to it. Notification updates replace only the channel blocks; the
// monitoring block survives untouched.
type SettingsFile struct {
	path string

	mu  sync.Mutex
	cur Settings
}

// OpenSettingsFile loads path (or defaults when it does not exist) and
// returns a handle for later updates.
func OpenSettingsFile(path string) (*SettingsFile, error) {
	s, err := LoadSettings(path)
	if err != nil {
		return nil, err
	}
	return &SettingsFile{path: path, cur: s}, nil
}

// Path returns the file location.
func (f *SettingsFile) Path() string { return f.path }

// Settings returns the last loaded or saved settings.
func (f *SettingsFile) Settings() Settings {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cur
}

// SaveNotifications replaces the email and webhook blocks and writes
// the file back. The in-memory copy only advances if the write
// succeeded.
func (f *SettingsFile) SaveNotifications(n domain.NotificationSettings) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	next := f.cur
	next.Email = EmailSettings{
		Enabled:  n.Email.Enabled,
		SMTPHost: n.Email.SMTPHost,
		SMTPPort: n.Email.SMTPPort,
		Username: n.Email.Username,
		Password: n.Email.Password,
		From:     n.Email.From,
		To:       n.Email.To,
	}
	next.Webhooks = WebhookSettings{
		Enabled: n.Webhooks.Enabled,
		URLs:    n.Webhooks.URLs,
		Secret:  n.Webhooks.Secret,
	}
	if err := next.Save(f.path); err != nil {
		return err
	}
	f.cur = next
	return nil
}

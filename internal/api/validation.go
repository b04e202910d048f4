package api

import (
	"fmt"
	"net/mail"
	"net/url"

	"github.com/schemadoc/schemadoc/internal/schedule"
)

func validateCreateJob(req CreateJobRequest) error {
	if req.Name == "" {
		return fmt.Errorf("name is required")
	}

	if req.Type == "" {
		return fmt.Errorf("type is required")
	}

	if req.Schedule == "" {
		return fmt.Errorf("schedule is required")
	}
	if _, err := schedule.Parse(req.Schedule); err != nil {
		return fmt.Errorf("invalid schedule: %w", err)
	}

	return nil
}

// validateNotificationConfig checks a PUT body. Disabled channels are
// accepted as-is so partial configuration can be saved; only enabled
// channels must be complete.
func validateNotificationConfig(cfg NotificationConfig) error {
	if cfg.Email.Enabled {
		if cfg.Email.SMTPHost == "" {
			return fmt.Errorf("email.smtp_host is required when email is enabled")
		}
		if cfg.Email.SMTPPort < 1 || cfg.Email.SMTPPort > 65535 {
			return fmt.Errorf("email.smtp_port must be between 1 and 65535")
		}
		if err := validateMailAddress(cfg.Email.From); err != nil {
			return fmt.Errorf("invalid email.from: %w", err)
		}
		if len(cfg.Email.To) == 0 {
			return fmt.Errorf("email.to must have at least one recipient when email is enabled")
		}
		for _, to := range cfg.Email.To {
			if err := validateMailAddress(to); err != nil {
				return fmt.Errorf("invalid email.to entry %q: %w", to, err)
			}
		}
	}

	if cfg.Webhooks.Enabled {
		if len(cfg.Webhooks.URLs) == 0 {
			return fmt.Errorf("webhooks.urls must have at least one entry when webhooks are enabled")
		}
		for _, u := range cfg.Webhooks.URLs {
			if err := validateWebhookURL(u); err != nil {
				return fmt.Errorf("invalid webhooks.urls entry %q: %w", u, err)
			}
		}
	}

	return nil
}

func validateMailAddress(addr string) error {
	if addr == "" {
		return fmt.Errorf("address is empty")
	}
	_, err := mail.ParseAddress(addr)
	return err
}

func validateWebhookURL(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return err
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("scheme must be http or https")
	}
	if u.Host == "" {
		return fmt.Errorf("host is required")
	}
	return nil
}

// Package notify delivers job and monitor events over the configured
// notification channels. Delivery is synchronous and best-effort: every
// enabled channel is attempted on every dispatch, failures are logged
// and dropped, and there are no retries.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/schemadoc/schemadoc/internal/domain"
	"github.com/schemadoc/schemadoc/internal/metrics"
)

// Channel label values reported to the metrics sink.
const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// WebhookSender posts one event payload to a single URL.
type WebhookSender interface {
	Send(ctx context.Context, req WebhookRequest) WebhookResult
}

// EmailSender delivers one message to a single recipient.
type EmailSender interface {
	Send(ctx context.Context, msg EmailMessage) error
}

// AnalyticsSink counts dispatched events for trend reporting. Sinks
// handle their own failures; recording never affects delivery.
type AnalyticsSink interface {
	Record(ctx context.Context, event domain.Event)
}

type WebhookRequest struct {
	URL        string
	Secret     string
	DeliveryID string
	Payload    WebhookPayload
}

// WebhookPayload is the wire shape posted to webhook receivers.
type WebhookPayload struct {
	Source    string         `json:"source"`
	Status    string         `json:"status"`
	Timestamp string         `json:"timestamp"`
	Payload   domain.Payload `json:"payload"`
}

type WebhookResult struct {
	StatusCode int
	Error      error
	Duration   time.Duration
}

func (r WebhookResult) IsSuccess() bool {
	return r.Error == nil && r.StatusCode >= 200 && r.StatusCode < 300
}

type EmailMessage struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	To       string
	Subject  string
	Body     string
}

// Dispatcher fans events out to the enabled channels. Channel settings
// are read under a lock, so they can be replaced at runtime while the
// scheduler and monitor loops keep dispatching.
type Dispatcher struct {
	email     EmailSender
	webhook   WebhookSender
	metrics   metrics.Sink
	analytics AnalyticsSink // optional, nil = disabled

	mu       sync.RWMutex
	settings domain.NotificationSettings
}

func New(settings domain.NotificationSettings, email EmailSender, webhook WebhookSender) *Dispatcher {
	return &Dispatcher{
		email:    email,
		webhook:  webhook,
		metrics:  metrics.NewNoopSink(),
		settings: settings,
	}
}

// WithMetrics sets the metrics sink. Returns d for chaining.
func (d *Dispatcher) WithMetrics(sink metrics.Sink) *Dispatcher {
	d.metrics = sink
	return d
}

// WithAnalytics sets the analytics sink. Returns d for chaining.
func (d *Dispatcher) WithAnalytics(sink AnalyticsSink) *Dispatcher {
	d.analytics = sink
	return d
}

// UpdateSettings replaces the channel configuration. A dispatch already
// in flight keeps the settings it started with.
func (d *Dispatcher) UpdateSettings(settings domain.NotificationSettings) {
	d.mu.Lock()
	d.settings = settings
	d.mu.Unlock()
}

// Settings returns the current channel configuration.
func (d *Dispatcher) Settings() domain.NotificationSettings {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.settings
}

// Dispatch delivers event over every enabled channel. Failures are
// logged and counted, never returned: notification must not disturb
// the loop that raised the event.
func (d *Dispatcher) Dispatch(ctx context.Context, event domain.Event) {
	settings := d.Settings()

	// Analytics counts every event, independent of channel outcomes.
	if d.analytics != nil {
		d.analytics.Record(ctx, event)
	}

	if settings.Email.Enabled {
		d.sendEmails(ctx, settings.Email, event)
	}
	if settings.Webhooks.Enabled {
		d.sendWebhooks(ctx, settings.Webhooks, event)
	}
}

// sendEmails delivers one message per configured recipient. A failing
// recipient never blocks the rest of the list.
func (d *Dispatcher) sendEmails(ctx context.Context, cfg domain.EmailSettings, event domain.Event) {
	subject := fmt.Sprintf("[schemadoc] %s - %s", event.Source, event.Status)
	body := emailBody(event)

	for _, to := range cfg.To {
		start := time.Now()
		err := d.email.Send(ctx, EmailMessage{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.Username,
			Password: cfg.Password,
			From:     cfg.From,
			To:       to,
			Subject:  subject,
			Body:     body,
		})
		if err != nil {
			log.Printf("notify: email to %s failed: %v", to, err)
			d.metrics.NotificationFailed(ChannelEmail)
			continue
		}
		log.Printf("notify: email sent to=%s source=%s delivery=%s", to, event.Source, event.ID)
		d.metrics.NotificationDelivered(ChannelEmail, time.Since(start))
	}
}

// sendWebhooks posts the event to every configured URL in order.
// Per-URL failures are logged and isolated.
func (d *Dispatcher) sendWebhooks(ctx context.Context, cfg domain.WebhookSettings, event domain.Event) {
	payload := WebhookPayload{
		Source:    event.Source,
		Status:    event.Status,
		Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
		Payload:   event.Payload,
	}

	for _, url := range cfg.URLs {
		result := d.webhook.Send(ctx, WebhookRequest{
			URL:        url,
			Secret:     cfg.Secret,
			DeliveryID: event.ID,
			Payload:    payload,
		})
		if !result.IsSuccess() {
			log.Printf("notify: webhook %s failed status=%d err=%v delivery=%s", url, result.StatusCode, result.Error, event.ID)
			d.metrics.NotificationFailed(ChannelWebhook)
			continue
		}
		log.Printf("notify: webhook delivered url=%s delivery=%s", url, event.ID)
		d.metrics.NotificationDelivered(ChannelWebhook, result.Duration)
	}
}

func emailBody(event domain.Event) string {
	var b strings.Builder
	b.WriteString("Schema Documentation Notification\n\n")
	fmt.Fprintf(&b, "Source: %s\n", event.Source)
	fmt.Fprintf(&b, "Status: %s\n", event.Status)
	fmt.Fprintf(&b, "Time: %s\n", event.Timestamp.Format(time.RFC3339))

	if !event.Payload.IsEmpty() {
		var pretty bytes.Buffer
		if err := json.Indent(&pretty, event.Payload, "", "  "); err == nil {
			b.WriteString("\nDetails:\n")
			b.Write(pretty.Bytes())
			b.WriteString("\n")
		}
	}
	return b.String()
}

package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/doyensec/safeurl"
	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"blogsupport/internal/security"
)

const embedTypeRich = "rich"

type WebhookConfig struct {
	URL           string
	Timeout       time.Duration
	SigningSecret string
}

type discordEmbed struct {
	Type        string  `json:"type"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Fields      []Field `json:"fields"`
}

type discordPayload struct {
	Embeds []discordEmbed `json:"embeds"`
}

// Webhook posts Discord-compatible embeds. Outbound connections go through an
// SSRF-guarded client and a circuit breaker.
type Webhook struct {
	cfg     WebhookConfig
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	log     zerolog.Logger
	now     func() time.Time
}

type WebhookOption func(*Webhook)

// WithHTTPClient replaces the guarded client.
func WithHTTPClient(client *http.Client) WebhookOption {
	return func(w *Webhook) { w.client = client }
}

func NewWebhook(cfg WebhookConfig, log zerolog.Logger, opts ...WebhookOption) *Webhook {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 5 * time.Second
	}

	guard := safeurl.GetConfigBuilder().
		SetTimeout(cfg.Timeout).
		SetAllowedSchemes("https", "http").
		SetAllowedPorts(80, 443).
		Build()

	w := &Webhook{
		cfg:    cfg,
		client: safeurl.Client(guard).Client,
		log:    log,
		now:    time.Now,
	}
	w.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "notify-webhook",
		MaxRequests: 1,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("circuit breaker state changed")
		},
	})

	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Webhook) Notify(ctx context.Context, msg Message) error {
	body, err := json.Marshal(discordPayload{Embeds: []discordEmbed{{
		Type:        embedTypeRich,
		Title:       msg.Title,
		Description: msg.Description,
		Fields:      msg.Fields,
	}}})
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}

	_, err = w.breaker.Execute(func() (interface{}, error) {
		return nil, w.post(ctx, msg.ID, body)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("webhook unavailable: %w", err)
	}
	return err
}

func (w *Webhook) post(ctx context.Context, eventID string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if eventID != "" {
		req.Header.Set(security.HeaderEventID, eventID)
	}
	if w.cfg.SigningSecret != "" {
		ts := w.now().Unix()
		req.Header.Set(security.HeaderTimestamp, strconv.FormatInt(ts, 10))
		req.Header.Set(security.HeaderSignature, security.SignPayload(w.cfg.SigningSecret, ts, body))
	}

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post webhook: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook responded %d", resp.StatusCode)
	}

	w.log.Debug().Str("event_id", eventID).Int("status", resp.StatusCode).Msg("webhook delivered")
	return nil
}

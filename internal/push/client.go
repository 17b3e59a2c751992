package push

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/user/taskloop/backend/internal/models"
)

// ErrSubscriptionGone signals that the push service reported the endpoint
// permanently removed. The caller deletes the subscription row.
var ErrSubscriptionGone = errors.New("push subscription gone")

// ErrNotConfigured is returned when sending is attempted without a complete
// VAPID key set.
var ErrNotConfigured = errors.New("push delivery not configured")

// Payload is the JSON document delivered to the browser, encrypted per the
// Web Push standard.
type Payload struct {
	Title string `json:"title"`
	Body  string `json:"body"`
	URL   string `json:"url,omitempty"`
	Tag   string `json:"tag,omitempty"`
}

// Config holds the VAPID credentials. All three fields are required to
// enable delivery.
type Config struct {
	VAPIDPublicKey  string
	VAPIDPrivateKey string
	Subject         string // contact mailto: or https: URL
}

// Client encrypts payloads against a subscription's keys and POSTs them to
// its endpoint.
type Client struct {
	config     Config
	httpClient *http.Client
}

func NewClient(config Config) *Client {
	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Enabled reports whether the client holds a complete VAPID configuration.
// A disabled client refuses sends truthfully instead of failing silently.
func (c *Client) Enabled() bool {
	return c.config.VAPIDPublicKey != "" && c.config.VAPIDPrivateKey != "" && c.config.Subject != ""
}

// PublicKey exposes the VAPID public key browsers need to subscribe.
func (c *Client) PublicKey() string {
	return c.config.VAPIDPublicKey
}

// Send delivers one payload to one subscription. A 404 or 410 from the push
// service means the browser dropped the subscription; that is surfaced as
// ErrSubscriptionGone so the registry can prune the row.
func (c *Client) Send(ctx context.Context, subscription *models.PushSubscription, payload Payload) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal push payload: %w", err)
	}

	resp, err := webpush.SendNotificationWithContext(ctx, body, &webpush.Subscription{
		Endpoint: subscription.Endpoint,
		Keys: webpush.Keys{
			P256dh: subscription.P256dh,
			Auth:   subscription.Auth,
		},
	}, &webpush.Options{
		HTTPClient:      c.httpClient,
		Subscriber:      c.config.Subject,
		VAPIDPublicKey:  c.config.VAPIDPublicKey,
		VAPIDPrivateKey: c.config.VAPIDPrivateKey,
		TTL:             60,
	})
	if err != nil {
		return fmt.Errorf("send push: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return ErrSubscriptionGone
	case resp.StatusCode >= 400:
		return fmt.Errorf("push service returned %s", resp.Status)
	}
	return nil
}

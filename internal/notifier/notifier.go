// Package notifier implements the fire-and-forget build webhook: a single
// HTTP POST to a configured URL carrying a bearer token, grounded on the
// teacher's BaseForge authenticated-request pattern (internal/forge/base_forge.go).
package notifier

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	apperrors "git.home.luguber.info/inful/pagesync/internal/apperrors"
	"git.home.luguber.info/inful/pagesync/internal/logfields"
	"git.home.luguber.info/inful/pagesync/internal/metrics"
)

// Notifier issues the build webhook. Failures are logged and never
// returned to callers, per spec.md §4.9/§7.
type Notifier interface {
	Notify(ctx context.Context)
}

// WebhookNotifier posts to a configured URL with an Authorization: Bearer
// header. A zero-value Secret omits the header's token but still sends it
// as "Bearer ", matching an unconfigured deployment.
type WebhookNotifier struct {
	url        string
	secret     string
	httpClient *http.Client
	metrics    *metrics.Metrics
	logger     *slog.Logger
}

// New returns a WebhookNotifier posting to url with the given bearer
// secret. m may be nil, in which case delivery failures are only logged.
func New(url, secret string, m *metrics.Metrics, logger *slog.Logger) *WebhookNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &WebhookNotifier{
		url:    url,
		secret: secret,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		metrics: m,
		logger:  logger,
	}
}

// Notify issues the POST. Success is any 2xx response; anything else,
// including a transport error, is logged and swallowed.
func (n *WebhookNotifier) Notify(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.url, nil)
	if err != nil {
		n.logFailure(apperrors.WrapError(err, apperrors.CategoryNotifierFailure, "notifier: build request failed"))
		return
	}
	req.Header.Set("Authorization", "Bearer "+n.secret)

	resp, err := n.httpClient.Do(req)
	if err != nil {
		n.logFailure(apperrors.WrapError(err, apperrors.CategoryNotifierFailure, "notifier: build webhook failed"))
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		n.logFailure(apperrors.NotifierFailureError("notifier: build webhook returned non-2xx").
			WithContext("status", resp.StatusCode))
		return
	}
	n.logger.Info("notifier: build webhook delivered", "url", n.url)
}

// logFailure builds the classified error, logs it, and records the metric.
// Delivery failures are never returned to callers (spec.md §4.9/§7).
func (n *WebhookNotifier) logFailure(b *apperrors.ErrorBuilder) {
	clsErr := b.WithContext("url", n.url).Build()
	n.logger.Warn(clsErr.Message(), logfields.Category(string(clsErr.Category())), logfields.Error(clsErr.Cause()))
	if n.metrics != nil {
		n.metrics.NotifierFailures.Inc()
	}
}

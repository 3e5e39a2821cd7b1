package notify

import (
	"context"
	"fmt"
	"net/http"

	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/httputil"
	"github.com/wonny/quorum/pkg/logger"
)

// Slack sends alerts to a Slack incoming webhook
type Slack struct {
	httpClient *httputil.Client
	webhookURL string
	logger     *logger.Logger
}

// NewSlack creates a Slack notifier. Returns nil when no webhook is
// configured; callers skip nil channels.
func NewSlack(cfg config.SlackConfig, log *logger.Logger) *Slack {
	if cfg.WebhookURL == "" {
		return nil
	}

	return &Slack{
		httpClient: httputil.New(log),
		webhookURL: cfg.WebhookURL,
		logger:     log,
	}
}

// Name returns the channel name
func (s *Slack) Name() string {
	return "slack"
}

// Send posts one message to the webhook
func (s *Slack) Send(ctx context.Context, text string) error {
	resp, err := s.httpClient.PostJSON(ctx, s.webhookURL, map[string]string{"text": text})
	if err != nil {
		return fmt.Errorf("slack send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack send: unexpected status %d", resp.StatusCode)
	}

	return nil
}

package notify

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/wonny/quorum/pkg/config"
	"github.com/wonny/quorum/pkg/httputil"
	"github.com/wonny/quorum/pkg/logger"
	"github.com/wonny/quorum/pkg/redis"
)

const telegramAPIBase = "https://api.telegram.org"

// Telegram sends alerts through the Telegram Bot API
type Telegram struct {
	httpClient *httputil.Client
	limiter    *redis.RateLimiter
	token      string
	chatID     string
	baseURL    string
	logger     *logger.Logger
}

// NewTelegram creates a Telegram notifier. Returns nil when no bot token is
// configured; callers skip nil channels.
func NewTelegram(cfg config.TelegramConfig, rdb *redis.Client, log *logger.Logger) *Telegram {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil
	}

	return &Telegram{
		httpClient: httputil.New(log),
		limiter:    redis.NewRateLimiter(rdb, "quorum"),
		token:      cfg.BotToken,
		chatID:     cfg.ChatID,
		baseURL:    telegramAPIBase,
		logger:     log,
	}
}

// WithBaseURL overrides the API base URL (tests)
func (t *Telegram) WithBaseURL(base string) *Telegram {
	t.baseURL = base
	return t
}

// Name returns the channel name
func (t *Telegram) Name() string {
	return "telegram"
}

// Send posts one message to the configured chat
func (t *Telegram) Send(ctx context.Context, text string) error {
	if err := t.limiter.Wait(ctx, redis.TelegramRateLimit); err != nil {
		return fmt.Errorf("telegram rate limit: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	form := url.Values{
		"chat_id": {t.chatID},
		"text":    {text},
	}

	resp, err := t.httpClient.PostForm(ctx, endpoint, form)
	if err != nil {
		return fmt.Errorf("telegram send: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram send: unexpected status %d", resp.StatusCode)
	}

	return nil
}

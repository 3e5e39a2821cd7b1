package notify

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/quorum/internal/contracts"
	"github.com/wonny/quorum/pkg/logger"
)

// Notifier delivers a short text alert to one channel
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Fanout sends each alert to every configured channel. Delivery is best
// effort; a failing channel is logged and never aborts the others.
// ⭐ SSOT: 알림 발송은 여기서만
type Fanout struct {
	notifiers []Notifier
	logger    *logger.Logger
}

// NewFanout creates a fanout over the given channels
func NewFanout(log *logger.Logger, notifiers ...Notifier) *Fanout {
	return &Fanout{
		notifiers: notifiers,
		logger:    log,
	}
}

// Enabled reports whether at least one channel is configured
func (f *Fanout) Enabled() bool {
	return len(f.notifiers) > 0
}

// Send delivers one alert to all channels
func (f *Fanout) Send(ctx context.Context, text string) {
	for _, n := range f.notifiers {
		if err := n.Send(ctx, text); err != nil {
			f.logger.WithFields(map[string]interface{}{
				"channel": n.Name(),
				"error":   err.Error(),
			}).Warn("Failed to send notification")
		}
	}
}

// NotifyDecision formats and sends a decision alert
func (f *Fanout) NotifyDecision(ctx context.Context, d *contracts.Decision) {
	if !f.Enabled() || d == nil {
		return
	}
	f.Send(ctx, FormatDecision(d))
}

// FormatDecision renders a decision as a plain-text alert message
func FormatDecision(d *contracts.Decision) string {
	var b strings.Builder

	emoji := "⏸"
	switch d.Action {
	case contracts.ActionBuy:
		emoji = "🟢"
	case contracts.ActionSell:
		emoji = "🔴"
	}

	fmt.Fprintf(&b, "%s %s %s (%s)\n", emoji, d.Action, d.Ticker, d.Market)
	fmt.Fprintf(&b, "종합 점수: %.3f\n", d.FinalScore)

	if d.Actionable() && d.Quantity > 0 {
		fmt.Fprintf(&b, "수량: %d", d.Quantity)
		if d.TargetPrice > 0 {
			fmt.Fprintf(&b, " @ %.0f", d.TargetPrice)
		}
		b.WriteString("\n")
		if d.StopLoss > 0 {
			fmt.Fprintf(&b, "손절: %.0f / 익절: %.0f\n", d.StopLoss, d.TakeProfit)
		}
	}

	if d.Reasoning != "" {
		fmt.Fprintf(&b, "%s", d.Reasoning)
	}

	return strings.TrimRight(b.String(), "\n")
}

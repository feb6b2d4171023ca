package notify

import (
	"context"
	"fmt"
	"net/url"

	"go.uber.org/zap"

	"github.com/bimakw/market-intel/internal/config"
	"github.com/bimakw/market-intel/internal/infrastructure/httpx"
)

// Notifier delivers an alert message to one channel.
type Notifier interface {
	Send(ctx context.Context, text string) error
}

// Slack posts messages to an incoming webhook.
type Slack struct {
	webhookURL string
	http       *httpx.Client
}

// NewSlack creates a Slack webhook notifier.
func NewSlack(webhookURL string, http *httpx.Client) *Slack {
	return &Slack{webhookURL: webhookURL, http: http}
}

// Send posts one message to the webhook.
func (s *Slack) Send(ctx context.Context, text string) error {
	body := struct {
		Text string `json:"text"`
	}{Text: text}

	if err := s.http.PostJSON(ctx, s.webhookURL, nil, body, nil); err != nil {
		return fmt.Errorf("slack notify: %w", err)
	}
	return nil
}

// Telegram sends messages through the Bot API.
type Telegram struct {
	botToken string
	chatID   string
	http     *httpx.Client
}

// NewTelegram creates a Telegram bot notifier.
func NewTelegram(botToken, chatID string, http *httpx.Client) *Telegram {
	return &Telegram{botToken: botToken, chatID: chatID, http: http}
}

// Send posts one message to the configured chat.
func (t *Telegram) Send(ctx context.Context, text string) error {
	body := struct {
		ChatID string `json:"chat_id"`
		Text   string `json:"text"`
	}{ChatID: t.chatID, Text: text}

	target := "https://api.telegram.org/bot" + url.PathEscape(t.botToken) + "/sendMessage"
	if err := t.http.PostJSON(ctx, target, nil, body, nil); err != nil {
		return fmt.Errorf("telegram notify: %w", err)
	}
	return nil
}

// Multi fans one message out to every configured channel. Channel
// failures are logged, not returned; an alert reaching one channel beats
// failing the run.
type Multi struct {
	notifiers []Notifier
	logger    *zap.Logger
}

// NewMulti builds the channel set from configuration.
func NewMulti(cfg config.AlertsConfig, http *httpx.Client, logger *zap.Logger) *Multi {
	m := &Multi{logger: logger}
	if cfg.SlackWebhookURL != "" {
		m.notifiers = append(m.notifiers, NewSlack(cfg.SlackWebhookURL, http))
	}
	if cfg.TelegramBotToken != "" && cfg.TelegramChatID != "" {
		m.notifiers = append(m.notifiers, NewTelegram(cfg.TelegramBotToken, cfg.TelegramChatID, http))
	}
	return m
}

// Send delivers to every channel.
func (m *Multi) Send(ctx context.Context, text string) error {
	for _, n := range m.notifiers {
		if err := n.Send(ctx, text); err != nil {
			m.logger.Warn("Alert delivery failed", zap.Error(err))
		}
	}
	return nil
}

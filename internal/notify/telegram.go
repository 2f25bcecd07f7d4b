package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"bgg-mirror-api/internal/config"
	"bgg-mirror-api/internal/model"
)

// Notifier receives sync run summaries. Implementations must not block the
// sync path on delivery failures.
type Notifier interface {
	SyncCompleted(ctx context.Context, report *model.SyncReport)
}

// TelegramNotifier posts sync summaries to a Telegram chat via the Bot API.
// Delivery is best effort: failures are logged and dropped.
type TelegramNotifier struct {
	httpClient *http.Client
	botToken   string
	chatID     string
}

// NewTelegramNotifier creates a notifier for the configured bot and chat.
func NewTelegramNotifier(cfg config.TelegramConfig) *TelegramNotifier {
	return &TelegramNotifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
	}
}

// SyncCompleted sends a one-line summary of the finished run.
func (n *TelegramNotifier) SyncCompleted(ctx context.Context, report *model.SyncReport) {
	var text string
	if report.Err != "" {
		text = fmt.Sprintf("BGG sync %s failed after %s: %s",
			report.Kind, report.Duration.Round(time.Second), report.Err)
	} else {
		text = fmt.Sprintf("BGG sync %s done in %s: %d listed, %d updated, %d skipped, %d failed",
			report.Kind, report.Duration.Round(time.Second),
			report.Listed, report.Updated, report.Skipped, report.Failed)
	}

	payload, err := json.Marshal(map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	})
	if err != nil {
		log.Printf("[Telegram] Failed to marshal message: %v", err)
		return
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		log.Printf("[Telegram] Failed to create request: %v", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		log.Printf("[Telegram] Failed to send notification: %v", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("[Telegram] Notification rejected: HTTP %d", resp.StatusCode)
	}
}

// NopNotifier discards every summary. Used when Telegram is not configured.
type NopNotifier struct{}

// SyncCompleted does nothing.
func (NopNotifier) SyncCompleted(context.Context, *model.SyncReport) {}

// Ensure both notifiers implement Notifier
var (
	_ Notifier = (*TelegramNotifier)(nil)
	_ Notifier = NopNotifier{}
)

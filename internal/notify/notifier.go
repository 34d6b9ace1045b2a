package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"salonbook/pkg/logger"
)

// Notifier delivers one rendered message to a chat. Implementations must
// honor the context deadline.
type Notifier interface {
	Notify(ctx context.Context, chatID int64, text string) error
}

// TelegramNotifier sends messages through the Telegram Bot API.
type TelegramNotifier struct {
	token  string
	client *http.Client
	log    *logger.Logger
}

func NewTelegramNotifier(token string, timeout time.Duration, log *logger.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		token: token,
		client: &http.Client{
			Timeout: timeout,
		},
		log: log,
	}
}

type telegramSendRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

func (n *TelegramNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	if chatID == 0 {
		// Recipient never connected the bot; nothing to deliver to.
		return nil
	}

	body, err := json.Marshal(telegramSendRequest{
		ChatID: chatID,
		Text:   text,
	})
	if err != nil {
		return fmt.Errorf("encode telegram request: %w", err)
	}

	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", n.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send telegram message: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API returned status %d", resp.StatusCode)
	}

	return nil
}

// ConsoleNotifier logs messages instead of delivering them. Used in
// development and when no bot token is configured.
type ConsoleNotifier struct {
	log *logger.Logger
}

func NewConsoleNotifier(log *logger.Logger) *ConsoleNotifier {
	return &ConsoleNotifier{log: log}
}

func (n *ConsoleNotifier) Notify(ctx context.Context, chatID int64, text string) error {
	n.log.Info("notification", "chat_id", chatID, "text", text)
	return nil
}

package notify

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/Candra0x6/BusinessScap-Maps/models"
	"github.com/Candra0x6/BusinessScap-Maps/scheduler"
)

// Notifier sends batch progress messages to a Telegram chat. All
// methods are safe on a nil receiver, so callers can wire it
// unconditionally and let a missing token disable it.
type Notifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewNotifier builds a Notifier from TELEGRAM_BOT_TOKEN and
// TELEGRAM_CHAT_ID. A missing token returns (nil, nil): notifications
// are simply off.
func NewNotifier() (*Notifier, error) {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return nil, nil
	}

	chatIDStr := os.Getenv("TELEGRAM_CHAT_ID")
	chatID, err := strconv.ParseInt(strings.TrimSpace(chatIDStr), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", chatIDStr, err)
	}

	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	log.Printf("Telegram notifications enabled for chat %d (account %s)\n", chatID, bot.Self.UserName)
	return &Notifier{bot: bot, chatID: chatID}, nil
}

// KeywordDone reports one keyword's outcome.
func (n *Notifier) KeywordDone(summary models.KeywordSummary) {
	if n == nil {
		return
	}
	text := fmt.Sprintf("Keyword %q: %s\nRecords: %d, attempted: %d, skipped: %d (%s)",
		summary.Keyword, summary.Status, summary.Records, summary.Attempted,
		summary.Skipped, summary.Duration.Round(time.Second))
	n.send(text)
}

// BatchDone reports the final summary of a batch.
func (n *Notifier) BatchDone(batchID string, summaries []models.KeywordSummary) {
	if n == nil {
		return
	}
	n.send(batchText(batchID, summaries))
}

func batchText(batchID string, summaries []models.KeywordSummary) string {
	var records, skipped, failed int
	for _, s := range summaries {
		records += s.Records
		skipped += s.Skipped
		if s.Status == scheduler.StatusFailed {
			failed++
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Batch %s finished\n", batchID)
	fmt.Fprintf(&sb, "Keywords: %d (failed: %d)\n", len(summaries), failed)
	fmt.Fprintf(&sb, "Records: %d, skipped listings: %d\n", records, skipped)
	return sb.String()
}

func (n *Notifier) send(text string) {
	msg := tgbotapi.NewMessage(n.chatID, text)
	if _, err := n.bot.Send(msg); err != nil {
		log.Printf("Warning: Failed to send telegram notification: %v\n", err)
	}
}

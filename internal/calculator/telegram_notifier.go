package calculator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Min interval between any two Telegram messages to the same chat to avoid 429 Too Many Requests (~30/min limit).
const telegramSendInterval = 2 * time.Second

var (
	ErrNotifierStopped = errors.New("notifier stopped")
	ErrQueueFull       = errors.New("message queue is full")
)

type messageSender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

type queuedMessage struct {
	text      string
	matchName string
	queuedAt  time.Time
}

// TelegramNotifier posts flagged reports to a chat. Sending happens on a
// background goroutine so Publish never waits for the network.
type TelegramNotifier struct {
	bot      messageSender
	chatID   int64
	interval time.Duration
	lastSend time.Time

	queue     chan queuedMessage
	queueDone chan struct{}
	ctx       context.Context
	cancel    context.CancelFunc
	stopOnce  sync.Once
}

// NewTelegramNotifier connects to the bot API and starts the sender.
func NewTelegramNotifier(token string, chatID int64) (*TelegramNotifier, error) {
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create telegram bot: %w", err)
	}
	bot.Debug = false

	n := newTelegramNotifier(bot, chatID, telegramSendInterval)
	slog.Info("Telegram notifier initialized", "chat_id", chatID, "bot", bot.Self.UserName)
	return n, nil
}

func newTelegramNotifier(bot messageSender, chatID int64, interval time.Duration) *TelegramNotifier {
	ctx, cancel := context.WithCancel(context.Background())
	n := &TelegramNotifier{
		bot:       bot,
		chatID:    chatID,
		interval:  interval,
		queue:     make(chan queuedMessage, 100),
		queueDone: make(chan struct{}),
		ctx:       ctx,
		cancel:    cancel,
	}
	go n.messageSender()
	return n
}

// QueueLen returns current number of messages in the send queue (for logging).
func (n *TelegramNotifier) QueueLen() int {
	if n == nil {
		return 0
	}
	return len(n.queue)
}

// Publish queues an alert for a report with flagged lines. Reports without
// flagged lines are ignored.
func (n *TelegramNotifier) Publish(ctx context.Context, r *Report) error {
	if n == nil {
		return fmt.Errorf("telegram notifier not initialized")
	}
	if len(r.Flagged()) == 0 {
		return nil
	}

	if n.ctx.Err() != nil {
		return ErrNotifierStopped
	}

	msg := queuedMessage{text: formatReportAlert(r), matchName: r.MatchName, queuedAt: time.Now()}
	select {
	case <-n.ctx.Done():
		return ErrNotifierStopped
	case <-ctx.Done():
		return ctx.Err()
	case n.queue <- msg:
		return nil
	default:
		slog.Warn("Telegram message queue is full, dropping message", "match", r.MatchName)
		return ErrQueueFull
	}
}

// Stop stops the notifier after the queued messages are sent.
func (n *TelegramNotifier) Stop() {
	if n == nil {
		return
	}
	n.stopOnce.Do(n.cancel)
	<-n.queueDone
}

func (n *TelegramNotifier) messageSender() {
	defer close(n.queueDone)
	for {
		select {
		case <-n.ctx.Done():
			// Drain remaining messages before exit
			for {
				select {
				case msg := <-n.queue:
					n.send(msg)
				default:
					return
				}
			}
		case msg := <-n.queue:
			n.wait()
			n.send(msg)
		}
	}
}

// wait keeps the rate limit between consecutive sends. Stopping cuts it short.
func (n *TelegramNotifier) wait() {
	elapsed := time.Since(n.lastSend)
	if elapsed >= n.interval {
		return
	}
	select {
	case <-n.ctx.Done():
	case <-time.After(n.interval - elapsed):
	}
}

func (n *TelegramNotifier) send(msg queuedMessage) {
	tgMsg := tgbotapi.NewMessage(n.chatID, msg.text)
	tgMsg.ParseMode = tgbotapi.ModeMarkdownV2
	tgMsg.DisableWebPagePreview = true

	n.lastSend = time.Now()
	_, err := n.bot.Send(tgMsg)
	if err != nil {
		slog.Error("Telegram send: failed", "match", msg.matchName, "error", err)
		return
	}
	slog.Info("Telegram send: success",
		"match", msg.matchName,
		"delay_since_queue", time.Since(msg.queuedAt),
		"queue_length", len(n.queue))
}

func formatReportAlert(r *Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(fmt.Sprintf("Value alert (%d%%+)", r.Threshold)))
	fmt.Fprintf(&b, "*%s*\n", escapeMarkdown(r.MatchName))
	if !r.Kickoff.IsZero() {
		fmt.Fprintf(&b, "%s\n", escapeMarkdown("Kick-off: "+r.Kickoff.Format("2006-01-02 15:04")))
	}
	b.WriteString("\n")
	for _, s := range r.Flagged() {
		fmt.Fprintf(&b, "%s\n", escapeMarkdown(s.Detail))
	}
	if r.MatchURL != "" {
		fmt.Fprintf(&b, "\n%s", escapeMarkdown(r.MatchURL))
	}
	return b.String()
}

func escapeMarkdown(text string) string {
	replacer := strings.NewReplacer(
		"\\", "\\\\",
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"]", "\\]",
		"(", "\\(",
		")", "\\)",
		"~", "\\~",
		"`", "\\`",
		">", "\\>",
		"#", "\\#",
		"+", "\\+",
		"-", "\\-",
		"=", "\\=",
		"|", "\\|",
		"{", "\\{",
		"}", "\\}",
		".", "\\.",
		"!", "\\!",
	)
	return replacer.Replace(text)
}

package bot

import (
	"context"
	"fmt"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/link-shortener/internal/events"
	"github.com/spec-kit/link-shortener/internal/observability"
	"github.com/spec-kit/link-shortener/internal/service"
)

// dialogueState tracks where a chat is in the shortening conversation.
type dialogueState int

const (
	stateStart dialogueState = iota
	stateReceiveURL
)

// Bot ingests URLs from Telegram chats via long polling.
type Bot struct {
	api     *tgbotapi.BotAPI
	urls    *service.URLService
	metrics *observability.Metrics
	logger  *zap.Logger
	timeout int

	mu     sync.Mutex
	states map[int64]dialogueState
}

// New connects to the Telegram API. An error here is a startup failure.
func New(token string, pollTimeoutSec int, urls *service.URLService, metrics *observability.Metrics, logger *zap.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("connect telegram: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if pollTimeoutSec <= 0 {
		pollTimeoutSec = 30
	}
	return &Bot{
		api:     api,
		urls:    urls,
		metrics: metrics,
		logger:  logger,
		timeout: pollTimeoutSec,
		states:  make(map[int64]dialogueState),
	}, nil
}

// Run registers bot commands and processes updates until ctx is cancelled.
func (b *Bot) Run(ctx context.Context) error {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Start"},
		tgbotapi.BotCommand{Command: "allurls", Description: "All urls"},
		tgbotapi.BotCommand{Command: "help", Description: "Help"},
	)
	if _, err := b.api.Request(commands); err != nil {
		return fmt.Errorf("set bot commands: %w", err)
	}

	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.timeout
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info("telegram bot started", zap.String("username", b.api.Self.UserName))

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	b.metrics.IncTelegramMessages()

	if msg.IsCommand() {
		b.handleCommand(ctx, msg)
		return
	}

	switch b.state(msg.Chat.ID) {
	case stateReceiveURL:
		b.receiveURL(ctx, msg)
	default:
		b.reply(msg.Chat.ID, "Please, write /start")
	}
}

func (b *Bot) handleCommand(ctx context.Context, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "start":
		b.setState(msg.Chat.ID, stateReceiveURL)
		b.reply(msg.Chat.ID, "Let's start! What's your full url?")
	case "help":
		b.reply(msg.Chat.ID, "Send /start, then any message containing a URL to shorten it. /allurls lists recent links.")
	case "allurls":
		b.sendAllURLs(ctx, msg.Chat.ID)
	default:
		b.reply(msg.Chat.ID, "Unknown command, try /help")
	}
}

func (b *Bot) receiveURL(ctx context.Context, msg *tgbotapi.Message) {
	target, ok := ExtractFirstURL(msg.Text)
	if !ok {
		b.reply(msg.Chat.ID, "Could not find a valid URL in the message.")
		return
	}
	if msg.From == nil {
		b.reply(msg.Chat.ID, "Unable to identify user.")
		return
	}

	creator := TelegramUserUUID(msg.From.ID).String()
	short, err := b.urls.Create(ctx, target, creator, events.SourceBot)
	if err != nil {
		b.metrics.RecordError("url_creation_error", "telegram_bot")
		b.logger.Error("create url from bot", zap.Error(err))
		b.reply(msg.Chat.ID, "Failed to save URL.")
		return
	}

	b.metrics.IncURLShortened()
	b.reply(msg.Chat.ID, fmt.Sprintf("Saved: /r/%s -> %s", short.Alias, short.Target))
}

func (b *Bot) sendAllURLs(ctx context.Context, chatID int64) {
	urls, err := b.urls.ListAll(ctx, 10, 0)
	if err != nil {
		b.logger.Error("list urls from bot", zap.Error(err))
		b.reply(chatID, "Failed to list URLs.")
		return
	}
	if len(urls) == 0 {
		b.reply(chatID, "No URLs yet.")
		return
	}

	text := "Recent URLs:\n"
	for _, u := range urls {
		text += fmt.Sprintf("/r/%s -> %s (%d clicks)\n", u.Alias, u.Target, u.Clicks)
	}
	b.reply(chatID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		b.logger.Warn("send telegram message", zap.Error(err))
	}
}

func (b *Bot) state(chatID int64) dialogueState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.states[chatID]
}

func (b *Bot) setState(chatID int64, state dialogueState) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.states[chatID] = state
}

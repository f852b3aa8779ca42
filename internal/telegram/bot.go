package telegram

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// Bot wraps the Telegram bot API. It serves two purposes: delivering
// outbound agenda digests and answering a small set of query commands from
// the practitioner's own chat.
type Bot struct {
	api     *tgbotapi.BotAPI
	logger  *logrus.Logger
	router  *Router
	ownerID int64
}

// NewBot creates a new Telegram bot instance bound to the owner chat.
// Messages from any other chat are ignored.
func NewBot(token string, ownerChatID int64, logger *logrus.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API: %w", err)
	}

	logger.Infof("Authorized on account %s", api.Self.UserName)

	return &Bot{
		api:     api,
		logger:  logger,
		router:  NewRouter(logger),
		ownerID: ownerChatID,
	}, nil
}

// Start starts the bot with long polling.
func (b *Bot) Start(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60

	updates := b.api.GetUpdatesChan(u)

	b.logger.Info("Bot started with long polling")

	for {
		select {
		case <-ctx.Done():
			b.logger.Info("Stopping bot...")
			b.api.StopReceivingUpdates()
			return nil
		case update := <-updates:
			go b.handleUpdate(update)
		}
	}
}

// handleUpdate processes incoming updates.
func (b *Bot) handleUpdate(update tgbotapi.Update) {
	defer func() {
		if r := recover(); r != nil {
			b.logger.Errorf("Panic in update handler: %v", r)
		}
	}()

	if update.Message == nil {
		return
	}
	if update.Message.Chat.ID != b.ownerID {
		b.logger.Warnf("Ignoring message from unauthorized chat %d", update.Message.Chat.ID)
		return
	}
	b.router.HandleMessage(b.api, update.Message)
}

// SendDigest delivers a digest message to the owner chat.
func (b *Bot) SendDigest(text string) {
	msg := tgbotapi.NewMessage(b.ownerID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		b.logger.Errorf("Failed to send digest: %v", err)
	}
}

// RegisterCommand registers a command handler on the router.
func (b *Bot) RegisterCommand(command string, handler CommandHandler) {
	b.router.RegisterCommand(command, handler)
}

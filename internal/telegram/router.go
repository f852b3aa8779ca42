package telegram

import (
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/sirupsen/logrus"
)

// CommandHandler handles a single bot command.
type CommandHandler interface {
	Handle(bot *tgbotapi.BotAPI, message *tgbotapi.Message, args []string) error
}

// Router dispatches incoming messages to command handlers.
type Router struct {
	commands map[string]CommandHandler
	logger   *logrus.Logger
}

// NewRouter creates a new message router.
func NewRouter(logger *logrus.Logger) *Router {
	return &Router{
		commands: make(map[string]CommandHandler),
		logger:   logger,
	}
}

// RegisterCommand registers a handler for a command (without the leading slash).
func (r *Router) RegisterCommand(command string, handler CommandHandler) {
	r.commands[command] = handler
}

// HandleMessage routes a message to the matching command handler.
func (r *Router) HandleMessage(bot *tgbotapi.BotAPI, message *tgbotapi.Message) {
	if !message.IsCommand() {
		return
	}

	command := message.Command()
	args := strings.Fields(message.CommandArguments())

	handler, ok := r.commands[command]
	if !ok {
		r.logger.Debugf("Unknown command: %s", command)
		reply := tgbotapi.NewMessage(message.Chat.ID, "Unknown command. Try /agenda, /week or /forecast.")
		if _, err := bot.Send(reply); err != nil {
			r.logger.Errorf("Failed to send reply: %v", err)
		}
		return
	}

	r.logger.Infof("Handling command /%s from chat %d", command, message.Chat.ID)

	if err := handler.Handle(bot, message, args); err != nil {
		r.logger.Errorf("Command /%s failed: %v", command, err)
		reply := tgbotapi.NewMessage(message.Chat.ID, "Something went wrong, try again later.")
		if _, err := bot.Send(reply); err != nil {
			r.logger.Errorf("Failed to send error reply: %v", err)
		}
	}
}

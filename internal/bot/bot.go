package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pongping/internal/logger"
	"pongping/internal/metrics"
	"pongping/internal/store"
)

// sender is the part of *tgbotapi.BotAPI the handlers need.
type sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Bot routes Telegram updates to the /start and keyword handlers.
type Bot struct {
	api      sender
	username string
	users    store.Capability
	metrics  *metrics.Metrics
	chats    *chatQueue
}

// New builds a bot for the account username. Commands addressed to another
// bot ("/start@other_bot") are ignored; an empty username accepts them all.
func New(api sender, username string, users store.Capability, m *metrics.Metrics) *Bot {
	if users == nil {
		users = store.Unconfigured{Reason: "not provided"}
	}
	return &Bot{
		api:      api,
		username: strings.TrimPrefix(username, "@"),
		users:    users,
		metrics:  m,
		chats:    newChatQueue(),
	}
}

// Run receives updates until ctx is cancelled, then waits for queued handlers.
func (b *Bot) Run(ctx context.Context, r Receiver) error {
	err := r.Receive(ctx, func(update tgbotapi.Update) {
		b.Dispatch(ctx, update)
	})
	b.chats.Wait()
	return err
}

// Dispatch queues the update behind earlier updates of the same chat.
// Different chats are handled concurrently.
func (b *Bot) Dispatch(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.Chat == nil {
		b.metrics.Update("ignored")
		return
	}
	chatID := msg.Chat.ID
	b.chats.Submit(chatID, func() {
		if err := b.HandleUpdate(ctx, update); err != nil {
			b.metrics.HandlerError()
			logger.Error().Err(err).Int64("chat_id", chatID).Int("update_id", update.UpdateID).Msg("Handler failed")
		}
	})
}

// HandleUpdate runs the matching handler synchronously.
func (b *Bot) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		b.metrics.Update("ignored")
		return nil
	}

	if msg.IsCommand() {
		if !b.addressedToUs(msg) || strings.ToLower(msg.Command()) != "start" {
			b.metrics.Update("ignored")
			return nil
		}
		b.metrics.Update("start")
		logger.Debug().Int64("user_id", msg.From.ID).Msg("Command /start")
		return b.handleStart(ctx, msg)
	}

	b.metrics.Update("text")
	return b.handleText(msg)
}

// addressedToUs reports whether a command either names no bot or names this one.
func (b *Bot) addressedToUs(msg *tgbotapi.Message) bool {
	_, target, found := strings.Cut(msg.CommandWithAt(), "@")
	if !found || b.username == "" {
		return true
	}
	return strings.EqualFold(target, b.username)
}

func (b *Bot) reply(chatID int64, kind, text string) error {
	if _, err := b.api.Send(tgbotapi.NewMessage(chatID, text)); err != nil {
		return err
	}
	b.metrics.Reply(kind)
	return nil
}

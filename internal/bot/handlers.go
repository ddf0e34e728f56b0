package bot

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"pongping/internal/logger"
	"pongping/internal/model"
	"pongping/internal/store"
)

const (
	welcomeFormat = "Привет, %s! Я бот 'Понг-Пинг'. Напиши мне 'понг', и я отвечу 'пинг'!"
	triggerWord   = "понг"
	replyWord     = "пинг"
)

// handleStart records the sender and greets them. The store result never
// affects the reply; a send failure is returned.
func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) error {
	user := userRecord(msg.From)

	switch users := b.users.(type) {
	case store.Configured:
		if err := users.UpsertUser(ctx, user); err != nil {
			b.metrics.Upsert("error")
			logger.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to record user")
		} else {
			b.metrics.Upsert("ok")
			logger.Info().Int64("user_id", user.ID).Str("backend", users.Backend).Msg("User recorded")
		}
	case store.Unconfigured:
		b.metrics.Upsert("skipped")
		logger.Warn().Int64("user_id", user.ID).Str("reason", users.Reason).Msg("User store unavailable, user not recorded")
	}

	return b.reply(msg.Chat.ID, "start", fmt.Sprintf(welcomeFormat, msg.From.FirstName))
}

func (b *Bot) handleText(msg *tgbotapi.Message) error {
	if !isTrigger(msg.Text) {
		return nil
	}
	return b.reply(msg.Chat.ID, "text", replyWord)
}

// isTrigger matches the keyword exactly, ignoring case and surrounding whitespace.
func isTrigger(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == triggerWord
}

func userRecord(from *tgbotapi.User) model.User {
	return model.User{
		ID:        from.ID,
		Username:  optional(from.UserName),
		FirstName: from.FirstName,
		LastName:  optional(from.LastName),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"

	"pongping/internal/config"
	"pongping/internal/logger"
)

// Receiver delivers updates to handle until ctx is cancelled.
type Receiver interface {
	Receive(ctx context.Context, handle func(tgbotapi.Update)) error
}

// telegramAPI is the part of *tgbotapi.BotAPI the receivers need.
type telegramAPI interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
}

// ReceiverFor picks the receiver for cfg.Mode. There is no fallback between modes.
func ReceiverFor(cfg config.Config, api telegramAPI, gatherer prometheus.Gatherer) Receiver {
	if cfg.Mode == config.ModeWebhook {
		return NewWebhookReceiver(api, cfg.WebhookURL, cfg.ListenAddr(), cfg.WebhookPath(), cfg.WebhookSecret, gatherer)
	}
	return NewPollReceiver(api, cfg.PollTimeout)
}

// PollReceiver long-polls getUpdates.
type PollReceiver struct {
	api     telegramAPI
	timeout int
}

func NewPollReceiver(api telegramAPI, timeoutSeconds int) *PollReceiver {
	return &PollReceiver{api: api, timeout: timeoutSeconds}
}

func (r *PollReceiver) Receive(ctx context.Context, handle func(tgbotapi.Update)) error {
	// getUpdates is refused while a webhook is registered.
	if _, err := r.api.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		logger.Warn().Err(err).Msg("Could not delete webhook before polling")
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = r.timeout
	updates := r.api.GetUpdatesChan(updateConfig)

	logger.Info().Int("timeout", r.timeout).Msg("Start polling updates")

	for {
		select {
		case <-ctx.Done():
			r.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return ctx.Err()
			}
			handle(update)
		}
	}
}

package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"pongping/internal/bot"
	"pongping/internal/config"
	"pongping/internal/logger"
	"pongping/internal/metrics"
	"pongping/internal/service"
	"pongping/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	logger.Init("pongping", cfg.Debug)
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("Bot stopped with error")
		os.Exit(1)
	}
	logger.Info().Msg("Shutdown complete.")
}

func run(ctx context.Context, cfg config.Config) error {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m, err := metrics.New(reg)
	if err != nil {
		return err
	}

	users := store.New(cfg)
	defer func() {
		if err := store.Close(users); err != nil {
			logger.Warn().Err(err).Msg("Close user store")
		}
	}()

	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return fmt.Errorf("create bot api: %w", err)
	}
	api.Debug = cfg.Debug
	logger.Info().Str("account", api.Self.UserName).Msg("Bot authorized")

	if _, ok := users.(store.Configured); ok && cfg.StatsInterval > 0 {
		stats := service.NewStatsService(users, m)
		scheduler := service.NewSchedulerService(time.Local)
		if _, err := scheduler.ScheduleInterval(cfg.StatsInterval, func() {
			jobCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
			defer cancel()
			if _, err := stats.Report(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Warn().Err(err).Msg("Stats report failed")
			}
		}); err != nil {
			return fmt.Errorf("schedule stats: %w", err)
		}
		scheduler.Start()
		defer scheduler.Stop()
	}

	telegramBot := bot.New(api, api.Self.UserName, users, m)
	receiver := bot.ReceiverFor(cfg, api, reg)

	logger.Info().Str("mode", string(cfg.Mode)).Msg("Bot is starting...")
	return telegramBot.Run(ctx, receiver)
}

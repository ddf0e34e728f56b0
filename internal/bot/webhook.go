package bot

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"pongping/internal/logger"
)

const (
	requestIDHeader   = "X-Request-ID"
	secretTokenHeader = "X-Telegram-Bot-Api-Secret-Token"
	shutdownTimeout   = 5 * time.Second
)

// WebhookReceiver registers a webhook with Telegram and serves it over HTTP.
type WebhookReceiver struct {
	api      telegramAPI
	url      string
	addr     string
	path     string
	secret   string
	gatherer prometheus.Gatherer
}

func NewWebhookReceiver(api telegramAPI, url, addr, path, secret string, gatherer prometheus.Gatherer) *WebhookReceiver {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return &WebhookReceiver{api: api, url: url, addr: addr, path: path, secret: secret, gatherer: gatherer}
}

// Addr is the address the listener binds.
func (r *WebhookReceiver) Addr() string {
	return r.addr
}

func (r *WebhookReceiver) Receive(ctx context.Context, handle func(tgbotapi.Update)) error {
	params := tgbotapi.Params{"url": r.url}
	params.AddNonEmpty("secret_token", r.secret)
	if _, err := r.api.MakeRequest("setWebhook", params); err != nil {
		return fmt.Errorf("set webhook: %w", err)
	}

	srv := &http.Server{
		Addr:              r.addr,
		Handler:           r.Handler(handle),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info().Str("addr", r.addr).Bool("secret", r.secret != "").Msg("Webhook listener started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen %s: %w", r.addr, err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}

// Handler builds the HTTP routes: the webhook path, /healthz and /metrics.
func (r *WebhookReceiver) Handler(handle func(tgbotapi.Update)) http.Handler {
	engine := gin.New()
	engine.Use(gin.Recovery(), requestID(), accessLog())

	engine.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))

	// The webhook path often carries the bot token ("/bot123:AAH..."), which
	// gin would read as a route parameter, so it is compared literally.
	engine.NoRoute(func(c *gin.Context) {
		if c.Request.Method != http.MethodPost || c.Request.URL.Path != r.path {
			c.AbortWithStatus(http.StatusNotFound)
			return
		}
		r.serveUpdate(c, handle)
	})

	return engine
}

func (r *WebhookReceiver) serveUpdate(c *gin.Context, handle func(tgbotapi.Update)) {
	if r.secret != "" {
		got := c.GetHeader(secretTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(r.secret)) != 1 {
			logger.Warn().Str("request_id", c.GetString("request_id")).Str("client_ip", c.ClientIP()).Msg("Webhook call with a wrong secret token")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
	}

	var update tgbotapi.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		logger.Warn().Err(err).Str("request_id", c.GetString("request_id")).Msg("Malformed update")
		c.AbortWithStatus(http.StatusBadRequest)
		return
	}
	handle(update)
	c.Status(http.StatusOK)
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		logger.Debug().
			Str("method", c.Request.Method).
			Str("route", c.FullPath()).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("request_id", c.GetString("request_id")).
			Msg("Request processed")
	}
}

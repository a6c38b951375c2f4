// Package telegram adapts the chat transport to the dispatcher. It is a thin
// I/O layer: normalize the sender, hand the text over, send the replies back.
package telegram

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	telebot "gopkg.in/telebot.v3"

	"github.com/grafamedia/keuangan-bot/internal/dedupe"
	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/outbox"
	"github.com/grafamedia/keuangan-bot/internal/ratelimit"
	"github.com/grafamedia/keuangan-bot/pkg/config"
	"github.com/grafamedia/keuangan-bot/pkg/metrics"
)

// Handler is the dispatcher seam the gateway drives.
type Handler interface {
	Handle(ctx context.Context, msg domain.InboundMessage) []domain.OutboundMessage
}

// dedupeTTL bounds how long a processed update id is remembered. Telegram
// keeps undelivered updates for at most 24 hours.
const dedupeTTL = 24 * time.Hour

// Gateway connects a telebot long-poller or webhook to the dispatcher.
type Gateway struct {
	bot        *telebot.Bot
	dispatcher Handler
	limiter    ratelimit.Limiter
	limit      int
	window     time.Duration
	deduper    dedupe.Deduper
	mirror     *outbox.Publisher
	log        *slog.Logger
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRateLimit throttles inbound messages per sender before dispatch.
func WithRateLimit(limiter ratelimit.Limiter, limit int, window time.Duration) Option {
	return func(g *Gateway) {
		g.limiter = limiter
		g.limit = limit
		g.window = window
	}
}

// WithDeduper skips updates whose message id was already processed, so a
// restart of the long poller does not replay ledger writes.
func WithDeduper(d dedupe.Deduper) Option {
	return func(g *Gateway) { g.deduper = d }
}

// WithOutboxMirror copies every sent reply onto the AMQP outbox.
func WithOutboxMirror(mirror *outbox.Publisher) Option {
	return func(g *Gateway) { g.mirror = mirror }
}

func New(cfg config.BotConfig, serverPort string, dispatcher Handler, log *slog.Logger, opts ...Option) (*Gateway, error) {
	settings := telebot.Settings{
		Token: cfg.Token,
	}

	if cfg.Mode == "webhook" {
		settings.Poller = &telebot.Webhook{
			Listen: serverPort,
		}
	} else {
		settings.Poller = &telebot.LongPoller{
			Timeout: cfg.Timeout,
		}
	}

	tb, err := telebot.NewBot(settings)
	if err != nil {
		return nil, fmt.Errorf("initialize telebot: %w", err)
	}

	g := &Gateway{
		bot:        tb,
		dispatcher: dispatcher,
		log:        log,
	}
	for _, opt := range opts {
		opt(g)
	}

	tb.Handle(telebot.OnText, g.onText)

	return g, nil
}

// Start runs the transport event loop. It blocks until Stop is called.
func (g *Gateway) Start() {
	g.bot.Start()
}

// Stop shuts the transport down.
func (g *Gateway) Stop() {
	g.log.Info("stopping telegram gateway")
	g.bot.Stop()
}

// Bot exposes the underlying telebot instance for health checks.
func (g *Gateway) Bot() *telebot.Bot {
	return g.bot
}

func (g *Gateway) onText(c telebot.Context) error {
	sender := c.Sender()
	if sender == nil {
		return nil
	}

	senderID := strconv.FormatInt(sender.ID, 10)
	ctx := context.Background()

	if g.deduper != nil {
		if msg := c.Message(); msg != nil {
			key := senderID + ":" + strconv.Itoa(msg.ID)
			seen, err := g.deduper.Seen(ctx, key, dedupeTTL)
			if err != nil {
				// a broken deduper must not drop messages
				g.log.Error("dedupe check failed", slog.String("sender_id", senderID), slog.Any("error", err))
			} else if seen {
				g.log.Debug("duplicate update skipped", slog.String("sender_id", senderID), slog.Int("message_id", msg.ID))
				return nil
			}
		}
	}

	if g.limiter != nil {
		if _, err := g.limiter.Check(ctx, senderID, g.limit, g.window); err != nil {
			if errors.Is(err, ratelimit.ErrLimitExceeded) {
				g.log.Warn("sender rate limited", slog.String("sender_id", senderID))
				return nil
			}
			// A broken limiter must not drop messages.
			g.log.Error("rate limiter failed", slog.String("sender_id", senderID), slog.Any("error", err))
		}
	}

	replies := g.dispatcher.Handle(ctx, domain.InboundMessage{
		SenderID:   senderID,
		Body:       c.Text(),
		ReceivedAt: time.Now(),
	})

	for _, reply := range replies {
		if err := g.send(c, reply); err != nil {
			g.log.Error("send reply failed",
				slog.String("sender_id", senderID),
				slog.String("message_id", reply.ID),
				slog.Any("error", err))
			continue
		}
		g.mirror.Publish(ctx, reply)
	}

	return nil
}

func (g *Gateway) send(c telebot.Context, msg domain.OutboundMessage) error {
	if msg.Image != nil {
		metrics.RecordOutbound("image")
		photo := &telebot.Photo{File: telebot.FromReader(bytes.NewReader(msg.Image.Data))}
		return c.Send(photo)
	}

	metrics.RecordOutbound("text")
	return c.Send(msg.Text)
}

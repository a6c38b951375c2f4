// Package msglog records every inbound message before any command handling,
// both in the database and in a rotating audit file.
package msglog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
)

// Recorder writes the inbound audit trail. Logging failures are reported to
// the logger only; a broken audit sink must never block message handling.
type Recorder struct {
	store ledger.Store
	file  io.Writer
	log   *slog.Logger
}

// Option configures a Recorder.
type Option func(*Recorder)

// WithFile adds a rotating file sink next to the database log.
func WithFile(path string, maxSizeMB, maxBackups, maxAgeDays int) Option {
	return func(r *Recorder) {
		r.file = &lumberjack.Logger{
			Filename:   path,
			MaxSize:    maxSizeMB,
			MaxBackups: maxBackups,
			MaxAge:     maxAgeDays,
			Compress:   true,
		}
	}
}

func NewRecorder(store ledger.Store, log *slog.Logger, opts ...Option) *Recorder {
	r := &Recorder{store: store, log: log}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Record appends the message to every configured sink. It always succeeds
// from the caller's point of view.
func (r *Recorder) Record(ctx context.Context, msg domain.InboundMessage) {
	entry := &domain.MessageLogEntry{
		SenderID: msg.SenderID,
		Body:     msg.Body,
		Date:     domain.DateOf(msg.ReceivedAt),
		Time:     domain.ClockOf(msg.ReceivedAt),
	}

	if err := r.store.AppendMessageLog(ctx, entry); err != nil {
		r.log.Error("message log insert failed",
			slog.String("sender_id", msg.SenderID),
			slog.Any("error", err))
	}

	if r.file == nil {
		return
	}
	line := fmt.Sprintf("[%s %s] %s: %s\n", entry.Date, entry.Time, msg.SenderID, msg.Body)
	if _, err := io.WriteString(r.file, line); err != nil {
		r.log.Error("message log file append failed",
			slog.String("sender_id", msg.SenderID),
			slog.Any("error", err))
	}
}

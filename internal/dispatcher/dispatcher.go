// Package dispatcher orchestrates one inbound message end to end: audit log,
// registration gate, command parsing, and the handler that produces the
// outbound replies.
package dispatcher

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/grafamedia/keuangan-bot/internal/apperrors"
	"github.com/grafamedia/keuangan-bot/internal/chart"
	"github.com/grafamedia/keuangan-bot/internal/command"
	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/internal/msglog"
	"github.com/grafamedia/keuangan-bot/internal/registration"
	"github.com/grafamedia/keuangan-bot/internal/report"
	"github.com/grafamedia/keuangan-bot/internal/session"
	"github.com/grafamedia/keuangan-bot/pkg/metrics"
)

// registrationKeyword starts the registration flow. It is not part of the
// command grammar; only the gate interprets it.
const registrationKeyword = "daftar"

// SenderLocker serializes one sender across processes. The Redis session
// store implements it; single-process deployments rely on the in-process
// lock alone.
type SenderLocker interface {
	Lock(ctx context.Context, senderID string) error
	Unlock(ctx context.Context, senderID string)
}

// Dispatcher is the single entry point for inbound messages.
type Dispatcher struct {
	store    ledger.Store
	gate     *registration.Machine
	reports  *report.Aggregator
	recorder *msglog.Recorder
	errs     *apperrors.Handler
	charts   chart.Renderer
	log      *slog.Logger
	locks    *senderLocks
	remote   SenderLocker
	now      func() time.Time
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithChartRenderer enables pie attachments on day listings.
func WithChartRenderer(r chart.Renderer) Option {
	return func(d *Dispatcher) { d.charts = r }
}

// WithSenderLocker adds a cross-process lock around message handling, taken
// next to the in-process one. Messages for a sender held by another process
// are dropped; that process is already answering them.
func WithSenderLocker(l SenderLocker) Option {
	return func(d *Dispatcher) { d.remote = l }
}

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(d *Dispatcher) { d.now = now }
}

func New(store ledger.Store, gate *registration.Machine, reports *report.Aggregator, recorder *msglog.Recorder, errs *apperrors.Handler, log *slog.Logger, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		store:    store,
		gate:     gate,
		reports:  reports,
		recorder: recorder,
		errs:     errs,
		log:      log,
		locks:    newSenderLocks(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Handle processes one inbound message and returns the ordered replies.
// Handling is serialized per sender id; different senders run concurrently.
func (d *Dispatcher) Handle(ctx context.Context, msg domain.InboundMessage) []domain.OutboundMessage {
	start := time.Now()

	release := d.locks.Acquire(msg.SenderID)
	defer release()

	if d.remote != nil {
		err := d.remote.Lock(ctx, msg.SenderID)
		switch {
		case err == nil:
			defer d.remote.Unlock(ctx, msg.SenderID)
		case errors.Is(err, session.ErrLocked):
			d.log.Warn("sender held by another process, message dropped",
				slog.String("sender_id", msg.SenderID))
			return nil
		default:
			// a broken lock backend must not drop messages
			d.log.Error("sender lock failed",
				slog.String("sender_id", msg.SenderID),
				slog.Any("error", err))
		}
	}

	// The audit trail records every message, whatever happens next.
	d.recorder.Record(ctx, msg)

	cmd := command.Parse(msg.Body)

	replies, err := d.route(ctx, cmd, msg)
	status := "success"
	if err != nil {
		status = "error"
		text, _ := d.errs.Handle(ctx, err)
		replies = append(replies, d.text(msg.SenderID, text))
	}

	metrics.RecordMessage(string(cmd.Type), status, time.Since(start))
	return replies
}

func (d *Dispatcher) route(ctx context.Context, cmd command.Command, msg domain.InboundMessage) ([]domain.OutboundMessage, error) {
	// Info and summary answer identically for everyone, registered or not.
	switch cmd.Type {
	case command.TypeInfo:
		return d.handleInfo(msg), nil
	case command.TypeSummary:
		return d.reply(msg.SenderID, report.MonthlyReportNotice), nil
	}

	res, err := d.gate.Resolve(ctx, msg.SenderID)
	if err != nil {
		return nil, d.storeFailure("find_user", err)
	}

	switch res.State {
	case registration.StateAwaitingName:
		return d.completeRegistration(ctx, msg)
	case registration.StateUnregistered:
		if strings.EqualFold(strings.TrimSpace(msg.Body), registrationKeyword) {
			if err := d.gate.Begin(ctx, msg.SenderID); err != nil {
				return nil, d.storeFailure("begin_registration", err)
			}
			return d.reply(msg.SenderID, replyAskName), nil
		}
		return d.reply(msg.SenderID, replyWelcome), nil
	}

	return d.dispatch(ctx, cmd, msg, res.User)
}

func (d *Dispatcher) completeRegistration(ctx context.Context, msg domain.InboundMessage) ([]domain.OutboundMessage, error) {
	user, err := d.gate.Complete(ctx, msg.SenderID, msg.Body, d.now())
	switch {
	case err == nil:
		return d.reply(msg.SenderID, fmt.Sprintf(replyRegistered, user.Name)), nil
	case errors.Is(err, registration.ErrEmptyName):
		return d.reply(msg.SenderID, replyAskName), nil
	case errors.Is(err, ledger.ErrConflict):
		return nil, apperrors.NewConflict(err)
	default:
		return nil, d.storeFailure("create_user", err)
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, cmd command.Command, msg domain.InboundMessage, user *domain.User) ([]domain.OutboundMessage, error) {
	switch cmd.Type {
	case command.TypeMenu:
		return d.reply(msg.SenderID, replyMenu), nil

	case command.TypeGreeting:
		return d.reply(msg.SenderID, fmt.Sprintf(replyGreeting, strings.ToLower(cmd.Greeting), user.Name)), nil

	case command.TypeToday:
		return d.handleToday(ctx, msg.SenderID)

	case command.TypeKindToday:
		return d.handleKindToday(ctx, cmd.Kind, msg.SenderID)

	case command.TypeKindOnDate:
		return d.handleKindOnDate(ctx, cmd.Kind, msg.SenderID, cmd.Date)

	case command.TypeDeleteList:
		return d.handleDeleteList(ctx, cmd.Kind, msg.SenderID)

	case command.TypeDeleteByID:
		return d.handleDeleteByID(ctx, cmd.Kind, msg.SenderID, cmd.ID)

	case command.TypeDeleteOnDate:
		return d.handleDeleteOnDate(ctx, cmd.Kind, msg.SenderID, cmd.Date)

	case command.TypeMonthReport:
		return d.reply(msg.SenderID, report.MonthlyReportNotice), nil

	case command.TypeMonthUnknown:
		return d.reply(msg.SenderID, replyMonthUnknown), nil

	case command.TypeRecord:
		return d.handleRecord(ctx, cmd, msg.SenderID)

	case command.TypeRecordInvalid:
		return d.reply(msg.SenderID, recordUsage(cmd.Kind)), nil
	}

	return d.reply(msg.SenderID, fmt.Sprintf(replyFallback, user.Name)), nil
}

func (d *Dispatcher) handleInfo(msg domain.InboundMessage) []domain.OutboundMessage {
	motivation := fmt.Sprintf(replyMotivationFrame, motivationOfDay(d.now()))
	return []domain.OutboundMessage{
		d.text(msg.SenderID, motivation),
		d.text(msg.SenderID, replyInfo),
	}
}

func (d *Dispatcher) handleToday(ctx context.Context, senderID string) ([]domain.OutboundMessage, error) {
	cmp, err := d.reports.DailyComparison(ctx, senderID, d.now())
	if err != nil {
		return nil, d.storeFailure("daily_comparison", err)
	}

	replies := []domain.OutboundMessage{
		d.text(senderID, fmt.Sprintf(replyTodaySummary,
			cmp.Date.Display(),
			formatRupiah(cmp.IncomeToday),
			formatRupiah(cmp.ExpenseToday),
			formatRupiah(cmp.NetBalance()))),
	}

	// One line per side, directional lines before the stable ones, expense
	// stability reported ahead of income. Senders are used to this order.
	switch cmp.IncomeTrend() {
	case report.TrendIncreased:
		replies = append(replies, d.text(senderID, replyIncomeUp))
	case report.TrendDecreased:
		replies = append(replies, d.text(senderID, replyIncomeDown))
	}
	switch cmp.ExpenseTrend() {
	case report.TrendIncreased:
		replies = append(replies, d.text(senderID, replyExpenseUp))
	case report.TrendDecreased:
		replies = append(replies, d.text(senderID, replyExpenseDown))
	}
	if cmp.ExpenseTrend() == report.TrendUnchanged {
		replies = append(replies, d.text(senderID, replyExpenseStable))
	}
	if cmp.IncomeTrend() == report.TrendUnchanged {
		replies = append(replies, d.text(senderID, replyIncomeStable))
	}

	return replies, nil
}

func (d *Dispatcher) handleKindToday(ctx context.Context, kind domain.Kind, senderID string) ([]domain.OutboundMessage, error) {
	today := domain.DateOf(d.now())

	rows, err := d.store.ListOnDate(ctx, kind, senderID, today, ledger.OrderByID)
	if err != nil {
		return nil, d.storeFailure("list_on_date", err)
	}

	if len(rows) == 0 {
		if kind == domain.KindIncome {
			return d.reply(senderID, "📭 Tidak ada pemasukan hari ini."), nil
		}
		return d.reply(senderID, "📭 Tidak ada pengeluaran hari ini."), nil
	}

	header := fmt.Sprintf("📥 *Pemasukan Hari Ini* (%s)\n\n", today.Display())
	if kind == domain.KindExpense {
		header = fmt.Sprintf("📤 *Pengeluaran Hari Ini* (%s)\n\n", today.Display())
	}
	replies := d.reply(senderID, dayListing(header, rows))

	if img := d.renderPie(ctx, kind, senderID, today); img != nil {
		replies = append(replies, d.image(senderID, img))
	}
	return replies, nil
}

func (d *Dispatcher) handleKindOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]domain.OutboundMessage, error) {
	rows, err := d.store.ListOnDate(ctx, kind, senderID, date, ledger.OrderByID)
	if err != nil {
		return nil, d.storeFailure("list_on_date", err)
	}

	if len(rows) == 0 {
		if kind == domain.KindIncome {
			return d.reply(senderID, fmt.Sprintf("📭 Tidak ada pemasukan pada tanggal %s", date.Display())), nil
		}
		return d.reply(senderID, fmt.Sprintf("📭 Tidak ada pengeluaran pada tanggal %s", date.Display())), nil
	}

	header := fmt.Sprintf("📥 *Pemasukan Tanggal %s*\n\n", date.Display())
	if kind == domain.KindExpense {
		header = fmt.Sprintf("📤 *Pengeluaran Tanggal %s*\n\n", date.Display())
	}
	return d.reply(senderID, dayListing(header, rows)), nil
}

func (d *Dispatcher) handleDeleteList(ctx context.Context, kind domain.Kind, senderID string) ([]domain.OutboundMessage, error) {
	today := domain.DateOf(d.now())

	// Most recent first, so "the one I just entered" leads the listing.
	rows, err := d.store.ListOnDate(ctx, kind, senderID, today, ledger.OrderByTimeDesc)
	if err != nil {
		return nil, d.storeFailure("list_on_date", err)
	}

	if kind == domain.KindIncome {
		if len(rows) == 0 {
			return d.reply(senderID, "📭 Tidak ada pemasukan hari ini."), nil
		}
		return d.reply(senderID, deleteListing(
			"🗑️ *Data Pemasukan Hari Ini*\n\n",
			rows,
			"\nKetik *HAPUSIN #id* untuk menghapus salah satu. \nKetik *HAPUSIN dd/mm/yyyy* untuk menghapus pemasukan pada tanggal tsb.",
		)), nil
	}

	if len(rows) == 0 {
		return d.reply(senderID, "📭 Tidak ada Pengeluaran hari ini."), nil
	}
	return d.reply(senderID, deleteListing(
		"🗑️ *Data Pengeluaran Hari Ini*\n\n",
		rows,
		"\nKetik *HAPUSOUT #id* untuk menghapus salah satu. \nKetik *HAPUSOUT dd/mm/yyyy* untuk menghapus pengeluaran pada tanggal tsb.",
	)), nil
}

func (d *Dispatcher) handleDeleteByID(ctx context.Context, kind domain.Kind, senderID string, id int64) ([]domain.OutboundMessage, error) {
	err := d.store.DeleteTransactionByID(ctx, kind, senderID, id)
	switch {
	case err == nil:
		return d.reply(senderID, fmt.Sprintf(replyDeleted, id)), nil
	case errors.Is(err, ledger.ErrNotFound):
		return d.reply(senderID, replyDeleteMissing), nil
	default:
		return nil, d.storeFailure("delete_by_id", err)
	}
}

func (d *Dispatcher) handleDeleteOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]domain.OutboundMessage, error) {
	count, err := d.store.DeleteAllOnDate(ctx, kind, senderID, date)
	if err != nil {
		return nil, d.storeFailure("delete_on_date", err)
	}

	label := "pemasukan"
	if kind == domain.KindExpense {
		label = "pengeluaran"
	}

	if count == 0 {
		if kind == domain.KindIncome {
			return d.reply(senderID, fmt.Sprintf("📭 Tidak ada pemasukan pada tanggal %s", date.Display())), nil
		}
		return d.reply(senderID, fmt.Sprintf("📭 Tidak ada Pengeluaran pada tanggal %s", date.Display())), nil
	}

	return d.reply(senderID, fmt.Sprintf("🗑️ *%d* data %s pada tanggal %s berhasil dihapus.", count, label, date.Display())), nil
}

func (d *Dispatcher) handleRecord(ctx context.Context, cmd command.Command, senderID string) ([]domain.OutboundMessage, error) {
	now := d.now()
	tx := &domain.Transaction{
		SenderID: senderID,
		Amount:   cmd.Amount,
		Category: cmd.Category,
		Note:     cmd.Note,
		Date:     domain.DateOf(now),
		Time:     domain.ClockOf(now),
	}

	_, err := d.store.InsertTransaction(ctx, cmd.Kind, tx)
	switch {
	case err == nil:
		return d.reply(senderID, recordConfirmation(cmd.Kind, cmd.Amount, cmd.Category, cmd.Note)), nil
	case errors.Is(err, ledger.ErrInvalidInput):
		return d.reply(senderID, recordUsage(cmd.Kind)), nil
	default:
		return nil, d.storeFailure("insert_transaction", err)
	}
}

// renderPie produces the category pie for one kind and day. A failed or
// disabled renderer only costs the attachment, never the textual reply.
func (d *Dispatcher) renderPie(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) *domain.ImageAttachment {
	if d.charts == nil {
		return nil
	}

	totals, _, err := d.reports.CategoryBreakdown(ctx, kind, senderID, date)
	if err != nil {
		d.log.Error("category breakdown failed",
			slog.String("sender_id", senderID),
			slog.Any("error", err))
		return nil
	}
	if len(totals) == 0 {
		return nil
	}

	title := fmt.Sprintf("Kategori %s (%s)", kind.Label(), date.Display())
	img, err := d.charts.Pie(ctx, title, totals)
	if err != nil {
		d.log.Error("chart render failed",
			slog.String("sender_id", senderID),
			slog.Any("error", err))
		return nil
	}
	return img
}

func recordUsage(kind domain.Kind) string {
	if kind == domain.KindIncome {
		return replyRecordIncomeUsage
	}
	return replyRecordExpenseUsage
}

func (d *Dispatcher) storeFailure(op string, err error) error {
	metrics.RecordStoreError(op)
	return apperrors.NewStoreUnavailable(err)
}

func (d *Dispatcher) text(to, body string) domain.OutboundMessage {
	return domain.OutboundMessage{ID: uuid.NewString(), To: to, Text: body}
}

func (d *Dispatcher) image(to string, img *domain.ImageAttachment) domain.OutboundMessage {
	return domain.OutboundMessage{ID: uuid.NewString(), To: to, Image: img}
}

func (d *Dispatcher) reply(to, body string) []domain.OutboundMessage {
	return []domain.OutboundMessage{d.text(to, body)}
}

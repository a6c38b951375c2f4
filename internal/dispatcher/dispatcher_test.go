package dispatcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafamedia/keuangan-bot/internal/apperrors"
	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
	"github.com/grafamedia/keuangan-bot/internal/msglog"
	"github.com/grafamedia/keuangan-bot/internal/registration"
	"github.com/grafamedia/keuangan-bot/internal/report"
	"github.com/grafamedia/keuangan-bot/internal/session"
)

const testSender = "6289651253545"

var testNow = time.Date(2025, time.March, 15, 14, 30, 0, 0, time.UTC)

type fixture struct {
	dispatcher *Dispatcher
	store      ledger.Store
	sessions   *session.MemoryStore
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := ledger.NewMemory()
	sessions := session.NewMemoryStore()

	gate := registration.NewMachine(store, sessions, log)
	reports := report.NewAggregator(store, log)
	recorder := msglog.NewRecorder(store, log)
	errs := apperrors.NewHandler(log, false)

	opts = append([]Option{WithClock(func() time.Time { return testNow })}, opts...)
	return &fixture{
		dispatcher: New(store, gate, reports, recorder, errs, log, opts...),
		store:      store,
		sessions:   sessions,
	}
}

func (f *fixture) handle(body string) []domain.OutboundMessage {
	return f.dispatcher.Handle(context.Background(), domain.InboundMessage{
		SenderID:   testSender,
		Body:       body,
		ReceivedAt: testNow,
	})
}

func (f *fixture) register(t *testing.T, name string) {
	t.Helper()
	require.NoError(t, f.store.CreateUser(context.Background(), &domain.User{
		SenderID:       testSender,
		Name:           name,
		RegisteredDate: domain.DateOf(testNow),
		RegisteredTime: domain.ClockOf(testNow),
	}))
}

func texts(msgs []domain.OutboundMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Text)
	}
	return out
}

func TestHandle_RegistrationFlow(t *testing.T) {
	f := newFixture(t)

	// Unknown sender gets the welcome hint.
	replies := f.handle("apa ini?")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "selamat datang")

	// The registration keyword prompts for a name.
	replies = f.handle("daftar")
	require.Len(t, replies, 1)
	assert.Equal(t, replyAskName, replies[0].Text)

	// The next message becomes the display name verbatim.
	replies = f.handle("Alice")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Alice")
	assert.Contains(t, replies[0].Text, "pendaftaran mu telah berhasil")

	user, err := f.store.FindUser(context.Background(), testSender)
	require.NoError(t, err)
	assert.Equal(t, "Alice", user.Name)

	// The registration session is consumed.
	_, err = f.sessions.Get(context.Background(), testSender)
	assert.ErrorIs(t, err, session.ErrNotFound)
}

func TestHandle_RecordThenTodayReport(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	replies := f.handle("in 50000 Gaji")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "✅ Pemasukan sebesar *Rp50.000*")
	assert.Contains(t, replies[0].Text, "Jenis: *Gaji*")

	replies = f.handle("out 20000 Makan siang")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "✅ Pengeluaran sebesar *Rp20.000*")
	assert.Contains(t, replies[0].Text, "Keterangan: *siang*")

	replies = f.handle("today")
	bodies := texts(replies)
	require.NotEmpty(t, bodies)

	assert.Contains(t, bodies[0], "📊 *Laporan Hari Ini* (15/03/2025)")
	assert.Contains(t, bodies[0], "Total In: Rp 50.000")
	assert.Contains(t, bodies[0], "Total Out: Rp 20.000")
	assert.Contains(t, bodies[0], "Net Balance: Rp 30.000")

	// Yesterday has nothing, so both sides trended up.
	require.Len(t, replies, 3)
	assert.Equal(t, replyIncomeUp, bodies[1])
	assert.Equal(t, replyExpenseUp, bodies[2])
}

func TestHandle_TodayStableTrends(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	replies := f.handle("today")
	bodies := texts(replies)
	require.Len(t, replies, 3)

	// Nothing either day: both sides stable, expense line first.
	assert.Equal(t, replyExpenseStable, bodies[1])
	assert.Equal(t, replyIncomeStable, bodies[2])
}

func TestHandle_DeleteByID_NotFound(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	replies := f.handle("hapusin #999")
	require.Len(t, replies, 1)
	assert.Equal(t, replyDeleteMissing, replies[0].Text)
}

func TestHandle_DeleteByID(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	f.handle("in 50000 Gaji")

	replies := f.handle("hapusin #1")
	require.Len(t, replies, 1)
	assert.Equal(t, "🗑️ Data dengan ID *#1* berhasil dihapus.", replies[0].Text)

	replies = f.handle("in today")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Tidak ada pemasukan hari ini")
}

func TestHandle_DeleteOnDate(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	f.handle("out 10000 Makan")
	f.handle("out 5000 Transport")

	replies := f.handle("hapusout 15/03/2025")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "*2* data pengeluaran pada tanggal 15/03/2025")

	replies = f.handle("hapusout 15/03/2025")
	require.Len(t, replies, 1)
	assert.Contains(t, replies[0].Text, "Tidak ada Pengeluaran pada tanggal 15/03/2025")
}

func TestHandle_MonthReportPlaceholder(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	f.handle("in 100000 Gaji")

	// The placeholder fires regardless of existing records.
	for _, input := range []string{"Maret 2025", "in maret 2025", "out Maret 2025"} {
		replies := f.handle(input)
		require.Len(t, replies, 1, "input %q", input)
		assert.Equal(t, report.MonthlyReportNotice, replies[0].Text)
	}

	replies := f.handle("marret 2025")
	require.Len(t, replies, 1)
	assert.Equal(t, replyMonthUnknown, replies[0].Text)
}

func TestHandle_InfoAndSummaryBypassRegistration(t *testing.T) {
	f := newFixture(t)

	replies := f.handle("info")
	require.Len(t, replies, 2)
	assert.Contains(t, replies[0].Text, "Motivasi Keuangan Hari Ini")
	assert.Contains(t, replies[1].Text, "Asisten Keuangan Pribadi")

	replies = f.handle("summary")
	require.Len(t, replies, 1)
	assert.Equal(t, report.MonthlyReportNotice, replies[0].Text)
}

func TestHandle_GreetingAndFallbackUseName(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Budi")

	replies := f.handle("Halo")
	require.Len(t, replies, 1)
	assert.Equal(t, "halo juga Budi, apakah kamu butuh bantuan? 😊\nKetik *Help* untuk melihat bantuan.", replies[0].Text)

	replies = f.handle("terima kasih")
	require.Len(t, replies, 1)
	assert.Equal(t, "Maaf ya Budi, apakah kamu butuh bantuan? 😊\nKetik *Help* untuk melihat bantuan.", replies[0].Text)
}

func TestHandle_RecordUsageHints(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	replies := f.handle("in abc Gaji")
	require.Len(t, replies, 1)
	assert.Equal(t, replyRecordIncomeUsage, replies[0].Text)

	replies = f.handle("out 500")
	require.Len(t, replies, 1)
	assert.Equal(t, replyRecordExpenseUsage, replies[0].Text)
}

func TestHandle_KindTodayListingWithChart(t *testing.T) {
	f := newFixture(t, WithChartRenderer(stubRenderer{}))
	f.register(t, "Alice")

	f.handle("out 20000 Makan siang")
	f.handle("out 15000 Transport")

	replies := f.handle("out today")
	require.Len(t, replies, 2)

	assert.Contains(t, replies[0].Text, "📤 *Pengeluaran Hari Ini* (15/03/2025)")
	assert.Contains(t, replies[0].Text, "#1. Rp20.000 - Makan - siang")
	assert.Contains(t, replies[0].Text, "#2. Rp15.000 - Transport")
	assert.Contains(t, replies[0].Text, "💰 Total: *Rp35.000*")

	require.NotNil(t, replies[1].Image)
	assert.Equal(t, "image/png", replies[1].Image.MIME)
}

func TestHandle_DeleteListMostRecentFirst(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Alice")

	f.handle("in 50000 Gaji")
	f.handle("in 10000 Bonus")

	replies := f.handle("hapusin")
	require.Len(t, replies, 1)

	text := replies[0].Text
	assert.Contains(t, text, "🗑️ *Data Pemasukan Hari Ini*")
	// Same timestamp, so the higher id leads.
	assert.Less(t, indexOf(t, text, "#2 - Rp10.000 - Bonus"), indexOf(t, text, "#1 - Rp50.000 - Gaji"))
	assert.Contains(t, text, "Ketik *HAPUSIN #id*")
}

func TestHandle_AlwaysWritesMessageLog(t *testing.T) {
	f := newFixture(t)

	f.handle("info")
	f.handle("daftar")

	logged, ok := f.store.(interface{ MessageLog() []domain.MessageLogEntry })
	require.True(t, ok)

	entries := logged.MessageLog()
	require.Len(t, entries, 2)
	assert.Equal(t, "info", entries[0].Body)
	assert.Equal(t, "daftar", entries[1].Body)
	assert.Equal(t, testSender, entries[0].SenderID)
}

type stubRenderer struct{}

func (stubRenderer) Pie(_ context.Context, _ string, _ []ledger.CategoryTotal) (*domain.ImageAttachment, error) {
	return &domain.ImageAttachment{MIME: "image/png", Data: []byte{0x89}}, nil
}

func indexOf(t *testing.T, haystack, needle string) int {
	t.Helper()
	idx := strings.Index(haystack, needle)
	require.GreaterOrEqual(t, idx, 0, "missing %q", needle)
	return idx
}

type stubSenderLock struct {
	err     error
	locks   int
	unlocks int
}

func (s *stubSenderLock) Lock(_ context.Context, _ string) error {
	s.locks++
	return s.err
}

func (s *stubSenderLock) Unlock(_ context.Context, _ string) {
	s.unlocks++
}

func TestHandle_SenderLockAcquiredAndReleased(t *testing.T) {
	lock := &stubSenderLock{}
	f := newFixture(t, WithSenderLocker(lock))
	f.register(t, "Budi")

	replies := f.handle("menu")

	require.NotEmpty(t, replies)
	assert.Equal(t, 1, lock.locks)
	assert.Equal(t, 1, lock.unlocks)
}

func TestHandle_SenderHeldByAnotherProcess(t *testing.T) {
	lock := &stubSenderLock{err: session.ErrLocked}
	f := newFixture(t, WithSenderLocker(lock))
	f.register(t, "Budi")

	replies := f.handle("in 50000 Gaji")

	assert.Empty(t, replies, "the holding process answers the sender")
	assert.Zero(t, lock.unlocks)

	rows, err := f.store.ListOnDate(context.Background(), domain.KindIncome, testSender, domain.DateOf(testNow), ledger.OrderByID)
	require.NoError(t, err)
	assert.Empty(t, rows, "no ledger write while another process holds the sender")

	logged, ok := f.store.(interface{ MessageLog() []domain.MessageLogEntry })
	require.True(t, ok)
	assert.Empty(t, logged.MessageLog(), "the holding process writes the audit entry")
}

func TestHandle_BrokenSenderLockDoesNotDropMessages(t *testing.T) {
	lock := &stubSenderLock{err: errors.New("connection refused")}
	f := newFixture(t, WithSenderLocker(lock))
	f.register(t, "Budi")

	replies := f.handle("menu")

	require.NotEmpty(t, replies)
	assert.Zero(t, lock.unlocks)
}

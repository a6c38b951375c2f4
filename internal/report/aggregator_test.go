package report

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedTransaction(t *testing.T, store ledger.Store, kind domain.Kind, senderID string, amount int64, category string, date domain.Date) {
	t.Helper()
	_, err := store.InsertTransaction(context.Background(), kind, &domain.Transaction{
		SenderID: senderID,
		Amount:   amount,
		Category: category,
		Date:     date,
		Time:     "10:00:00",
	})
	require.NoError(t, err)
}

func TestTrendOf(t *testing.T) {
	assert.Equal(t, TrendIncreased, TrendOf(100, 50))
	assert.Equal(t, TrendDecreased, TrendOf(50, 100))
	assert.Equal(t, TrendUnchanged, TrendOf(50, 50))
	assert.Equal(t, TrendUnchanged, TrendOf(0, 0))
}

func TestAggregator_DailyComparison(t *testing.T) {
	store := ledger.NewMemory()
	agg := NewAggregator(store, testLogger())

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	today := domain.DateOf(now)
	yesterday := domain.DateOf(now.AddDate(0, 0, -1))

	seedTransaction(t, store, domain.KindIncome, "628111", 50000, "Gaji", today)
	seedTransaction(t, store, domain.KindIncome, "628111", 10000, "Bonus", today)
	seedTransaction(t, store, domain.KindIncome, "628111", 80000, "Gaji", yesterday)
	seedTransaction(t, store, domain.KindExpense, "628111", 20000, "Makan", today)

	// Another sender's entries must not leak into the sums.
	seedTransaction(t, store, domain.KindIncome, "628999", 999999, "Gaji", today)

	cmp, err := agg.DailyComparison(context.Background(), "628111", now)
	require.NoError(t, err)

	assert.Equal(t, today, cmp.Date)
	assert.Equal(t, int64(60000), cmp.IncomeToday)
	assert.Equal(t, int64(80000), cmp.IncomeYesterday)
	assert.Equal(t, int64(20000), cmp.ExpenseToday)
	assert.Equal(t, int64(0), cmp.ExpenseYesterday)

	assert.Equal(t, TrendDecreased, cmp.IncomeTrend())
	assert.Equal(t, TrendIncreased, cmp.ExpenseTrend())
	assert.Equal(t, int64(40000), cmp.NetBalance())
}

func TestAggregator_DailyComparison_EmptyLedger(t *testing.T) {
	store := ledger.NewMemory()
	agg := NewAggregator(store, testLogger())

	cmp, err := agg.DailyComparison(context.Background(), "628111", time.Now())
	require.NoError(t, err)

	assert.Zero(t, cmp.IncomeToday)
	assert.Zero(t, cmp.ExpenseToday)
	assert.Equal(t, TrendUnchanged, cmp.IncomeTrend())
	assert.Equal(t, TrendUnchanged, cmp.ExpenseTrend())
	assert.Zero(t, cmp.NetBalance())
}

func TestAggregator_DailyComparison_NegativeBalance(t *testing.T) {
	store := ledger.NewMemory()
	agg := NewAggregator(store, testLogger())

	now := time.Date(2025, 3, 15, 12, 0, 0, 0, time.UTC)
	seedTransaction(t, store, domain.KindIncome, "628111", 10000, "Gaji", domain.DateOf(now))
	seedTransaction(t, store, domain.KindExpense, "628111", 25000, "Belanja", domain.DateOf(now))

	cmp, err := agg.DailyComparison(context.Background(), "628111", now)
	require.NoError(t, err)
	assert.Equal(t, int64(-15000), cmp.NetBalance())
}

func TestAggregator_CategoryBreakdown(t *testing.T) {
	store := ledger.NewMemory()
	agg := NewAggregator(store, testLogger())

	date := domain.Date("2025-03-15")
	seedTransaction(t, store, domain.KindExpense, "628111", 20000, "Makan", date)
	seedTransaction(t, store, domain.KindExpense, "628111", 5000, "Makan", date)
	seedTransaction(t, store, domain.KindExpense, "628111", 15000, "Transport", date)

	totals, total, err := agg.CategoryBreakdown(context.Background(), domain.KindExpense, "628111", date)
	require.NoError(t, err)

	assert.Equal(t, int64(40000), total)
	require.Len(t, totals, 2)
	assert.Equal(t, ledger.CategoryTotal{Category: "Makan", Total: 25000}, totals[0])
	assert.Equal(t, ledger.CategoryTotal{Category: "Transport", Total: 15000}, totals[1])
}

// Package report computes the aggregate figures behind the daily report and
// the category breakdown charts.
package report

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/grafamedia/keuangan-bot/internal/domain"
	"github.com/grafamedia/keuangan-bot/internal/ledger"
)

// MonthlyReportNotice is the reply for every month-range request. Month
// reports need a running history before they can say anything useful.
const MonthlyReportNotice = "Laporan bulanan akan tersedia setelah anda melakukan catat pemasukan dan pengeluaran lebih dari 14 hari. "

// Trend compares a figure for today against yesterday's.
type Trend string

const (
	TrendIncreased Trend = "increased"
	TrendDecreased Trend = "decreased"
	TrendUnchanged Trend = "unchanged"
)

// TrendOf classifies today's figure against yesterday's. Equal values,
// including two zeroes, are unchanged.
func TrendOf(today, yesterday int64) Trend {
	switch {
	case today > yesterday:
		return TrendIncreased
	case today < yesterday:
		return TrendDecreased
	default:
		return TrendUnchanged
	}
}

// DailyComparison holds the four sums behind the daily report.
type DailyComparison struct {
	Date             domain.Date
	IncomeToday      int64
	IncomeYesterday  int64
	ExpenseToday     int64
	ExpenseYesterday int64
}

// IncomeTrend reports the income direction against yesterday.
func (c DailyComparison) IncomeTrend() Trend {
	return TrendOf(c.IncomeToday, c.IncomeYesterday)
}

// ExpenseTrend reports the expense direction against yesterday.
func (c DailyComparison) ExpenseTrend() Trend {
	return TrendOf(c.ExpenseToday, c.ExpenseYesterday)
}

// NetBalance is today's income minus today's expenses. It can be negative.
func (c DailyComparison) NetBalance() int64 {
	return c.IncomeToday - c.ExpenseToday
}

// Aggregator answers report queries against the ledger store.
type Aggregator struct {
	store ledger.Store
	log   *slog.Logger
}

func NewAggregator(store ledger.Store, log *slog.Logger) *Aggregator {
	return &Aggregator{store: store, log: log}
}

// DailyComparison computes today's and yesterday's totals for both kinds.
// The four sums are independent queries and run concurrently.
func (a *Aggregator) DailyComparison(ctx context.Context, senderID string, now time.Time) (DailyComparison, error) {
	today := domain.DateOf(now)
	yesterday := domain.DateOf(now.AddDate(0, 0, -1))

	cmp := DailyComparison{Date: today}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		cmp.IncomeToday, err = a.store.SumOnDate(gctx, domain.KindIncome, senderID, today)
		return err
	})
	g.Go(func() error {
		var err error
		cmp.IncomeYesterday, err = a.store.SumOnDate(gctx, domain.KindIncome, senderID, yesterday)
		return err
	})
	g.Go(func() error {
		var err error
		cmp.ExpenseToday, err = a.store.SumOnDate(gctx, domain.KindExpense, senderID, today)
		return err
	})
	g.Go(func() error {
		var err error
		cmp.ExpenseYesterday, err = a.store.SumOnDate(gctx, domain.KindExpense, senderID, yesterday)
		return err
	})

	if err := g.Wait(); err != nil {
		return DailyComparison{}, fmt.Errorf("daily comparison for %s: %w", senderID, err)
	}
	return cmp, nil
}

// CategoryBreakdown returns one kind's per-category totals for a date, plus
// the grand total the chart percentages are computed against.
func (a *Aggregator) CategoryBreakdown(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]ledger.CategoryTotal, int64, error) {
	totals, err := a.store.SumByCategoryOnDate(ctx, kind, senderID, date)
	if err != nil {
		return nil, 0, fmt.Errorf("category breakdown for %s: %w", senderID, err)
	}

	var total int64
	for _, t := range totals {
		total += t.Total
	}
	return totals, total, nil
}

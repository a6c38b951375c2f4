package domain

import (
	"fmt"
	"time"
)

// Kind selects one of the two parallel transaction ledgers.
type Kind string

const (
	// KindIncome marks a transaction recorded with the IN command.
	KindIncome Kind = "income"
	// KindExpense marks a transaction recorded with the OUT command.
	KindExpense Kind = "expense"
)

// Label returns the Indonesian user-facing name of the kind, as used in
// listings and chart titles.
func (k Kind) Label() string {
	if k == KindIncome {
		return "Pemasukan"
	}
	return "Pengeluaran"
}

// Transaction is a single income or expense entry. The identifier is assigned
// by the store and is sequential within the transaction's kind. Amounts are
// non-negative integers in the smallest currency unit.
type Transaction struct {
	ID       int64
	SenderID string
	Amount   int64
	Category string
	Note     string
	Date     Date
	Time     Clock
}

// Date is a calendar day in "2006-01-02" form. Keeping the stored key a plain
// string gives identical equality semantics across the SQL backends.
type Date string

// Clock is a time of day in "15:04:05" form.
type Clock string

// DateOf truncates t to its local calendar day.
func DateOf(t time.Time) Date {
	return Date(t.Format("2006-01-02"))
}

// ClockOf extracts the local time of day from t.
func ClockOf(t time.Time) Clock {
	return Clock(t.Format("15:04:05"))
}

// DateFromParts builds a Date from literal day/month/year numbers without any
// calendar validation. 31/02/2025 produces a date no row will ever match,
// which is the documented behavior for delete- and query-by-date.
func DateFromParts(day, month, year int) Date {
	return Date(fmt.Sprintf("%04d-%02d-%02d", year, month, day))
}

// Display renders the date in the dd/mm/yyyy form used in every reply.
func (d Date) Display() string {
	s := string(d)
	if len(s) != 10 {
		return s
	}
	return s[8:10] + "/" + s[5:7] + "/" + s[0:4]
}

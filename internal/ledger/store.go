// Package ledger persists users, income entries, expense entries, and the
// inbound message log, and answers the aggregate queries the reports need.
package ledger

import (
	"context"
	"errors"
	"strings"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

var (
	// ErrUserNotFound indicates no user record exists for the sender id.
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict indicates a user record already exists for the sender id.
	ErrConflict = errors.New("user already exists")
	// ErrNotFound indicates no transaction matches both id and sender id.
	// A row owned by another sender reports the same error on purpose.
	ErrNotFound = errors.New("transaction not found")
	// ErrInvalidInput indicates a transaction that must not be written:
	// negative amount or empty category.
	ErrInvalidInput = errors.New("invalid transaction input")
)

// Order selects the row ordering of ListOnDate. Day listings walk entries in
// insertion order; delete-candidate listings show the most recent first so
// the sender can find the one they just entered.
type Order int

const (
	OrderByID Order = iota
	OrderByTimeDesc
)

// CategoryTotal is one slice of the per-category aggregation, ordered by
// category label for a stable chart layout.
type CategoryTotal struct {
	Category string
	Total    int64
}

// Store is the persistence contract of the ledger engine.
type Store interface {
	CreateUser(ctx context.Context, user *domain.User) error
	FindUser(ctx context.Context, senderID string) (*domain.User, error)
	ListUsers(ctx context.Context) ([]*domain.User, error)

	InsertTransaction(ctx context.Context, kind domain.Kind, tx *domain.Transaction) (int64, error)
	DeleteTransactionByID(ctx context.Context, kind domain.Kind, senderID string, id int64) error
	DeleteAllOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error)
	ListOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date, order Order) ([]domain.Transaction, error)
	SumOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error)
	SumByCategoryOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]CategoryTotal, error)

	AppendMessageLog(ctx context.Context, entry *domain.MessageLogEntry) error

	HealthCheck(ctx context.Context) error
	Close() error
}

// tableFor maps a kind to its SQL table. Both backends share the schema.
func tableFor(kind domain.Kind) string {
	if kind == domain.KindIncome {
		return "income_entries"
	}
	return "expense_entries"
}

// validateTransaction rejects rows that must never reach the store.
func validateTransaction(tx *domain.Transaction) error {
	if tx == nil {
		return ErrInvalidInput
	}
	if tx.Amount < 0 {
		return ErrInvalidInput
	}
	if strings.TrimSpace(tx.Category) == "" {
		return ErrInvalidInput
	}
	return nil
}

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

const pgUniqueViolation = "23505"

type postgresStore struct {
	db  *sql.DB
	log *slog.Logger
}

// NewPostgres wraps an open Postgres connection in a Store.
func NewPostgres(db *sql.DB, log *slog.Logger) Store {
	if log == nil {
		log = slog.Default()
	}

	return &postgresStore{db: db, log: log}
}

func (s *postgresStore) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (sender_id, name, registered_date, registered_time)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, user.SenderID, user.Name, user.RegisteredDate, user.RegisteredTime); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pgUniqueViolation {
			return ErrConflict
		}

		s.log.Error("failed to create user", slog.String("sender_id", user.SenderID), slog.Any("error", err))
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (s *postgresStore) FindUser(ctx context.Context, senderID string) (*domain.User, error) {
	const query = `
		SELECT id, sender_id, name, registered_date, registered_time
		FROM users
		WHERE sender_id = $1
	`

	row := s.db.QueryRowContext(ctx, query, senderID)

	var user domain.User
	if err := row.Scan(&user.ID, &user.SenderID, &user.Name, &user.RegisteredDate, &user.RegisteredTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}

		s.log.Error("failed to fetch user", slog.String("sender_id", senderID), slog.Any("error", err))
		return nil, fmt.Errorf("select user by sender id: %w", err)
	}

	return &user, nil
}

func (s *postgresStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
	const query = `
		SELECT id, sender_id, name, registered_date, registered_time
		FROM users
		ORDER BY id
	`

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(&user.ID, &user.SenderID, &user.Name, &user.RegisteredDate, &user.RegisteredTime); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, &user)
	}

	return users, rows.Err()
}

func (s *postgresStore) InsertTransaction(ctx context.Context, kind domain.Kind, tx *domain.Transaction) (int64, error) {
	if err := validateTransaction(tx); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (sender_id, amount, category, note, entry_date, entry_time)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, tableFor(kind))

	var id int64
	err := s.db.QueryRowContext(ctx, query, tx.SenderID, tx.Amount, tx.Category, nullableNote(tx.Note), tx.Date, tx.Time).Scan(&id)
	if err != nil {
		s.log.Error("failed to insert transaction",
			slog.String("kind", string(kind)),
			slog.String("sender_id", tx.SenderID),
			slog.Any("error", err),
		)
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}

	return id, nil
}

func (s *postgresStore) DeleteTransactionByID(ctx context.Context, kind domain.Kind, senderID string, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1 AND sender_id = $2`, tableFor(kind))

	res, err := s.db.ExecContext(ctx, query, id, senderID)
	if err != nil {
		s.log.Error("failed to delete transaction", slog.Int64("id", id), slog.Any("error", err))
		return fmt.Errorf("delete %s by id: %w", kind, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}

	return nil
}

func (s *postgresStore) DeleteAllOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE sender_id = $1 AND entry_date = $2`, tableFor(kind))

	res, err := s.db.ExecContext(ctx, query, senderID, date)
	if err != nil {
		s.log.Error("failed to delete transactions on date", slog.String("date", string(date)), slog.Any("error", err))
		return 0, fmt.Errorf("delete %s on date: %w", kind, err)
	}

	return res.RowsAffected()
}

func (s *postgresStore) ListOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date, order Order) ([]domain.Transaction, error) {
	orderClause := "ORDER BY id"
	if order == OrderByTimeDesc {
		orderClause = "ORDER BY entry_time DESC, id DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, sender_id, amount, category, note, entry_date, entry_time
		FROM %s
		WHERE sender_id = $1 AND entry_date = $2
		%s
	`, tableFor(kind), orderClause)

	rows, err := s.db.QueryContext(ctx, query, senderID, date)
	if err != nil {
		return nil, fmt.Errorf("select %s on date: %w", kind, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *postgresStore) SumOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0)
		FROM %s
		WHERE sender_id = $1 AND entry_date = $2
	`, tableFor(kind))

	var total int64
	if err := s.db.QueryRowContext(ctx, query, senderID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s on date: %w", kind, err)
	}

	return total, nil
}

func (s *postgresStore) SumByCategoryOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]CategoryTotal, error) {
	query := fmt.Sprintf(`
		SELECT category, SUM(amount)
		FROM %s
		WHERE sender_id = $1 AND entry_date = $2
		GROUP BY category
		ORDER BY category
	`, tableFor(kind))

	rows, err := s.db.QueryContext(ctx, query, senderID, date)
	if err != nil {
		return nil, fmt.Errorf("sum %s by category: %w", kind, err)
	}
	defer rows.Close()

	var totals []CategoryTotal
	for rows.Next() {
		var ct CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total); err != nil {
			return nil, fmt.Errorf("scan category total: %w", err)
		}
		totals = append(totals, ct)
	}

	return totals, rows.Err()
}

func (s *postgresStore) AppendMessageLog(ctx context.Context, entry *domain.MessageLogEntry) error {
	const query = `
		INSERT INTO message_log (sender_id, body, log_date, log_time)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := s.db.ExecContext(ctx, query, entry.SenderID, entry.Body, entry.Date, entry.Time); err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}

	return nil
}

func (s *postgresStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *postgresStore) Close() error {
	return s.db.Close()
}

func nullableNote(note string) sql.NullString {
	if note == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: note, Valid: true}
}

func scanTransactions(rows *sql.Rows) ([]domain.Transaction, error) {
	var list []domain.Transaction
	for rows.Next() {
		var (
			tx   domain.Transaction
			note sql.NullString
		)
		if err := rows.Scan(&tx.ID, &tx.SenderID, &tx.Amount, &tx.Category, &note, &tx.Date, &tx.Time); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		tx.Note = note.String
		list = append(list, tx)
	}

	return list, rows.Err()
}

package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

type sqliteStore struct {
	db  *sql.DB
	log *slog.Logger
}

// OpenSQLite opens (creating if needed) the SQLite database file and returns
// a Store over it, along with the raw handle for migrations.
func OpenSQLite(path string, log *slog.Logger) (Store, *sql.DB, error) {
	if log == nil {
		log = slog.Default()
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, fmt.Errorf("create db directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("ping sqlite database: %w", err)
	}

	return &sqliteStore{db: db, log: log}, db, nil
}

func (s *sqliteStore) CreateUser(ctx context.Context, user *domain.User) error {
	const query = `
		INSERT INTO users (sender_id, name, registered_date, registered_time)
		VALUES (?, ?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, user.SenderID, user.Name, user.RegisteredDate, user.RegisteredTime); err != nil {
		if isSQLiteUniqueViolation(err) {
			return ErrConflict
		}

		s.log.Error("failed to create user", slog.String("sender_id", user.SenderID), slog.Any("error", err))
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

func (s *sqliteStore) FindUser(ctx context.Context, senderID string) (*domain.User, error) {
	const query = `
		SELECT id, sender_id, name, registered_date, registered_time
		FROM users
		WHERE sender_id = ?
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

func (s *sqliteStore) ListUsers(ctx context.Context) ([]*domain.User, error) {
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

func (s *sqliteStore) InsertTransaction(ctx context.Context, kind domain.Kind, tx *domain.Transaction) (int64, error) {
	if err := validateTransaction(tx); err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (sender_id, amount, category, note, entry_date, entry_time)
		VALUES (?, ?, ?, ?, ?, ?)
	`, tableFor(kind))

	res, err := s.db.ExecContext(ctx, query, tx.SenderID, tx.Amount, tx.Category, nullableNote(tx.Note), tx.Date, tx.Time)
	if err != nil {
		s.log.Error("failed to insert transaction",
			slog.String("kind", string(kind)),
			slog.String("sender_id", tx.SenderID),
			slog.Any("error", err),
		)
		return 0, fmt.Errorf("insert %s: %w", kind, err)
	}

	return res.LastInsertId()
}

func (s *sqliteStore) DeleteTransactionByID(ctx context.Context, kind domain.Kind, senderID string, id int64) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = ? AND sender_id = ?`, tableFor(kind))

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

func (s *sqliteStore) DeleteAllOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	query := fmt.Sprintf(`DELETE FROM %s WHERE sender_id = ? AND entry_date = ?`, tableFor(kind))

	res, err := s.db.ExecContext(ctx, query, senderID, date)
	if err != nil {
		s.log.Error("failed to delete transactions on date", slog.String("date", string(date)), slog.Any("error", err))
		return 0, fmt.Errorf("delete %s on date: %w", kind, err)
	}

	return res.RowsAffected()
}

func (s *sqliteStore) ListOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date, order Order) ([]domain.Transaction, error) {
	orderClause := "ORDER BY id"
	if order == OrderByTimeDesc {
		orderClause = "ORDER BY entry_time DESC, id DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, sender_id, amount, category, note, entry_date, entry_time
		FROM %s
		WHERE sender_id = ? AND entry_date = ?
		%s
	`, tableFor(kind), orderClause)

	rows, err := s.db.QueryContext(ctx, query, senderID, date)
	if err != nil {
		return nil, fmt.Errorf("select %s on date: %w", kind, err)
	}
	defer rows.Close()

	return scanTransactions(rows)
}

func (s *sqliteStore) SumOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	query := fmt.Sprintf(`
		SELECT COALESCE(SUM(amount), 0)
		FROM %s
		WHERE sender_id = ? AND entry_date = ?
	`, tableFor(kind))

	var total int64
	if err := s.db.QueryRowContext(ctx, query, senderID, date).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum %s on date: %w", kind, err)
	}

	return total, nil
}

func (s *sqliteStore) SumByCategoryOnDate(ctx context.Context, kind domain.Kind, senderID string, date domain.Date) ([]CategoryTotal, error) {
	query := fmt.Sprintf(`
		SELECT category, SUM(amount)
		FROM %s
		WHERE sender_id = ? AND entry_date = ?
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

func (s *sqliteStore) AppendMessageLog(ctx context.Context, entry *domain.MessageLogEntry) error {
	const query = `
		INSERT INTO message_log (sender_id, body, log_date, log_time)
		VALUES (?, ?, ?, ?)
	`

	if _, err := s.db.ExecContext(ctx, query, entry.SenderID, entry.Body, entry.Date, entry.Time); err != nil {
		return fmt.Errorf("insert message log: %w", err)
	}

	return nil
}

func (s *sqliteStore) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}

func isSQLiteUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

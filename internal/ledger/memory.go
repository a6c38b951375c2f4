package ledger

import (
	"context"
	"sort"
	"sync"

	"github.com/grafamedia/keuangan-bot/internal/domain"
)

// memoryStore keeps the whole ledger in process memory. It backs the
// "memory" storage driver and the package tests.
type memoryStore struct {
	mu       sync.RWMutex
	users    map[string]*domain.User
	entries  map[domain.Kind][]domain.Transaction
	nextID   map[domain.Kind]int64
	nextUser int64
	msgLog   []domain.MessageLogEntry
}

// NewMemory returns an empty in-memory Store.
func NewMemory() Store {
	return &memoryStore{
		users: make(map[string]*domain.User),
		entries: map[domain.Kind][]domain.Transaction{
			domain.KindIncome:  nil,
			domain.KindExpense: nil,
		},
		nextID: map[domain.Kind]int64{
			domain.KindIncome:  1,
			domain.KindExpense: 1,
		},
		nextUser: 1,
	}
}

func (s *memoryStore) CreateUser(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.SenderID]; exists {
		return ErrConflict
	}

	stored := *user
	stored.ID = s.nextUser
	s.nextUser++
	s.users[user.SenderID] = &stored

	return nil
}

func (s *memoryStore) FindUser(_ context.Context, senderID string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[senderID]
	if !ok {
		return nil, ErrUserNotFound
	}

	copied := *user
	return &copied, nil
}

func (s *memoryStore) ListUsers(_ context.Context) ([]*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]*domain.User, 0, len(s.users))
	for _, user := range s.users {
		copied := *user
		users = append(users, &copied)
	}

	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })

	return users, nil
}

func (s *memoryStore) InsertTransaction(_ context.Context, kind domain.Kind, tx *domain.Transaction) (int64, error) {
	if err := validateTransaction(tx); err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *tx
	stored.ID = s.nextID[kind]
	s.nextID[kind]++
	s.entries[kind] = append(s.entries[kind], stored)

	return stored.ID, nil
}

func (s *memoryStore) DeleteTransactionByID(_ context.Context, kind domain.Kind, senderID string, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := s.entries[kind]
	for i, row := range rows {
		if row.ID == id && row.SenderID == senderID {
			s.entries[kind] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}

	return ErrNotFound
}

func (s *memoryStore) DeleteAllOnDate(_ context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		kept    []domain.Transaction
		deleted int64
	)
	for _, row := range s.entries[kind] {
		if row.SenderID == senderID && row.Date == date {
			deleted++
			continue
		}
		kept = append(kept, row)
	}
	s.entries[kind] = kept

	return deleted, nil
}

func (s *memoryStore) ListOnDate(_ context.Context, kind domain.Kind, senderID string, date domain.Date, order Order) ([]domain.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var rows []domain.Transaction
	for _, row := range s.entries[kind] {
		if row.SenderID == senderID && row.Date == date {
			rows = append(rows, row)
		}
	}

	switch order {
	case OrderByTimeDesc:
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].Time != rows[j].Time {
				return rows[i].Time > rows[j].Time
			}
			return rows[i].ID > rows[j].ID
		})
	default:
		sort.SliceStable(rows, func(i, j int) bool { return rows[i].ID < rows[j].ID })
	}

	return rows, nil
}

func (s *memoryStore) SumOnDate(_ context.Context, kind domain.Kind, senderID string, date domain.Date) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total int64
	for _, row := range s.entries[kind] {
		if row.SenderID == senderID && row.Date == date {
			total += row.Amount
		}
	}

	return total, nil
}

func (s *memoryStore) SumByCategoryOnDate(_ context.Context, kind domain.Kind, senderID string, date domain.Date) ([]CategoryTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	byCategory := make(map[string]int64)
	for _, row := range s.entries[kind] {
		if row.SenderID == senderID && row.Date == date {
			byCategory[row.Category] += row.Amount
		}
	}

	totals := make([]CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		totals = append(totals, CategoryTotal{Category: category, Total: total})
	}

	sort.Slice(totals, func(i, j int) bool { return totals[i].Category < totals[j].Category })

	if len(totals) == 0 {
		return nil, nil
	}

	return totals, nil
}

func (s *memoryStore) AppendMessageLog(_ context.Context, entry *domain.MessageLogEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.msgLog = append(s.msgLog, *entry)
	return nil
}

// MessageLog exposes the appended audit entries to tests.
func (s *memoryStore) MessageLog() []domain.MessageLogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.MessageLogEntry, len(s.msgLog))
	copy(out, s.msgLog)
	return out
}

func (s *memoryStore) HealthCheck(context.Context) error { return nil }

func (s *memoryStore) Close() error { return nil }

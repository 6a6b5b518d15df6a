package store

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/castlemilk/savetrack/internal/model"
)

// MemoryStore implements Store interface with in-memory storage
type MemoryStore struct {
	mu sync.RWMutex

	goals        map[string]*model.Goal
	savings      map[string]model.SavingsObservation
	transactions map[string]model.Transaction

	now func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		goals:        make(map[string]*model.Goal),
		savings:      make(map[string]model.SavingsObservation),
		transactions: make(map[string]model.Transaction),
		now:          time.Now,
	}
}

// paginateIDs applies cursor-based pagination to a sorted slice of IDs.
// Returns the paginated IDs and the next page token (empty if no more pages).
func paginateIDs(ids []string, pageSize int32, pageToken string) ([]string, string, error) {
	pageSize = normalizePageSize(pageSize)
	sort.Strings(ids)

	if pageToken != "" {
		cursorID, err := DecodePageToken(pageToken)
		if err != nil {
			return nil, "", fmt.Errorf("invalid page token: %w", err)
		}
		start := sort.SearchStrings(ids, cursorID)
		if start < len(ids) && ids[start] == cursorID {
			start++
		}
		ids = ids[start:]
	}

	var nextToken string
	if int32(len(ids)) > pageSize {
		ids = ids[:pageSize]
		nextToken = EncodePageToken(ids[pageSize-1])
	}
	return ids, nextToken, nil
}

// Goal operations

func (m *MemoryStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	now := m.now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	stored := *goal
	m.goals[goal.ID] = &stored
	return nil
}

func (m *MemoryStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	goal, ok := m.goals[goalID]
	if !ok {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	out := *goal
	return &out, nil
}

func (m *MemoryStore) ListGoals(ctx context.Context, pageSize int32, pageToken string) ([]*model.Goal, string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.goals))
	for id := range m.goals {
		ids = append(ids, id)
	}
	page, nextToken, err := paginateIDs(ids, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	result := make([]*model.Goal, 0, len(page))
	for _, id := range page {
		g := *m.goals[id]
		result = append(result, &g)
	}
	return result, nextToken, nil
}

// Daily savings operations

func (m *MemoryStore) RecordSavings(ctx context.Context, obs *model.SavingsObservation) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	m.savings[obs.ID] = *obs
	return nil
}

func (m *MemoryStore) ListSavings(ctx context.Context, since, until *time.Time) ([]model.SavingsObservation, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.SavingsObservation, 0, len(m.savings))
	for _, obs := range m.savings {
		if inRange(obs.Date, since, until) {
			result = append(result, obs)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if !result[i].Date.Equal(result[j].Date) {
			return result[i].Date.Before(result[j].Date)
		}
		return result[i].ID < result[j].ID
	})
	return result, nil
}

// Transaction operations

func (m *MemoryStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if _, ok := model.ParseTransactionSource(string(txn.Source)); !ok {
		return fmt.Errorf("unknown transaction source %q", txn.Source)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	m.transactions[txn.ID] = *txn
	return nil
}

func (m *MemoryStore) ListTransactions(ctx context.Context, source model.TransactionSource, since, until *time.Time) ([]model.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]model.Transaction, 0, len(m.transactions))
	for _, txn := range m.transactions {
		if source != "" && txn.Source != source {
			continue
		}
		if inRange(txn.Date, since, until) {
			result = append(result, txn)
		}
	}
	sortTransactions(result)
	return result, nil
}

func sortTransactions(txns []model.Transaction) {
	sort.Slice(txns, func(i, j int) bool {
		if !txns[i].Date.Equal(txns[j].Date) {
			return txns[i].Date.Before(txns[j].Date)
		}
		return txns[i].ID < txns[j].ID
	})
}

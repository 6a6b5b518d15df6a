package store

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/castlemilk/savetrack/internal/model"
)

//go:generate mockgen -source=store.go -destination=store_mock.go -package=store

// ErrNotFound is wrapped by every lookup that misses.
var ErrNotFound = errors.New("not found")

// DefaultPageSize applies when a caller passes a non-positive page size.
const DefaultPageSize = 100

// Store defines the persistence operations used by the service layer.
type Store interface {
	// Goal operations
	CreateGoal(ctx context.Context, goal *model.Goal) error
	GetGoal(ctx context.Context, goalID string) (*model.Goal, error)
	ListGoals(ctx context.Context, pageSize int32, pageToken string) ([]*model.Goal, string, error)

	// Daily savings operations. since and until are inclusive calendar days; nil is open.
	RecordSavings(ctx context.Context, obs *model.SavingsObservation) error
	ListSavings(ctx context.Context, since, until *time.Time) ([]model.SavingsObservation, error)

	// Transaction operations. An empty source lists every source.
	CreateTransaction(ctx context.Context, txn *model.Transaction) error
	ListTransactions(ctx context.Context, source model.TransactionSource, since, until *time.Time) ([]model.Transaction, error)
}

// EncodePageToken encodes a document ID into a page token.
func EncodePageToken(docID string) string {
	if docID == "" {
		return ""
	}
	return base64.URLEncoding.EncodeToString([]byte(docID))
}

// DecodePageToken decodes a page token back to a document ID.
func DecodePageToken(token string) (string, error) {
	if token == "" {
		return "", nil
	}
	b, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func inRange(day time.Time, since, until *time.Time) bool {
	day = model.CivilDate(day)
	if since != nil && day.Before(model.CivilDate(*since)) {
		return false
	}
	if until != nil && day.After(model.CivilDate(*until)) {
		return false
	}
	return true
}

func normalizePageSize(pageSize int32) int32 {
	if pageSize <= 0 {
		return DefaultPageSize
	}
	return pageSize
}

package store

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/castlemilk/savetrack/internal/model"
)

// Collection names shared with the web front end.
const (
	CollectionGoals            = "goals"
	CollectionDailySavings     = "daily_savings"
	CollectionUPITransactions  = "upi_transactions"
	CollectionCashTransactions = "cash_transactions"
)

// FirestoreStore implements the Store interface using Firestore.
// Documents are schema-less maps and are decoded through the model package,
// so records written by other clients with missing or loosely typed fields
// are tolerated.
type FirestoreStore struct {
	client *firestore.Client
	now    func() time.Time
}

// NewFirestoreStore creates a new Firestore-backed store
func NewFirestoreStore(client *firestore.Client) *FirestoreStore {
	return &FirestoreStore{
		client: client,
		now:    time.Now,
	}
}

// applyCursorPagination adds OrderBy + StartAfter + Limit to a query for cursor-based pagination.
// It fetches pageSize+1 docs so the caller can detect whether a next page exists.
func (s *FirestoreStore) applyCursorPagination(query firestore.Query, pageSize int32, pageToken string) (firestore.Query, error) {
	query = query.OrderBy(firestore.DocumentID, firestore.Asc)

	if pageToken != "" {
		docID, err := DecodePageToken(pageToken)
		if err != nil {
			return query, fmt.Errorf("invalid page token: %w", err)
		}
		query = query.StartAfter(docID)
	}

	query = query.Limit(int(normalizePageSize(pageSize)) + 1) // +1 to detect next page
	return query, nil
}

// CreateGoal creates a new goal in Firestore
func (s *FirestoreStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	now := s.now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	_, err := s.client.Collection(CollectionGoals).Doc(goal.ID).Set(ctx, goal.Document())
	return err
}

// GetGoal retrieves a goal from Firestore
func (s *FirestoreStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	doc, err := s.client.Collection(CollectionGoals).Doc(goalID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}

	goal, err := model.GoalFromDocument(doc.Ref.ID, doc.Data())
	if err != nil {
		return nil, fmt.Errorf("failed to parse goal %s: %w", goalID, err)
	}
	return &goal, nil
}

// ListGoals lists goals ordered by ID. Documents that do not decode into a
// valid goal are left out of the page.
func (s *FirestoreStore) ListGoals(ctx context.Context, pageSize int32, pageToken string) ([]*model.Goal, string, error) {
	query, err := s.applyCursorPagination(s.client.Collection(CollectionGoals).Query, pageSize, pageToken)
	if err != nil {
		return nil, "", err
	}

	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, "", fmt.Errorf("failed to list goals: %w", err)
	}

	pageSize = normalizePageSize(pageSize)
	var nextPageToken string
	if len(docs) > int(pageSize) {
		docs = docs[:pageSize]
		nextPageToken = EncodePageToken(docs[pageSize-1].Ref.ID)
	}

	goals := make([]*model.Goal, 0, len(docs))
	for _, doc := range docs {
		goal, err := model.GoalFromDocument(doc.Ref.ID, doc.Data())
		if err != nil {
			continue
		}
		goals = append(goals, &goal)
	}
	return goals, nextPageToken, nil
}

// RecordSavings stores one daily savings observation
func (s *FirestoreStore) RecordSavings(ctx context.Context, obs *model.SavingsObservation) error {
	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	_, err := s.client.Collection(CollectionDailySavings).Doc(obs.ID).Set(ctx, obs.Document())
	return err
}

// ListSavings scans the daily savings collection. Dates may have been
// written as timestamps or strings, so range filtering happens after decoding.
func (s *FirestoreStore) ListSavings(ctx context.Context, since, until *time.Time) ([]model.SavingsObservation, error) {
	var result []model.SavingsObservation
	err := s.scan(ctx, CollectionDailySavings, func(doc *firestore.DocumentSnapshot) {
		obs, ok := model.ObservationFromDocument(doc.Ref.ID, doc.Data())
		if ok && inRange(obs.Date, since, until) {
			result = append(result, obs)
		}
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	return result, nil
}

// CreateTransaction stores a transaction in the collection for its source
func (s *FirestoreStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	collection, err := transactionCollection(txn.Source)
	if err != nil {
		return err
	}
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	_, err = s.client.Collection(collection).Doc(txn.ID).Set(ctx, txn.Document())
	return err
}

// ListTransactions scans the UPI and cash collections
func (s *FirestoreStore) ListTransactions(ctx context.Context, source model.TransactionSource, since, until *time.Time) ([]model.Transaction, error) {
	sources := []model.TransactionSource{model.SourceUPI, model.SourceCash}
	if source != "" {
		sources = []model.TransactionSource{source}
	}

	var result []model.Transaction
	for _, src := range sources {
		collection, err := transactionCollection(src)
		if err != nil {
			return nil, err
		}
		err = s.scan(ctx, collection, func(doc *firestore.DocumentSnapshot) {
			txn, ok := model.TransactionFromDocument(doc.Ref.ID, src, doc.Data())
			if ok && inRange(txn.Date, since, until) {
				result = append(result, txn)
			}
		})
		if err != nil {
			return nil, fmt.Errorf("failed to list %s: %w", collection, err)
		}
	}
	sortTransactions(result)
	return result, nil
}

func (s *FirestoreStore) scan(ctx context.Context, collection string, fn func(*firestore.DocumentSnapshot)) error {
	iter := s.client.Collection(collection).OrderBy("date", firestore.Asc).Documents(ctx)
	defer iter.Stop()
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			return nil
		}
		if err != nil {
			return err
		}
		fn(doc)
	}
}

func transactionCollection(source model.TransactionSource) (string, error) {
	switch source {
	case model.SourceUPI:
		return CollectionUPITransactions, nil
	case model.SourceCash:
		return CollectionCashTransactions, nil
	default:
		return "", fmt.Errorf("unknown transaction source %q", source)
	}
}

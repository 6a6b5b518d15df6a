package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/lib/pq"  // register postgres driver
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/castlemilk/savetrack/internal/model"
)

// Supported database/sql driver names.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// schemaSQL is valid for both SQLite and PostgreSQL. Days are stored as
// "YYYY-MM-DD" text so range filters compare lexically.
const schemaSQL = `
CREATE TABLE IF NOT EXISTS goals (
	id             TEXT PRIMARY KEY,
	name           TEXT NOT NULL,
	category       TEXT NOT NULL,
	goal_type      TEXT NOT NULL,
	target_amount  DOUBLE PRECISION NOT NULL,
	current_amount DOUBLE PRECISION NOT NULL,
	deadline       TEXT NOT NULL,
	created_at     TEXT NOT NULL,
	updated_at     TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_savings (
	id          TEXT PRIMARY KEY,
	day         TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_daily_savings_day ON daily_savings(day);

CREATE TABLE IF NOT EXISTS transactions (
	id          TEXT PRIMARY KEY,
	source      TEXT NOT NULL,
	day         TEXT NOT NULL,
	amount      DOUBLE PRECISION NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	category    TEXT NOT NULL DEFAULT '',
	merchant    TEXT NOT NULL DEFAULT '',
	location    TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_transactions_source_day ON transactions(source, day);
`

// SQLStore implements Store on database/sql for SQLite and PostgreSQL.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

// OpenSQL opens the database, applies the schema and returns a store.
// For SQLite the dsn is a file path.
func OpenSQL(ctx context.Context, driver, dsn string) (*SQLStore, error) {
	switch driver {
	case DriverSQLite:
		dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s db: %w", driver, err)
	}
	if driver == DriverSQLite {
		db.SetMaxOpenConns(1)
	}
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return &SQLStore{db: db, driver: driver, now: time.Now}, nil
}

// Close closes the database.
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// rebind rewrites ? placeholders to $n for PostgreSQL.
func (s *SQLStore) rebind(query string) string {
	if s.driver != DriverPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Goal operations

func (s *SQLStore) CreateGoal(ctx context.Context, goal *model.Goal) error {
	if goal.ID == "" {
		goal.ID = uuid.New().String()
	}
	now := s.now().UTC()
	if goal.CreatedAt.IsZero() {
		goal.CreatedAt = now
	}
	goal.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO goals
		(id, name, category, goal_type, target_amount, current_amount, deadline, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			name = excluded.name, category = excluded.category, goal_type = excluded.goal_type,
			target_amount = excluded.target_amount, current_amount = excluded.current_amount,
			deadline = excluded.deadline, updated_at = excluded.updated_at`),
		goal.ID, goal.Name, string(goal.Category), string(goal.Type),
		goal.TargetAmount, goal.CurrentAmount, model.FormatDate(goal.Deadline),
		goal.CreatedAt.Format(time.RFC3339Nano), goal.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("inserting goal: %w", err)
	}
	return nil
}

const goalColumns = `id, name, category, goal_type, target_amount, current_amount, deadline, created_at, updated_at`

func (s *SQLStore) GetGoal(ctx context.Context, goalID string) (*model.Goal, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+goalColumns+` FROM goals WHERE id = ?`), goalID)
	goal, err := scanGoal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("goal %s: %w", goalID, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return goal, nil
}

func (s *SQLStore) ListGoals(ctx context.Context, pageSize int32, pageToken string) ([]*model.Goal, string, error) {
	cursor, err := DecodePageToken(pageToken)
	if err != nil {
		return nil, "", fmt.Errorf("invalid page token: %w", err)
	}
	pageSize = normalizePageSize(pageSize)

	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT `+goalColumns+` FROM goals WHERE id > ? ORDER BY id LIMIT ?`),
		cursor, int(pageSize)+1)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list goals: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var goals []*model.Goal
	for rows.Next() {
		goal, err := scanGoal(rows)
		if err != nil {
			return nil, "", err
		}
		goals = append(goals, goal)
	}
	if err := rows.Err(); err != nil {
		return nil, "", err
	}

	var nextPageToken string
	if len(goals) > int(pageSize) {
		goals = goals[:pageSize]
		nextPageToken = EncodePageToken(goals[pageSize-1].ID)
	}
	return goals, nextPageToken, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGoal(row rowScanner) (*model.Goal, error) {
	var (
		g                             model.Goal
		category, goalType            string
		deadline, createdAt, updateAt string
	)
	if err := row.Scan(&g.ID, &g.Name, &category, &goalType, &g.TargetAmount, &g.CurrentAmount,
		&deadline, &createdAt, &updateAt); err != nil {
		return nil, err
	}
	g.Category = model.GoalCategory(category)
	g.Type = model.GoalType(goalType)

	var err error
	if g.Deadline, err = model.ParseDeadline(deadline); err != nil {
		return nil, fmt.Errorf("goal %s: %w", g.ID, err)
	}
	if g.CreatedAt, err = parseTimestamp(createdAt); err != nil {
		return nil, fmt.Errorf("goal %s has malformed created_at: %w", g.ID, err)
	}
	if g.UpdatedAt, err = parseTimestamp(updateAt); err != nil {
		return nil, fmt.Errorf("goal %s has malformed updated_at: %w", g.ID, err)
	}
	return &g, nil
}

// parseTimestamp reads an RFC 3339 column; an empty column is the zero time.
func parseTimestamp(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, s)
}

// Daily savings operations

func (s *SQLStore) RecordSavings(ctx context.Context, obs *model.SavingsObservation) error {
	if obs.ID == "" {
		obs.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO daily_savings (id, day, amount, description) VALUES (?, ?, ?, ?)`),
		obs.ID, model.FormatDate(obs.Date), obs.Amount, obs.Description)
	if err != nil {
		return fmt.Errorf("inserting savings: %w", err)
	}
	return nil
}

func (s *SQLStore) ListSavings(ctx context.Context, since, until *time.Time) ([]model.SavingsObservation, error) {
	where, args := dayFilter(nil, nil, since, until)
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, day, amount, description FROM daily_savings`+where+` ORDER BY day, id`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list savings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.SavingsObservation
	for rows.Next() {
		var (
			obs model.SavingsObservation
			day string
		)
		if err := rows.Scan(&obs.ID, &day, &obs.Amount, &obs.Description); err != nil {
			return nil, err
		}
		if obs.Date, err = time.Parse(model.DateLayout, day); err != nil {
			continue
		}
		result = append(result, obs)
	}
	return result, rows.Err()
}

// Transaction operations

func (s *SQLStore) CreateTransaction(ctx context.Context, txn *model.Transaction) error {
	if _, ok := model.ParseTransactionSource(string(txn.Source)); !ok {
		return fmt.Errorf("unknown transaction source %q", txn.Source)
	}
	if txn.ID == "" {
		txn.ID = uuid.New().String()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`INSERT INTO transactions
		(id, source, day, amount, description, category, merchant, location)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		txn.ID, string(txn.Source), model.FormatDate(txn.Date), txn.Amount,
		txn.Description, txn.Category, txn.Merchant, txn.Location)
	if err != nil {
		return fmt.Errorf("inserting transaction: %w", err)
	}
	return nil
}

func (s *SQLStore) ListTransactions(ctx context.Context, source model.TransactionSource, since, until *time.Time) ([]model.Transaction, error) {
	var conds []string
	var args []any
	if source != "" {
		conds = append(conds, "source = ?")
		args = append(args, string(source))
	}
	where, args := dayFilter(conds, args, since, until)

	rows, err := s.db.QueryContext(ctx, s.rebind(`SELECT id, source, day, amount, description, category, merchant, location
		FROM transactions`+where+` ORDER BY day, id`), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var result []model.Transaction
	for rows.Next() {
		var (
			txn      model.Transaction
			src, day string
		)
		if err := rows.Scan(&txn.ID, &src, &day, &txn.Amount, &txn.Description,
			&txn.Category, &txn.Merchant, &txn.Location); err != nil {
			return nil, err
		}
		txn.Source = model.TransactionSource(src)
		if txn.Date, err = time.Parse(model.DateLayout, day); err != nil {
			continue
		}
		result = append(result, txn)
	}
	return result, rows.Err()
}

func dayFilter(conds []string, args []any, since, until *time.Time) (string, []any) {
	if since != nil {
		conds = append(conds, "day >= ?")
		args = append(args, model.FormatDate(*since))
	}
	if until != nil {
		conds = append(conds, "day <= ?")
		args = append(args, model.FormatDate(*until))
	}
	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

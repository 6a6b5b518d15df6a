package model

import (
	"strings"
	"time"
)

// SavingsObservation is one recorded amount saved on a given day.
// Several observations may share a day; they are summed during aggregation.
type SavingsObservation struct {
	ID          string
	Date        time.Time
	Amount      float64
	Description string
}

// TransactionSource identifies the payment channel of a transaction.
type TransactionSource string

const (
	SourceUPI  TransactionSource = "upi"
	SourceCash TransactionSource = "cash"
)

// ParseTransactionSource maps a user-supplied name onto a known source.
func ParseTransactionSource(s string) (TransactionSource, bool) {
	switch src := TransactionSource(strings.ToLower(strings.TrimSpace(s))); src {
	case SourceUPI, SourceCash:
		return src, true
	default:
		return "", false
	}
}

// Transaction is an expense paid over UPI or in cash.
type Transaction struct {
	ID          string
	Source      TransactionSource
	Date        time.Time
	Amount      float64
	Description string
	Category    string
	Merchant    string // UPI only
	Location    string // cash only
}

// Document renders the observation for a document store.
func (o *SavingsObservation) Document() map[string]any {
	return map[string]any{
		"date":        o.Date,
		"amount":      o.Amount,
		"description": o.Description,
	}
}

// ObservationFromDocument decodes a stored observation. ok is false when the
// date or amount is missing or malformed; callers skip such records.
func ObservationFromDocument(id string, data map[string]any) (SavingsObservation, bool) {
	date, err := ParseDate(data["date"])
	if err != nil {
		return SavingsObservation{}, false
	}
	amount, err := ParseAmount(data["amount"])
	if err != nil {
		return SavingsObservation{}, false
	}
	desc, _ := data["description"].(string)
	return SavingsObservation{ID: id, Date: date, Amount: amount, Description: desc}, true
}

// Document renders the transaction for a document store.
func (t *Transaction) Document() map[string]any {
	doc := map[string]any{
		"date":        t.Date,
		"amount":      t.Amount,
		"description": t.Description,
		"category":    t.Category,
	}
	switch t.Source {
	case SourceUPI:
		doc["merchant"] = t.Merchant
	case SourceCash:
		doc["location"] = t.Location
	}
	return doc
}

// TransactionFromDocument decodes a stored transaction, reporting ok=false
// for records without a usable date or amount.
func TransactionFromDocument(id string, source TransactionSource, data map[string]any) (Transaction, bool) {
	date, err := ParseDate(data["date"])
	if err != nil {
		return Transaction{}, false
	}
	amount, err := ParseAmount(data["amount"])
	if err != nil {
		return Transaction{}, false
	}
	str := func(key string) string {
		s, _ := data[key].(string)
		return s
	}
	return Transaction{
		ID:          id,
		Source:      source,
		Date:        date,
		Amount:      amount,
		Description: str("description"),
		Category:    str("category"),
		Merchant:    str("merchant"),
		Location:    str("location"),
	}, true
}

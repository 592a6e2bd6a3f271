// Package finance owns the personal-finance document: transactions,
// recurring bills and savings goals.
package finance

import (
	"encoding/json"
	"fmt"
	"time"

	"organizador/internal/core"
	"organizador/internal/ident"
)

const (
	Income     TransactionType = "income"
	Expense    TransactionType = "expense"
	Investment TransactionType = "investment"
)

const (
	Once    Recurrence = "once"
	Weekly  Recurrence = "weekly"
	Monthly Recurrence = "monthly"
	Yearly  Recurrence = "yearly"
)

type (
	TransactionType string

	// Recurrence is how often a bill comes due again after being paid.
	Recurrence string

	Transaction struct {
		ID            string          `json:"id"`
		Type          TransactionType `json:"type"`
		Description   string          `json:"description"`
		Amount        core.Money      `json:"amount"`
		Date          core.Date       `json:"date"`
		Category      string          `json:"category"`
		PaymentMethod string          `json:"paymentMethod"`
		Notes         string          `json:"notes"`
		CreatedAt     time.Time       `json:"createdAt"`
		UpdatedAt     time.Time       `json:"updatedAt"`
	}

	Bill struct {
		ID          string     `json:"id"`
		Description string     `json:"description"`
		Amount      core.Money `json:"amount"`
		DueDate     core.Date  `json:"dueDate"`
		Category    string     `json:"category"`
		Recurrence  Recurrence `json:"recurrence"`
		Paid        bool       `json:"paid"`
		CreatedAt   time.Time  `json:"createdAt"`
	}

	Goal struct {
		ID        string        `json:"id"`
		Title     string        `json:"title"`
		Target    core.Money    `json:"target"`
		Current   core.Money    `json:"current"`
		Deadline  core.Date     `json:"deadline"`
		Category  string        `json:"category"`
		Priority  core.Priority `json:"priority"`
		Completed bool          `json:"completed"`
		CreatedAt time.Time     `json:"createdAt"`

		CompletedAt *time.Time `json:"completedAt,omitempty"`
	}

	// Document is the single persisted finance document. Category
	// taxonomy and view filters are session state, not records, so they
	// are not part of it.
	Document struct {
		Transactions []Transaction
		Bills        []Bill
		Goals        []Goal

		extra map[string]json.RawMessage
	}
)

func (t TransactionType) Valid() bool {
	switch t {
	case Income, Expense, Investment:
		return true
	default:
		return false
	}
}

func (r Recurrence) Valid() bool {
	switch r {
	case Once, Weekly, Monthly, Yearly:
		return true
	default:
		return false
	}
}

// DefaultCategories is the built-in taxonomy per transaction type, used to
// seed category pickers. User documents may reference categories outside it.
func DefaultCategories() map[TransactionType][]string {
	return map[TransactionType][]string{
		Income:     {"salary", "freelance", "investments", "other-income"},
		Expense:    {"food", "housing", "transport", "health", "education", "entertainment", "other-expenses"},
		Investment: {"stocks", "funds", "bonds", "crypto", "other-investments"},
	}
}

func (t Transaction) Validate() error {
	if !t.Type.Valid() {
		return fmt.Errorf("%w: transaction type %q", core.ErrInvalidType, t.Type)
	}
	if t.Description == "" {
		return core.ErrEmptyDescription
	}
	if !t.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if t.Date.IsZero() {
		return core.ErrInvalidDate
	}
	if t.Category == "" {
		return core.ErrEmptyCategory
	}
	return nil
}

func (b Bill) Validate() error {
	if b.Description == "" {
		return core.ErrEmptyDescription
	}
	if !b.Amount.IsPositive() {
		return core.ErrInvalidAmount
	}
	if b.DueDate.IsZero() {
		return core.ErrInvalidDate
	}
	return nil
}

func (g Goal) Validate() error {
	if g.Title == "" {
		return core.ErrEmptyTitle
	}
	if !g.Target.IsPositive() {
		return core.ErrInvalidAmount
	}
	return nil
}

// clampProgress bounds Current into [0, Target].
func (g *Goal) clampProgress() {
	g.Current = g.Current.Clamp(core.Zero, g.Target)
}

// EmptyDocument returns the canonical empty normalized shape.
func EmptyDocument() Document {
	return Document{
		Transactions: []Transaction{},
		Bills:        []Bill{},
		Goals:        []Goal{},
	}
}

// Normalize completes a raw document: collections exist with empty defaults,
// every record carries an id (existing ids are never reassigned) and goal
// progress is clamped back inside [0, target].
func (d *Document) Normalize(ids ident.Issuer) {
	if d.Transactions == nil {
		d.Transactions = []Transaction{}
	}
	for i := range d.Transactions {
		if d.Transactions[i].ID == "" {
			d.Transactions[i].ID = ids.NewID()
		}
	}

	if d.Bills == nil {
		d.Bills = []Bill{}
	}
	for i := range d.Bills {
		if d.Bills[i].ID == "" {
			d.Bills[i].ID = ids.NewID()
		}
	}

	if d.Goals == nil {
		d.Goals = []Goal{}
	}
	for i := range d.Goals {
		if d.Goals[i].ID == "" {
			d.Goals[i].ID = ids.NewID()
		}
		d.Goals[i].clampProgress()
	}
}

// Clone deep-copies the document.
func (d Document) Clone() Document {
	out := Document{
		Transactions: append([]Transaction(nil), d.Transactions...),
		Bills:        append([]Bill(nil), d.Bills...),
		Goals:        make([]Goal, len(d.Goals)),
	}
	for i, g := range d.Goals {
		if g.CompletedAt != nil {
			ts := *g.CompletedAt
			g.CompletedAt = &ts
		}
		out.Goals[i] = g
	}
	if d.extra != nil {
		out.extra = make(map[string]json.RawMessage, len(d.extra))
		for k, v := range d.extra {
			out.extra[k] = v
		}
	}
	return out
}

func (d Document) MarshalJSON() ([]byte, error) {
	m := make(map[string]json.RawMessage, len(d.extra)+3)
	for k, v := range d.extra {
		m[k] = v
	}
	for k, v := range map[string]any{
		"transactions": d.Transactions,
		"bills":        d.Bills,
		"goals":        d.Goals,
	} {
		raw, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("marshal %s: %w", k, err)
		}
		m[k] = raw
	}
	return json.Marshal(m)
}

func (d *Document) UnmarshalJSON(data []byte) error {
	var m map[string]json.RawMessage
	if err := json.Unmarshal(data, &m); err != nil {
		return err
	}

	*d = Document{}
	known := map[string]any{
		"transactions": &d.Transactions,
		"bills":        &d.Bills,
		"goals":        &d.Goals,
	}
	for k, dst := range known {
		raw, ok := m[k]
		if !ok {
			continue
		}
		// Wrong-typed collections degrade to defaults at normalize time.
		_ = json.Unmarshal(raw, dst)
		delete(m, k)
	}
	if len(m) > 0 {
		d.extra = m
	}
	return nil
}

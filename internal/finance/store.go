package finance

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"organizador/internal/core"
	"organizador/internal/ident"
	"organizador/internal/storage"
)

// Store is the finance state store. It holds the in-memory document and
// funnels every mutation through the persist-then-commit cycle: the change
// is applied to a clone, written to the gateway, and only then swapped in.
type Store struct {
	mu  sync.RWMutex
	gw  storage.Gateway
	ids ident.Issuer
	doc Document
}

func NewStore(gw storage.Gateway, ids ident.Issuer) *Store {
	return &Store{gw: gw, ids: ids, doc: EmptyDocument()}
}

// Load reads the persisted document, normalizes it and writes the repaired
// shape back before serving from it. A missing or corrupt document starts
// empty without error.
func (s *Store) Load(ctx context.Context) error {
	var doc Document
	found, err := s.gw.Get(ctx, storage.KeyFinance, &doc)
	if err != nil {
		return fmt.Errorf("load finance document: %w", err)
	}
	doc.Normalize(s.ids)
	if found {
		if err := s.gw.Put(ctx, storage.KeyFinance, doc); err != nil {
			return fmt.Errorf("write back normalized finance document: %w", err)
		}
	}

	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()

	slog.InfoContext(ctx, "finance document loaded",
		"transactions", len(doc.Transactions),
		"bills", len(doc.Bills),
		"goals", len(doc.Goals))
	return nil
}

// Snapshot returns a deep copy of the current document.
func (s *Store) Snapshot() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone()
}

// commit persists doc and, only on success, makes it the current state.
// The caller must hold s.mu.
func (s *Store) commit(ctx context.Context, doc Document) error {
	if err := s.gw.Put(ctx, storage.KeyFinance, doc); err != nil {
		return fmt.Errorf("persist finance document: %w", err)
	}
	s.doc = doc
	return nil
}

// --- transactions ---

// NewTransaction is the input for AddTransaction.
type NewTransaction struct {
	Type          TransactionType
	Description   string
	Amount        core.Money
	Date          core.Date
	Category      string
	PaymentMethod string
	Notes         string
}

func (s *Store) AddTransaction(ctx context.Context, in NewTransaction) (Transaction, error) {
	now := time.Now().UTC()
	tx := Transaction{
		ID:            s.ids.NewID(),
		Type:          in.Type,
		Description:   strings.TrimSpace(in.Description),
		Amount:        in.Amount,
		Date:          in.Date,
		Category:      in.Category,
		PaymentMethod: in.PaymentMethod,
		Notes:         strings.TrimSpace(in.Notes),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := tx.Validate(); err != nil {
		return Transaction{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Transactions = append(doc.Transactions, tx)
	if err := s.commit(ctx, doc); err != nil {
		return Transaction{}, err
	}
	return tx, nil
}

// TransactionPatch carries the fields UpdateTransaction may change.
// Nil fields keep their current value.
type TransactionPatch struct {
	Type          *TransactionType
	Description   *string
	Amount        *core.Money
	Date          *core.Date
	Category      *string
	PaymentMethod *string
	Notes         *string
}

// UpdateTransaction merges patch into the transaction with the given id.
// It reports found=false, without error, when the id does not exist.
func (s *Store) UpdateTransaction(ctx context.Context, id string, patch TransactionPatch) (Transaction, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	idx := -1
	for i := range doc.Transactions {
		if doc.Transactions[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Transaction{}, false, nil
	}

	tx := doc.Transactions[idx]
	if patch.Type != nil {
		tx.Type = *patch.Type
	}
	if patch.Description != nil {
		tx.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		tx.Amount = *patch.Amount
	}
	if patch.Date != nil {
		tx.Date = *patch.Date
	}
	if patch.Category != nil {
		tx.Category = *patch.Category
	}
	if patch.PaymentMethod != nil {
		tx.PaymentMethod = *patch.PaymentMethod
	}
	if patch.Notes != nil {
		tx.Notes = strings.TrimSpace(*patch.Notes)
	}
	tx.UpdatedAt = time.Now().UTC()
	if err := tx.Validate(); err != nil {
		return Transaction{}, false, err
	}

	doc.Transactions[idx] = tx
	if err := s.commit(ctx, doc); err != nil {
		return Transaction{}, false, err
	}
	return tx, true, nil
}

// DeleteTransaction removes the transaction with the given id. A missing id
// is a no-op.
func (s *Store) DeleteTransaction(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Transactions[:0]
	for _, tx := range doc.Transactions {
		if tx.ID != id {
			kept = append(kept, tx)
		}
	}
	if len(kept) == len(doc.Transactions) {
		return nil
	}
	doc.Transactions = kept
	return s.commit(ctx, doc)
}

// Filter selects transactions. Zero values mean "no constraint".
type Filter struct {
	Type     TransactionType
	Category string
	From     core.Date
	To       core.Date
}

func (f Filter) matches(tx Transaction) bool {
	if f.Type != "" && tx.Type != f.Type {
		return false
	}
	if f.Category != "" && tx.Category != f.Category {
		return false
	}
	if !f.From.IsZero() && tx.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && tx.Date.After(f.To) {
		return false
	}
	return true
}

// Transactions returns the matching transactions, most recent date first.
func (s *Store) Transactions(f Filter) []Transaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Transaction, 0, len(s.doc.Transactions))
	for _, tx := range s.doc.Transactions {
		if f.matches(tx) {
			out = append(out, tx)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[j].Date.Before(out[i].Date)
	})
	return out
}

// TransactionsBetween returns transactions with from <= date <= to,
// most recent first.
func (s *Store) TransactionsBetween(from, to core.Date) []Transaction {
	return s.Transactions(Filter{From: from, To: to})
}

// --- bills ---

type NewBill struct {
	Description string
	Amount      core.Money
	DueDate     core.Date
	Category    string
	Recurrence  Recurrence
}

func (s *Store) AddBill(ctx context.Context, in NewBill) (Bill, error) {
	rec := in.Recurrence
	if rec == "" {
		rec = Once
	}
	if !rec.Valid() {
		return Bill{}, fmt.Errorf("%w: recurrence %q", core.ErrInvalidType, rec)
	}
	b := Bill{
		ID:          s.ids.NewID(),
		Description: strings.TrimSpace(in.Description),
		Amount:      in.Amount,
		DueDate:     in.DueDate,
		Category:    in.Category,
		Recurrence:  rec,
		CreatedAt:   time.Now().UTC(),
	}
	if err := b.Validate(); err != nil {
		return Bill{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Bills = append(doc.Bills, b)
	if err := s.commit(ctx, doc); err != nil {
		return Bill{}, err
	}
	return b, nil
}

type BillPatch struct {
	Description *string
	Amount      *core.Money
	DueDate     *core.Date
	Category    *string
	Recurrence  *Recurrence
}

func (s *Store) UpdateBill(ctx context.Context, id string, patch BillPatch) (Bill, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	idx := -1
	for i := range doc.Bills {
		if doc.Bills[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Bill{}, false, nil
	}

	b := doc.Bills[idx]
	if patch.Description != nil {
		b.Description = strings.TrimSpace(*patch.Description)
	}
	if patch.Amount != nil {
		b.Amount = *patch.Amount
	}
	if patch.DueDate != nil {
		b.DueDate = *patch.DueDate
	}
	if patch.Category != nil {
		b.Category = *patch.Category
	}
	if patch.Recurrence != nil {
		if !patch.Recurrence.Valid() {
			return Bill{}, false, fmt.Errorf("%w: recurrence %q", core.ErrInvalidType, *patch.Recurrence)
		}
		b.Recurrence = *patch.Recurrence
	}
	if err := b.Validate(); err != nil {
		return Bill{}, false, err
	}

	doc.Bills[idx] = b
	if err := s.commit(ctx, doc); err != nil {
		return Bill{}, false, err
	}
	return b, true, nil
}

// ToggleBillPaid flips the paid flag of the bill with the given id.
func (s *Store) ToggleBillPaid(ctx context.Context, id string) (Bill, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	for i := range doc.Bills {
		if doc.Bills[i].ID != id {
			continue
		}
		doc.Bills[i].Paid = !doc.Bills[i].Paid
		b := doc.Bills[i]
		if err := s.commit(ctx, doc); err != nil {
			return Bill{}, false, err
		}
		return b, true, nil
	}
	return Bill{}, false, nil
}

// ReplaceBill swaps the stored bill with the same id for b, used by the
// recurring processor to roll a paid bill forward. Missing ids are ignored.
func (s *Store) ReplaceBill(ctx context.Context, b Bill) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	for i := range doc.Bills {
		if doc.Bills[i].ID != b.ID {
			continue
		}
		doc.Bills[i] = b
		if err := s.commit(ctx, doc); err != nil {
			return false, err
		}
		return true, nil
	}
	return false, nil
}

func (s *Store) DeleteBill(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Bills[:0]
	for _, b := range doc.Bills {
		if b.ID != id {
			kept = append(kept, b)
		}
	}
	if len(kept) == len(doc.Bills) {
		return nil
	}
	doc.Bills = kept
	return s.commit(ctx, doc)
}

// BillsDueWithin returns unpaid bills due between now and now+days,
// soonest first. Overdue unpaid bills are included.
func (s *Store) BillsDueWithin(now time.Time, days int) []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	horizon := core.DateOf(now.AddDate(0, 0, days))
	out := []Bill{}
	for _, b := range s.doc.Bills {
		if b.Paid || b.DueDate.After(horizon) {
			continue
		}
		out = append(out, b)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DueDate.Before(out[j].DueDate)
	})
	return out
}

// UnpaidBillsInMonth returns unpaid bills whose due date falls in the
// given month.
func (s *Store) UnpaidBillsInMonth(year int, month time.Month) []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Bill{}
	for _, b := range s.doc.Bills {
		if b.Paid {
			continue
		}
		if b.DueDate.Year() == year && b.DueDate.Month() == month {
			out = append(out, b)
		}
	}
	return out
}

func (s *Store) Bills() []Bill {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]Bill(nil), s.doc.Bills...)
}

// --- goals ---

type NewGoal struct {
	Title    string
	Target   core.Money
	Current  core.Money
	Deadline core.Date
	Category string
	Priority core.Priority
}

func (s *Store) AddGoal(ctx context.Context, in NewGoal) (Goal, error) {
	prio := in.Priority
	if prio == "" {
		prio = core.PriorityMedium
	}
	if !prio.Valid() {
		return Goal{}, fmt.Errorf("%w: priority %q", core.ErrInvalidType, prio)
	}
	g := Goal{
		ID:        s.ids.NewID(),
		Title:     strings.TrimSpace(in.Title),
		Target:    in.Target,
		Current:   in.Current,
		Deadline:  in.Deadline,
		Category:  in.Category,
		Priority:  prio,
		CreatedAt: time.Now().UTC(),
	}
	if err := g.Validate(); err != nil {
		return Goal{}, err
	}
	g.clampProgress()

	s.mu.Lock()
	defer s.mu.Unlock()
	doc := s.doc.Clone()
	doc.Goals = append(doc.Goals, g)
	if err := s.commit(ctx, doc); err != nil {
		return Goal{}, err
	}
	return g, nil
}

type GoalPatch struct {
	Title    *string
	Target   *core.Money
	Deadline *core.Date
	Category *string
	Priority *core.Priority
}

func (s *Store) UpdateGoal(ctx context.Context, id string, patch GoalPatch) (Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	idx := -1
	for i := range doc.Goals {
		if doc.Goals[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		return Goal{}, false, nil
	}

	g := doc.Goals[idx]
	if patch.Title != nil {
		g.Title = strings.TrimSpace(*patch.Title)
	}
	if patch.Target != nil {
		g.Target = *patch.Target
	}
	if patch.Deadline != nil {
		g.Deadline = *patch.Deadline
	}
	if patch.Category != nil {
		g.Category = *patch.Category
	}
	if patch.Priority != nil {
		if !patch.Priority.Valid() {
			return Goal{}, false, fmt.Errorf("%w: priority %q", core.ErrInvalidType, *patch.Priority)
		}
		g.Priority = *patch.Priority
	}
	if err := g.Validate(); err != nil {
		return Goal{}, false, err
	}
	g.clampProgress()

	doc.Goals[idx] = g
	if err := s.commit(ctx, doc); err != nil {
		return Goal{}, false, err
	}
	return g, true, nil
}

// UpdateGoalProgress sets the goal's saved amount, clamped into
// [0, target].
func (s *Store) UpdateGoalProgress(ctx context.Context, id string, current core.Money) (Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	for i := range doc.Goals {
		if doc.Goals[i].ID != id {
			continue
		}
		doc.Goals[i].Current = current
		doc.Goals[i].clampProgress()
		g := doc.Goals[i]
		if err := s.commit(ctx, doc); err != nil {
			return Goal{}, false, err
		}
		return g, true, nil
	}
	return Goal{}, false, nil
}

// CompleteGoal marks the goal done, filling its progress to the target.
func (s *Store) CompleteGoal(ctx context.Context, id string) (Goal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	for i := range doc.Goals {
		if doc.Goals[i].ID != id {
			continue
		}
		now := time.Now().UTC()
		doc.Goals[i].Completed = true
		doc.Goals[i].Current = doc.Goals[i].Target
		doc.Goals[i].CompletedAt = &now
		g := doc.Goals[i]
		if err := s.commit(ctx, doc); err != nil {
			return Goal{}, false, err
		}
		return g, true, nil
	}
	return Goal{}, false, nil
}

func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc := s.doc.Clone()
	kept := doc.Goals[:0]
	for _, g := range doc.Goals {
		if g.ID != id {
			kept = append(kept, g)
		}
	}
	if len(kept) == len(doc.Goals) {
		return nil
	}
	doc.Goals = kept
	return s.commit(ctx, doc)
}

// ActiveGoals returns goals not yet completed.
func (s *Store) ActiveGoals() []Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []Goal{}
	for _, g := range s.doc.Goals {
		if !g.Completed {
			out = append(out, g)
		}
	}
	return out
}

func (s *Store) Goals() []Goal {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc.Clone().Goals
}

// --- maintenance ---

// Clear wipes the persisted document and resets the in-memory state.
func (s *Store) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.gw.Delete(ctx, storage.KeyFinance); err != nil {
		return fmt.Errorf("clear finance document: %w", err)
	}
	s.doc = EmptyDocument()
	return nil
}

// Export returns the document collections plus export metadata, the shape
// written to downloaded JSON files.
func (s *Store) Export(now time.Time) map[string]any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc := s.doc.Clone()
	return map[string]any{
		"transactions": doc.Transactions,
		"bills":        doc.Bills,
		"goals":        doc.Goals,
		"exportDate":   now.UTC().Format(time.RFC3339),
		"version":      core.Version,
	}
}

package http

import (
	"net/http"
	"strconv"
	"time"

	"organizador/internal/core"
	"organizador/internal/finance"
	applog "organizador/internal/log"
)

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := finance.Filter{
		Type:     finance.TransactionType(q.Get("type")),
		Category: q.Get("category"),
	}
	if raw := q.Get("from"); raw != "" {
		from, err := core.ParseDate(raw)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		f.From = from
	}
	if raw := q.Get("to"); raw != "" {
		to, err := core.ParseDate(raw)
		if err != nil {
			s.writeDomainError(w, r, err)
			return
		}
		f.To = to
	}
	writeJSON(w, http.StatusOK, s.finance.Transactions(f))
}

type transactionRequest struct {
	Type          finance.TransactionType `json:"type"`
	Description   string                  `json:"description"`
	Amount        core.Money              `json:"amount"`
	Date          core.Date               `json:"date"`
	Category      string                  `json:"category"`
	PaymentMethod string                  `json:"paymentMethod"`
	Notes         string                  `json:"notes"`
}

func (s *Server) handleAddTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, err := s.finance.AddTransaction(r.Context(), finance.NewTransaction{
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          req.Date,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	s.logger.InfoContext(r.Context(), "transaction added",
		applog.FieldComponent, applog.ComponentFinance,
		applog.FieldRecordID, tx.ID,
		applog.FieldCategory, tx.Category,
		applog.FieldAmount, tx.Amount.String())
	writeJSON(w, http.StatusCreated, tx)
}

type transactionPatchRequest struct {
	Type          *finance.TransactionType `json:"type"`
	Description   *string                  `json:"description"`
	Amount        *core.Money              `json:"amount"`
	Date          *core.Date               `json:"date"`
	Category      *string                  `json:"category"`
	PaymentMethod *string                  `json:"paymentMethod"`
	Notes         *string                  `json:"notes"`
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	tx, found, err := s.finance.UpdateTransaction(r.Context(), r.PathValue("id"), finance.TransactionPatch{
		Type:          req.Type,
		Description:   req.Description,
		Amount:        req.Amount,
		Date:          req.Date,
		Category:      req.Category,
		PaymentMethod: req.PaymentMethod,
		Notes:         req.Notes,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "transaction")
		return
	}
	s.invalidateReports()
	writeJSON(w, http.StatusOK, tx)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListBills(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.finance.Bills())
}

func (s *Server) handleBillsDue(w http.ResponseWriter, r *http.Request) {
	days := 7
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			writeError(w, http.StatusBadRequest, "invalid days window")
			return
		}
		days = parsed
	}
	writeJSON(w, http.StatusOK, s.finance.BillsDueWithin(s.now(), days))
}

// handleUnpaidBills lists unpaid bills for one calendar month; defaults to
// the current month.
func (s *Server) handleUnpaidBills(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	year, month := now.Year(), int(now.Month())

	q := r.URL.Query()
	if raw := q.Get("year"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		year = parsed
	}
	if raw := q.Get("month"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 12 {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		month = parsed
	}
	writeJSON(w, http.StatusOK, s.finance.UnpaidBillsInMonth(year, time.Month(month)))
}

type billRequest struct {
	Description string             `json:"description"`
	Amount      core.Money         `json:"amount"`
	DueDate     core.Date          `json:"dueDate"`
	Category    string             `json:"category"`
	Recurrence  finance.Recurrence `json:"recurrence"`
}

func (s *Server) handleAddBill(w http.ResponseWriter, r *http.Request) {
	var req billRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bill, err := s.finance.AddBill(r.Context(), finance.NewBill{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

type billPatchRequest struct {
	Description *string             `json:"description"`
	Amount      *core.Money         `json:"amount"`
	DueDate     *core.Date          `json:"dueDate"`
	Category    *string             `json:"category"`
	Recurrence  *finance.Recurrence `json:"recurrence"`
}

func (s *Server) handleUpdateBill(w http.ResponseWriter, r *http.Request) {
	var req billPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	bill, found, err := s.finance.UpdateBill(r.Context(), r.PathValue("id"), finance.BillPatch{
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     req.DueDate,
		Category:    req.Category,
		Recurrence:  req.Recurrence,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "bill")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleToggleBill(w http.ResponseWriter, r *http.Request) {
	bill, found, err := s.finance.ToggleBillPaid(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "bill")
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

func (s *Server) handleDeleteBill(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteBill(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleListGoals(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("active") == "true" {
		writeJSON(w, http.StatusOK, s.finance.ActiveGoals())
		return
	}
	writeJSON(w, http.StatusOK, s.finance.Goals())
}

type goalRequest struct {
	Title    string        `json:"title"`
	Target   core.Money    `json:"target"`
	Current  core.Money    `json:"current"`
	Deadline core.Date     `json:"deadline"`
	Category string        `json:"category"`
	Priority core.Priority `json:"priority"`
}

func (s *Server) handleAddGoal(w http.ResponseWriter, r *http.Request) {
	var req goalRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, err := s.finance.AddGoal(r.Context(), finance.NewGoal{
		Title:    req.Title,
		Target:   req.Target,
		Current:  req.Current,
		Deadline: req.Deadline,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, goal)
}

type goalPatchRequest struct {
	Title    *string        `json:"title"`
	Target   *core.Money    `json:"target"`
	Deadline *core.Date     `json:"deadline"`
	Category *string        `json:"category"`
	Priority *core.Priority `json:"priority"`
}

func (s *Server) handleUpdateGoal(w http.ResponseWriter, r *http.Request) {
	var req goalPatchRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, found, err := s.finance.UpdateGoal(r.Context(), r.PathValue("id"), finance.GoalPatch{
		Title:    req.Title,
		Target:   req.Target,
		Deadline: req.Deadline,
		Category: req.Category,
		Priority: req.Priority,
	})
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

type goalProgressRequest struct {
	Current core.Money `json:"current"`
}

func (s *Server) handleGoalProgress(w http.ResponseWriter, r *http.Request) {
	var req goalProgressRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	goal, found, err := s.finance.UpdateGoalProgress(r.Context(), r.PathValue("id"), req.Current)
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleCompleteGoal(w http.ResponseWriter, r *http.Request) {
	goal, found, err := s.finance.CompleteGoal(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	if !found {
		writeNotFound(w, "goal")
		return
	}
	writeJSON(w, http.StatusOK, goal)
}

func (s *Server) handleDeleteGoal(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.DeleteGoal(r.Context(), r.PathValue("id")); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleCategories(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, finance.DefaultCategories())
}

func (s *Server) handleFinanceExport(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.finance.Export(s.now()))
}

func (s *Server) handleFinanceClear(w http.ResponseWriter, r *http.Request) {
	if err := s.finance.Clear(r.Context()); err != nil {
		s.writeDomainError(w, r, err)
		return
	}
	s.invalidateReports()
	s.logger.InfoContext(r.Context(), "finance data cleared",
		applog.FieldComponent, applog.ComponentFinance)
	w.WriteHeader(http.StatusNoContent)
}

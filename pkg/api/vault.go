package api

import (
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/haekelise/hausmeister/pkg/vault"
)

func (s *Server) handleAppendSpend(w http.ResponseWriter, req *http.Request) {
	s.appendEntry(w, req, s.vault.AppendSpend, "POST /vault/spend")
}

func (s *Server) handleAppendIncome(w http.ResponseWriter, req *http.Request) {
	s.appendEntry(w, req, s.vault.AppendIncome, "POST /vault/income")
}

func (s *Server) appendEntry(w http.ResponseWriter, req *http.Request, append func(vault.Entry) error, trigger string) {
	entry := vault.Entry{}
	if err := json.NewDecoder(req.Body).Decode(&entry); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if entry.Category == "" {
		writeError(w, http.StatusBadRequest, "category must not be empty")
		return
	}
	if entry.Amount <= 0 {
		writeError(w, http.StatusBadRequest, "amount must be positive")
		return
	}

	if err := append(entry); err != nil {
		log.WithError(err).Error("failed to append ledger entry")
		writeError(w, http.StatusInternalServerError, "failed to store entry")
		return
	}

	writeJSON(w, http.StatusCreated, entry)
	s.triggerBackup(trigger)
}

func (s *Server) handleListSpend(w http.ResponseWriter, _ *http.Request) {
	s.listEntries(w, s.vault.Spend)
}

func (s *Server) handleListIncome(w http.ResponseWriter, _ *http.Request) {
	s.listEntries(w, s.vault.Income)
}

func (s *Server) listEntries(w http.ResponseWriter, list func() ([]vault.Entry, error)) {
	entries, err := list()
	if err != nil {
		log.WithError(err).Error("failed to read ledger")
		writeError(w, http.StatusInternalServerError, "failed to read ledger")
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (s *Server) handleSummary(w http.ResponseWriter, req *http.Request) {
	summary, err := s.vault.Summary(req.FormValue("month"))
	if err != nil {
		log.WithError(err).Error("failed to build summary")
		writeError(w, http.StatusInternalServerError, "failed to build summary")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleGetBudgets(w http.ResponseWriter, _ *http.Request) {
	budgets, err := s.vault.Budgets()
	if err != nil {
		log.WithError(err).Error("failed to read budgets")
		writeError(w, http.StatusInternalServerError, "failed to read budgets")
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

func (s *Server) handlePutBudgets(w http.ResponseWriter, req *http.Request) {
	budgets := map[string]float64{}
	if err := json.NewDecoder(req.Body).Decode(&budgets); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := s.vault.SetBudgets(budgets); err != nil {
		log.WithError(err).Error("failed to store budgets")
		writeError(w, http.StatusInternalServerError, "failed to store budgets")
		return
	}

	writeJSON(w, http.StatusOK, budgets)
	s.triggerBackup("PUT /vault/budgets")
}

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"

	"github.com/haekelise/hausmeister/pkg/backup"
	"github.com/haekelise/hausmeister/pkg/mail"
	"github.com/haekelise/hausmeister/pkg/notes"
	"github.com/haekelise/hausmeister/pkg/probe"
	"github.com/haekelise/hausmeister/pkg/vault"
)

// Server bundles all HTTP-facing services behind one gorilla/mux router.
type Server struct {
	aggregator *probe.Aggregator
	vault      *vault.Store
	notes      *notes.Store
	mailer     *mail.Mailer
	backups    *backup.Worker

	upgrader websocket.Upgrader
	srv      *http.Server
}

// NewServer wires the services together. mailer may be nil when no mail
// configuration exists; the contact endpoint then answers 503.
func NewServer(aggregator *probe.Aggregator, vaultStore *vault.Store, noteStore *notes.Store, mailer *mail.Mailer, backups *backup.Worker) *Server {
	return &Server{
		aggregator: aggregator,
		vault:      vaultStore,
		notes:      noteStore,
		mailer:     mailer,
		backups:    backups,
	}
}

func (s *Server) Router() *mux.Router {
	m := mux.NewRouter()

	m.Path("/status").HandlerFunc(s.handleStatus).Methods(http.MethodGet)
	m.Path("/status/ws").HandlerFunc(s.handleStatusStream).Methods(http.MethodGet)

	m.Path("/vault/spend").HandlerFunc(s.handleListSpend).Methods(http.MethodGet)
	m.Path("/vault/spend").HandlerFunc(s.handleAppendSpend).Methods(http.MethodPost)
	m.Path("/vault/income").HandlerFunc(s.handleListIncome).Methods(http.MethodGet)
	m.Path("/vault/income").HandlerFunc(s.handleAppendIncome).Methods(http.MethodPost)
	m.Path("/vault/summary").HandlerFunc(s.handleSummary).Methods(http.MethodGet)
	m.Path("/vault/budgets").HandlerFunc(s.handleGetBudgets).Methods(http.MethodGet)
	m.Path("/vault/budgets").HandlerFunc(s.handlePutBudgets).Methods(http.MethodPut)

	m.Path("/notes").HandlerFunc(s.handleListNotebooks).Methods(http.MethodGet)
	m.Path("/notes/{notebook}").HandlerFunc(s.handleReadNotebook).Methods(http.MethodGet)
	m.Path("/notes/{notebook}").HandlerFunc(s.handleAppendNote).Methods(http.MethodPost)

	m.Path("/contact").HandlerFunc(s.handleContact).Methods(http.MethodPost)

	return m
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, listenAddr string) error {
	s.srv = &http.Server{
		Addr:    listenAddr,
		Handler: s.Router(),
	}

	go func() {
		<-ctx.Done()
		log.Info("shutting down api server")
		_ = s.srv.Shutdown(context.Background())
	}()

	log.Infof("api server listens on %s", listenAddr)
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// triggerBackup hands the label to the background worker after the response
// is already on its way; a missing worker just means backups are off.
func (s *Server) triggerBackup(trigger string) {
	if s.backups == nil {
		return
	}
	s.backups.Schedule(trigger)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.WithError(err).Error("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

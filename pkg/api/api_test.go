package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/haekelise/hausmeister/internal/config"
	"github.com/haekelise/hausmeister/pkg/backup"
	"github.com/haekelise/hausmeister/pkg/notes"
	"github.com/haekelise/hausmeister/pkg/probe"
	"github.com/haekelise/hausmeister/pkg/vault"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()

	aggregator, err := probe.NewAggregator(&config.Config{})
	require.NoError(t, err)

	worker := backup.NewWorker(backup.NewManager(backup.Config{Enabled: false}))

	return NewServer(
		aggregator,
		vault.NewStore(t.TempDir()),
		notes.NewStore(t.TempDir()),
		nil,
		worker,
	)
}

func doJSON(t *testing.T, router http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestStatusAlwaysAnswers200(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodGet, "/status", "")

	require.Equal(t, http.StatusOK, rec.Code)

	report := struct {
		Status    string                     `json:"status"`
		Timestamp string                     `json:"timestamp"`
		Services  map[string]json.RawMessage `json:"services"`
	}{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))

	assert.Equal(t, "healthy", report.Status)
	assert.NotEmpty(t, report.Timestamp)
	assert.Contains(t, report.Services, "api")
}

func TestStatusStreamDeliversReports(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t).Router())
	defer srv.Close()

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/status/ws"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	defer conn.Close()

	report := struct {
		Status string `json:"status"`
	}{}
	require.NoError(t, conn.ReadJSON(&report))
	assert.Equal(t, "healthy", report.Status)
}

func TestVaultSpendRoundTrip(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/vault/spend",
		`{"date":"2026-08-01","category":"groceries","amount":42.5,"note":"weekly shop"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/vault/spend", "")
	require.Equal(t, http.StatusOK, rec.Code)

	entries := []vault.Entry{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "groceries", entries[0].Category)
	assert.Equal(t, 42.5, entries[0].Amount)
}

func TestVaultRejectsInvalidEntries(t *testing.T) {
	router := newTestServer(t).Router()

	cases := map[string]string{
		"missing category": `{"amount":10}`,
		"zero amount":      `{"category":"misc","amount":0}`,
		"negative amount":  `{"category":"misc","amount":-5}`,
		"broken json":      `{"category":`,
	}
	for name, body := range cases {
		rec := doJSON(t, router, http.MethodPost, "/vault/income", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, name)
	}
}

func TestVaultBudgetsAndSummary(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPut, "/vault/budgets", `{"groceries":300}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/vault/spend",
		`{"date":"2026-08-10","category":"groceries","amount":60}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/vault/summary?month=2026-08", "")
	require.Equal(t, http.StatusOK, rec.Code)

	summary := vault.Summary{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &summary))
	assert.Equal(t, "2026-08", summary.Month)
	assert.Equal(t, 60.0, summary.Categories["groceries"].Spent)
	assert.Equal(t, 240.0, summary.Categories["groceries"].Remaining)
}

func TestNotesEndpoints(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/notes/journal", `{"text":"bought a bike lock"}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/notes", "")
	require.Equal(t, http.StatusOK, rec.Code)

	notebooks := []string{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &notebooks))
	assert.Equal(t, []string{"journal"}, notebooks)

	rec = doJSON(t, router, http.MethodGet, "/notes/journal", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "bought a bike lock")

	rec = doJSON(t, router, http.MethodPost, "/notes/journal", `{"text":"   "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "blank text must be rejected")

	rec = doJSON(t, router, http.MethodPost, "/notes/bad%20name", `{"text":"x"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code, "unsafe notebook names must be rejected")

	rec = doJSON(t, router, http.MethodGet, "/notes/missing", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMutatingHandlerSchedulesBackup(t *testing.T) {
	aggregator, err := probe.NewAggregator(&config.Config{})
	require.NoError(t, err)

	dataDir := t.TempDir()
	backupDir := t.TempDir()
	manager := backup.NewManager(backup.Config{
		Enabled:   true,
		SourceDir: dataDir,
		BackupDir: backupDir,
	})
	require.NoError(t, manager.Initialize(context.Background()))

	worker := backup.NewWorker(manager)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go worker.Run(ctx)

	srv := NewServer(aggregator, vault.NewStore(dataDir), notes.NewStore(t.TempDir()), nil, worker)

	rec := doJSON(t, srv.Router(), http.MethodPost, "/vault/spend",
		`{"date":"2026-08-01","category":"groceries","amount":5}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	require.Eventually(t, func() bool {
		_, err := os.Stat(filepath.Join(backupDir, "spend.csv"))
		return err == nil
	}, 5*time.Second, 20*time.Millisecond, "the mutation must hand a trigger to the backup worker")
}

func TestContactValidatesBeforeSending(t *testing.T) {
	router := newTestServer(t).Router()

	rec := doJSON(t, router, http.MethodPost, "/contact", `{"name":"","email":"a@b.c","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/contact", `{"name":"Ada","email":"not-an-address","message":"hi"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/contact", `{"name":"Ada","email":"a@b.c","message":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	// no mailer configured
	rec = doJSON(t, router, http.MethodPost, "/contact", `{"name":"Ada","email":"a@b.c","message":"hi"}`)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

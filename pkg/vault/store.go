package vault

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

const (
	spendFile   = "spend.csv"
	incomeFile  = "income.csv"
	budgetsFile = "budgets.json"
)

// Entry is one ledger row. Date uses the YYYY-MM-DD form so that month
// filtering is a plain prefix match.
type Entry struct {
	Date     string  `json:"date"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
	Note     string  `json:"note"`
}

// CategorySummary folds one category of a month against its budget.
type CategorySummary struct {
	Spent     float64 `json:"spent"`
	Budget    float64 `json:"budget"`
	Remaining float64 `json:"remaining"`
}

// Summary aggregates a single month of spending.
type Summary struct {
	Month       string                     `json:"month"`
	Categories  map[string]CategorySummary `json:"categories"`
	TotalSpent  float64                    `json:"totalSpent"`
	TotalBudget float64                    `json:"totalBudget"`
}

// Store persists ledger entries as CSV files and budgets as JSON inside a
// single data directory. All methods are safe for concurrent use.
type Store struct {
	dataDir string
	mu      sync.Mutex
}

func NewStore(dataDir string) *Store {
	return &Store{dataDir: dataDir}
}

func (s *Store) AppendSpend(entry Entry) error {
	return s.append(spendFile, entry)
}

func (s *Store) AppendIncome(entry Entry) error {
	return s.append(incomeFile, entry)
}

func (s *Store) Spend() ([]Entry, error) {
	return s.read(spendFile)
}

func (s *Store) Income() ([]Entry, error) {
	return s.read(incomeFile)
}

// Budgets reads the per-category budget map. A missing file yields an empty
// map, not an error.
func (s *Store) Budgets() (map[string]float64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(s.dataDir, budgetsFile))
	if os.IsNotExist(err) {
		return map[string]float64{}, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "failed to read budgets")
	}

	budgets := map[string]float64{}
	if err := json.Unmarshal(data, &budgets); err != nil {
		return nil, errors.Wrap(err, "failed to parse budgets")
	}
	return budgets, nil
}

// SetBudgets overwrites the budget map as a whole.
func (s *Store) SetBudgets(budgets map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data directory %q", s.dataDir)
	}

	data, err := json.MarshalIndent(budgets, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode budgets")
	}

	return errors.Wrap(
		os.WriteFile(filepath.Join(s.dataDir, budgetsFile), data, 0o644),
		"failed to write budgets",
	)
}

// Summary folds all spend entries of the given month (YYYY-MM) against the
// stored budgets. Categories with a budget but no spending still appear.
func (s *Store) Summary(month string) (*Summary, error) {
	if month == "" {
		month = time.Now().Format("2006-01")
	}

	entries, err := s.Spend()
	if err != nil {
		return nil, err
	}

	budgets, err := s.Budgets()
	if err != nil {
		return nil, err
	}

	summary := &Summary{
		Month:      month,
		Categories: map[string]CategorySummary{},
	}

	for _, entry := range entries {
		if !isInMonth(entry.Date, month) {
			continue
		}
		cat := summary.Categories[entry.Category]
		cat.Spent += entry.Amount
		summary.Categories[entry.Category] = cat
		summary.TotalSpent += entry.Amount
	}

	for category, budget := range budgets {
		cat := summary.Categories[category]
		cat.Budget = budget
		summary.Categories[category] = cat
		summary.TotalBudget += budget
	}

	for category, cat := range summary.Categories {
		cat.Remaining = cat.Budget - cat.Spent
		summary.Categories[category] = cat
	}

	return summary, nil
}

func (s *Store) append(name string, entry Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return errors.Wrapf(err, "failed to create data directory %q", s.dataDir)
	}

	if entry.Date == "" {
		entry.Date = time.Now().Format("2006-01-02")
	}

	f, err := os.OpenFile(filepath.Join(s.dataDir, name), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return errors.Wrapf(err, "failed to open ledger file %q", name)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	record := []string{
		entry.Date,
		entry.Category,
		strconv.FormatFloat(entry.Amount, 'f', 2, 64),
		entry.Note,
	}
	if err := w.Write(record); err != nil {
		return errors.Wrapf(err, "failed to append to %q", name)
	}
	w.Flush()
	return errors.Wrapf(w.Error(), "failed to flush %q", name)
}

func (s *Store) read(name string) ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(filepath.Join(s.dataDir, name))
	if os.IsNotExist(err) {
		return []Entry{}, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open ledger file %q", name)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read ledger file %q", name)
	}

	entries := make([]Entry, 0, len(records))
	for i, record := range records {
		if len(record) != 4 {
			log.WithFields(log.Fields{"file": name, "line": i + 1}).
				Warn("skipping malformed ledger row")
			continue
		}

		amount, err := strconv.ParseFloat(record[2], 64)
		if err != nil {
			log.WithFields(log.Fields{"file": name, "line": i + 1}).
				WithError(err).
				Warn("skipping ledger row with unparsable amount")
			continue
		}

		entries = append(entries, Entry{
			Date:     record[0],
			Category: record[1],
			Amount:   amount,
			Note:     record[3],
		})
	}

	return entries, nil
}

func isInMonth(date, month string) bool {
	return len(date) >= len(month) && date[:len(month)] == month
}

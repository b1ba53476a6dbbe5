package recorder

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists submissions and events to a SQLite database.
type SQLiteRecorder struct {
	db     *sql.DB
	logger *zap.Logger
	mu     sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, logger *zap.Logger) (*SQLiteRecorder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so analytics can read while the API writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, logger: logger}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	logger.Info("sqlite recorder opened",
		zap.String("op", "recorder.NewSQLiteRecorder"),
		zap.String("path", dbPath),
	)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS submissions (
			id                          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp                   INTEGER NOT NULL,
			mortgage_balance            REAL,
			other_loans_balance         REAL,
			current_mortgage_payment    REAL,
			current_other_loans_payment REAL,
			age                         INTEGER,
			property_value              REAL,
			special_case                TEXT,
			has_valid_scenarios         INTEGER,
			min_years                   INTEGER,
			min_payment                 REAL,
			mid_years                   INTEGER,
			mid_payment                 REAL,
			max_years                   INTEGER,
			max_payment                 REAL,
			max_total_savings           REAL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_submissions_ts ON submissions(timestamp)`,

		`CREATE TABLE IF NOT EXISTS events (
			id        INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp INTEGER NOT NULL,
			name      TEXT,
			detail    TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordSubmission(sub *Submission) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	in := sub.Input
	res := sub.Result

	var minYears, midYears, maxYears int
	var minPayment, midPayment, maxPayment, maxTotalSavings float64
	if res.Minimum != nil {
		minYears, minPayment = res.Minimum.Years, res.Minimum.MonthlyPayment
	}
	if res.Middle != nil {
		midYears, midPayment = res.Middle.Years, res.Middle.MonthlyPayment
	}
	if res.Maximum != nil {
		maxYears, maxPayment = res.Maximum.Years, res.Maximum.MonthlyPayment
		maxTotalSavings = res.Maximum.TotalSavings
	}

	hasValid := 0
	if res.HasValidScenarios {
		hasValid = 1
	}

	_, err := r.db.Exec(`INSERT INTO submissions
		(timestamp, mortgage_balance, other_loans_balance,
		 current_mortgage_payment, current_other_loans_payment,
		 age, property_value, special_case, has_valid_scenarios,
		 min_years, min_payment, mid_years, mid_payment,
		 max_years, max_payment, max_total_savings)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), in.MortgageBalance, in.OtherLoansBalance,
		in.CurrentMortgagePayment, in.CurrentOtherLoansPayment,
		in.Age, in.PropertyValue, string(res.SpecialCase), hasValid,
		minYears, minPayment, midYears, midPayment,
		maxYears, maxPayment, maxTotalSavings,
	)
	return err
}

func (r *SQLiteRecorder) RecordEvent(evt *Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO events (timestamp, name, detail) VALUES (?,?,?)`,
		time.Now().Unix(), evt.Name, evt.Detail,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	r.logger.Info("closing sqlite recorder",
		zap.String("op", "recorder.Close"),
	)
	return r.db.Close()
}

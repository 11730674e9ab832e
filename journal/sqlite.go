package journal

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteJournal persists the journal in a SQLite database. ULID primary keys
// are time-sortable, so "ORDER BY id DESC" yields newest-first.
type SQLiteJournal struct {
	db *sql.DB
}

func NewSQLite(path string) (*SQLiteJournal, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open journal db: %w", err)
	}

	if _, err := db.Exec(Schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create journal schema: %w", err)
	}

	return &SQLiteJournal{db: db}, nil
}

func (j *SQLiteJournal) RecordTransaction(t Transaction) error {
	_, err := j.db.Exec(`
		INSERT INTO transactions
		(id, user_id, action, from_currency, to_currency, amount, rate, total, timestamp)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.UserID, string(t.Action), t.FromCurrency, t.ToCurrency,
		t.Amount, t.Rate, t.Total, t.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	return err
}

func (j *SQLiteJournal) RecordRate(e RateEntry) error {
	_, err := j.db.Exec(`
		INSERT INTO rate_history
		(id, from_currency, to_currency, rate, timestamp, source, sync_sources)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.FromCurrency, e.ToCurrency, e.Rate,
		e.Timestamp.UTC().Format(time.RFC3339Nano), e.Source,
		strings.Join(e.SyncSources, ","),
	)
	return err
}

func (j *SQLiteJournal) Transactions(userID int64, limit int) ([]Transaction, error) {
	query := `SELECT id, user_id, action, from_currency, to_currency, amount, rate, total, timestamp
		FROM transactions`
	args := []any{}
	if userID != 0 {
		query += ` WHERE user_id = ?`
		args = append(args, userID)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []Transaction
	for rows.Next() {
		var t Transaction
		var action, ts string
		if err := rows.Scan(&t.ID, &t.UserID, &action, &t.FromCurrency, &t.ToCurrency,
			&t.Amount, &t.Rate, &t.Total, &ts); err != nil {
			return nil, err
		}
		t.Action = Action(action)
		if t.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse transaction timestamp %q: %w", ts, err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Rates(from, to string, limit int) ([]RateEntry, error) {
	query := `SELECT id, from_currency, to_currency, rate, timestamp, source, sync_sources
		FROM rate_history`
	args := []any{}
	if from != "" && to != "" {
		query += ` WHERE from_currency = ? AND to_currency = ?`
		args = append(args, from, to)
	}
	query += ` ORDER BY id DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := j.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("query rate history: %w", err)
	}
	defer rows.Close()

	var out []RateEntry
	for rows.Next() {
		var e RateEntry
		var ts, sources string
		if err := rows.Scan(&e.ID, &e.FromCurrency, &e.ToCurrency, &e.Rate, &ts, &e.Source, &sources); err != nil {
			return nil, err
		}
		if e.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, fmt.Errorf("parse rate timestamp %q: %w", ts, err)
		}
		if sources != "" {
			e.SyncSources = strings.Split(sources, ",")
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (j *SQLiteJournal) Close() error {
	return j.db.Close()
}

package journal

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

// CSVJournal appends journal records to two CSV files. Existing files are
// appended to, never truncated, keeping the trail across runs.
type CSVJournal struct {
	mu sync.Mutex

	txPath    string
	ratesPath string
	tx        *csv.Writer
	rates     *csv.Writer
	tf, rf    *os.File
}

var (
	txHeader   = []string{"id", "user_id", "action", "from_currency", "to_currency", "amount", "rate", "total", "timestamp"}
	rateHeader = []string{"id", "from_currency", "to_currency", "rate", "timestamp", "source", "sync_sources"}
)

func NewCSV(txPath, ratesPath string) (*CSVJournal, error) {
	tf, tw, err := openAppendCSV(txPath, txHeader)
	if err != nil {
		return nil, err
	}
	rf, rw, err := openAppendCSV(ratesPath, rateHeader)
	if err != nil {
		tf.Close()
		return nil, err
	}

	return &CSVJournal{
		txPath:    txPath,
		ratesPath: ratesPath,
		tx:        tw,
		rates:     rw,
		tf:        tf,
		rf:        rf,
	}, nil
}

func openAppendCSV(path string, header []string) (*os.File, *csv.Writer, error) {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal file %s: %w", path, err)
	}

	w := csv.NewWriter(f)

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, err
	}
	if info.Size() == 0 {
		if err := w.Write(header); err != nil {
			f.Close()
			return nil, nil, err
		}
		w.Flush()
		if err := w.Error(); err != nil {
			f.Close()
			return nil, nil, err
		}
	}
	return f, w, nil
}

func (j *CSVJournal) RecordTransaction(t Transaction) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.tx.Write([]string{
		t.ID,
		strconv.FormatInt(t.UserID, 10),
		string(t.Action),
		t.FromCurrency,
		t.ToCurrency,
		f(t.Amount),
		f(t.Rate),
		f(t.Total),
		t.Timestamp.UTC().Format(time.RFC3339Nano),
	}); err != nil {
		return err
	}
	j.tx.Flush()
	return j.tx.Error()
}

func (j *CSVJournal) RecordRate(e RateEntry) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := j.rates.Write([]string{
		e.ID,
		e.FromCurrency,
		e.ToCurrency,
		f(e.Rate),
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Source,
		strings.Join(e.SyncSources, "|"),
	}); err != nil {
		return err
	}
	j.rates.Flush()
	return j.rates.Error()
}

func (j *CSVJournal) Transactions(userID int64, limit int) ([]Transaction, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := readCSV(j.txPath)
	if err != nil {
		return nil, err
	}

	var out []Transaction
	// Walk newest-first; rows are appended in order.
	for i := len(records) - 1; i >= 1; i-- {
		row := records[i]
		if len(row) != len(txHeader) {
			continue
		}
		uid, err := strconv.ParseInt(row[1], 10, 64)
		if err != nil {
			continue
		}
		if userID != 0 && uid != userID {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, row[8])
		if err != nil {
			continue
		}
		out = append(out, Transaction{
			ID:           row[0],
			UserID:       uid,
			Action:       Action(row[2]),
			FromCurrency: row[3],
			ToCurrency:   row[4],
			Amount:       pf(row[5]),
			Rate:         pf(row[6]),
			Total:        pf(row[7]),
			Timestamp:    ts,
		})
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (j *CSVJournal) Rates(from, to string, limit int) ([]RateEntry, error) {
	j.mu.Lock()
	defer j.mu.Unlock()

	records, err := readCSV(j.ratesPath)
	if err != nil {
		return nil, err
	}

	var out []RateEntry
	for i := len(records) - 1; i >= 1; i-- {
		row := records[i]
		if len(row) != len(rateHeader) {
			continue
		}
		if from != "" && to != "" && (row[1] != from || row[2] != to) {
			continue
		}
		ts, err := time.Parse(time.RFC3339Nano, row[4])
		if err != nil {
			continue
		}
		e := RateEntry{
			ID:           row[0],
			FromCurrency: row[1],
			ToCurrency:   row[2],
			Rate:         pf(row[3]),
			Timestamp:    ts,
			Source:       row[5],
		}
		if row[6] != "" {
			e.SyncSources = strings.Split(row[6], "|")
		}
		out = append(out, e)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

func (j *CSVJournal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	j.tx.Flush()
	if err := j.tx.Error(); err != nil {
		return err
	}
	j.rates.Flush()
	if err := j.rates.Error(); err != nil {
		return err
	}

	if err := j.tf.Close(); err != nil {
		return err
	}
	return j.rf.Close()
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("read journal file %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	return r.ReadAll()
}

func f(x float64) string {
	return strconv.FormatFloat(x, 'f', -1, 64)
}

func pf(s string) float64 {
	v, _ := strconv.ParseFloat(s, 64)
	return v
}

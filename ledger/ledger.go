// Package ledger keeps per-user portfolios of currency wallets backed by
// the JSON file store. All mutations of one user's portfolio run under
// that user's lock, so concurrent trades of the same user serialize while
// different users proceed in parallel.
package ledger

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/valutatrade/hub/store"
)

// Ledger loads, mutates and persists portfolios.
type Ledger struct {
	store  *store.Store
	logger *slog.Logger

	mu    sync.Mutex            // guards locks
	locks map[int64]*sync.Mutex // one lock per user, created on first use
}

// NewLedger wraps the given store. A nil logger falls back to the default.
func NewLedger(st *store.Store, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ledger{
		store:  st,
		logger: logger,
		locks:  map[int64]*sync.Mutex{},
	}
}

func portfolioKey(userID int64) string {
	return fmt.Sprintf("portfolio-%d", userID)
}

func (l *Ledger) userLock(userID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()
	lk, ok := l.locks[userID]
	if !ok {
		lk = &sync.Mutex{}
		l.locks[userID] = lk
	}
	return lk
}

// load reads the stored portfolio, returning an empty one when the user
// has no portfolio yet. Callers must hold the user lock when the result
// will be mutated.
func (l *Ledger) load(userID int64) (*Portfolio, error) {
	p := NewPortfolio(userID)
	found, err := l.store.LoadJSON(portfolioKey(userID), p)
	if err != nil {
		return nil, fmt.Errorf("load portfolio %d: %w", userID, err)
	}
	if !found {
		return NewPortfolio(userID), nil
	}
	if p.Wallets == nil {
		p.Wallets = map[string]*Wallet{}
	}
	return p, nil
}

// Portfolio returns a copy of the user's portfolio. Users without one get
// an empty portfolio, not an error.
func (l *Ledger) Portfolio(userID int64) (*Portfolio, error) {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	p, err := l.load(userID)
	if err != nil {
		return nil, err
	}
	return p.clone(), nil
}

// WithPortfolio runs fn against the user's portfolio under the user lock
// and persists the result when fn succeeds. When fn returns an error
// nothing is written, so the stored portfolio is never left half-mutated.
func (l *Ledger) WithPortfolio(userID int64, fn func(*Portfolio) error) error {
	lk := l.userLock(userID)
	lk.Lock()
	defer lk.Unlock()

	p, err := l.load(userID)
	if err != nil {
		return err
	}
	if err := fn(p); err != nil {
		return err
	}
	if err := l.store.SaveJSON(portfolioKey(userID), p); err != nil {
		return fmt.Errorf("save portfolio %d: %w", userID, err)
	}
	return nil
}

// Deposit credits amount to the user's wallet for code, creating the
// wallet if needed.
func (l *Ledger) Deposit(userID int64, code string, amount float64) error {
	return l.WithPortfolio(userID, func(p *Portfolio) error {
		return p.EnsureWallet(code).Deposit(amount)
	})
}

// Withdraw debits amount from the user's wallet for code. A missing
// wallet is reported as insufficient funds with a zero balance.
func (l *Ledger) Withdraw(userID int64, code string, amount float64) error {
	return l.WithPortfolio(userID, func(p *Portfolio) error {
		w, ok := p.Wallet(code)
		if !ok {
			return &InsufficientFundsError{Code: code, Available: 0, Required: amount}
		}
		return w.Withdraw(amount)
	})
}

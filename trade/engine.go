// Package trade executes buy and sell orders against user portfolios,
// pricing every order through the USD hub with cached exchange rates.
package trade

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/valutatrade/hub/internal/id"
	"github.com/valutatrade/hub/journal"
	"github.com/valutatrade/hub/ledger"
	"github.com/valutatrade/hub/market"
	"github.com/valutatrade/hub/rates"
)

// Refresher triggers a rate sync. *rates.Synchronizer satisfies it.
type Refresher interface {
	Refresh(ctx context.Context, sources ...string) (rates.Result, error)
}

// Receipt describes an executed order.
type Receipt struct {
	TransactionID string
	Action        journal.Action
	Code          string  // traded currency
	Amount        float64 // units of Code
	Rate          float64 // USD per unit of Code
	Total         float64 // USD moved
	Balance       float64 // new balance in Code
	USDBalance    float64 // new USD balance
	Timestamp     time.Time
}

// Engine wires the ledger, the rate cache and the journal into the two
// trading operations. Construct one per process; it is safe for
// concurrent use.
type Engine struct {
	ledger  *ledger.Ledger
	cache   *rates.Cache
	sync    Refresher
	journal journal.Journal
	ttl     time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// NewEngine builds an engine. sync and jnl may be nil: without a
// refresher stale rates are used as-is, without a journal trades are not
// recorded.
func NewEngine(l *ledger.Ledger, cache *rates.Cache, sync Refresher, jnl journal.Journal, ttl time.Duration, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		ledger:  l,
		cache:   cache,
		sync:    sync,
		journal: jnl,
		ttl:     ttl,
		logger:  logger,
		now:     time.Now,
	}
}

// Buy purchases amount units of code, paying from the user's USD wallet
// at the current rate. The USD debit and the target credit happen in one
// portfolio mutation; any failure leaves stored balances untouched.
func (e *Engine) Buy(ctx context.Context, userID int64, code string, amount float64) (Receipt, error) {
	return e.execute(ctx, userID, code, amount, journal.ActionBuy)
}

// Sell disposes of amount units of code, crediting the proceeds to the
// user's USD wallet at the current rate.
func (e *Engine) Sell(ctx context.Context, userID int64, code string, amount float64) (Receipt, error) {
	return e.execute(ctx, userID, code, amount, journal.ActionSell)
}

func (e *Engine) execute(ctx context.Context, userID int64, code string, amount float64, action journal.Action) (Receipt, error) {
	started := e.now()

	code, err := market.ValidateCode(code)
	if err != nil {
		return Receipt{}, err
	}
	if code == market.Hub {
		return Receipt{}, fmt.Errorf("%w: cannot trade %s against itself", market.ErrValidation, market.Hub)
	}
	if err := market.ValidateAmount(amount); err != nil {
		return Receipt{}, err
	}

	e.ensureFresh(ctx)

	resolved, err := e.cache.Resolve(code, market.Hub)
	if err != nil {
		return Receipt{}, err
	}
	total := amount * resolved.Rate

	rec := Receipt{
		TransactionID: id.New(),
		Action:        action,
		Code:          code,
		Amount:        amount,
		Rate:          resolved.Rate,
		Total:         total,
		Timestamp:     started,
	}

	err = e.ledger.WithPortfolio(userID, func(p *ledger.Portfolio) error {
		usd := p.EnsureWallet(market.Hub)
		target := p.EnsureWallet(code)

		debit, credit := usd, target
		debitAmount, creditAmount := total, amount
		if action == journal.ActionSell {
			debit, credit = target, usd
			debitAmount, creditAmount = amount, total
		}

		if err := debit.Withdraw(debitAmount); err != nil {
			return err
		}
		if err := credit.Deposit(creditAmount); err != nil {
			// Restore the debited leg so the in-memory copy stays
			// consistent; nothing is persisted on error either way.
			debit.Balance += debitAmount
			return err
		}

		rec.Balance = target.Balance
		rec.USDBalance = usd.Balance
		return nil
	})
	if err != nil {
		e.logger.Warn("trade rejected",
			"action", action, "user_id", userID, "code", code,
			"amount", amount, "error", err)
		return Receipt{}, err
	}

	e.record(userID, rec)

	e.logger.Info("trade executed",
		"action", action, "user_id", userID, "code", code,
		"amount", amount, "rate", resolved.Rate, "total", total,
		"duration", e.now().Sub(started))
	return rec, nil
}

// Rate resolves from→to, refreshing first if the snapshot went stale.
func (e *Engine) Rate(ctx context.Context, from, to string) (rates.Resolved, error) {
	from, err := market.ValidateCode(from)
	if err != nil {
		return rates.Resolved{}, err
	}
	to, err = market.ValidateCode(to)
	if err != nil {
		return rates.Resolved{}, err
	}

	e.ensureFresh(ctx)
	return e.cache.Resolve(from, to)
}

// ensureFresh refreshes the snapshot when it is older than the TTL. A
// failed refresh is logged and tolerated: the caller may still resolve
// against the previous snapshot.
func (e *Engine) ensureFresh(ctx context.Context) {
	if e.sync == nil || e.cache.Fresh(e.ttl) {
		return
	}
	res, err := e.sync.Refresh(ctx)
	switch {
	case err != nil:
		e.logger.Warn("stale rates and refresh failed", "error", err)
	case !res.Success:
		e.logger.Warn("refresh completed with source errors",
			"updated", res.UpdatedSources, "errors", len(res.Errors))
	}
}

// record writes the trade to the journal. History is best-effort: a
// journal failure does not undo an executed trade.
func (e *Engine) record(userID int64, rec Receipt) {
	if e.journal == nil {
		return
	}

	from, to := market.Hub, rec.Code
	if rec.Action == journal.ActionSell {
		from, to = rec.Code, market.Hub
	}

	tx := journal.Transaction{
		ID:           rec.TransactionID,
		UserID:       userID,
		Action:       rec.Action,
		FromCurrency: from,
		ToCurrency:   to,
		Amount:       rec.Amount,
		Rate:         rec.Rate,
		Total:        rec.Total,
		Timestamp:    rec.Timestamp,
	}
	if err := e.journal.RecordTransaction(tx); err != nil {
		e.logger.Error("record transaction", "id", tx.ID, "error", err)
	}
}

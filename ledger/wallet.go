package ledger

import (
	"fmt"

	"github.com/valutatrade/hub/market"
)

// InsufficientFundsError reports a withdrawal that exceeds the wallet
// balance. Available and Required are in the wallet's currency.
type InsufficientFundsError struct {
	Code      string
	Available float64
	Required  float64
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s",
		market.FormatAmount(e.Available, e.Code), e.Code,
		market.FormatAmount(e.Required, e.Code), e.Code)
}

// Wallet holds a balance in a single currency.
type Wallet struct {
	CurrencyCode string  `json:"currency_code"`
	Balance      float64 `json:"balance"`
}

// Deposit adds amount to the balance. Amount must be positive and finite.
func (w *Wallet) Deposit(amount float64) error {
	if err := market.ValidateAmount(amount); err != nil {
		return fmt.Errorf("deposit to %s: %w", w.CurrencyCode, err)
	}
	w.Balance += amount
	return nil
}

// Withdraw removes amount from the balance. Amount must be positive and
// finite, and must not exceed the current balance.
func (w *Wallet) Withdraw(amount float64) error {
	if err := market.ValidateAmount(amount); err != nil {
		return fmt.Errorf("withdraw from %s: %w", w.CurrencyCode, err)
	}
	if w.Balance < amount {
		return &InsufficientFundsError{
			Code:      w.CurrencyCode,
			Available: w.Balance,
			Required:  amount,
		}
	}
	w.Balance -= amount
	return nil
}

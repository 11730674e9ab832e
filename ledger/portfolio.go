package ledger

import (
	"errors"
	"sort"

	"github.com/valutatrade/hub/rates"
)

// RateResolver converts one currency to another. The cache's Resolve
// method satisfies this after adapting; see Valuer.
type RateResolver func(from, to string) (float64, error)

// Portfolio is one user's set of wallets, keyed by currency code.
type Portfolio struct {
	UserID  int64              `json:"user_id"`
	Wallets map[string]*Wallet `json:"wallets"`
}

// NewPortfolio creates an empty portfolio for the user.
func NewPortfolio(userID int64) *Portfolio {
	return &Portfolio{
		UserID:  userID,
		Wallets: map[string]*Wallet{},
	}
}

// Wallet returns the wallet for code if it exists.
func (p *Portfolio) Wallet(code string) (*Wallet, bool) {
	w, ok := p.Wallets[code]
	return w, ok
}

// EnsureWallet returns the wallet for code, creating a zero-balance one if
// the user does not hold that currency yet. Creating an already-existing
// wallet is a no-op.
func (p *Portfolio) EnsureWallet(code string) *Wallet {
	if w, ok := p.Wallets[code]; ok {
		return w
	}
	w := &Wallet{CurrencyCode: code}
	if p.Wallets == nil {
		p.Wallets = map[string]*Wallet{}
	}
	p.Wallets[code] = w
	return w
}

// Codes returns the held currency codes in sorted order.
func (p *Portfolio) Codes() []string {
	codes := make([]string, 0, len(p.Wallets))
	for code := range p.Wallets {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// TotalValue sums every wallet converted into base. Wallets whose rate
// cannot be resolved are skipped rather than failing the whole valuation;
// their codes are returned so callers can flag them.
func (p *Portfolio) TotalValue(base string, resolve RateResolver) (float64, []string, error) {
	total := 0.0
	var skipped []string

	for _, code := range p.Codes() {
		w := p.Wallets[code]
		if code == base {
			total += w.Balance
			continue
		}
		rate, err := resolve(code, base)
		if err != nil {
			var unavailable *rates.RateUnavailableError
			if errors.As(err, &unavailable) {
				skipped = append(skipped, code)
				continue
			}
			return 0, nil, err
		}
		total += w.Balance * rate
	}

	return total, skipped, nil
}

// clone deep-copies the portfolio so readers never share wallet pointers
// with the ledger's working copy.
func (p *Portfolio) clone() *Portfolio {
	out := NewPortfolio(p.UserID)
	for code, w := range p.Wallets {
		cp := *w
		out.Wallets[code] = &cp
	}
	return out
}

package market

import (
	"fmt"
	"sort"
)

// Currency describes a tradable currency. The two concrete variants are
// FiatCurrency and CryptoCurrency; the synchronizer and CLI only depend on
// this interface.
type Currency interface {
	Code() string
	Name() string
	DisplayInfo() string
}

// FiatCurrency is a state-issued currency.
type FiatCurrency struct {
	CurrencyName   string
	CurrencyCode   string
	IssuingCountry string
}

func (c FiatCurrency) Code() string { return c.CurrencyCode }
func (c FiatCurrency) Name() string { return c.CurrencyName }

func (c FiatCurrency) DisplayInfo() string {
	return fmt.Sprintf("[FIAT] %s — %s (Issuing: %s)", c.CurrencyCode, c.CurrencyName, c.IssuingCountry)
}

// CryptoCurrency is a cryptographic asset quoted against the hub currency.
type CryptoCurrency struct {
	CurrencyName string
	CurrencyCode string
	Algorithm    string
	MarketCap    float64
}

func (c CryptoCurrency) Code() string { return c.CurrencyCode }
func (c CryptoCurrency) Name() string { return c.CurrencyName }

func (c CryptoCurrency) DisplayInfo() string {
	return fmt.Sprintf("[CRYPTO] %s — %s (Algo: %s)", c.CurrencyCode, c.CurrencyName, c.Algorithm)
}

// CurrencyNotFoundError reports an unsupported currency code.
type CurrencyNotFoundError struct {
	Code string
}

func (e *CurrencyNotFoundError) Error() string {
	return fmt.Sprintf("unknown currency %q", e.Code)
}

var registry = map[string]Currency{
	"USD": FiatCurrency{"US Dollar", "USD", "United States"},
	"EUR": FiatCurrency{"Euro", "EUR", "Eurozone"},
	"GBP": FiatCurrency{"Pound Sterling", "GBP", "United Kingdom"},
	"RUB": FiatCurrency{"Russian Ruble", "RUB", "Russia"},
	"JPY": FiatCurrency{"Japanese Yen", "JPY", "Japan"},
	"CHF": FiatCurrency{"Swiss Franc", "CHF", "Switzerland"},
	"CNY": FiatCurrency{"Chinese Yuan", "CNY", "China"},

	"BTC":  CryptoCurrency{"Bitcoin", "BTC", "SHA-256", 0},
	"ETH":  CryptoCurrency{"Ethereum", "ETH", "Ethash", 0},
	"SOL":  CryptoCurrency{"Solana", "SOL", "PoH", 0},
	"ADA":  CryptoCurrency{"Cardano", "ADA", "Ouroboros", 0},
	"DOGE": CryptoCurrency{"Dogecoin", "DOGE", "Scrypt", 0},
}

// Get returns the registered currency for code.
func Get(code string) (Currency, error) {
	c, ok := registry[code]
	if !ok {
		return nil, &CurrencyNotFoundError{Code: code}
	}
	return c, nil
}

// IsSupported reports whether code is in the registry.
func IsSupported(code string) bool {
	_, ok := registry[code]
	return ok
}

// Codes returns all supported currency codes, sorted.
func Codes() []string {
	codes := make([]string, 0, len(registry))
	for code := range registry {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

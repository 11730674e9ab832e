package market

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateCode(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "upper", in: "BTC", want: "BTC"},
		{name: "lower_normalized", in: "eur", want: "EUR"},
		{name: "surrounding_space", in: "  usd ", want: "USD"},
		{name: "empty", in: "", wantErr: true},
		{name: "too_short", in: "B", wantErr: true},
		{name: "too_long", in: "ABCDEF", wantErr: true},
		{name: "digits", in: "BT1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateCode(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateCodeUnknownCurrency(t *testing.T) {
	t.Parallel()

	_, err := ValidateCode("XYZ")
	var notFound *CurrencyNotFoundError
	require.ErrorAs(t, err, &notFound)
	assert.Equal(t, "XYZ", notFound.Code)
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	assert.NoError(t, ValidateAmount(0.001))
	assert.ErrorIs(t, ValidateAmount(0), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(-5), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(math.NaN()), ErrValidation)
	assert.ErrorIs(t, ValidateAmount(math.Inf(1)), ErrValidation)
}

func TestValidateUsername(t *testing.T) {
	t.Parallel()

	got, err := ValidateUsername(" alice_1 ")
	require.NoError(t, err)
	assert.Equal(t, "alice_1", got)

	_, err = ValidateUsername("ab")
	assert.ErrorIs(t, err, ErrValidation)

	_, err = ValidateUsername("bad name")
	assert.ErrorIs(t, err, ErrValidation)
}

func TestPairKey(t *testing.T) {
	t.Parallel()

	k := PairKey{From: "BTC", To: "USD"}
	assert.Equal(t, "BTC_USD", k.String())
	assert.Equal(t, PairKey{From: "USD", To: "BTC"}, k.Inverse())

	parsed, err := ParsePairKey("EUR_USD")
	require.NoError(t, err)
	assert.Equal(t, PairKey{From: "EUR", To: "USD"}, parsed)

	_, err = ParsePairKey("EURUSD")
	assert.Error(t, err)
	_, err = ParsePairKey("_USD")
	assert.Error(t, err)
}

func TestRegistry(t *testing.T) {
	t.Parallel()

	c, err := Get("BTC")
	require.NoError(t, err)
	assert.Equal(t, "BTC", c.Code())
	assert.IsType(t, CryptoCurrency{}, c)

	c, err = Get("EUR")
	require.NoError(t, err)
	assert.IsType(t, FiatCurrency{}, c)

	_, err = Get("ZZZ")
	var notFound *CurrencyNotFoundError
	assert.True(t, errors.As(err, &notFound))

	assert.Contains(t, Codes(), "USD")
	assert.True(t, IsSupported("DOGE"))
	assert.False(t, IsSupported("XRP"))
}

func TestFormatAmount(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "1.50 USD", FormatAmount(1.5, "USD"))
	assert.Equal(t, "0.00100000 BTC", FormatAmount(0.001, "BTC"))
	assert.Equal(t, "1200 JPY", FormatAmount(1200, "JPY"))
}

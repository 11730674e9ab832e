package rates

import (
	"context"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/valutatrade/hub/market"
)

// DefaultCryptoAssets maps currency codes to CoinGecko asset identifiers.
var DefaultCryptoAssets = map[string]string{
	"BTC":  "bitcoin",
	"ETH":  "ethereum",
	"SOL":  "solana",
	"ADA":  "cardano",
	"DOGE": "dogecoin",
}

// CoinGeckoSource fetches crypto/USD rates from the CoinGecko simple-price
// endpoint with one batched query.
type CoinGeckoSource struct {
	baseURL string
	client  *http.Client
	assets  map[string]string // code -> provider asset id
}

// NewCoinGecko builds a source for the given currency codes. Codes without a
// known asset id are skipped.
func NewCoinGecko(baseURL string, codes []string, timeout time.Duration) *CoinGeckoSource {
	assets := make(map[string]string, len(codes))
	for _, code := range codes {
		if assetID, ok := DefaultCryptoAssets[code]; ok {
			assets[code] = assetID
		}
	}
	return &CoinGeckoSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		assets:  assets,
	}
}

func (s *CoinGeckoSource) Name() string { return "coingecko" }

func (s *CoinGeckoSource) Fetch(ctx context.Context) (map[market.PairKey]float64, error) {
	if len(s.assets) == 0 {
		return map[market.PairKey]float64{}, nil
	}

	ids := make([]string, 0, len(s.assets))
	for _, assetID := range s.assets {
		ids = append(ids, assetID)
	}
	sort.Strings(ids)

	params := url.Values{}
	params.Set("ids", strings.Join(ids, ","))
	params.Set("vs_currencies", "usd")

	// Response shape: {"bitcoin": {"usd": 59337.21}, ...}
	var body map[string]map[string]float64
	if err := fetchJSON(ctx, s.client, s.Name(), s.baseURL+"?"+params.Encode(), &body); err != nil {
		return nil, err
	}

	out := make(map[market.PairKey]float64, len(s.assets))
	for code, assetID := range s.assets {
		prices, ok := body[assetID]
		if !ok {
			continue
		}
		usd, ok := prices["usd"]
		if !ok || usd <= 0 {
			continue
		}
		out[market.PairKey{From: code, To: market.Hub}] = usd
	}
	return out, nil
}

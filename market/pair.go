package market

import (
	"fmt"
	"strings"
)

// Hub is the currency every source quotes against and the pivot for
// triangulated rate resolution.
const Hub = "USD"

// PairKey identifies a directed currency pair. The canonical string form is
// "FROM_TO", e.g. "BTC_USD".
type PairKey struct {
	From string
	To   string
}

func (k PairKey) String() string {
	return k.From + "_" + k.To
}

// Inverse returns the opposite direction of the pair.
func (k PairKey) Inverse() PairKey {
	return PairKey{From: k.To, To: k.From}
}

// ParsePairKey parses the canonical "FROM_TO" form.
func ParsePairKey(s string) (PairKey, error) {
	from, to, ok := strings.Cut(s, "_")
	if !ok || from == "" || to == "" {
		return PairKey{}, fmt.Errorf("malformed pair key %q", s)
	}
	return PairKey{From: from, To: to}, nil
}

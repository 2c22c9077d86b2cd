package ledger

import (
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/NicolasHaas/ledgerpro/pkg/model"
)

// Tier is the relative activity classification of a customer against the
// rest of the roster at the moment of computation. It shifts as other
// customers' activity changes.
type Tier int

const (
	TierInactive Tier = iota
	TierLow
	TierMedium
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierLow:
		return "low"
	case TierMedium:
		return "medium"
	case TierHigh:
		return "high"
	default:
		return "Inactive"
	}
}

// TotalVolume sums every transaction amount in the journal.
func TotalVolume(txs []model.Transaction) decimal.Decimal {
	total := decimal.Zero
	for _, tx := range txs {
		total = total.Add(tx.Amount)
	}
	return total
}

// AverageTransaction is TotalVolume divided by the entry count, zero for an
// empty journal.
func AverageTransaction(txs []model.Transaction) decimal.Decimal {
	if len(txs) == 0 {
		return decimal.Zero
	}
	return TotalVolume(txs).Div(decimal.NewFromInt(int64(len(txs))))
}

// PerCustomerBalance sums the customer's embedded transactions, zero when
// none are embedded.
func PerCustomerBalance(c model.Customer) decimal.Decimal {
	return c.Balance()
}

// Cutoffs derives the two activity thresholds from the roster: the values
// at the 33rd and 66th percentile index of the ascending nonzero
// embedded-transaction counts. Both are zero for a roster with no active
// customers.
func Cutoffs(customers []model.Customer) (low, high int) {
	counts := make([]int, 0, len(customers))
	for _, c := range customers {
		if n := c.Transactions.Count(); n > 0 {
			counts = append(counts, n)
		}
	}
	if len(counts) == 0 {
		return 0, 0
	}
	sort.Ints(counts)
	low = counts[int(math.Floor(float64(len(counts))*0.33))]
	high = counts[int(math.Floor(float64(len(counts))*0.66))]
	return low, high
}

// TierFor classifies one customer against cutoffs computed over the whole
// roster. Zero embedded transactions is Inactive regardless of cutoffs.
func TierFor(c model.Customer, low, high int) Tier {
	n := c.Transactions.Count()
	switch {
	case n == 0:
		return TierInactive
	case n >= high:
		return TierHigh
	case n >= low:
		return TierMedium
	default:
		return TierLow
	}
}

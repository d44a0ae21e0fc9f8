package pricing

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrNoPriceTiers    = errors.New("product has no price tiers")
	ErrMalformedTiers  = errors.New("malformed price tier table")
)

// PriceTier is one quantity band of a product's bulk-discount table.
// A MaxQuantity of 0 marks the band as open-ended.
type PriceTier struct {
	MinQuantity int     `json:"min_quantity"`
	MaxQuantity int     `json:"max_quantity,omitempty"`
	Price       float64 `json:"price"`
}

// Unbounded reports whether the tier has no upper quantity limit.
func (t PriceTier) Unbounded() bool {
	return t.MaxQuantity == 0
}

// Contains reports whether the tier's quantity band covers quantity.
func (t PriceTier) Contains(quantity int) bool {
	return quantity >= t.MinQuantity && (t.Unbounded() || quantity <= t.MaxQuantity)
}

// ResolveUnitPrice maps a requested quantity to a unit price using the
// product's tier table. The first matching tier in table order wins, so
// callers keep tiers sorted ascending by MinQuantity. A quantity beyond
// every bounded tier resolves to the last tier's price: an unreachable
// quantity means the seller misconfigured the table, not that the buyer
// did anything wrong.
//
// Pure function. The cart recomputes prices through it on every quantity
// edit and checkout re-derives them at commit time; both must agree.
func ResolveUnitPrice(tiers []PriceTier, quantity int) (float64, error) {
	if quantity < 1 {
		return 0, ErrInvalidQuantity
	}
	if len(tiers) == 0 {
		return 0, ErrNoPriceTiers
	}
	for _, tier := range tiers {
		if tier.Contains(quantity) {
			return tier.Price, nil
		}
	}
	return tiers[len(tiers)-1].Price, nil
}

// ValidateTiers checks that a tier table is well-formed: non-empty, starting
// at quantity 1, sorted ascending, contiguous, with only the last tier
// allowed to be open-ended. Products are validated on create and update so
// stored tables always pass; the resolver itself stays permissive.
func ValidateTiers(tiers []PriceTier) error {
	if len(tiers) == 0 {
		return fmt.Errorf("%w: table is empty", ErrMalformedTiers)
	}
	if tiers[0].MinQuantity != 1 {
		return fmt.Errorf("%w: first tier must start at quantity 1", ErrMalformedTiers)
	}
	for i, tier := range tiers {
		if tier.Price < 0 {
			return fmt.Errorf("%w: tier %d has a negative price", ErrMalformedTiers, i)
		}
		if !tier.Unbounded() && tier.MaxQuantity < tier.MinQuantity {
			return fmt.Errorf("%w: tier %d has an inverted range", ErrMalformedTiers, i)
		}
		if i == len(tiers)-1 {
			continue
		}
		if tier.Unbounded() {
			return fmt.Errorf("%w: tier %d is open-ended but not last", ErrMalformedTiers, i)
		}
		if next := tiers[i+1]; next.MinQuantity != tier.MaxQuantity+1 {
			return fmt.Errorf("%w: gap or overlap between tiers %d and %d", ErrMalformedTiers, i, i+1)
		}
	}
	return nil
}

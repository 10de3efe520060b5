package stockform

import (
	"fmt"
	"strconv"
	"strings"
)

// UnlimitedDisplay is how an absent quantity is shown to the operator.
const UnlimitedDisplay = "unlimited"

// RemainingQuantity is the derived "stock left" cell of a row. Count is the
// raw difference; the display floors it at zero.
type RemainingQuantity struct {
	Unlimited bool
	Count     int64
}

func (r RemainingQuantity) String() string {
	if r.Unlimited {
		return UnlimitedDisplay
	}
	if r.Count < 0 {
		return "0"
	}
	return strconv.FormatInt(r.Count, 10)
}

// ResolveQuantity derives the logical quantity and the remaining-quantity
// display state from the raw quantity input. A blank input means unlimited; a
// literal zero stays the number zero, never "unlimited".
func ResolveQuantity(quantityField string, bookingsQuantity int64) (*int64, RemainingQuantity, error) {
	trimmed := strings.TrimSpace(quantityField)
	if trimmed == "" {
		return nil, RemainingQuantity{Unlimited: true}, nil
	}

	quantity, err := strconv.ParseInt(trimmed, 10, 64)
	if err != nil {
		return nil, RemainingQuantity{}, fmt.Errorf("invalid quantity %q: %w", quantityField, err)
	}

	return &quantity, RemainingQuantity{Count: quantity - bookingsQuantity}, nil
}

package portfolio

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseLot reads "SYMBOL QTY [AVG_COST]". The cost may carry a leading "$".
// Only the shape is checked here; the symbol is not normalized.
func ParseLot(input string) (Lot, error) {
	return ParseLotFields(strings.Fields(input))
}

// ParseLotFields is ParseLot for already split arguments.
func ParseLotFields(fields []string) (Lot, error) {
	if len(fields) < 2 || len(fields) > 3 {
		return Lot{}, fmt.Errorf("expected SYMBOL QTY [AVG_COST], got %q", strings.Join(fields, " "))
	}

	qty, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Lot{}, fmt.Errorf("invalid quantity %q", fields[1])
	}

	lot := Lot{Symbol: fields[0], Qty: qty}
	if len(fields) == 3 {
		cost, err := strconv.ParseFloat(strings.TrimPrefix(fields[2], "$"), 64)
		if err != nil {
			return Lot{}, fmt.Errorf("invalid average cost %q", fields[2])
		}
		lot.AvgCost = cost
	}
	return lot, nil
}

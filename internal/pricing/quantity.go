package pricing

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

const (
	DefaultQuantity = 100
	MinQuantity     = 1
	// MaxQuantity matches the INTEGER orders.quantity column and keeps
	// unit*quantity well inside int64.
	MaxQuantity = math.MaxInt32
	// SmallBatchQuantity is the threshold below which the small-batch
	// surcharge hint is shown.
	SmallBatchQuantity = 10
)

// ClampQuantity parses free-text quantity input. Anything unparsable or
// below MinQuantity becomes MinQuantity; values above MaxQuantity, including
// integers too large to parse, become MaxQuantity.
func ClampQuantity(raw string) int {
	qty, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		var numErr *strconv.NumError
		if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) && qty > 0 {
			return MaxQuantity
		}
		return MinQuantity
	}
	return ClampQuantityValue(qty)
}

// ClampQuantityValue bounds qty to [MinQuantity, MaxQuantity].
func ClampQuantityValue(qty int) int {
	switch {
	case qty < MinQuantity:
		return MinQuantity
	case qty > MaxQuantity:
		return MaxQuantity
	}
	return qty
}

// SmallBatch reports whether qty should carry the higher-coefficient hint.
func SmallBatch(qty int) bool {
	return qty < SmallBatchQuantity
}

package email

import (
	"strconv"
	"strings"
)

// FormatMoney formats a whole-unit amount with space-separated thousands,
// e.g. FormatMoney(117000, "₽") is "117 000 ₽". An empty symbol prints the number only.
func FormatMoney(amount int64, symbol string) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}

	s := strconv.FormatInt(amount, 10)

	var b strings.Builder
	b.Grow(len(s) + len(s)/3 + len(symbol) + 2)
	if neg {
		b.WriteByte('-')
	}

	rem := len(s) % 3
	if rem == 0 {
		rem = 3
	}
	b.WriteString(s[:rem])
	for i := rem; i < len(s); i += 3 {
		b.WriteByte(' ')
		b.WriteString(s[i : i+3])
	}

	if symbol != "" {
		b.WriteByte(' ')
		b.WriteString(symbol)
	}
	return b.String()
}

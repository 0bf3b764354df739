package bulkio

import (
	"strconv"
	"strings"
)

// RepairNumeric rewrites the bare-exponent shorthand many bulk decks use:
// a `+` or `-` after the first character with no preceding exponent marker
// is an exponent sign, so `3.2-5` means `3.2E-5`. A leading sign is part of
// the mantissa and stays untouched. Double-precision `D` markers become `E`.
func RepairNumeric(tok string) string {
	if tok == "" {
		return tok
	}
	var b strings.Builder
	b.Grow(len(tok) + 1)
	for i := 0; i < len(tok); i++ {
		ch := tok[i]
		switch {
		case ch == 'd' || ch == 'D':
			b.WriteByte('E')
		case (ch == '+' || ch == '-') && i > 0:
			prev := tok[i-1]
			if prev != 'e' && prev != 'E' && prev != 'd' && prev != 'D' {
				b.WriteByte('E')
			}
			b.WriteByte(ch)
		default:
			b.WriteByte(ch)
		}
	}
	return b.String()
}

func parseInt(tok string) (int64, bool) {
	t := strings.TrimSpace(tok)
	if t == "" {
		return 0, false
	}
	n, err := strconv.ParseInt(t, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseReal(tok string) (float64, bool) {
	t := strings.TrimSpace(tok)
	if t == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(RepairNumeric(t), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// FormatAmount renders an integer amount with thousand separators and currency code.
func FormatAmount(currency string, amount int64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return sign + formatThousand(amount)
	}
	return fmt.Sprintf("%s%s %s", sign, currency, formatThousand(amount))
}

// ParseAmount parses spreadsheet-style amounts such as "1,500", "1500.00" or " 900 ".
// Fractions are truncated; empty input is 0.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	s = strings.NewReplacer(",", "", " ", "", "_", "").Replace(s)
	if i := strings.IndexByte(s, '.'); i >= 0 {
		frac := s[i+1:]
		if strings.Trim(frac, "0123456789") != "" {
			return 0, fmt.Errorf("invalid amount %q", s)
		}
		s = s[:i]
	}
	if s == "" || s == "-" {
		return 0, fmt.Errorf("invalid amount")
	}
	return strconv.ParseInt(s, 10, 64)
}

func formatThousand(n int64) string {
	if n == 0 {
		return "0"
	}
	str := strconv.FormatInt(n, 10)
	var out strings.Builder
	for i, c := range str {
		if i != 0 && (len(str)-i)%3 == 0 {
			out.WriteByte(',')
		}
		out.WriteRune(c)
	}
	return out.String()
}

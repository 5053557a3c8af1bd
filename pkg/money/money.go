// Package money converts display prices to integer minor units and back.
//
// Amounts are carried as int64 cents everywhere; strings appear only at the
// display boundary.
package money

import (
	"strconv"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// ParseMinorUnits converts a display price such as "€1,234.50" to minor
// units. Every character other than digits and '.' is ignored. Fractions
// beyond cents are rounded half up. Malformed input yields 0.
//
// Applying it to Format(ParseMinorUnits(s)) returns the same amount.
func ParseMinorUnits(display string) int64 {
	var b strings.Builder
	for _, r := range display {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	cleaned := b.String()
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return 0
	}

	whole, frac, _ := strings.Cut(cleaned, ".")
	if whole == "" && frac == "" {
		return 0
	}

	var units int64
	if whole != "" {
		n, err := strconv.ParseInt(whole, 10, 64)
		if err != nil || n > maxWhole {
			return 0
		}
		units = n * 100
	}

	frac += "000"
	cents := int64(frac[0]-'0')*10 + int64(frac[1]-'0')
	units += cents
	if frac[2] >= '5' {
		units++
	}
	return units
}

// maxWhole keeps n*100 well inside int64.
const maxWhole = 1<<62/100 - 1

// Format renders minor units with the English currency symbol and two
// decimals, e.g. Format(123450, "EUR") == "€1,234.50". Currencies without a
// symbol, and unknown codes, are prefixed with the code and a space.
func Format(minor int64, code string) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}

	p := message.NewPrinter(language.English)

	prefix := strings.ToUpper(code) + " "
	if unit, err := currency.ParseISO(code); err == nil {
		prefix = p.Sprint(currency.Symbol(unit))
		if prefix == unit.String() {
			prefix += " "
		}
	}
	if code == "" {
		prefix = ""
	}

	return sign + prefix + p.Sprintf("%d", minor/100) + "." + twoDigits(minor%100)
}

func twoDigits(n int64) string {
	if n < 10 {
		return "0" + strconv.FormatInt(n, 10)
	}
	return strconv.FormatInt(n, 10)
}

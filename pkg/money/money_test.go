package money

import "testing"

func TestParseMinorUnits(t *testing.T) {
	tests := []struct {
		name    string
		display string
		want    int64
	}{
		{name: "euro", display: "€45.00", want: 4500},
		{name: "grouping", display: "€1,234.50", want: 123450},
		{name: "dollar without cents", display: "$12", want: 1200},
		{name: "one decimal", display: "£3.5", want: 350},
		{name: "round half up", display: "€0.125", want: 13},
		{name: "round down", display: "€0.124", want: 12},
		{name: "round up carries", display: "9.995", want: 1000},
		{name: "leading dot", display: ".99", want: 99},
		{name: "suffix code", display: "45.00 EUR", want: 4500},
		{name: "empty", display: "", want: 0},
		{name: "no digits", display: "€", want: 0},
		{name: "lone dot", display: "€.", want: 0},
		{name: "two dots", display: "1.2.3", want: 0},
		{name: "overflow", display: "999999999999999999999", want: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseMinorUnits(tt.display); got != tt.want {
				t.Errorf("ParseMinorUnits(%q) = %d, want %d", tt.display, got, tt.want)
			}
		})
	}
}

func TestParseMinorUnits_Idempotent(t *testing.T) {
	for _, s := range []string{"€45.00", "€1,234.56", "$0.10", "£999,999.99"} {
		first := ParseMinorUnits(s)
		again := ParseMinorUnits(Format(first, "EUR"))
		if first != again {
			t.Errorf("%q: %d then %d", s, first, again)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		minor int64
		code  string
		want  string
	}{
		{4500, "EUR", "€45.00"},
		{123456, "EUR", "€1,234.56"},
		{5, "USD", "$0.05"},
		{13500, "GBP", "£135.00"},
		{100, "SEK", "SEK 1.00"},
		{-250, "EUR", "-€2.50"},
		{700, "", "7.00"},
		{100, "abc", "ABC 1.00"},
	}

	for _, tt := range tests {
		if got := Format(tt.minor, tt.code); got != tt.want {
			t.Errorf("Format(%d, %q) = %q, want %q", tt.minor, tt.code, got, tt.want)
		}
	}
}

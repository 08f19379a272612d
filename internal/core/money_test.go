package core

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in  string
		out string
		ok  bool
	}{
		{"1", "1", true},
		{"1.0", "1", true},
		{"-1.23", "-1.23", true},
		{"+40000", "40000", true},
		{"1,23", "1.23", true},
		{" 2.50 ", "2.5", true},
		{"0", "0", true},
		{".5", "0.5", true},
		{"--1", "", false},
		{"-", "", false},
		{"abc", "", false},
		{"1.2.3", "", false},
		{"1 000", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.ok {
			if err != nil || !got.Equal(decimal.RequireFromString(tc.out)) {
				t.Fatalf("%q expected %s, got %s (err=%v)", tc.in, tc.out, got, err)
			}
		} else if err == nil {
			t.Fatalf("%q expected error", tc.in)
		}
	}
}

func TestCurrencyFormatterFormat(t *testing.T) {
	tests := []struct {
		name string
		f    CurrencyFormatter
		in   string
		want string
	}{
		{"whole rupees", DefaultFormatter(), "125", "₹125"},
		{"rounds half away from zero", DefaultFormatter(), "1234.5", "₹1,235"},
		{"groups thousands", DefaultFormatter(), "40000", "₹40,000"},
		{"negative", DefaultFormatter(), "-1502.94", "-₹1,503"},
		{"two decimals", CurrencyFormatter{Symbol: "$", Decimals: 2}, "-1502.94", "-$1,502.94"},
		{"pads decimals", CurrencyFormatter{Symbol: "€", Decimals: 2}, "12.5", "€12.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.Format(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("Format(%s) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

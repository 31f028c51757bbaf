package core

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain integer", input: "500", want: "500"},
		{name: "two decimals", input: "500.00", want: "500"},
		{name: "comma separator", input: "12,34", want: "12.34"},
		{name: "whitespace trimmed", input: " 42.50 ", want: "42.5"},
		{name: "empty string", input: "", wantErr: true},
		{name: "not a number", input: "NaN", wantErr: true},
		{name: "garbage", input: "12abc", wantErr: true},
		{name: "negative rejected", input: "-5.00", wantErr: true},
		{name: "zero rejected", input: "0", wantErr: true},
		{name: "zero with decimals rejected", input: "0.00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAmount(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseAmount(%q) = %v, want error", tt.input, got)
				}
				if !errors.Is(err, ErrInvalidAmount) {
					t.Errorf("ParseAmount(%q) error = %v, want ErrInvalidAmount", tt.input, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseAmount(%q) unexpected error: %v", tt.input, err)
			}
			want, _ := decimal.NewFromString(tt.want)
			if !got.Equal(want) {
				t.Errorf("ParseAmount(%q) = %v, want %v", tt.input, got, want)
			}
		})
	}
}

func TestFormatAmount(t *testing.T) {
	d := decimal.RequireFromString("1234.5")
	if got := FormatAmount(d); got != "1234.50" {
		t.Errorf("FormatAmount = %q, want %q", got, "1234.50")
	}
}

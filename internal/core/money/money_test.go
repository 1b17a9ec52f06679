package money

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantBase int64
		wantErr  bool
	}{
		{name: "whole amount", input: "10", wantBase: 10_000_000},
		{name: "two decimals", input: "10.00", wantBase: 10_000_000},
		{name: "cents", input: "0.50", wantBase: 500_000},
		{name: "full precision", input: "1.234567", wantBase: 1_234_567},
		{name: "empty is zero", input: "", wantBase: 0},
		{name: "whitespace is zero", input: "  ", wantBase: 0},
		{name: "zero", input: "0.00", wantBase: 0},
		{name: "leading dot", input: ".25", wantBase: 250_000},
		{name: "negative rejected", input: "-1.00", wantErr: true},
		{name: "excess precision rejected", input: "0.1234567", wantErr: true},
		{name: "garbage rejected", input: "ten", wantErr: true},
		{name: "double dot rejected", input: "1.2.3", wantErr: true},
		{name: "signed fraction rejected", input: "1.-5", wantErr: true},
		{name: "plus fraction rejected", input: "1.+5", wantErr: true},
		{name: "signed whole rejected", input: "+1.00", wantErr: true},
		{name: "spaced fraction rejected", input: "1. 5", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("Parse(%q) = %v, want error", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("Parse(%q) failed: %v", tt.input, err)
			}
			if got.Base() != tt.wantBase {
				t.Errorf("Parse(%q) = %d base units, want %d", tt.input, got.Base(), tt.wantBase)
			}
		})
	}
}

func TestString(t *testing.T) {
	tests := []struct {
		base int64
		want string
	}{
		{10_000_000, "10.00"},
		{500_000, "0.50"},
		{1_234_567, "1.234567"},
		{0, "0.00"},
		{1_200_000, "1.20"},
	}

	for _, tt := range tests {
		if got := FromBase(tt.base).String(); got != tt.want {
			t.Errorf("FromBase(%d).String() = %q, want %q", tt.base, got, tt.want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for _, s := range []string{"10.00", "0.50", "1.234567", "0.00"} {
		a := MustParse(s)
		if a.String() != s {
			t.Errorf("round trip %q = %q", s, a.String())
		}
	}
}

func TestCmp(t *testing.T) {
	if MustParse("10.00").Cmp(MustParse("5.00")) != 1 {
		t.Error("10.00 should compare greater than 5.00")
	}
	if MustParse("5.00").Cmp(MustParse("10.00")) != -1 {
		t.Error("5.00 should compare less than 10.00")
	}
	if MustParse("5.00").Cmp(MustParse("5.00")) != 0 {
		t.Error("equal amounts should compare equal")
	}
	if !Zero.IsZero() || Zero.IsPositive() {
		t.Error("zero amount misreported")
	}
	if !MustParse("0.01").IsPositive() {
		t.Error("0.01 should be positive")
	}
}

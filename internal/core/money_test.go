package core

import "testing"

func TestMoneyFormat(t *testing.T) {
	tests := []struct {
		name   string
		rupiah int64
		want   string
	}{
		{"zero", 0, "Rp0"},
		{"under one thousand", 999, "Rp999"},
		{"exactly one thousand", 1000, "Rp1.000"},
		{"typical income", 500000, "Rp500.000"},
		{"typical expense", 150000, "Rp150.000"},
		{"ending balance", 350000, "Rp350.000"},
		{"millions", 12345678, "Rp12.345.678"},
		{"negative", -1250, "-Rp1.250"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Money{Rupiah: tt.rupiah}.Format()
			if got != tt.want {
				t.Errorf("Money{%d}.Format() = %q, want %q", tt.rupiah, got, tt.want)
			}
		})
	}
}

func TestFormatRupiah(t *testing.T) {
	if got := FormatRupiah(2500000); got != "Rp2.500.000" {
		t.Errorf("FormatRupiah(2500000) = %q, want %q", got, "Rp2.500.000")
	}
}

package storage

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestMinorUnits(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"0", 0},
		{"166.67", 16667},
		{"-150", -15000},
		{"0.005", 1},
		{"-0.005", -1},
		{"1000000", 100000000},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ToMinor(decimal.RequireFromString(tt.in))
			if got != tt.want {
				t.Errorf("ToMinor(%s) = %d, want %d", tt.in, got, tt.want)
			}
		})
	}

	if got := FromMinor(16667); !got.Equal(decimal.RequireFromString("166.67")) {
		t.Errorf("FromMinor(16667) = %s", got)
	}
}

package dependents

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStarsToNumber(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"N/A", -1},
		{"", 0},
		{"   ", 0},
		{"100", 100},
		{" 42 ", 42},
		{"1,234", 1234},
		{"1,234,567", 1234567},
		{"1.2k", 1200},
		{"1.2K", 1200},
		{"15k", 15000},
		{"2.5 k", 2500},
		{"k", 0},
		{"abck", 0},
		{"abc", 0},
		{"invalid", 0},
		{"1,2k", 0},
		{"NaN", 0},
		{"n/a", 0},
		{"0", 0},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, StarsToNumber(tt.in))
		})
	}
}

func TestStarsToNumber_NAIsExact(t *testing.T) {
	// Only the exact marker is the sentinel; padded variants fall through.
	assert.Equal(t, -1.0, StarsToNumber(NotAvailable))
	assert.Equal(t, 0.0, StarsToNumber(" N/A "))
}

func TestDependentStars(t *testing.T) {
	assert.Equal(t, 1200.0, Dependent{StarsText: "1.2k"}.Stars())
}

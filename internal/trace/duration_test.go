package trace

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		days     int
		expected string
	}{
		{0, "0 days"},
		{1, "1 day"},
		{29, "29 days"},
		{30, "1 month"},
		{31, "1 month, 1 day"},
		{60, "2 months"},
		{359, "11 months, 29 days"},
		{360, "1 year"},
		{395, "1 year, 1 month"},
		{720, "2 years"},
		{750, "2 years, 1 month"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, FormatDuration(tt.days), "days=%d", tt.days)
	}
}

package keys

import (
	"errors"
	"math"
	"testing"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		count    int64
		expected string
	}{
		{5, "59865"},
		{0, "4310"},
		{1, "15421"},
		{12, "137632"},
		{99, "1104209"},
		{123456, "1371600476"},
		{-3, "-29013"},
		{-10, "-106790"},
		// int64 products overflow here
		{922337203685477, "10247166332945651712"},
		{1000000000000000, "11110000000000004096"},
		{123456789012345678, "1371604925927160545280"},
		{math.MaxInt64, "102471663329456559226880"},
		{math.MinInt64, "-102471663329456559226880"},
	}

	for _, tt := range tests {
		if got := Derive(tt.count); got != tt.expected {
			t.Errorf("Derive(%d) = %s, expected %s", tt.count, got, tt.expected)
		}
	}
}

func TestParseCount(t *testing.T) {
	n, err := ParseCount(" 42 ")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if n != 42 {
		t.Errorf("Expected 42, got %d", n)
	}

	for _, raw := range []string{"", "abc", "4.2", "1e3", "99999999999999999999"} {
		if _, err := ParseCount(raw); !errors.Is(err, ErrInvalidCount) {
			t.Errorf("ParseCount(%q) expected ErrInvalidCount, got %v", raw, err)
		}
	}
}

package tracker

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePrice(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected int64
	}{
		{"plain number", "12999", 12999},
		{"currency and separators", "₹12,999", 12999},
		{"thousands separator", "1,000", 1000},
		{"struck-through list price picks minimum", "₹8,399 ₹5,300", 5300},
		{"minimum regardless of order", "₹5,300 ₹8,399", 5300},
		{"no digits", "Call for price", 0},
		{"empty string", "", 0},
		{"sentinel zero text", "0", 0},
		{"zero padded", "000", 0},
		{"decimal point stripped", "1.299,00", 129900},
		{"text around number", "Price: Rs. 4,550 only", 4550},
		{"negative-looking text discards nothing valid", "- 250", 250},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ParsePrice(tc.text))
		})
	}
}

func TestParsePriceIsTotal(t *testing.T) {
	// None of these may panic
	inputs := []string{
		"",
		"....,,,,",
		"₹₹₹",
		"99999999999999999999999999999999999",
		"price 1 price 2 price 3",
		string([]byte{0xff, 0xfe, 0x30}),
	}
	for _, input := range inputs {
		assert.NotPanics(t, func() { ParsePrice(input) })
	}
}

func TestParsePriceOverflowDiscarded(t *testing.T) {
	// A candidate too large for int64 is discarded, not an error
	assert.Equal(t, int64(100), ParsePrice("99999999999999999999999999 100"))
}

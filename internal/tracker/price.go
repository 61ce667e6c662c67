package tracker

import (
	"regexp"
	"strconv"
	"strings"
)

var priceCandidateRegex = regexp.MustCompile(`\d[\d.,]*`)

// ParsePrice normalizes raw vendor price text into an integer price.
// Every numeric substring is a candidate; separators and decimal
// points are stripped before parsing. When more than one candidate
// remains (typically a struck-through list price next to the selling
// price) the minimum wins, on the assumption that the selling price
// never exceeds the list price. That is a heuristic: pages that show
// unrelated price ranges or bundle pricing can make it pick the wrong
// number. Returns 0 when no usable price is found.
func ParsePrice(text string) int64 {
	var best int64
	for _, candidate := range priceCandidateRegex.FindAllString(text, -1) {
		digits := strings.Map(keepDigits, candidate)
		if digits == "" {
			continue
		}
		n, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || n <= 0 {
			continue
		}
		if best == 0 || n < best {
			best = n
		}
	}
	return best
}

func keepDigits(r rune) rune {
	if r >= '0' && r <= '9' {
		return r
	}
	return -1
}

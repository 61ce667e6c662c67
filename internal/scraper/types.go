package scraper

import "github.com/PuerkitoBio/goquery"

// Extraction holds the raw signals pulled from a rendered vendor page.
// PriceText is handed to the price parser unmodified; "0" marks a page
// where no price candidate selector produced text.
type Extraction struct {
	Vendor    string
	PriceText string
	InStock   bool
}

// Strategy is the per-vendor extraction capability. Exactly one
// strategy matches a supported URL; unmatched URLs are an explicit
// "unsupported vendor" outcome, not an error.
type Strategy interface {
	// Vendor returns the vendor identifier tag
	Vendor() string

	// Matches reports whether this strategy handles the given URL
	Matches(rawURL string) bool

	// Extract pulls price text and stock availability from a rendered
	// page. It must not fail for missing nodes; absence of every price
	// candidate yields PriceText "0".
	Extract(doc *goquery.Document) Extraction
}

// StrategyConfig describes one vendor's extraction rules. Vendor
// markup is unstable, so price selectors are an ordered candidate
// list: new layout variants are handled by appending selectors, never
// by replacing the strategy.
type StrategyConfig struct {
	Vendor       string
	URLSubstring string

	// PriceSelectors are tried in order; the first one with non-empty
	// text wins
	PriceSelectors []string

	// StockSelectors locate an enabled add-to-cart affordance; the
	// page is in stock when any of them matches a non-disabled element
	StockSelectors []string

	// OutOfStockMarkers are text fragments that force out-of-stock
	// regardless of the stock selectors
	OutOfStockMarkers []string
}

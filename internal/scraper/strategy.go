package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// VendorStrategy implements Strategy from a StrategyConfig
type VendorStrategy struct {
	config StrategyConfig
}

// New creates a strategy from a vendor configuration
func New(config StrategyConfig) *VendorStrategy {
	return &VendorStrategy{config: config}
}

// Vendor returns the vendor identifier tag
func (s *VendorStrategy) Vendor() string {
	return s.config.Vendor
}

// Matches reports whether the URL belongs to this vendor
func (s *VendorStrategy) Matches(rawURL string) bool {
	return strings.Contains(strings.ToLower(rawURL), s.config.URLSubstring)
}

// Extract pulls price text and stock availability from a rendered page
func (s *VendorStrategy) Extract(doc *goquery.Document) Extraction {
	return Extraction{
		Vendor:    s.config.Vendor,
		PriceText: s.priceText(doc),
		InStock:   s.inStock(doc),
	}
}

// priceText walks the ordered candidate selectors and returns the
// first non-empty match, or "0" when every candidate misses.
func (s *VendorStrategy) priceText(doc *goquery.Document) string {
	for _, selector := range s.config.PriceSelectors {
		text := strings.TrimSpace(doc.Find(selector).First().Text())
		if text != "" {
			return text
		}
	}
	return "0"
}

func (s *VendorStrategy) inStock(doc *goquery.Document) bool {
	for _, marker := range s.config.OutOfStockMarkers {
		if strings.Contains(strings.ToLower(doc.Text()), strings.ToLower(marker)) {
			return false
		}
	}

	for _, selector := range s.config.StockSelectors {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			continue
		}
		if _, disabled := sel.Attr("disabled"); disabled {
			continue
		}
		return true
	}
	return false
}

// Registry dispatches URLs to vendor strategies in registration order,
// first match wins. Adding a vendor is a pure addition: a new strategy
// file plus one Register call.
type Registry struct {
	strategies []Strategy
}

// NewRegistry creates a registry with the given strategies
func NewRegistry(strategies ...Strategy) *Registry {
	return &Registry{strategies: strategies}
}

// DefaultRegistry returns a registry with all supported vendors
func DefaultRegistry() *Registry {
	return NewRegistry(
		NewMDComputers(),
		NewVedant(),
	)
}

// Register appends a strategy to the dispatch order
func (r *Registry) Register(s Strategy) {
	r.strategies = append(r.strategies, s)
}

// ForURL returns the first strategy matching the URL, or nil when the
// vendor is unsupported
func (r *Registry) ForURL(rawURL string) Strategy {
	for _, s := range r.strategies {
		if s.Matches(rawURL) {
			return s
		}
	}
	return nil
}

package scraper

// NewMDComputers creates the extraction strategy for mdcomputers.in.
// The storefront has shipped at least three price markups over time;
// keep older selectors at the tail as fallbacks.
func NewMDComputers() *VendorStrategy {
	return New(StrategyConfig{
		Vendor:       "mdcomputers",
		URLSubstring: "mdcomputers",
		PriceSelectors: []string{
			"span.price-new",
			"ul.list-unstyled.price-section h3.price-new",
			"div.product-price-group span.price",
			"div#content div.price",
		},
		StockSelectors: []string{
			"button#button-cart",
			"a.btn-cart",
		},
		OutOfStockMarkers: []string{
			"Out Of Stock",
		},
	})
}

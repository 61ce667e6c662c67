package scraper

// NewVedant creates the extraction strategy for vedantcomputers.com
func NewVedant() *VendorStrategy {
	return New(StrategyConfig{
		Vendor:       "vedant",
		URLSubstring: "vedant",
		PriceSelectors: []string{
			"div.product-price-group span.price-new",
			"div.price-group span.product-price",
			"span.price-new",
		},
		StockSelectors: []string{
			"button#button-cart",
			"button.btn-addtocart",
		},
		OutOfStockMarkers: []string{
			"Out Of Stock",
			"Sold Out",
		},
	})
}

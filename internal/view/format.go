package view

import (
	"github.com/rollingtrayco/storefront/internal/domain"
)

var currencySymbols = map[string]string{
	"GBP": "£",
	"USD": "$",
	"EUR": "€",
	"CAD": "CA$",
	"AUD": "A$",
}

// DefaultCurrency is assumed when the API omits a currency code.
const DefaultCurrency = "GBP"

// FormatPrice renders an amount with its currency symbol prefix and two decimals.
// Unknown currencies are prefixed with their ISO code.
func FormatPrice(m domain.Money) string {
	code := m.CurrencyCode
	if code == "" {
		code = DefaultCurrency
	}
	symbol, ok := currencySymbols[code]
	if !ok {
		symbol = code + " "
	}
	return symbol + m.Amount.StringFixed(2)
}

// CartBadge is the count shown on the cart button.
func CartBadge(c *domain.Cart) int {
	return c.TotalQuantity()
}

func CheckoutEnabled(c *domain.Cart) bool {
	return !c.IsEmpty() && c.CheckoutURL != ""
}

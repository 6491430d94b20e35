package domain

import "github.com/shopspring/decimal"

// Money is a decimal amount in an ISO 4217 currency.
type Money struct {
	Amount       decimal.Decimal `json:"amount"`
	CurrencyCode string          `json:"currency_code"`
}

type Image struct {
	URL     string `json:"url"`
	AltText string `json:"alt_text"`
}

// Variant is the single purchasable configuration tracked per product.
type Variant struct {
	ID                string `json:"id"`
	AvailableForSale  bool   `json:"available_for_sale"`
	QuantityAvailable int    `json:"quantity_available"`
}

type Product struct {
	ID              string  `json:"id"`
	Title           string  `json:"title"`
	Handle          string  `json:"handle"`
	DescriptionHTML string  `json:"description_html"`
	Price           Money   `json:"price"`
	Images          []Image `json:"images"`
	Variant         Variant `json:"variant"`
}

// PrimaryImage returns the first image. Mapped products always carry at least one.
func (p *Product) PrimaryImage() Image {
	if len(p.Images) == 0 {
		return Image{AltText: p.Title}
	}
	return p.Images[0]
}

func (p *Product) InStock() bool {
	return p.Variant.AvailableForSale
}

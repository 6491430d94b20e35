package domain

// Merchandise is the variant snapshot a cart line carried when the cart was fetched.
// It is not linked to a live Product.
type Merchandise struct {
	VariantID    string `json:"variant_id"`
	ProductTitle string `json:"product_title"`
	ImageURL     string `json:"image_url"`
	UnitPrice    Money  `json:"unit_price"`
}

type CartLine struct {
	ID          string      `json:"id"`
	Quantity    int         `json:"quantity"`
	Merchandise Merchandise `json:"merchandise"`
}

type Cart struct {
	ID          string     `json:"id"`
	CheckoutURL string     `json:"checkout_url"`
	// Quantity is the server's unit count over all lines, including lines past the fetched page.
	Quantity    int        `json:"quantity"`
	Lines       []CartLine `json:"lines"`
	Subtotal    Money      `json:"subtotal"`
}

// TotalQuantity is the server-reported unit count, or the sum of line quantities when the
// server did not report one.
func (c *Cart) TotalQuantity() int {
	if c == nil {
		return 0
	}
	if c.Quantity > 0 {
		return c.Quantity
	}
	total := 0
	for _, l := range c.Lines {
		total += l.Quantity
	}
	return total
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Lines) == 0
}

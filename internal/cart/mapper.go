package cart

import (
	"github.com/rollingtrayco/storefront/internal/catalog"
	"github.com/rollingtrayco/storefront/internal/domain"
	"github.com/rollingtrayco/storefront/internal/shopify"
)

func mapCart(n shopify.CartNode) domain.Cart {
	c := domain.Cart{
		ID:          n.ID,
		CheckoutURL: n.CheckoutURL,
		Quantity:    n.TotalQuantity,
		Lines:       []domain.CartLine{},
	}
	if n.Cost != nil {
		c.Subtotal = catalog.ParseMoney(n.Cost.SubtotalAmount)
	} else {
		c.Subtotal = catalog.ParseMoney(nil)
	}
	if n.Lines == nil {
		return c
	}

	for _, edge := range n.Lines.Edges {
		line := domain.CartLine{
			ID:       edge.Node.ID,
			Quantity: edge.Node.Quantity,
		}
		if m := edge.Node.Merchandise; m != nil {
			line.Merchandise.VariantID = m.ID
			if m.Image != nil {
				line.Merchandise.ImageURL = m.Image.URL
			}
			if m.Product != nil {
				line.Merchandise.ProductTitle = m.Product.Title
			}
			line.Merchandise.UnitPrice = catalog.ParseMoney(m.Price)
		} else {
			line.Merchandise.UnitPrice = catalog.ParseMoney(nil)
		}
		c.Lines = append(c.Lines, line)
	}
	return c
}

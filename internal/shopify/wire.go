package shopify

// Wire shapes of the Storefront API. Optional objects are pointers so that a JSON null
// can be told apart from an empty value.

type MoneyV2 struct {
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currencyCode"`
}

type ImageNode struct {
	URL     string  `json:"url"`
	AltText *string `json:"altText"`
}

type ImageConnection struct {
	Edges []struct {
		Node ImageNode `json:"node"`
	} `json:"edges"`
}

type VariantNode struct {
	ID                string `json:"id"`
	AvailableForSale  bool   `json:"availableForSale"`
	QuantityAvailable *int   `json:"quantityAvailable"`
}

type VariantConnection struct {
	Edges []struct {
		Node VariantNode `json:"node"`
	} `json:"edges"`
}

type ProductNode struct {
	ID              string `json:"id"`
	Title           string `json:"title"`
	Handle          string `json:"handle"`
	DescriptionHTML string `json:"descriptionHtml"`
	PriceRange      *struct {
		MinVariantPrice *MoneyV2 `json:"minVariantPrice"`
	} `json:"priceRange"`
	Images   *ImageConnection   `json:"images"`
	Variants *VariantConnection `json:"variants"`
}

type ProductsData struct {
	Products *struct {
		Edges []struct {
			Node ProductNode `json:"node"`
		} `json:"edges"`
	} `json:"products"`
}

type ProductData struct {
	Product *ProductNode `json:"product"`
}

type CartLineNode struct {
	ID          string `json:"id"`
	Quantity    int    `json:"quantity"`
	Merchandise *struct {
		ID    string `json:"id"`
		Image *struct {
			URL string `json:"url"`
		} `json:"image"`
		Price   *MoneyV2 `json:"price"`
		Product *struct {
			Title string `json:"title"`
		} `json:"product"`
	} `json:"merchandise"`
}

type CartNode struct {
	ID            string `json:"id"`
	CheckoutURL   string `json:"checkoutUrl"`
	TotalQuantity int    `json:"totalQuantity"`
	Lines         *struct {
		Edges []struct {
			Node CartLineNode `json:"node"`
		} `json:"edges"`
	} `json:"lines"`
	Cost *struct {
		SubtotalAmount *MoneyV2 `json:"subtotalAmount"`
	} `json:"cost"`
}

// CartPayload is the common shape of cartCreate, cartLinesAdd and cartLinesRemove.
type CartPayload struct {
	Cart       *CartNode   `json:"cart"`
	UserErrors []UserError `json:"userErrors"`
}

type CartCreateData struct {
	CartCreate *CartPayload `json:"cartCreate"`
}

type CartData struct {
	Cart *CartNode `json:"cart"`
}

type CartLinesAddData struct {
	CartLinesAdd *CartPayload `json:"cartLinesAdd"`
}

type CartLinesRemoveData struct {
	CartLinesRemove *CartPayload `json:"cartLinesRemove"`
}

type CartLineInput struct {
	MerchandiseID string `json:"merchandiseId"`
	Quantity      int    `json:"quantity"`
}

package models

// CartItem is a client-side cart line. The unit price is a display cache only;
// checkout re-derives prices from the catalog.
type CartItem struct {
	VariantID      string  `json:"variant_id" validate:"required"`
	ProductName    string  `json:"product_name"`
	Size           *string `json:"size,omitempty"`
	Color          *string `json:"color,omitempty"`
	UnitPriceCents int64   `json:"unit_price_cents" validate:"gte=0"`
	Quantity       int64   `json:"quantity" validate:"required,gte=1,lte=100"`
}

// Cart is an immutable value: every operation returns a new cart.
type Cart struct {
	Items []CartItem `json:"items"`
}

// Add merges item into the cart, summing quantities for an existing variant.
func (c Cart) Add(item CartItem) Cart {
	if item.Quantity < 1 {
		return c
	}
	items := make([]CartItem, 0, len(c.Items)+1)
	merged := false
	for _, it := range c.Items {
		if it.VariantID == item.VariantID {
			it.Quantity += item.Quantity
			merged = true
		}
		items = append(items, it)
	}
	if !merged {
		items = append(items, item)
	}
	return Cart{Items: items}
}

// Remove drops the line for variantID.
func (c Cart) Remove(variantID string) Cart {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.VariantID != variantID {
			items = append(items, it)
		}
	}
	return Cart{Items: items}
}

// UpdateQuantity sets the quantity for variantID; a quantity below one removes the line.
func (c Cart) UpdateQuantity(variantID string, quantity int64) Cart {
	if quantity < 1 {
		return c.Remove(variantID)
	}
	items := make([]CartItem, len(c.Items))
	copy(items, c.Items)
	for i := range items {
		if items[i].VariantID == variantID {
			items[i].Quantity = quantity
		}
	}
	return Cart{Items: items}
}

// Clear returns an empty cart.
func (c Cart) Clear() Cart {
	return Cart{}
}

// SubtotalCents is the display subtotal from cached prices.
func (c Cart) SubtotalCents() int64 {
	var total int64
	for _, it := range c.Items {
		total += it.UnitPriceCents * it.Quantity
	}
	return total
}

// Count returns the total number of units.
func (c Cart) Count() int64 {
	var n int64
	for _, it := range c.Items {
		n += it.Quantity
	}
	return n
}

// CheckoutItems projects the cart into the lines sent to checkout. The
// returned slice is a copy and lines with no quantity are left out.
func (c Cart) CheckoutItems() []CartItem {
	items := make([]CartItem, 0, len(c.Items))
	for _, it := range c.Items {
		if it.Quantity < 1 {
			continue
		}
		items = append(items, it)
	}
	return items
}

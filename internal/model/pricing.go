package model

// FreeShippingThreshold is the subtotal above which shipping is free.  A
// subtotal exactly at the threshold still pays ShippingFlat.
const FreeShippingThreshold = 1999

// ShippingFlat is the flat surcharge for subtotals at or below the threshold.
const ShippingFlat = 99

// Subtotal sums price × quantity over items.
func Subtotal(items []CartItem) float64 {
	var sum float64
	for _, it := range items {
		sum += it.Price * float64(it.Quantity)
	}
	return sum
}

// Shipping returns the surcharge owed for a subtotal.
func Shipping(subtotal float64) float64 {
	if subtotal > FreeShippingThreshold {
		return 0
	}
	return ShippingFlat
}

// OrderTotal is subtotal plus shipping.
func OrderTotal(items []CartItem) float64 {
	sub := Subtotal(items)
	return sub + Shipping(sub)
}

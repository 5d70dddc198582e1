package model

// Product is a catalog entry.  ID is the business key chosen by the
// application (e.g. "p1"); it is never a storage-generated key.
//
// Fields:
//  ID          – stable business key, unique within a catalog.
//  Name        – display name.
//  Description – long-form text shown on the detail page.
//  Category    – one of the storefront categories (Electronics, Mobiles, ...).
//  Image       – absolute image URL.
//  Rating      – average rating, 0..5.
//  Price       – unit price in whole rupees.
//  Stock       – units on hand; never decremented by order placement.
type Product struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Image       string  `json:"image"`
	Rating      float64 `json:"rating"`
	Price       float64 `json:"price"`
	Stock       int     `json:"stock"`
}

// Category is a browse facet shown on the storefront.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Icon string `json:"icon"`
}

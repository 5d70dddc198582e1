package model

import "time"

// Master admin credentials.  The store recognizes this pair locally,
// before any remote call, and the API seeds the same account.
const (
	MasterIdentifier = "tejovanth"
	MasterSecret     = "1234"
)

// MasterAdmin is the identity synthesized for the master bypass.
func MasterAdmin() User {
	return User{
		ID:     MasterIdentifier,
		Name:   "Tejovanth",
		Email:  "tejovanth@mycart.com",
		Role:   RoleAdmin,
		Avatar: "https://ui-avatars.com/api/?name=Tejovanth&background=ffd700&color=000",
	}
}

// Categories lists the storefront browse facets.
func Categories() []Category {
	return []Category{
		{ID: "1", Name: "Electronics", Icon: "fa-laptop"},
		{ID: "2", Name: "Mobiles", Icon: "fa-mobile-screen"},
		{ID: "3", Name: "Fashion", Icon: "fa-shirt"},
		{ID: "4", Name: "Home", Icon: "fa-house"},
		{ID: "5", Name: "Accessories", Icon: "fa-watch"},
	}
}

// DefaultCatalog is the seed catalog.  The store starts from it so that
// shopping works before (or without) the remote API, and the API inserts
// it into an empty database.
func DefaultCatalog() []Product {
	return []Product{
		{
			ID:          "p1",
			Name:        "Nexus Pro Wireless Headphones",
			Description: "High-fidelity audio with active noise cancellation and 40-hour battery life. Perfect for music enthusiasts.",
			Price:       24999,
			Category:    "Electronics",
			Image:       "https://images.unsplash.com/photo-1505740420928-5e560c06d30e?auto=format&fit=crop&q=80&w=400",
			Stock:       25,
			Rating:      4.8,
		},
		{
			ID:          "p2",
			Name:        "Zenith Smart Watch X1",
			Description: "Advanced health tracking, Amoled display, and 14-day battery life.",
			Price:       15999,
			Category:    "Electronics",
			Image:       "https://images.unsplash.com/photo-1523275335684-37898b6baf30?auto=format&fit=crop&q=80&w=400",
			Stock:       15,
			Rating:      4.5,
		},
		{
			ID:          "p3",
			Name:        "Cognac Leather Messenger",
			Description: "Handcrafted premium leather bag for professionals.",
			Price:       4500,
			Category:    "Accessories",
			Image:       "https://images.unsplash.com/photo-1548036328-c9fa89d128fa?auto=format&fit=crop&q=80&w=400",
			Stock:       100,
			Rating:      4.2,
		},
		{
			ID:          "p4",
			Name:        "CloudComfort Gaming Chair",
			Description: "Ergonomic design with massager and multi-tilt functionality.",
			Price:       18999,
			Category:    "Home",
			Image:       "https://images.unsplash.com/photo-1592078615290-033ee584e267?auto=format&fit=crop&q=80&w=400",
			Stock:       8,
			Rating:      4.9,
		},
		{
			ID:          "p5",
			Name:        "Indigo Slim Fit Denim",
			Description: "Stretchable premium denim with reinforced stitching.",
			Price:       2499,
			Category:    "Fashion",
			Image:       "https://images.unsplash.com/photo-1542272604-787c3835535d?auto=format&fit=crop&q=80&w=400",
			Stock:       50,
			Rating:      4.4,
		},
		{
			ID:          "p6",
			Name:        "Ultra Slim Flagship Phone",
			Description: "120Hz display, 50MP triple camera setup, and lightning fast charging.",
			Price:       54999,
			Category:    "Mobiles",
			Image:       "https://images.unsplash.com/photo-1511707171634-5f897ff02aa9?auto=format&fit=crop&q=80&w=400",
			Stock:       12,
			Rating:      4.7,
		},
	}
}

// DefaultSaleEvents are the banners the API serves.  Dates are relative
// to now so a fresh deployment always has something running.
func DefaultSaleEvents(now time.Time) []SaleEvent {
	day := 24 * time.Hour
	return []SaleEvent{
		{
			ID:                 "ev-crimson-week",
			Title:              "Crimson Week",
			Description:        "Storewide markdowns on audio and wearables.",
			DiscountPercentage: 20,
			StartDate:          now.Add(-2 * day),
			EndDate:            now.Add(5 * day),
			IsActive:           true,
			Type:               SaleEventSale,
		},
		{
			ID:          "ev-launch-night",
			Title:       "Flagship Launch Night",
			Description: "Live unboxing of the Ultra Slim Flagship Phone.",
			StartDate:   now.Add(3 * day),
			EndDate:     now.Add(4 * day),
			IsActive:    true,
			Type:        SaleEventEvent,
		},
	}
}

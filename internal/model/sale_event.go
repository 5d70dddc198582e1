package model

import "time"

// SaleEventType distinguishes discounts from announcements.
type SaleEventType string

const (
	SaleEventSale  SaleEventType = "SALE"
	SaleEventEvent SaleEventType = "EVENT"
)

// SaleEvent is a promotional banner.  It is informational only and never
// changes order pricing.
type SaleEvent struct {
	ID                 string        `json:"id"`
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	DiscountPercentage float64       `json:"discountPercentage,omitempty"`
	StartDate          time.Time     `json:"startDate"`
	EndDate            time.Time     `json:"endDate"`
	Image              string        `json:"image,omitempty"`
	IsActive           bool          `json:"isActive"`
	Type               SaleEventType `json:"type"`
}

// ActiveAt reports whether the banner should be shown at t.
func (e SaleEvent) ActiveAt(t time.Time) bool {
	if !e.IsActive {
		return false
	}
	if !e.StartDate.IsZero() && t.Before(e.StartDate) {
		return false
	}
	if !e.EndDate.IsZero() && t.After(e.EndDate) {
		return false
	}
	return true
}

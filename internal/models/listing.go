package models

import "time"

// CategoryType distinguishes stock-tracked products from services.
type CategoryType string

const (
	CategoryProduct CategoryType = "product"
	CategoryService CategoryType = "service"
)

// Valid reports whether t is a known category type.
func (t CategoryType) Valid() bool {
	return t == CategoryProduct || t == CategoryService
}

// Listing is a product or service offered by exactly one seller.
type Listing struct {
	ID           string       `json:"id" gorm:"primaryKey;type:varchar(36)"`
	SellerID     string       `json:"sellerId" gorm:"index;type:varchar(36);not null"`
	Name         string       `json:"name" gorm:"type:varchar(200);not null"`
	CategoryType CategoryType `json:"categoryType" gorm:"index;type:varchar(20);not null"`
	Category     string       `json:"category" gorm:"type:varchar(100);not null"`
	Price        float64      `json:"price" gorm:"not null"`
	Stock        *int         `json:"stock"` // nil for services
	Description  string       `json:"description" gorm:"type:text"`
	Image        string       `json:"image" gorm:"type:varchar(255);not null"`
	CreatedAt    time.Time    `json:"createdAt" gorm:"index"`
	UpdatedAt    time.Time    `json:"updatedAt"`
}

// Listing event types published on the message bus.
const (
	EventListingCreated = "listing.created"
	EventListingUpdated = "listing.updated"
	EventListingDeleted = "listing.deleted"
)

// ListingEvent describes a committed listing mutation.
type ListingEvent struct {
	Type         string       `json:"type"`
	ListingID    string       `json:"listingId"`
	SellerID     string       `json:"sellerId"`
	CategoryType CategoryType `json:"categoryType"`
	OccurredAt   time.Time    `json:"occurredAt"`
}

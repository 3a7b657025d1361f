package repositories

import (
	"context"
	"errors"

	"tradelink/internal/models"
)

var (
	// ErrNotFound is wrapped by every lookup that matches no record.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateEmail is returned when an email is already taken within an account kind.
	ErrDuplicateEmail = errors.New("email already registered")
)

// ListingRepository defines the interface for listing data access.
// List methods return listings newest-first.
type ListingRepository interface {
	Create(ctx context.Context, listing *models.Listing) error
	GetByID(ctx context.Context, id string) (*models.Listing, error)
	ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error)
	ListByCategoryType(ctx context.Context, categoryType models.CategoryType) ([]models.Listing, error)
	Update(ctx context.Context, listing *models.Listing) error
	Delete(ctx context.Context, id string) error
}

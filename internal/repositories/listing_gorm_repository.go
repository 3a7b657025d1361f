package repositories

import (
	"context"
	"errors"
	"fmt"

	"tradelink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const newestFirst = "created_at desc, id desc"

// GORMListingRepository is a GORM implementation of ListingRepository.
type GORMListingRepository struct {
	db *gorm.DB
}

// NewGORMListingRepository creates a new instance of GORMListingRepository.
func NewGORMListingRepository(db *gorm.DB) *GORMListingRepository {
	return &GORMListingRepository{
		db: db,
	}
}

// Create inserts a listing, assigning an ID when none is set.
func (r *GORMListingRepository) Create(ctx context.Context, listing *models.Listing) error {
	if listing.ID == "" {
		listing.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(listing).Error; err != nil {
		return fmt.Errorf("failed to create listing: %w", err)
	}
	return nil
}

// GetByID retrieves a single listing by its ID.
func (r *GORMListingRepository) GetByID(ctx context.Context, id string) (*models.Listing, error) {
	var listing models.Listing
	if err := r.db.WithContext(ctx).First(&listing, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("listing with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get listing by ID %s: %w", id, err)
	}
	return &listing, nil
}

// ListBySeller returns every listing owned by sellerID.
func (r *GORMListingRepository) ListBySeller(ctx context.Context, sellerID string) ([]models.Listing, error) {
	listings := []models.Listing{}
	if err := r.db.WithContext(ctx).Where("seller_id = ?", sellerID).Order(newestFirst).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list listings of seller %s: %w", sellerID, err)
	}
	return listings, nil
}

// ListByCategoryType returns every listing of the given type across all sellers.
func (r *GORMListingRepository) ListByCategoryType(ctx context.Context, categoryType models.CategoryType) ([]models.Listing, error) {
	listings := []models.Listing{}
	if err := r.db.WithContext(ctx).Where("category_type = ?", categoryType).Order(newestFirst).Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to list %s listings: %w", categoryType, err)
	}
	return listings, nil
}

// Update writes every column of listing, including nil stock.
func (r *GORMListingRepository) Update(ctx context.Context, listing *models.Listing) error {
	res := r.db.WithContext(ctx).Model(listing).Select("*").Omit("created_at").Updates(listing)
	if res.Error != nil {
		return fmt.Errorf("failed to update listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing with ID %s for update: %w", listing.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a listing by its ID.
func (r *GORMListingRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Listing{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete listing: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("listing with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

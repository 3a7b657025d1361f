package repositories

import (
	"context"
	"errors"
	"fmt"

	"tradelink/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GORMBuyerRepository is a GORM implementation of BuyerRepository.
type GORMBuyerRepository struct {
	db *gorm.DB
}

// NewGORMBuyerRepository creates a new instance of GORMBuyerRepository.
func NewGORMBuyerRepository(db *gorm.DB) *GORMBuyerRepository {
	return &GORMBuyerRepository{db: db}
}

// Create creates a new buyer in the database.
func (r *GORMBuyerRepository) Create(ctx context.Context, buyer *models.Buyer) error {
	if buyer.ID == "" {
		buyer.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(buyer).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("buyer %s: %w", buyer.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create buyer: %w", err)
	}
	return nil
}

// GetByID retrieves a buyer by their ID from the database.
func (r *GORMBuyerRepository) GetByID(ctx context.Context, id string) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).First(&buyer, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("buyer with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get buyer by ID %s: %w", id, err)
	}
	return &buyer, nil
}

// GetByEmail retrieves a buyer by their email from the database.
func (r *GORMBuyerRepository) GetByEmail(ctx context.Context, email string) (*models.Buyer, error) {
	var buyer models.Buyer
	if err := r.db.WithContext(ctx).First(&buyer, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("buyer with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get buyer by email %s: %w", email, err)
	}
	return &buyer, nil
}

// GORMSellerRepository is a GORM implementation of SellerRepository.
type GORMSellerRepository struct {
	db *gorm.DB
}

// NewGORMSellerRepository creates a new instance of GORMSellerRepository.
func NewGORMSellerRepository(db *gorm.DB) *GORMSellerRepository {
	return &GORMSellerRepository{db: db}
}

// Create creates a new seller in the database.
func (r *GORMSellerRepository) Create(ctx context.Context, seller *models.Seller) error {
	if seller.ID == "" {
		seller.ID = uuid.New().String()
	}
	if err := r.db.WithContext(ctx).Create(seller).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("seller %s: %w", seller.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to create seller: %w", err)
	}
	return nil
}

// GetByID retrieves a seller by their ID from the database.
func (r *GORMSellerRepository) GetByID(ctx context.Context, id string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seller with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seller by ID %s: %w", id, err)
	}
	return &seller, nil
}

// GetByEmail retrieves a seller by their email from the database.
func (r *GORMSellerRepository) GetByEmail(ctx context.Context, email string) (*models.Seller, error) {
	var seller models.Seller
	if err := r.db.WithContext(ctx).First(&seller, "email = ?", email).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("seller with email %s: %w", email, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get seller by email %s: %w", email, err)
	}
	return &seller, nil
}

// Update writes every column of seller.
func (r *GORMSellerRepository) Update(ctx context.Context, seller *models.Seller) error {
	res := r.db.WithContext(ctx).Model(seller).Select("*").Omit("created_at").Updates(seller)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("seller %s: %w", seller.Email, ErrDuplicateEmail)
		}
		return fmt.Errorf("failed to update seller: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller with ID %s for update: %w", seller.ID, ErrNotFound)
	}
	return nil
}

// SetActive flips the seller's active flag.
func (r *GORMSellerRepository) SetActive(ctx context.Context, id string, active bool) error {
	res := r.db.WithContext(ctx).Model(&models.Seller{}).Where("id = ?", id).Update("active", active)
	if res.Error != nil {
		return fmt.Errorf("failed to set seller %s active=%t: %w", id, active, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// Delete removes a seller by its ID.
func (r *GORMSellerRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&models.Seller{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete seller: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("seller with ID %s for deletion: %w", id, ErrNotFound)
	}
	return nil
}

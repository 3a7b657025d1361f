package repositories

import (
	"context"

	"tradelink/internal/models"
)

// BuyerRepository defines the interface for buyer data access.
type BuyerRepository interface {
	Create(ctx context.Context, buyer *models.Buyer) error
	GetByID(ctx context.Context, id string) (*models.Buyer, error)
	GetByEmail(ctx context.Context, email string) (*models.Buyer, error)
}

// SellerRepository defines the interface for seller data access.
// Email uniqueness is enforced per account kind, so a buyer and a seller may share one.
type SellerRepository interface {
	Create(ctx context.Context, seller *models.Seller) error
	GetByID(ctx context.Context, id string) (*models.Seller, error)
	GetByEmail(ctx context.Context, email string) (*models.Seller, error)
	Update(ctx context.Context, seller *models.Seller) error
	SetActive(ctx context.Context, id string, active bool) error
	Delete(ctx context.Context, id string) error
}

package services

import (
	"context"
	"errors"
	"strings"

	"tradelink/internal/apperrors"
	"tradelink/internal/models"
	"tradelink/internal/repositories"
	"tradelink/internal/storage"
	"tradelink/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

// SellerProfileUpdate carries profile changes. Empty fields leave the stored value unchanged.
type SellerProfileUpdate struct {
	BusinessName    string `json:"businessName" form:"businessName"`
	OwnerName       string `json:"ownerName" form:"ownerName"`
	Email           string `json:"email" form:"email" validate:"omitempty,email"`
	Phone           string `json:"phone" form:"phone"`
	Address         string `json:"address" form:"address"`
	Description     string `json:"description" form:"description"`
	Category        string `json:"category" form:"category" validate:"omitempty,oneof=products services"`
	BusinessLevel   string `json:"businessLevel" form:"businessLevel" validate:"omitempty,oneof=individual small enterprise"`
	CurrentPassword string `json:"currentPassword" form:"currentPassword"`
	NewPassword     string `json:"newPassword" form:"newPassword" validate:"omitempty,min=6"`
	ConfirmPassword string `json:"confirmPassword" form:"confirmPassword"`
}

// SellerListings removes the listings of a seller that is going away.
type SellerListings interface {
	DeleteAllBySeller(ctx context.Context, sellerID string) error
}

// SellerService handles seller profile and account lifecycle operations.
type SellerService struct {
	sellers  repositories.SellerRepository
	listings SellerListings
	images   storage.ImageStore
	log      logger.Logger
}

// NewSellerService creates a new SellerService.
func NewSellerService(sellers repositories.SellerRepository, listings SellerListings, images storage.ImageStore, log logger.Logger) *SellerService {
	return &SellerService{
		sellers:  sellers,
		listings: listings,
		images:   images,
		log:      log,
	}
}

// Profile returns seller id.
func (s *SellerService) Profile(ctx context.Context, id string) (*models.Seller, error) {
	seller, err := s.sellers.GetByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.NotFound("Seller not found")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to fetch seller", err)
	}
	return seller, nil
}

// UpdateProfile applies changes to seller id, rotating the password when all three
// password fields are supplied and replacing the avatar when one is uploaded.
func (s *SellerService) UpdateProfile(ctx context.Context, id string, changes SellerProfileUpdate, avatar *storage.Upload) (*models.Seller, error) {
	seller, err := s.Profile(ctx, id)
	if err != nil {
		return nil, err
	}

	if email := strings.TrimSpace(changes.Email); email != "" && email != seller.Email {
		if _, err := s.sellers.GetByEmail(ctx, email); err == nil {
			return nil, apperrors.Validation("Email already exists")
		} else if !errors.Is(err, repositories.ErrNotFound) {
			return nil, apperrors.Internal("failed to look up seller email", err)
		}
		seller.Email = email
	}
	setIfPresent(&seller.BusinessName, changes.BusinessName)
	setIfPresent(&seller.OwnerName, changes.OwnerName)
	setIfPresent(&seller.Phone, changes.Phone)
	setIfPresent(&seller.Address, changes.Address)
	setIfPresent(&seller.Description, changes.Description)
	if changes.Category != "" {
		seller.Category = models.SellerCategory(changes.Category)
	}
	if changes.BusinessLevel != "" {
		seller.BusinessLevel = models.BusinessLevel(changes.BusinessLevel)
	}

	if changes.CurrentPassword != "" || changes.NewPassword != "" || changes.ConfirmPassword != "" {
		if changes.CurrentPassword == "" || changes.NewPassword == "" || changes.ConfirmPassword == "" {
			return nil, apperrors.Validation("All password fields are required to change password")
		}
		if bcrypt.CompareHashAndPassword([]byte(seller.Password), []byte(changes.CurrentPassword)) != nil {
			return nil, apperrors.Validation("Current password is incorrect")
		}
		if changes.NewPassword != changes.ConfirmPassword {
			return nil, apperrors.Validation("New password and confirm password do not match")
		}
		hash, err := hashPassword(changes.NewPassword)
		if err != nil {
			return nil, err
		}
		seller.Password = hash
	}

	var oldImage *string
	if avatar != nil {
		ref, err := saveImage(s.images, storage.SellerImages, *avatar)
		if err != nil {
			return nil, err
		}
		oldImage, seller.Image = seller.Image, &ref
	}

	if err := s.sellers.Update(ctx, seller); err != nil {
		if avatar != nil {
			discardImage(s.images, s.log, *seller.Image)
		}
		switch {
		case errors.Is(err, repositories.ErrDuplicateEmail):
			return nil, apperrors.Validation("Email already exists")
		case errors.Is(err, repositories.ErrNotFound):
			return nil, apperrors.NotFound("Seller not found")
		}
		return nil, apperrors.Internal("failed to update seller", err)
	}
	if oldImage != nil {
		discardImage(s.images, s.log, *oldImage)
	}
	return seller, nil
}

// Deactivate marks seller id inactive. Issued tokens stay valid.
func (s *SellerService) Deactivate(ctx context.Context, id string) error {
	err := s.sellers.SetActive(ctx, id, false)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("Seller not found")
	}
	if err != nil {
		return apperrors.Internal("failed to deactivate seller", err)
	}
	s.log.Info("seller deactivated", map[string]interface{}{"seller_id": id})
	return nil
}

// Delete permanently removes seller id, its listings and every image they reference.
func (s *SellerService) Delete(ctx context.Context, id string) error {
	seller, err := s.Profile(ctx, id)
	if err != nil {
		return err
	}
	if err := s.listings.DeleteAllBySeller(ctx, id); err != nil {
		return err
	}

	err = s.sellers.Delete(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NotFound("Seller not found")
	}
	if err != nil {
		return apperrors.Internal("failed to delete seller", err)
	}
	if seller.Image != nil {
		discardImage(s.images, s.log, *seller.Image)
	}
	s.log.Info("seller deleted", map[string]interface{}{"seller_id": id})
	return nil
}

func setIfPresent(dst *string, v string) {
	if v = strings.TrimSpace(v); v != "" {
		*dst = v
	}
}

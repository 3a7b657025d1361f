package services

import (
	"context"
	"errors"

	"tradelink/internal/apperrors"
	"tradelink/internal/models"
	"tradelink/internal/repositories"
	"tradelink/internal/storage"
	"tradelink/pkg/logger"

	"golang.org/x/crypto/bcrypt"
)

const msgOnlyImages = "Only image files are allowed (jpeg, jpg, png, gif)"

// BuyerRegistration is the input of RegisterBuyer.
type BuyerRegistration struct {
	FirstName string `json:"firstName" form:"firstName" validate:"required"`
	LastName  string `json:"lastName" form:"lastName" validate:"required"`
	Email     string `json:"email" form:"email" validate:"required,email"`
	Password  string `json:"password" form:"password" validate:"required,min=6"`
}

// SellerRegistration is the input of RegisterSeller.
type SellerRegistration struct {
	BusinessName  string `json:"businessName" form:"businessName" validate:"required"`
	OwnerName     string `json:"ownerName" form:"ownerName"`
	Email         string `json:"email" form:"email" validate:"required,email"`
	Phone         string `json:"phone" form:"phone" validate:"required"`
	BusinessLevel string `json:"businessLevel" form:"businessLevel" validate:"required,oneof=individual small enterprise"`
	Category      string `json:"category" form:"category" validate:"required,oneof=products services"`
	Address       string `json:"address" form:"address"`
	Description   string `json:"description" form:"description"`
	Password      string `json:"password" form:"password" validate:"required,min=6"`
}

// Session is an authenticated account together with its freshly issued token.
type Session struct {
	Account models.Account
	Token   string
}

// AuthService handles registration, login and resolution of token subjects.
type AuthService struct {
	buyers  repositories.BuyerRepository
	sellers repositories.SellerRepository
	tokens  *TokenService
	images  storage.ImageStore
	log     logger.Logger
}

// NewAuthService creates a new AuthService.
func NewAuthService(buyers repositories.BuyerRepository, sellers repositories.SellerRepository, tokens *TokenService, images storage.ImageStore, log logger.Logger) *AuthService {
	return &AuthService{
		buyers:  buyers,
		sellers: sellers,
		tokens:  tokens,
		images:  images,
		log:     log,
	}
}

// RegisterBuyer creates a buyer account. The avatar is optional.
func (s *AuthService) RegisterBuyer(ctx context.Context, input BuyerRegistration, avatar *storage.Upload) (*Session, error) {
	if _, err := s.buyers.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.Validation("Email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up buyer email", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	image := models.DefaultBuyerImage
	if avatar != nil {
		ref, err := saveImage(s.images, storage.BuyerImages, *avatar)
		if err != nil {
			return nil, err
		}
		image = ref
	}

	buyer := &models.Buyer{
		FirstName: input.FirstName,
		LastName:  input.LastName,
		Email:     input.Email,
		Password:  hash,
		Image:     image,
	}
	if err := s.buyers.Create(ctx, buyer); err != nil {
		if avatar != nil {
			discardImage(s.images, s.log, image)
		}
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperrors.Validation("Email already exists")
		}
		return nil, apperrors.Internal("failed to create buyer", err)
	}

	return s.session(buyer)
}

// RegisterSeller creates an active seller account. The avatar is optional.
func (s *AuthService) RegisterSeller(ctx context.Context, input SellerRegistration, avatar *storage.Upload) (*Session, error) {
	if _, err := s.sellers.GetByEmail(ctx, input.Email); err == nil {
		return nil, apperrors.Validation("Email already exists")
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to look up seller email", err)
	}

	hash, err := hashPassword(input.Password)
	if err != nil {
		return nil, err
	}

	var image *string
	if avatar != nil {
		ref, err := saveImage(s.images, storage.SellerImages, *avatar)
		if err != nil {
			return nil, err
		}
		image = &ref
	}

	seller := &models.Seller{
		BusinessName:  input.BusinessName,
		OwnerName:     input.OwnerName,
		Email:         input.Email,
		Phone:         input.Phone,
		BusinessLevel: models.BusinessLevel(input.BusinessLevel),
		Category:      models.SellerCategory(input.Category),
		Address:       input.Address,
		Description:   input.Description,
		Image:         image,
		Active:        true,
		Password:      hash,
	}
	if err := s.sellers.Create(ctx, seller); err != nil {
		if image != nil {
			discardImage(s.images, s.log, *image)
		}
		if errors.Is(err, repositories.ErrDuplicateEmail) {
			return nil, apperrors.Validation("Email already exists")
		}
		return nil, apperrors.Internal("failed to create seller", err)
	}

	return s.session(seller)
}

// Login authenticates email and password against the collection selected by role.
func (s *AuthService) Login(ctx context.Context, email, password string, role models.Role) (*Session, error) {
	var (
		account models.Account
		hash    string
		err     error
	)
	switch role {
	case models.RoleBuyer:
		var buyer *models.Buyer
		if buyer, err = s.buyers.GetByEmail(ctx, email); err == nil {
			account, hash = buyer, buyer.Password
		}
	case models.RoleSeller:
		var seller *models.Seller
		if seller, err = s.sellers.GetByEmail(ctx, email); err == nil {
			account, hash = seller, seller.Password
		}
	default:
		return nil, apperrors.Validation("Invalid role")
	}

	if errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Validation("Invalid credentials")
	}
	if err != nil {
		return nil, apperrors.Internal("failed to look up account", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) != nil {
		return nil, apperrors.Validation("Invalid credentials")
	}

	return s.session(account)
}

// Authenticate verifies tokenString and resolves the account it was issued to.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (models.Account, error) {
	claims, err := s.tokens.Verify(tokenString)
	if err != nil {
		return nil, apperrors.Unauthenticated("Not authorized, invalid token")
	}
	return s.ResolveAccount(ctx, claims.ID)
}

// ResolveAccount finds the account behind a token subject, trying buyers before sellers.
func (s *AuthService) ResolveAccount(ctx context.Context, id string) (models.Account, error) {
	buyer, err := s.buyers.GetByID(ctx, id)
	if err == nil {
		return buyer, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to resolve buyer", err)
	}

	seller, err := s.sellers.GetByID(ctx, id)
	if err == nil {
		return seller, nil
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return nil, apperrors.Internal("failed to resolve seller", err)
	}
	return nil, apperrors.Unauthenticated("User not found")
}

func (s *AuthService) session(account models.Account) (*Session, error) {
	token, err := s.tokens.Issue(account.AccountID(), account.AccountRole())
	if err != nil {
		return nil, apperrors.Internal("failed to issue token", err)
	}
	return &Session{Account: account, Token: token}, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", apperrors.Internal("failed to hash password", err)
	}
	return string(hash), nil
}

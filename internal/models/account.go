package models

import "time"

// Role identifies the kind of account behind a token.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type BusinessLevel string

const (
	BusinessIndividual BusinessLevel = "individual"
	BusinessSmall      BusinessLevel = "small"
	BusinessEnterprise BusinessLevel = "enterprise"
)

type SellerCategory string

const (
	SellerProducts SellerCategory = "products"
	SellerServices SellerCategory = "services"
)

// DefaultBuyerImage is used when a buyer registers without an avatar.
const DefaultBuyerImage = "buyer_avatar.jpeg"

// Account is implemented by every persisted identity.
type Account interface {
	AccountID() string
	AccountRole() Role
}

// Buyer represents a shopper account.
type Buyer struct {
	ID        string    `json:"id" gorm:"primaryKey;type:varchar(36)"`
	FirstName string    `json:"firstName" gorm:"type:varchar(100);not null"`
	LastName  string    `json:"lastName" gorm:"type:varchar(100);not null"`
	Email     string    `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password  string    `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	Image     string    `json:"buyerImage" gorm:"type:varchar(255)"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func (b *Buyer) AccountID() string { return b.ID }
func (b *Buyer) AccountRole() Role { return RoleBuyer }

// Seller represents a business that publishes listings.
type Seller struct {
	ID            string         `json:"id" gorm:"primaryKey;type:varchar(36)"`
	BusinessName  string         `json:"businessName" gorm:"type:varchar(150);not null"`
	OwnerName     string         `json:"ownerName" gorm:"type:varchar(150)"`
	Email         string         `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Phone         string         `json:"phone" gorm:"type:varchar(30);not null"`
	BusinessLevel BusinessLevel  `json:"businessLevel" gorm:"type:varchar(20);not null"`
	Category      SellerCategory `json:"category" gorm:"type:varchar(20);not null"`
	Address       string         `json:"address" gorm:"type:text"`
	Description   string         `json:"description" gorm:"type:text"`
	Image         *string        `json:"sellerImage" gorm:"type:varchar(255)"`
	Active        bool           `json:"active" gorm:"not null;default:true"`
	Password      string         `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash
	CreatedAt     time.Time      `json:"createdAt"`
	UpdatedAt     time.Time      `json:"updatedAt"`
}

func (s *Seller) AccountID() string { return s.ID }
func (s *Seller) AccountRole() Role { return RoleSeller }

package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductCategory string

const (
	CategoryRings     ProductCategory = "Rings"
	CategoryEarrings  ProductCategory = "Earrings"
	CategoryNecklaces ProductCategory = "Necklaces"
	CategoryBracelets ProductCategory = "Bracelets"

	// CategoryAll disables the category filter when listing
	CategoryAll ProductCategory = "All"
)

// MaxProductImages is the image host's per-product ceiling
const MaxProductImages = 5

var productCategories = []ProductCategory{
	CategoryRings,
	CategoryEarrings,
	CategoryNecklaces,
	CategoryBracelets,
}

// ProductCategories returns the fixed category enumeration in display order
func ProductCategories() []ProductCategory {
	out := make([]ProductCategory, len(productCategories))
	copy(out, productCategories)
	return out
}

// Valid reports whether c is one of the storable categories. CategoryAll is not.
func (c ProductCategory) Valid() bool {
	for _, known := range productCategories {
		if c == known {
			return true
		}
	}
	return false
}

type Product struct {
	ID            string          `gorm:"primaryKey;type:varchar(64)" json:"id"`
	Name          string          `gorm:"not null" json:"name"`
	Slug          string          `gorm:"type:varchar(255);not null;uniqueIndex" json:"slug"`
	Description   string          `gorm:"type:text;not null" json:"description"`
	Price         float64         `gorm:"not null" json:"price"`
	OriginalPrice *float64        `json:"original_price,omitempty"`
	DiscountPrice *float64        `json:"discount_price,omitempty"`
	IsOnSale      bool            `gorm:"default:false" json:"is_on_sale"`
	Category      ProductCategory `gorm:"type:varchar(20);not null;index" json:"category"`
	Tags          []string        `gorm:"type:text;serializer:json" json:"tags"`
	Material      string          `json:"material"`
	Measurements  string          `json:"measurements"`
	ClaspType     string          `json:"clasp_type"`
	Stock         int             `gorm:"not null;default:0" json:"stock"`
	Images        []string        `gorm:"type:text;serializer:json" json:"images"`
	Featured      bool            `gorm:"default:false" json:"featured"`
	IsNew         bool            `gorm:"default:false" json:"is_new"`
	CreatedAt     time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

func (Product) TableName() string {
	return "products"
}

// BeforeCreate assigns the primary store's id shape
func (p *Product) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}

// InStock reports whether the product can be purchased
func (p *Product) InStock() bool {
	return p.Stock > 0
}

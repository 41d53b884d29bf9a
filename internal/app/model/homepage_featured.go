package model

import "time"

const HomepageFeaturedID uint = 1

// HomepageFeatured picks one product per category for the landing page.
// Empty string means no pick.
type HomepageFeatured struct {
	ID                 uint      `gorm:"primarykey" json:"-"`
	RingsProductID     string    `gorm:"type:varchar(64)" json:"rings_product_id"`
	EarringsProductID  string    `gorm:"type:varchar(64)" json:"earrings_product_id"`
	NecklacesProductID string    `gorm:"type:varchar(64)" json:"necklaces_product_id"`
	BraceletsProductID string    `gorm:"type:varchar(64)" json:"bracelets_product_id"`
	CreatedAt          time.Time `json:"-"`
	UpdatedAt          time.Time `json:"updated_at"`
}

func (HomepageFeatured) TableName() string {
	return "homepage_featured"
}

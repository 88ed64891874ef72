package domain

// Procedure Model
type Procedure struct {
	ID          uint   `gorm:"primaryKey"`           // Primary key
	Name        string `gorm:"not null"`             // Canonical procedure name
	Slug        string `gorm:"uniqueIndex;not null"` // URL slug used by SEO pages
	Category    string `gorm:"index"`                // Body area / category
	Description string // Patient-facing description
	MinPrice    int64  `gorm:"default:0"` // Typical low price in INR
	MaxPrice    int64  `gorm:"default:0"` // Typical high price in INR
	CreatedAt   int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// Package Model: a clinic's bundled offering for a procedure
type Package struct {
	ID            uint   `gorm:"primaryKey"`           // Primary key
	ClinicID      uint   `gorm:"index;not null"`       // Offering clinic
	ProcedureID   uint   `gorm:"index;not null"`       // Procedure the package covers
	Title         string `gorm:"not null"`             // Package title
	Slug          string `gorm:"uniqueIndex;not null"` // URL slug used by SEO pages
	Price         int64  `gorm:"not null"`             // List price in INR
	DiscountPrice *int64 // Discounted price in INR, optional
	Description   string // What the package includes
	CreatedAt     int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// EffectivePrice returns the discounted price when set, otherwise the list price
func (p *Package) EffectivePrice() int64 {
	if p.DiscountPrice != nil && *p.DiscountPrice > 0 && *p.DiscountPrice < p.Price {
		return *p.DiscountPrice
	}
	return p.Price
}

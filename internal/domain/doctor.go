package domain

// Doctor Model
type Doctor struct {
	ID              uint    `gorm:"primaryKey"`           // Primary key
	Name            string  `gorm:"not null"`             // Display name
	Slug            string  `gorm:"uniqueIndex;not null"` // URL slug used by SEO pages
	Specialty       string  `gorm:"index"`                // e.g. rhinoplasty, hair transplant
	City            string  `gorm:"index"`                // City, used by directory filters
	ClinicID        *uint   `gorm:"index"`                // Affiliated clinic, optional
	ExperienceYears int     `gorm:"default:0"`            // Years of practice
	Rating          float64 `gorm:"default:0"`            // Average rating 0-5
	CreatedAt       int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

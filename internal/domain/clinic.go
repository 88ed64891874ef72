package domain

// Clinic Model
type Clinic struct {
	ID            uint    `gorm:"primaryKey"`           // Primary key
	Name          string  `gorm:"not null"`             // Display name
	Slug          string  `gorm:"uniqueIndex;not null"` // URL slug used by SEO pages
	City          string  `gorm:"index"`                // City, used by directory filters
	Address       string  // Street address
	Phone         string  // Contact phone
	Rating        float64 `gorm:"default:0"`  // Average rating 0-5
	ReviewCount   int     `gorm:"default:0"`  // Number of reviews behind the rating
	CreditBalance int64   `gorm:"not null;default:0"` // Denormalized balance, mirrors the ledger sum
	OwnerUserID   uint    `gorm:"index"`      // User (role clinic) who manages this clinic
	CreatedAt     int64   `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// ClinicDevice holds an FCM registration token for a clinic's app install
type ClinicDevice struct {
	ID       uint   `gorm:"primaryKey"`      // Primary key
	ClinicID uint   `gorm:"index;not null"`  // Owning clinic
	Token    string `gorm:"uniqueIndex;not null"` // FCM registration token
}

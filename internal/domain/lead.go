package domain

// Lead contact statuses
const (
	LeadStatusNew       = "new"
	LeadStatusContacted = "contacted"
	LeadStatusConverted = "converted"
	LeadStatusLost      = "lost"
)

// Lead Model: a patient's expressed interest in a clinic/package, billed in credits
type Lead struct {
	ID          uint   `gorm:"primaryKey"`           // Primary key
	Reference   string `gorm:"uniqueIndex;not null"` // External UUID reference
	UserID      uint   `gorm:"index"`                // Patient user
	ClinicID    uint   `gorm:"index;not null"`       // Billed clinic
	PackageID   *uint  `gorm:"index"`                // Package of interest, optional
	PatientName string `gorm:"not null"`             // Name supplied on the form
	Phone       string `gorm:"not null"`             // Contact phone
	Message     string // Free-text message from the patient
	Status      string `gorm:"default:new"`          // new, contacted, converted, lost
	CreditCost  int64  `gorm:"not null"`             // Credits debited for this lead
	CreatedAt   int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

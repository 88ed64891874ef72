package domain

// Dispute statuses
const (
	DisputeStatusPending     = "pending"
	DisputeStatusUnderReview = "under_review"
	DisputeStatusResolved    = "resolved"
	DisputeStatusRejected    = "rejected"
)

// Dispute Model: a clinic contesting the charge for a lead
type Dispute struct {
	ID         uint   `gorm:"primaryKey"`           // Primary key
	LeadID     uint   `gorm:"index;not null"`       // Disputed lead
	ClinicID   uint   `gorm:"index;not null"`       // Disputing clinic
	Reason     string `gorm:"not null"`             // Clinic's stated reason
	Status     string `gorm:"default:pending"`      // pending, under_review, resolved, rejected
	Resolution string // Admin's resolution note
	CreatedAt  int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
	UpdatedAt  int64  `gorm:"autoUpdateTime:milli"` // Timestamp of last update in milliseconds
}

// CanTransition reports whether a dispute may move from one status to another.
// The graph is pending -> under_review -> resolved | rejected, with a direct
// pending -> rejected shortcut for obviously invalid disputes.
func CanTransition(from, to string) bool {
	switch from {
	case DisputeStatusPending:
		return to == DisputeStatusUnderReview || to == DisputeStatusRejected
	case DisputeStatusUnderReview:
		return to == DisputeStatusResolved || to == DisputeStatusRejected
	default:
		return false // resolved and rejected are terminal
	}
}

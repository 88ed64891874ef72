package domain

// Credit transaction types
const (
	TxTypeLeadDebit  = "lead_debit"
	TxTypeTopup      = "topup"
	TxTypeRefund     = "refund"
	TxTypeAdjustment = "adjustment"
)

// CreditTransaction Model: one signed row per balance mutation.
// The clinic balance must always equal the sum of its rows here.
type CreditTransaction struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	ClinicID  uint   `gorm:"index;not null"`       // Owning clinic
	Amount    int64  `gorm:"not null"`             // Signed credit amount (debits negative)
	Type      string `gorm:"not null"`             // lead_debit, topup, refund, adjustment
	LeadID    *uint  `gorm:"index"`                // Lead that caused the debit/refund
	DisputeID *uint  // Dispute that caused a refund
	Note      string // Human-readable context
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

// TopupOrder Model: a Razorpay order awaiting payment confirmation
type TopupOrder struct {
	ID        uint   `gorm:"primaryKey"`           // Primary key
	ClinicID  uint   `gorm:"index;not null"`       // Purchasing clinic
	OrderID   string `gorm:"uniqueIndex;not null"` // Razorpay order id
	AmountINR int64  `gorm:"not null"`             // Order amount in INR
	Status    string `gorm:"default:created"`      // created, paid, failed
	CreatedAt int64  `gorm:"autoCreateTime:milli"` // Timestamp of creation in milliseconds
}

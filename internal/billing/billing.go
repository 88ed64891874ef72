package billing

import (
	"errors"

	"antidote/internal/domain"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrInsufficientCredits is returned when a clinic's balance cannot cover a lead
var ErrInsufficientCredits = errors.New("insufficient credits")

// CalculateLeadCost maps a package price in INR to a fixed credit cost.
// Leads without a package bill at the lowest tier.
func CalculateLeadCost(packagePrice int64) int64 {
	switch {
	case packagePrice < 5000:
		return 100
	case packagePrice < 10000:
		return 180
	case packagePrice < 20000:
		return 250
	case packagePrice < 50000:
		return 320
	case packagePrice < 100000:
		return 400
	default:
		return 500
	}
}

// BillLead creates the lead and debits the clinic in one transaction. The
// clinic row is locked FOR UPDATE so concurrent leads can't both pass the
// balance check. lead.CreditCost must be set by the caller.
func BillLead(db *gorm.DB, lead *domain.Lead) error {
	return db.Transaction(func(tx *gorm.DB) error {
		var clinic domain.Clinic
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&clinic, lead.ClinicID).Error; err != nil {
			return err
		}
		if clinic.CreditBalance < lead.CreditCost {
			return ErrInsufficientCredits
		}
		if err := tx.Create(lead).Error; err != nil {
			return err
		}
		t := domain.CreditTransaction{
			ClinicID: lead.ClinicID,
			Amount:   -lead.CreditCost, // Debits are negative in the ledger
			Type:     domain.TxTypeLeadDebit,
			LeadID:   &lead.ID,
			Note:     "lead " + lead.Reference,
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return tx.Model(&clinic).
			Update("credit_balance", gorm.Expr("credit_balance - ?", lead.CreditCost)).Error
	})
}

// Grant credits a clinic (top-up, dispute refund, manual adjustment) with a
// positive ledger row and matching balance update in one transaction
func Grant(db *gorm.DB, clinicID uint, amount int64, txType, note string, leadID, disputeID *uint) error {
	if amount <= 0 {
		return errors.New("grant amount must be positive")
	}
	return db.Transaction(func(tx *gorm.DB) error {
		var clinic domain.Clinic
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&clinic, clinicID).Error; err != nil {
			return err
		}
		t := domain.CreditTransaction{
			ClinicID:  clinicID,
			Amount:    amount,
			Type:      txType,
			LeadID:    leadID,
			DisputeID: disputeID,
			Note:      note,
		}
		if err := tx.Create(&t).Error; err != nil {
			return err
		}
		return tx.Model(&clinic).
			Update("credit_balance", gorm.Expr("credit_balance + ?", amount)).Error
	})
}

// LedgerBalance recomputes the balance from the ledger. The stored clinic
// balance must match this sum at all times; a mismatch is logged and the
// ledger sum wins.
func LedgerBalance(db *gorm.DB, clinicID uint) (int64, error) {
	var sum int64
	err := db.Model(&domain.CreditTransaction{}).
		Where("clinic_id = ?", clinicID).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&sum).Error
	if err != nil {
		return 0, err
	}
	var clinic domain.Clinic
	if err := db.First(&clinic, clinicID).Error; err != nil {
		return 0, err
	}
	if clinic.CreditBalance != sum {
		logrus.WithFields(logrus.Fields{
			"clinic_id": clinicID,
			"stored":    clinic.CreditBalance,
			"ledger":    sum,
		}).Error("Credit balance drifted from ledger sum")
	}
	return sum, nil
}

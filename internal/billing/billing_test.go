package billing

import (
	"errors"
	"fmt"
	"testing"

	"antidote/internal/domain"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestCalculateLeadCostTiers(t *testing.T) {
	cases := []struct {
		price int64
		want  int64
	}{
		{0, 100},
		{4999, 100},
		{5000, 180},
		{9999, 180},
		{10000, 250},
		{19999, 250},
		{20000, 320},
		{49999, 320},
		{50000, 400},
		{99999, 400},
		{100000, 500},
		{250000, 500},
	}
	for _, tc := range cases {
		if got := CalculateLeadCost(tc.price); got != tc.want {
			t.Errorf("CalculateLeadCost(%d) = %d, want %d", tc.price, got, tc.want)
		}
	}
}

var testDBSeq int

// openTestDB gives each test its own in-memory database
func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	testDBSeq++
	dsn := fmt.Sprintf("file:billing%d?mode=memory&cache=shared", testDBSeq)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&domain.Clinic{}, &domain.Lead{}, &domain.CreditTransaction{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func seedClinic(t *testing.T, db *gorm.DB, balance int64) *domain.Clinic {
	t.Helper()
	clinic := domain.Clinic{Name: "Test Clinic", Slug: "test-clinic", City: "Mumbai", CreditBalance: balance}
	if err := db.Create(&clinic).Error; err != nil {
		t.Fatalf("seed clinic: %v", err)
	}
	// Seed the ledger to match the opening balance
	if balance != 0 {
		tx := domain.CreditTransaction{ClinicID: clinic.ID, Amount: balance, Type: domain.TxTypeAdjustment, Note: "opening balance"}
		if err := db.Create(&tx).Error; err != nil {
			t.Fatalf("seed opening balance: %v", err)
		}
	}
	return &clinic
}

func TestBillLeadDebitsBalanceAndLedger(t *testing.T) {
	db := openTestDB(t)
	clinic := seedClinic(t, db, 500)

	lead := domain.Lead{
		Reference:   "ref-1",
		ClinicID:    clinic.ID,
		PatientName: "A",
		Phone:       "9876543210",
		CreditCost:  100,
	}
	if err := BillLead(db, &lead); err != nil {
		t.Fatalf("BillLead: %v", err)
	}
	if lead.ID == 0 {
		t.Fatal("expected lead row to be created")
	}

	var got domain.Clinic
	if err := db.First(&got, clinic.ID).Error; err != nil {
		t.Fatalf("reload clinic: %v", err)
	}
	if got.CreditBalance != 400 {
		t.Errorf("balance = %d, want 400", got.CreditBalance)
	}

	var debit domain.CreditTransaction
	if err := db.Where("lead_id = ? AND type = ?", lead.ID, domain.TxTypeLeadDebit).First(&debit).Error; err != nil {
		t.Fatalf("expected a debit ledger row: %v", err)
	}
	if debit.Amount != -100 {
		t.Errorf("debit amount = %d, want -100", debit.Amount)
	}

	sum, err := LedgerBalance(db, clinic.ID)
	if err != nil {
		t.Fatalf("LedgerBalance: %v", err)
	}
	if sum != got.CreditBalance {
		t.Errorf("ledger sum %d drifted from stored balance %d", sum, got.CreditBalance)
	}
}

func TestBillLeadInsufficientCreditsLeavesNoRows(t *testing.T) {
	db := openTestDB(t)
	clinic := seedClinic(t, db, 50)

	lead := domain.Lead{
		Reference:   "ref-2",
		ClinicID:    clinic.ID,
		PatientName: "B",
		Phone:       "9876543211",
		CreditCost:  100,
	}
	err := BillLead(db, &lead)
	if !errors.Is(err, ErrInsufficientCredits) {
		t.Fatalf("BillLead err = %v, want ErrInsufficientCredits", err)
	}

	var leads int64
	db.Model(&domain.Lead{}).Where("clinic_id = ?", clinic.ID).Count(&leads)
	if leads != 0 {
		t.Errorf("expected no lead rows, got %d", leads)
	}
	var debits int64
	db.Model(&domain.CreditTransaction{}).
		Where("clinic_id = ? AND type = ?", clinic.ID, domain.TxTypeLeadDebit).Count(&debits)
	if debits != 0 {
		t.Errorf("expected no debit rows, got %d", debits)
	}
	var got domain.Clinic
	db.First(&got, clinic.ID)
	if got.CreditBalance != 50 {
		t.Errorf("balance = %d, want 50 (untouched)", got.CreditBalance)
	}
}

func TestGrantAndBillKeepBalanceEqualToLedgerSum(t *testing.T) {
	db := openTestDB(t)
	clinic := seedClinic(t, db, 0)

	if err := Grant(db, clinic.ID, 1000, domain.TxTypeTopup, "order x", nil, nil); err != nil {
		t.Fatalf("Grant: %v", err)
	}
	lead := domain.Lead{Reference: "ref-3", ClinicID: clinic.ID, PatientName: "C", Phone: "9876543212", CreditCost: 320}
	if err := BillLead(db, &lead); err != nil {
		t.Fatalf("BillLead: %v", err)
	}
	if err := Grant(db, clinic.ID, 320, domain.TxTypeRefund, "refund", &lead.ID, nil); err != nil {
		t.Fatalf("Grant refund: %v", err)
	}

	sum, err := LedgerBalance(db, clinic.ID)
	if err != nil {
		t.Fatalf("LedgerBalance: %v", err)
	}
	var got domain.Clinic
	if err := db.First(&got, clinic.ID).Error; err != nil {
		t.Fatalf("reload clinic: %v", err)
	}
	if sum != 1000 || got.CreditBalance != 1000 {
		t.Errorf("ledger sum %d / balance %d, want both 1000", sum, got.CreditBalance)
	}
}

func TestGrantRejectsNonPositiveAmount(t *testing.T) {
	db := openTestDB(t)
	clinic := seedClinic(t, db, 0)
	for _, amount := range []int64{0, -10} {
		if err := Grant(db, clinic.ID, amount, domain.TxTypeAdjustment, "bad", nil, nil); err == nil {
			t.Errorf("Grant(%d) succeeded, want error", amount)
		}
	}
}

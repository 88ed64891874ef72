package api

import (
	"context"  // Cache invalidation
	"errors"   // Sentinel errors for dispute conflicts
	"net/http" // HTTP status codes
	"time"     // Dispute window check

	"antidote/internal/domain"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
	"gorm.io/gorm/clause"          // Row locking for the refund
)

// disputeWindow is how long after billing a lead remains disputable
const disputeWindow = 7 * 24 * time.Hour

var (
	errDisputeOpen  = errors.New("lead already has an open dispute")
	errLeadRefunded = errors.New("lead charge already refunded")
)

// leadRefunded reports whether a refund ledger row already exists for the
// lead. A lead's debit is refunded at most once no matter how many disputes
// are filed against it.
func leadRefunded(tx *gorm.DB, leadID uint) (bool, error) {
	var refunds int64
	err := tx.Model(&domain.CreditTransaction{}).
		Where("lead_id = ? AND type = ?", leadID, domain.TxTypeRefund).
		Count(&refunds).Error
	return refunds > 0, err
}

type CreateDisputeRequest struct {
	LeadID uint   `json:"lead_id" binding:"required"` // Lead being contested
	Reason string `json:"reason" binding:"required"`  // Why the charge is contested
}

// CreateDisputeHandler lets a clinic contest the charge for one of its leads
func CreateDisputeHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var req CreateDisputeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var lead domain.Lead
		if err := db.Where("id = ? AND clinic_id = ?", req.LeadID, clinicID).First(&lead).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		if time.Since(time.UnixMilli(lead.CreatedAt)) > disputeWindow {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Lead is older than the 7-day dispute window"})
			return
		}
		dispute := domain.Dispute{
			LeadID:   req.LeadID,
			ClinicID: clinicID,
			Reason:   req.Reason,
			Status:   domain.DisputeStatusPending,
		}
		// One open dispute per lead, and never a second dispute once the
		// charge has been refunded. Checked and created in one transaction.
		err := db.Transaction(func(tx *gorm.DB) error {
			var open int64
			if err := tx.Model(&domain.Dispute{}).
				Where("lead_id = ? AND status IN ?", req.LeadID,
					[]string{domain.DisputeStatusPending, domain.DisputeStatusUnderReview}).
				Count(&open).Error; err != nil {
				return err
			}
			if open > 0 {
				return errDisputeOpen
			}
			refunded, err := leadRefunded(tx, req.LeadID)
			if err != nil {
				return err
			}
			if refunded {
				return errLeadRefunded
			}
			return tx.Create(&dispute).Error
		})
		if errors.Is(err, errDisputeOpen) {
			c.JSON(http.StatusConflict, gin.H{"error": "Lead already has an open dispute"})
			return
		}
		if errors.Is(err, errLeadRefunded) {
			c.JSON(http.StatusConflict, gin.H{"error": "Lead charge was already refunded"})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create dispute"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"dispute_id": dispute.ID,
			"lead_id":    req.LeadID,
			"clinic_id":  clinicID,
		}).Info("Dispute opened")
		c.JSON(http.StatusCreated, gin.H{"message": "Dispute created", "dispute": dispute})
	}
}

// ListClinicDisputesHandler returns the clinic's disputes with status filter
func ListClinicDisputesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		page, pageSize, offset := parsePagination(c)

		query := db.Model(&domain.Dispute{}).Where("clinic_id = ?", clinicID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count disputes"})
			return
		}
		var disputes []domain.Dispute
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&disputes).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch disputes"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"disputes":    disputes,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		})
	}
}

type UpdateDisputeRequest struct {
	Status     string `json:"status" binding:"required,oneof=under_review resolved rejected"` // Target status
	Resolution string `json:"resolution"`                                                     // Admin note
}

// AdminUpdateDisputeHandler moves a dispute through the enforced state graph.
// Resolving refunds the lead's debit as a signed ledger row in the same
// transaction, so balance == SUM(ledger) holds throughout.
func AdminUpdateDisputeHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req UpdateDisputeRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		var dispute domain.Dispute
		if err := db.First(&dispute, c.Param("id")).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Dispute not found"})
			return
		}
		if !domain.CanTransition(dispute.Status, req.Status) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{
				"error": "Invalid transition " + dispute.Status + " -> " + req.Status,
			})
			return
		}

		err := db.Transaction(func(tx *gorm.DB) error {
			updates := map[string]any{"status": req.Status, "resolution": req.Resolution}
			if err := tx.Model(&dispute).Updates(updates).Error; err != nil {
				return err
			}
			if req.Status != domain.DisputeStatusResolved {
				return nil
			}
			// Refund the debited credits, at most once per lead
			refunded, err := leadRefunded(tx, dispute.LeadID)
			if err != nil {
				return err
			}
			if refunded {
				return errLeadRefunded
			}
			var lead domain.Lead
			if err := tx.First(&lead, dispute.LeadID).Error; err != nil {
				return err
			}
			var clinic domain.Clinic
			if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				First(&clinic, dispute.ClinicID).Error; err != nil {
				return err
			}
			refund := domain.CreditTransaction{
				ClinicID:  dispute.ClinicID,
				Amount:    lead.CreditCost,
				Type:      domain.TxTypeRefund,
				LeadID:    &lead.ID,
				DisputeID: &dispute.ID,
				Note:      "dispute refund for lead " + lead.Reference,
			}
			if err := tx.Create(&refund).Error; err != nil {
				return err
			}
			return tx.Model(&clinic).
				Update("credit_balance", gorm.Expr("credit_balance + ?", lead.CreditCost)).Error
		})
		if errors.Is(err, errLeadRefunded) {
			c.JSON(http.StatusConflict, gin.H{"error": "Lead charge was already refunded"})
			return
		}
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"dispute_id": dispute.ID,
				"status":     req.Status,
				"error":      err.Error(),
			}).Error("Dispute update failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update dispute"})
			return
		}
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, billingKeyPrefix(dispute.ClinicID))
		logrus.WithFields(logrus.Fields{
			"dispute_id": dispute.ID,
			"status":     req.Status,
		}).Info("Dispute updated")
		c.JSON(http.StatusOK, gin.H{"message": "Dispute updated", "status": req.Status})
	}
}

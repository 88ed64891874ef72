package api

import (
	"context"  // Background notification context
	"errors"   // Sentinel error checks
	"fmt"      // Cell coordinates for the export
	"net/http" // HTTP status codes
	"strconv"  // Cache key assembly
	"time"     // Timestamps in the export

	"antidote/internal/billing"
	"antidote/internal/domain"
	"antidote/internal/metrics"
	"antidote/internal/notify"
	"antidote/internal/utils"

	"github.com/360EntSecGroup-Skylar/excelize" // xlsx export
	"github.com/gin-gonic/gin"                  // Gin web framework
	"github.com/google/uuid"                    // Lead references
	"github.com/redis/go-redis/v9"              // Redis client
	"github.com/sirupsen/logrus"                // Logging library
	"gorm.io/gorm"                              // GORM ORM library
)

type CreateLeadRequest struct {
	ClinicID    uint   `json:"clinic_id" binding:"required"`    // Target clinic
	PackageID   *uint  `json:"package_id"`                      // Package of interest, optional
	PatientName string `json:"patient_name" binding:"required"` // Name on the form
	Phone       string `json:"phone" binding:"required"`        // Contact phone
	Message     string `json:"message"`                         // Free-text message
}

// CreateLeadHandler records a patient's interest and bills the clinic the
// tier-appropriate credit cost in one transaction
func CreateLeadHandler(db *gorm.DB, rdb *redis.Client, notifier *notify.Notifier, col *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID")
		if !exists {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var req CreateLeadRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if !isValidPhone(req.Phone) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid phone number"})
			return
		}
		var clinic domain.Clinic
		if err := db.First(&clinic, req.ClinicID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Clinic not found"})
			return
		}
		// Cost tier comes from the package price; packageless leads bill at
		// the lowest tier
		var packagePrice int64
		if req.PackageID != nil {
			var pkg domain.Package
			if err := db.First(&pkg, *req.PackageID).Error; err != nil {
				c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
				return
			}
			if pkg.ClinicID != req.ClinicID {
				c.JSON(http.StatusBadRequest, gin.H{"error": "Package does not belong to clinic"})
				return
			}
			packagePrice = pkg.Price
		}

		lead := domain.Lead{
			Reference:   uuid.NewString(),
			UserID:      userID.(uint),
			ClinicID:    req.ClinicID,
			PackageID:   req.PackageID,
			PatientName: req.PatientName,
			Phone:       req.Phone,
			Message:     req.Message,
			Status:      domain.LeadStatusNew,
			CreditCost:  billing.CalculateLeadCost(packagePrice),
		}
		if err := billing.BillLead(db, &lead); err != nil {
			if errors.Is(err, billing.ErrInsufficientCredits) {
				c.JSON(http.StatusPaymentRequired, gin.H{"error": "Clinic has insufficient credits"})
				return
			}
			logrus.WithFields(logrus.Fields{
				"user_id":   userID,
				"clinic_id": req.ClinicID,
				"error":     err.Error(),
			}).Error("Lead billing failed")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create lead"})
			return
		}
		logrus.WithFields(logrus.Fields{
			"lead_reference": lead.Reference,
			"clinic_id":      lead.ClinicID,
			"credit_cost":    lead.CreditCost,
		}).Info("Lead created and billed")
		col.LeadsCreatedTotal.Inc()
		col.CreditsDebitedTotal.Add(float64(lead.CreditCost))

		ctx := context.Background()
		_ = utils.DeleteCacheByPrefix(ctx, rdb, billingKeyPrefix(lead.ClinicID))
		go notifier.NotifyNewLead(context.Background(), db, &lead)

		c.JSON(http.StatusCreated, gin.H{"message": "Lead submitted", "reference": lead.Reference})
	}
}

// ListClinicLeadsHandler returns the owning clinic's leads with status filter
func ListClinicLeadsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		page, pageSize, offset := parsePagination(c)

		query := db.Model(&domain.Lead{}).Where("clinic_id = ?", clinicID)
		if status := c.Query("status"); status != "" {
			query = query.Where("status = ?", status)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count leads"})
			return
		}
		var leads []domain.Lead
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&leads).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"leads":       leads,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
		})
	}
}

type UpdateLeadStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=contacted converted lost"` // Target contact status
}

// UpdateLeadStatusHandler moves a lead through the contact workflow
func UpdateLeadStatusHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var req UpdateLeadStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
			return
		}
		var lead domain.Lead
		if err := db.Where("id = ? AND clinic_id = ?", c.Param("id"), clinicID).First(&lead).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Lead not found"})
			return
		}
		// Converted and lost are terminal
		if lead.Status == domain.LeadStatusConverted || lead.Status == domain.LeadStatusLost {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Lead already finalized"})
			return
		}
		if err := db.Model(&lead).Update("status", req.Status).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update lead"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "Lead updated", "status": req.Status})
	}
}

// ExportClinicLeadsHandler writes the clinic's leads to an xlsx download
func ExportClinicLeadsHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var leads []domain.Lead
		if err := db.Where("clinic_id = ?", clinicID).Order("created_at desc").Find(&leads).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch leads"})
			return
		}

		file := excelize.NewFile()
		sheet := "Leads"
		file.NewSheet(sheet)
		file.DeleteSheet("Sheet1")
		headers := map[string]string{
			"A1": "Reference",
			"B1": "Patient",
			"C1": "Phone",
			"D1": "Status",
			"E1": "Credits",
			"F1": "Created",
		}
		for k, v := range headers {
			file.SetCellValue(sheet, k, v)
		}
		for i, lead := range leads {
			row := i + 2
			file.SetCellValue(sheet, fmt.Sprintf("A%v", row), lead.Reference)
			file.SetCellValue(sheet, fmt.Sprintf("B%v", row), lead.PatientName)
			file.SetCellValue(sheet, fmt.Sprintf("C%v", row), lead.Phone)
			file.SetCellValue(sheet, fmt.Sprintf("D%v", row), lead.Status)
			file.SetCellValue(sheet, fmt.Sprintf("E%v", row), lead.CreditCost)
			file.SetCellValue(sheet, fmt.Sprintf("F%v", row),
				time.UnixMilli(lead.CreatedAt).Format("2006-01-02 15:04"))
		}
		filename := fmt.Sprintf("./leads_clinic_%d.xlsx", clinicID)
		if err := file.SaveAs(filename); err != nil {
			logrus.Errorf("Failed to write leads export: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Export failed"})
			return
		}
		c.File(filename)
	}
}

type RegisterDeviceRequest struct {
	Token string `json:"token" binding:"required"` // FCM registration token
}

// RegisterDeviceHandler stores an FCM token for the clinic's app install
func RegisterDeviceHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var req RegisterDeviceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		device := domain.ClinicDevice{ClinicID: clinicID, Token: req.Token}
		if err := db.Where("token = ?", req.Token).FirstOrCreate(&device).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to register device"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"message": "Device registered"})
	}
}

func billingKeyPrefix(clinicID uint) string {
	return "billing:clinic:" + strconv.Itoa(int(clinicID))
}

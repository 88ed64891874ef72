package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"strconv"  // Cache key assembly
	"time"     // Cache TTLs

	"antidote/internal/billing"
	"antidote/internal/domain"
	"antidote/internal/metrics"
	"antidote/internal/payments"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// GetBillingHandler returns the clinic's balance and paginated ledger
func GetBillingHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		page, pageSize, offset := parsePagination(c)

		ctx := context.Background()
		cacheKey := billingKeyPrefix(clinicID) + ":page:" + strconv.Itoa(page) + ":size:" + strconv.Itoa(pageSize)
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		balance, err := billing.LedgerBalance(db, clinicID)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to compute balance"})
			return
		}
		var total int64
		if err := db.Model(&domain.CreditTransaction{}).
			Where("clinic_id = ?", clinicID).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.CreditTransaction
		if err := db.Where("clinic_id = ?", clinicID).
			Order("created_at desc").Offset(offset).Limit(pageSize).
			Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		resp := gin.H{
			"balance":      balance,
			"transactions": transactions,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  (int(total) + pageSize - 1) / pageSize,
			"cached":       false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, 60*time.Second)
		c.JSON(http.StatusOK, resp)
	}
}

type TopupRequest struct {
	AmountINR int64 `json:"amount_inr" binding:"required,gt=0"` // Top-up amount in INR
}

// TopupHandler creates a Razorpay order for the clinic to pay
func TopupHandler(db *gorm.DB, gateway *payments.Gateway) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var req TopupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid amount"})
			return
		}
		if gateway == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments not configured"})
			return
		}
		receipt := "topup_clinic_" + strconv.Itoa(int(clinicID))
		orderID, err := gateway.CreateOrder(req.AmountINR, receipt)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"clinic_id": clinicID,
				"amount":    req.AmountINR,
				"error":     err.Error(),
			}).Error("Razorpay order creation failed")
			c.JSON(http.StatusBadGateway, gin.H{"error": "Payment gateway unavailable"})
			return
		}
		order := domain.TopupOrder{
			ClinicID:  clinicID,
			OrderID:   orderID,
			AmountINR: req.AmountINR,
			Status:    "created",
		}
		if err := db.Create(&order).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record order"})
			return
		}
		c.JSON(http.StatusCreated, gin.H{"order_id": orderID, "amount_inr": req.AmountINR})
	}
}

type VerifyTopupRequest struct {
	OrderID   string `json:"order_id" binding:"required"`  // Razorpay order id
	PaymentID string `json:"payment_id" binding:"required"` // Razorpay payment id
	Signature string `json:"signature" binding:"required"`  // Checkout callback signature
}

// VerifyTopupHandler confirms a paid order and grants credits at 1 credit/INR
func VerifyTopupHandler(db *gorm.DB, rdb *redis.Client, gateway *payments.Gateway, col *metrics.Collector) gin.HandlerFunc {
	return func(c *gin.Context) {
		clinicID := c.MustGet("clinicID").(uint)
		var req VerifyTopupRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		if gateway == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Payments not configured"})
			return
		}
		var order domain.TopupOrder
		if err := db.Where("order_id = ? AND clinic_id = ?", req.OrderID, clinicID).First(&order).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Order not found"})
			return
		}
		if order.Status == "paid" {
			c.JSON(http.StatusConflict, gin.H{"error": "Order already verified"})
			return
		}
		if err := gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature); err != nil {
			_ = db.Model(&domain.TopupOrder{}).
				Where("id = ? AND status = ?", order.ID, "created").
				Update("status", "failed").Error
			logrus.WithFields(logrus.Fields{
				"clinic_id": clinicID,
				"order_id":  req.OrderID,
			}).Warn("Top-up signature verification failed")
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid payment signature"})
			return
		}
		// Flip and grant atomically. The conditional update means exactly one
		// concurrent verify wins the flip; a losing verifier grants nothing.
		alreadyPaid := false
		err := db.Transaction(func(tx *gorm.DB) error {
			res := tx.Model(&domain.TopupOrder{}).
				Where("id = ? AND status = ?", order.ID, "created").
				Update("status", "paid")
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				alreadyPaid = true
				return nil
			}
			return billing.Grant(tx, clinicID, order.AmountINR, domain.TxTypeTopup,
				"razorpay order "+order.OrderID, nil, nil)
		})
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"clinic_id": clinicID,
				"order_id":  order.OrderID,
				"error":     err.Error(),
			}).Error("Credit grant failed after verified payment")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to grant credits"})
			return
		}
		if alreadyPaid {
			c.JSON(http.StatusConflict, gin.H{"error": "Order already verified"})
			return
		}
		col.TopupsTotal.Inc()
		_ = utils.DeleteCacheByPrefix(context.Background(), rdb, billingKeyPrefix(clinicID))
		logrus.WithFields(logrus.Fields{
			"clinic_id": clinicID,
			"order_id":  order.OrderID,
			"credits":   order.AmountINR,
		}).Info("Top-up verified, credits granted")
		c.JSON(http.StatusOK, gin.H{"message": "Top-up verified", "credits_added": order.AmountINR})
	}
}

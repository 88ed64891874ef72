package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"antidote/internal/domain"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// UserAdminResponse is the admin view of a user
type UserAdminResponse struct {
	ID            uint   `json:"id"`
	Username      string `json:"username"`
	Role          string `json:"role"`
	Phone         string `json:"phone"`
	PhoneVerified bool   `json:"phone_verified"`
}

// AdminListUsersHandler returns all users, paginated and cached
func AdminListUsersHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("admin:users", c)
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		var total int64
		if err := db.Model(&domain.User{}).Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count users"})
			return
		}
		var users []domain.User
		if err := db.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
			return
		}
		resp := make([]UserAdminResponse, len(users))
		for i, u := range users {
			resp[i] = UserAdminResponse{
				ID:            u.ID,
				Username:      u.Username,
				Role:          u.Role,
				Phone:         u.Phone,
				PhoneVerified: u.PhoneVerified,
			}
		}
		out := gin.H{
			"users":       resp,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, out, 60*time.Second)
		c.JSON(http.StatusOK, out)
	}
}

// AdminListTransactionsHandler returns the full credit ledger, paginated
func AdminListTransactionsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("admin:transactions", c, "clinic_id", "type")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.CreditTransaction{})
		if clinicID := c.Query("clinic_id"); clinicID != "" {
			query = query.Where("clinic_id = ?", clinicID)
		}
		if txType := c.Query("type"); txType != "" {
			query = query.Where("type = ?", txType)
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count transactions"})
			return
		}
		var transactions []domain.CreditTransaction
		if err := query.Order("created_at desc").Offset(offset).Limit(pageSize).Find(&transactions).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch transactions"})
			return
		}
		out := gin.H{
			"transactions": transactions,
			"page":         page,
			"page_size":    pageSize,
			"total":        total,
			"total_pages":  (int(total) + pageSize - 1) / pageSize,
			"cached":       false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, out, 60*time.Second)
		c.JSON(http.StatusOK, out)
	}
}

package middleware

import (
	"net/http" // HTTP status codes

	"antidote/internal/domain" // Importing domain models

	"github.com/gin-gonic/gin" // Gin web framework
	"gorm.io/gorm"             // GORM ORM library
)

// ClinicOwnerMiddleware resolves the clinic owned by the authenticated user
// and stores its ID in the context for the clinic-facing handlers
func ClinicOwnerMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, exists := c.Get("userID") // Get userID from context
		if !exists {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		var clinic domain.Clinic
		if err := db.Where("owner_user_id = ?", userID).First(&clinic).Error; err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Clinic account required"})
			return
		}
		c.Set("clinicID", clinic.ID) // Store owned clinic ID in context
		c.Next()
	}
}

package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Sitemap cache TTL

	"antidote/internal/domain"
	"antidote/internal/seo"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// SitemapCacheKey holds the rendered sitemap.xml between cron refreshes
const SitemapCacheKey = "seo:sitemap"

// sitemapTTL outlives the 6h cron refresh interval so the cache never
// goes cold between runs
const sitemapTTL = 12 * time.Hour

// ClinicSchemaHandler returns the JSON-LD document for a clinic page
func ClinicSchemaHandler(db *gorm.DB, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var clinic domain.Clinic
		if err := db.Where("slug = ?", c.Param("slug")).First(&clinic).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Clinic not found"})
			return
		}
		c.JSON(http.StatusOK, seo.ClinicSchema(&clinic, baseURL))
	}
}

// DoctorSchemaHandler returns the JSON-LD document for a doctor page
func DoctorSchemaHandler(db *gorm.DB, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var doctor domain.Doctor
		if err := db.Where("slug = ?", c.Param("slug")).First(&doctor).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Doctor not found"})
			return
		}
		c.JSON(http.StatusOK, seo.DoctorSchema(&doctor, baseURL))
	}
}

// ProcedureSchemaHandler returns the JSON-LD document for a procedure page
func ProcedureSchemaHandler(db *gorm.DB, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var procedure domain.Procedure
		if err := db.Where("slug = ?", c.Param("slug")).First(&procedure).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Procedure not found"})
			return
		}
		c.JSON(http.StatusOK, seo.ProcedureSchema(&procedure, baseURL))
	}
}

// PackageSchemaHandler returns the JSON-LD document for a package page
func PackageSchemaHandler(db *gorm.DB, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var pkg domain.Package
		if err := db.Where("slug = ?", c.Param("slug")).First(&pkg).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Package not found"})
			return
		}
		c.JSON(http.StatusOK, seo.PackageSchema(&pkg, baseURL))
	}
}

// SitemapHandler serves the cached sitemap, regenerating on a cold cache
func SitemapHandler(db *gorm.DB, rdb *redis.Client, baseURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		body, err := rdb.Get(ctx, SitemapCacheKey).Bytes()
		if err == redis.Nil {
			body, err = seo.GenerateSitemap(db, baseURL)
			if err != nil {
				logrus.Errorf("Sitemap generation failed: %v", err)
				c.JSON(http.StatusInternalServerError, gin.H{"error": "Sitemap unavailable"})
				return
			}
			_ = rdb.Set(ctx, SitemapCacheKey, body, sitemapTTL).Err()
		} else if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Sitemap unavailable"})
			return
		}
		c.Data(http.StatusOK, "application/xml", body)
	}
}

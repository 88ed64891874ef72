package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"sort"     // Price comparison ordering
	"strconv"  // Query parameter parsing
	"strings"  // Cache key assembly
	"time"     // Cache TTLs

	"antidote/internal/domain"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"gorm.io/gorm"                 // GORM ORM library
)

// listingTTL is the cache lifetime of directory listings
const listingTTL = 60 * time.Second

// parsePagination reads page/page_size query params with the usual bounds
func parsePagination(c *gin.Context) (page, pageSize, offset int) {
	page = 1
	pageSize = 20
	if p := c.Query("page"); p != "" {
		if v, err := strconv.Atoi(p); err == nil && v > 0 {
			page = v
		}
	}
	if ps := c.Query("page_size"); ps != "" {
		if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
			pageSize = v
		}
	}
	return page, pageSize, (page - 1) * pageSize
}

// listingCacheKey builds a cache key from the handler name and the filter set
func listingCacheKey(prefix string, c *gin.Context, params ...string) string {
	parts := []string{prefix,
		"page=" + c.DefaultQuery("page", "1"),
		"size=" + c.DefaultQuery("page_size", "20")}
	for _, p := range params {
		parts = append(parts, p+"="+c.Query(p))
	}
	return strings.Join(parts, ":")
}

// ListClinicsHandler returns clinics filtered by city and minimum rating
func ListClinicsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("directory:clinics", c, "city", "min_rating")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.Clinic{})
		if city := strings.ToLower(c.Query("city")); city != "" {
			query = query.Where("city = ?", city)
		}
		if mr := c.Query("min_rating"); mr != "" {
			if v, err := strconv.ParseFloat(mr, 64); err == nil {
				query = query.Where("rating >= ?", v)
			}
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count clinics"})
			return
		}
		var clinics []domain.Clinic
		if err := query.Order("rating desc").Offset(offset).Limit(pageSize).Find(&clinics).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch clinics"})
			return
		}
		resp := gin.H{
			"clinics":     clinics,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, listingTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// ListDoctorsHandler returns doctors filtered by city and specialty
func ListDoctorsHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("directory:doctors", c, "city", "specialty")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.Doctor{})
		if city := strings.ToLower(c.Query("city")); city != "" {
			query = query.Where("city = ?", city)
		}
		if spec := strings.ToLower(c.Query("specialty")); spec != "" {
			query = query.Where("specialty ILIKE ?", "%"+spec+"%")
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count doctors"})
			return
		}
		var doctors []domain.Doctor
		if err := query.Order("rating desc").Offset(offset).Limit(pageSize).Find(&doctors).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch doctors"})
			return
		}
		resp := gin.H{
			"doctors":     doctors,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, listingTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// ListProceduresHandler returns procedures filtered by category and name search
func ListProceduresHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("directory:procedures", c, "category", "q")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.Procedure{})
		if cat := strings.ToLower(c.Query("category")); cat != "" {
			query = query.Where("category = ?", cat)
		}
		if q := c.Query("q"); q != "" {
			query = query.Where("name ILIKE ?", "%"+q+"%")
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count procedures"})
			return
		}
		var procedures []domain.Procedure
		if err := query.Order("name").Offset(offset).Limit(pageSize).Find(&procedures).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch procedures"})
			return
		}
		resp := gin.H{
			"procedures":  procedures,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, listingTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// ListPackagesHandler returns packages filtered by procedure, city and price range
func ListPackagesHandler(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()
		cacheKey := listingCacheKey("directory:packages", c, "procedure_id", "city", "min_price", "max_price")
		var cached gin.H
		if found, err := utils.GetCache(ctx, rdb, cacheKey, &cached); err == nil && found {
			cached["cached"] = true
			c.JSON(http.StatusOK, cached)
			return
		}

		page, pageSize, offset := parsePagination(c)
		query := db.Model(&domain.Package{}).
			Joins("JOIN clinics ON clinics.id = packages.clinic_id")
		if pid := c.Query("procedure_id"); pid != "" {
			query = query.Where("packages.procedure_id = ?", pid)
		}
		if city := strings.ToLower(c.Query("city")); city != "" {
			query = query.Where("clinics.city = ?", city)
		}
		if mp := c.Query("min_price"); mp != "" {
			if v, err := strconv.ParseInt(mp, 10, 64); err == nil {
				query = query.Where("packages.price >= ?", v)
			}
		}
		if mp := c.Query("max_price"); mp != "" {
			if v, err := strconv.ParseInt(mp, 10, 64); err == nil {
				query = query.Where("packages.price <= ?", v)
			}
		}
		var total int64
		if err := query.Count(&total).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to count packages"})
			return
		}
		var packages []domain.Package
		if err := query.Order("packages.price").Offset(offset).Limit(pageSize).Find(&packages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
			return
		}
		resp := gin.H{
			"packages":    packages,
			"page":        page,
			"page_size":   pageSize,
			"total":       total,
			"total_pages": (int(total) + pageSize - 1) / pageSize,
			"cached":      false,
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, resp, listingTTL)
		c.JSON(http.StatusOK, resp)
	}
}

// ComparisonEntry is one clinic's offer for the compared procedure
type ComparisonEntry struct {
	Package        domain.Package `json:"package"`
	ClinicName     string         `json:"clinic_name"`
	ClinicCity     string         `json:"clinic_city"`
	ClinicRating   float64        `json:"clinic_rating"`
	EffectivePrice int64          `json:"effective_price"`
}

// ComparePackagesHandler lists all clinics' packages for one procedure,
// cheapest effective price first
func ComparePackagesHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		procedureID, err := strconv.Atoi(c.Query("procedure_id"))
		if err != nil || procedureID <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "procedure_id is required"})
			return
		}
		var procedure domain.Procedure
		if err := db.First(&procedure, procedureID).Error; err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Procedure not found"})
			return
		}
		var packages []domain.Package
		if err := db.Where("procedure_id = ?", procedureID).Find(&packages).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch packages"})
			return
		}
		entries := make([]ComparisonEntry, 0, len(packages))
		for _, pkg := range packages {
			var clinic domain.Clinic
			if err := db.First(&clinic, pkg.ClinicID).Error; err != nil {
				continue
			}
			entries = append(entries, ComparisonEntry{
				Package:        pkg,
				ClinicName:     clinic.Name,
				ClinicCity:     clinic.City,
				ClinicRating:   clinic.Rating,
				EffectivePrice: pkg.EffectivePrice(),
			})
		}
		// Cheapest first
		sort.Slice(entries, func(i, j int) bool {
			return entries[i].EffectivePrice < entries[j].EffectivePrice
		})
		c.JSON(http.StatusOK, gin.H{
			"procedure":  procedure,
			"comparison": entries,
		})
	}
}

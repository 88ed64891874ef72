package api

import (
	"context"  // Context for Redis operations
	"net/http" // HTTP status codes
	"time"     // Cache TTLs

	"antidote/internal/ai"
	"antidote/internal/domain"
	"antidote/internal/metrics"
	"antidote/internal/utils"

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/google/uuid"       // Session identifiers
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logging library
	"gorm.io/gorm"                 // GORM ORM library
)

// recommendationTTL is how long a recommendation set stays replayable
const recommendationTTL = 30 * time.Minute

type RecommendRequest struct {
	Query     string `json:"query" binding:"required"` // Free-text patient query
	SessionID string `json:"session_id"`               // Optional, reuses an existing session key
}

// RecommendationSet is what gets cached per session and returned to the client
type RecommendationSet struct {
	SessionID  string             `json:"session_id"`
	Query      string             `json:"query"`
	Analysis   *ai.AnalyzedQuery  `json:"analysis"`
	Backend    string             `json:"backend"` // gemini or keyword
	Procedures []domain.Procedure `json:"procedures"`
	Packages   []domain.Package   `json:"packages"`
	Clinics    []domain.Clinic    `json:"clinics"`
	Doctors    []domain.Doctor    `json:"doctors"`
}

// RecommendHandler analyzes a free-text query and searches the catalog.
// Gemini failures degrade to the keyword analyzer, never to an error.
func RecommendHandler(db *gorm.DB, rdb *redis.Client, primary ai.Analyzer, col *metrics.Collector) gin.HandlerFunc {
	fallback := ai.KeywordAnalyzer{}
	return func(c *gin.Context) {
		var req RecommendRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		ctx := c.Request.Context()
		var analysis *ai.AnalyzedQuery
		backend := "keyword"
		if primary != nil {
			aiCtx, cancel := context.WithTimeout(ctx, 8*time.Second)
			a, err := primary.Analyze(aiCtx, req.Query)
			cancel()
			if err == nil {
				analysis = a
				backend = primary.Backend()
			} else {
				logrus.Warnf("AI analysis failed, using keyword fallback: %v", err)
			}
		}
		if analysis == nil {
			analysis, _ = fallback.Analyze(ctx, req.Query)
		}
		col.AIQueriesTotal.WithLabelValues(backend).Inc()

		set := RecommendationSet{
			SessionID: req.SessionID,
			Query:     req.Query,
			Analysis:  analysis,
			Backend:   backend,
		}
		if set.SessionID == "" {
			set.SessionID = uuid.NewString()
		}

		if err := searchCatalog(db, analysis, &set); err != nil {
			logrus.Errorf("Catalog search failed: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Search failed"})
			return
		}

		// Session-scoped cache replaces the original's HTTP-session storage
		if err := utils.SetCache(context.Background(), rdb, recommendationKey(set.SessionID), set, recommendationTTL); err != nil {
			logrus.Warnf("Failed to cache recommendations: %v", err)
		}
		c.JSON(http.StatusOK, set)
	}
}

// GetRecommendationsHandler replays a cached recommendation set
func GetRecommendationsHandler(rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		sessionID := c.Param("session_id")
		if _, err := uuid.Parse(sessionID); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid session id"})
			return
		}
		var set RecommendationSet
		found, err := utils.GetCache(context.Background(), rdb, recommendationKey(sessionID), &set)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Cache unavailable"})
			return
		}
		if !found {
			c.JSON(http.StatusNotFound, gin.H{"error": "Session expired or unknown"})
			return
		}
		c.JSON(http.StatusOK, set)
	}
}

// searchCatalog runs ILIKE searches for each analyzed term across the four
// catalog tables, honoring city and budget constraints where they apply
func searchCatalog(db *gorm.DB, analysis *ai.AnalyzedQuery, set *RecommendationSet) error {
	for _, term := range analysis.ProcedureTerms {
		pattern := "%" + term + "%"

		var procs []domain.Procedure
		if err := db.Where("name ILIKE ? OR category ILIKE ?", pattern, pattern).
			Limit(5).Find(&procs).Error; err != nil {
			return err
		}
		set.Procedures = appendUniqueProcedures(set.Procedures, procs)

		pkgQuery := db.Joins("JOIN procedures ON procedures.id = packages.procedure_id").
			Joins("JOIN clinics ON clinics.id = packages.clinic_id").
			Where("packages.title ILIKE ? OR procedures.name ILIKE ?", pattern, pattern)
		if analysis.City != "" {
			pkgQuery = pkgQuery.Where("clinics.city = ?", analysis.City)
		}
		if analysis.BudgetINR > 0 {
			pkgQuery = pkgQuery.Where("packages.price <= ?", analysis.BudgetINR)
		}
		var pkgs []domain.Package
		if err := pkgQuery.Order("packages.price").Limit(10).Find(&pkgs).Error; err != nil {
			return err
		}
		set.Packages = appendUniquePackages(set.Packages, pkgs)

		docQuery := db.Where("specialty ILIKE ? OR name ILIKE ?", pattern, pattern)
		if analysis.City != "" {
			docQuery = docQuery.Where("city = ?", analysis.City)
		}
		var docs []domain.Doctor
		if err := docQuery.Order("rating desc").Limit(5).Find(&docs).Error; err != nil {
			return err
		}
		set.Doctors = appendUniqueDoctors(set.Doctors, docs)
	}

	// Clinics come from the matched packages, falling back to a city listing
	clinicIDs := make([]uint, 0, len(set.Packages))
	seen := map[uint]bool{}
	for _, p := range set.Packages {
		if !seen[p.ClinicID] {
			seen[p.ClinicID] = true
			clinicIDs = append(clinicIDs, p.ClinicID)
		}
	}
	if len(clinicIDs) > 0 {
		return db.Where("id IN ?", clinicIDs).Order("rating desc").Find(&set.Clinics).Error
	}
	if analysis.City != "" {
		return db.Where("city = ?", analysis.City).Order("rating desc").Limit(5).Find(&set.Clinics).Error
	}
	return nil
}

func appendUniqueProcedures(dst, src []domain.Procedure) []domain.Procedure {
	seen := map[uint]bool{}
	for _, p := range dst {
		seen[p.ID] = true
	}
	for _, p := range src {
		if !seen[p.ID] {
			seen[p.ID] = true
			dst = append(dst, p)
		}
	}
	return dst
}

func appendUniquePackages(dst, src []domain.Package) []domain.Package {
	seen := map[uint]bool{}
	for _, p := range dst {
		seen[p.ID] = true
	}
	for _, p := range src {
		if !seen[p.ID] {
			seen[p.ID] = true
			dst = append(dst, p)
		}
	}
	return dst
}

func appendUniqueDoctors(dst, src []domain.Doctor) []domain.Doctor {
	seen := map[uint]bool{}
	for _, d := range dst {
		seen[d.ID] = true
	}
	for _, d := range src {
		if !seen[d.ID] {
			seen[d.ID] = true
			dst = append(dst, d)
		}
	}
	return dst
}

func recommendationKey(sessionID string) string { return "recommend:session:" + sessionID }

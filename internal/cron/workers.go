package cron

import (
	"context"
	"time"

	"antidote/internal/api"
	"antidote/internal/domain"
	"antidote/internal/seo"

	"github.com/go-co-op/gocron"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// staleLeadAge is how long a lead may sit in "new" before it expires to "lost"
const staleLeadAge = 30 * 24 * time.Hour

// Workers owns the background jobs
type Workers struct {
	DB      *gorm.DB
	RDB     *redis.Client
	BaseURL string
}

// NewWorkers creates the background worker set
func NewWorkers(db *gorm.DB, rdb *redis.Client, baseURL string) *Workers {
	return &Workers{DB: db, RDB: rdb, BaseURL: baseURL}
}

// Start schedules the jobs and runs the scheduler in the background
func (w *Workers) Start() *gocron.Scheduler {
	scheduler := gocron.NewScheduler(time.Local)

	scheduler.Every(6).Hours().Do(func() {
		if err := w.RefreshSitemap(); err != nil {
			logrus.Errorf("Sitemap refresh failed: %v", err)
		}
	})

	scheduler.Every(1).Day().At("03:00").Do(func() {
		if err := w.ExpireStaleLeads(); err != nil {
			logrus.Errorf("Stale lead expiry failed: %v", err)
		}
	})

	scheduler.StartAsync()
	logrus.Info("Background workers started")
	return scheduler
}

// RefreshSitemap regenerates sitemap.xml and replaces the cached copy
func (w *Workers) RefreshSitemap() error {
	body, err := seo.GenerateSitemap(w.DB, w.BaseURL)
	if err != nil {
		return err
	}
	return w.RDB.Set(context.Background(), api.SitemapCacheKey, body, 12*time.Hour).Err()
}

// ExpireStaleLeads marks leads never actioned by the clinic as lost
func (w *Workers) ExpireStaleLeads() error {
	cutoff := time.Now().Add(-staleLeadAge).UnixMilli()
	res := w.DB.Model(&domain.Lead{}).
		Where("status = ? AND created_at < ?", domain.LeadStatusNew, cutoff).
		Update("status", domain.LeadStatusLost)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		logrus.WithField("count", res.RowsAffected).Info("Expired stale leads")
	}
	return nil
}

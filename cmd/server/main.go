package main

import (
	"context"   // Startup contexts for Redis/Firebase/Gemini
	"log"       // Server start log
	"net/http"  // HTTP server with graceful shutdown
	"os"        // Shutdown signal channel
	"os/signal" // SIGINT/SIGTERM handling
	"syscall"   // Signal constants
	"time"      // CORS max age, shutdown grace period

	"antidote/internal/ai"
	"antidote/internal/api"
	"antidote/internal/config"
	"antidote/internal/cron"
	"antidote/internal/metrics"
	"antidote/internal/middleware"
	"antidote/internal/notify"
	"antidote/internal/payments"

	"github.com/gin-contrib/cors"  // CORS middleware
	"github.com/gin-contrib/gzip"  // Response compression
	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/go-co-op/gocron"   // Cron scheduler handle for shutdown
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"golang.org/x/time/rate"       // OTP send rate
	"gorm.io/driver/postgres"      // Postgres driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Connect to the database
	gdb, err := gorm.Open(postgres.Open(cfg.DSN()), &gorm.Config{})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err)
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})
	if _, err := redisClient.Ping(context.Background()).Result(); err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Optional integrations: the server runs without any of them configured
	var analyzer ai.Analyzer
	if cfg.GeminiAPIKey != "" {
		g, err := ai.NewGeminiAnalyzer(context.Background(), cfg.GeminiAPIKey)
		if err != nil {
			logrus.Warnf("Gemini unavailable, recommendations use keyword analysis: %v", err)
		} else {
			analyzer = g
			defer g.Close()
		}
	}

	var notifier *notify.Notifier
	if cfg.FirebaseCredsPath != "" {
		notifier, err = notify.NewNotifier(context.Background(), cfg.FirebaseCredsPath)
		if err != nil {
			logrus.Warnf("Firebase unavailable, lead notifications disabled: %v", err)
		}
	}

	var gateway *payments.Gateway
	if cfg.RazorpayKeyID != "" && cfg.RazorpayKeySecret != "" {
		gateway = payments.NewGateway(cfg.RazorpayKeyID, cfg.RazorpayKeySecret)
	} else {
		logrus.Warn("Razorpay keys not set, top-ups disabled")
	}

	collector := metrics.NewCollector("antidote")
	// One OTP send per phone per 30s, burst of 3
	otpLimiter := middleware.NewPhoneLimiter(rate.Every(30*time.Second), 3)

	// Background workers: sitemap refresh and stale-lead expiry
	workers := cron.NewWorkers(gdb, redisClient, cfg.SiteBaseURL)
	scheduler := workers.Start()

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default()
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}
	r.Use(
		collector.GinMiddleware(),
		gzip.Gzip(gzip.DefaultCompression),
		cors.New(cors.Config{
			AllowOrigins:     []string{"https://antidote.fit", "http://localhost:3000"},
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	// Health and metrics
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		sqlDB, err := gdb.DB()
		if err == nil {
			err = sqlDB.PingContext(ctx)
		}
		if err != nil {
			c.JSON(503, gin.H{"status": "degraded", "db": err.Error()})
			return
		}
		if err := redisClient.Ping(ctx).Err(); err != nil {
			c.JSON(503, gin.H{"status": "degraded", "redis": err.Error()})
			return
		}
		c.JSON(200, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(metrics.MetricsHandler()))

	// Auth routes
	r.POST("/auth/register", api.RegisterHandler(gdb))
	r.POST("/auth/login", api.LoginHandler(gdb, cfg.JWTSecret))
	r.POST("/auth/otp/send", api.SendOTPHandler(redisClient, otpLimiter, cfg.IsProd))
	r.POST("/auth/otp/verify", middleware.JWTAuthMiddleware(cfg.JWTSecret),
		api.VerifyOTPHandler(gdb, redisClient, cfg.IsProd))

	// Public directory, SEO and community reads
	r.GET("/sitemap.xml", api.SitemapHandler(gdb, redisClient, cfg.SiteBaseURL))
	pub := r.Group("/api")
	pub.GET("/clinics", api.ListClinicsHandler(gdb, redisClient))
	pub.GET("/doctors", api.ListDoctorsHandler(gdb, redisClient))
	pub.GET("/procedures", api.ListProceduresHandler(gdb, redisClient))
	pub.GET("/packages", api.ListPackagesHandler(gdb, redisClient))
	pub.GET("/packages/compare", api.ComparePackagesHandler(gdb))
	pub.GET("/seo/schema/clinics/:slug", api.ClinicSchemaHandler(gdb, cfg.SiteBaseURL))
	pub.GET("/seo/schema/doctors/:slug", api.DoctorSchemaHandler(gdb, cfg.SiteBaseURL))
	pub.GET("/seo/schema/procedures/:slug", api.ProcedureSchemaHandler(gdb, cfg.SiteBaseURL))
	pub.GET("/seo/schema/packages/:slug", api.PackageSchemaHandler(gdb, cfg.SiteBaseURL))
	pub.GET("/community/threads", api.ListThreadsHandler(gdb))
	pub.GET("/community/threads/:id", api.GetThreadHandler(gdb))
	pub.GET("/recommendations/:session_id", api.GetRecommendationsHandler(redisClient))

	// Authenticated user routes
	auth := r.Group("/api")
	auth.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))
	auth.POST("/recommendations", api.RecommendHandler(gdb, redisClient, analyzer, collector))
	auth.POST("/leads", api.CreateLeadHandler(gdb, redisClient, notifier, collector))
	auth.POST("/community/threads", api.CreateThreadHandler(gdb))
	auth.POST("/community/threads/:id/replies", api.CreateReplyHandler(gdb))
	auth.DELETE("/community/threads/:id/replies/:reply_id", api.DeleteReplyHandler(gdb))

	// Clinic-owner routes
	clinic := r.Group("/api/clinic")
	clinic.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.ClinicOwnerMiddleware(gdb))
	clinic.GET("/leads", api.ListClinicLeadsHandler(gdb))
	clinic.PATCH("/leads/:id", api.UpdateLeadStatusHandler(gdb))
	clinic.GET("/leads/export", api.ExportClinicLeadsHandler(gdb))
	clinic.POST("/devices", api.RegisterDeviceHandler(gdb))
	clinic.GET("/billing", api.GetBillingHandler(gdb, redisClient))
	clinic.POST("/billing/topup", api.TopupHandler(gdb, gateway))
	clinic.POST("/billing/topup/verify", api.VerifyTopupHandler(gdb, redisClient, gateway, collector))
	clinic.POST("/disputes", api.CreateDisputeHandler(gdb))
	clinic.GET("/disputes", api.ListClinicDisputesHandler(gdb))

	// Admin routes
	admin := r.Group("/api/admin")
	admin.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), middleware.AdminOnlyMiddleware(gdb))
	admin.GET("/users", api.AdminListUsersHandler(gdb, redisClient))
	admin.GET("/transactions", api.AdminListTransactionsHandler(gdb, redisClient))
	admin.PATCH("/disputes/:id", api.AdminUpdateDisputeHandler(gdb, redisClient))

	server := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("server error: %v", err)
		}
	}()

	log.Println("Server running on " + cfg.AppPort) // Log server start
	waitForShutdown(server, scheduler)
}

// waitForShutdown blocks until SIGINT or SIGTERM, stops the cron scheduler
// and drains in-flight requests before exiting
func waitForShutdown(server *http.Server, scheduler *gocron.Scheduler) {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	log.Println("Shutting down server...")
	scheduler.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logrus.Errorf("graceful shutdown failed: %v", err)
	}
}

package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/Kenway45/TLA-Attendance-site/internal/auth"
	"github.com/Kenway45/TLA-Attendance-site/internal/checkin"
	"github.com/Kenway45/TLA-Attendance-site/internal/cloudinary"
	"github.com/Kenway45/TLA-Attendance-site/internal/config"
	"github.com/Kenway45/TLA-Attendance-site/internal/event"
	"github.com/Kenway45/TLA-Attendance-site/internal/geo"
	"github.com/Kenway45/TLA-Attendance-site/internal/httpmiddleware"
	"github.com/Kenway45/TLA-Attendance-site/internal/metrics"
	"github.com/Kenway45/TLA-Attendance-site/internal/queue"
	"github.com/Kenway45/TLA-Attendance-site/internal/store"
	"github.com/Kenway45/TLA-Attendance-site/internal/views"
)

func main() {
	cfg := config.Load()

	if cfg.Env == "production" || cfg.Env == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx := context.Background()

	redisClient := store.NewRedis(cfg.RedisAddr)

	var db *store.DB
	var blob event.Blob
	switch cfg.StorageBackend {
	case "postgres":
		var err error
		db, err = store.NewDB(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		blob, err = store.NewPostgresBlob(ctx, db.Client, cfg.StorageKey)
		if err != nil {
			return err
		}
	case "memory":
		blob = store.NewMemoryBlob()
	default:
		blob = store.NewRedisBlob(redisClient.Client, cfg.StorageKey)
	}
	defer func() {
		if db != nil {
			_ = db.Close()
		}
	}()

	events := event.NewStore(ctx, blob)

	var uploader checkin.Uploader
	if cfg.CloudinaryCloudName != "" && cfg.CloudinaryAPIKey != "" && cfg.CloudinaryAPISecret != "" {
		uploader = cloudinary.New(cfg.CloudinaryCloudName, cfg.CloudinaryAPIKey, cfg.CloudinaryAPISecret, cfg.CloudinaryFolder)
		log.Println("Cloudinary configured:", cfg.CloudinaryCloudName)
	} else {
		log.Println("Cloudinary not configured, selfies stay inline in the event blob")
	}

	sessions := checkin.NewManager(events, cfg.EmailDomain, uploader)
	gate := auth.NewGate(cfg.AdminUsername, cfg.AdminPassword, cfg.JWTIssuer, cfg.JWTSigningKey, cfg.AdminTokenTTL)
	m := metrics.New()

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		q = queue.NewInMemory(64)
	} else {
		q = queue.NewRedisQueue(redisClient.Client, "attendance:checkins")
	}

	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(corsMiddleware())
	r.Use(securityHeaders())
	r.Use(httpmiddleware.NewClientLimiter(cfg.RateLimitPerMin, cfg.RateLimitPerMin).GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		redisHealthy := redisClient.Healthy(c.Request.Context())
		storageHealthy := true
		switch cfg.StorageBackend {
		case "postgres":
			storageHealthy = db != nil && db.Client.PingContext(c.Request.Context()) == nil
		case "memory":
		default:
			storageHealthy = redisHealthy
		}
		status := http.StatusOK
		if !storageHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": "ok", "redis": redisHealthy, "storage": cfg.StorageBackend})
	})

	// ---- participant ----

	r.GET("/v1/events", func(c *gin.Context) {
		type selectable struct {
			ID        string `json:"id"`
			Name      string `json:"name"`
			StartTime string `json:"startTime"`
			EndTime   string `json:"endTime"`
		}
		out := []selectable{}
		for _, evt := range sessions.Selectable() {
			out = append(out, selectable{ID: evt.ID, Name: evt.Name, StartTime: evt.StartTime, EndTime: evt.EndTime})
		}
		c.JSON(http.StatusOK, gin.H{"events": out})
	})

	r.POST("/v1/sessions", func(c *gin.Context) {
		var req struct {
			EventID string `json:"event_id" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s, err := sessions.Start(req.EventID)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusCreated, s)
	})

	r.GET("/v1/sessions/:id", func(c *gin.Context) {
		s, err := sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.POST("/v1/sessions/:id/fields", func(c *gin.Context) {
		var req struct {
			Name      string `json:"name"`
			RegNumber string `json:"reg_number"`
			Email     string `json:"email"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s, err := sessions.SetFields(c.Param("id"), req.Name, req.RegNumber, req.Email)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.POST("/v1/sessions/:id/location", func(c *gin.Context) {
		var req struct {
			Lat *float64 `json:"lat" binding:"required"`
			Lng *float64 `json:"lng" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		s, err := sessions.CheckLocation(c.Param("id"), geo.Location{Lat: *req.Lat, Lng: *req.Lng})
		if err != nil {
			var fenceErr *checkin.GeofenceError
			if errors.As(err, &fenceErr) {
				m.RecordSubmission("rejected_geofence")
				c.JSON(http.StatusUnprocessableEntity, gin.H{"error": fenceErr.Error(), "distance_m": fenceErr.Distance})
				return
			}
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.POST("/v1/sessions/:id/photo", func(c *gin.Context) {
		var req struct {
			Data string `json:"data" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "provide {\"data\": \"<base64 data URL>\"}"})
			return
		}
		s, err := sessions.AttachPhoto(c.Param("id"), req.Data)
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.DELETE("/v1/sessions/:id/photo", func(c *gin.Context) {
		s, err := sessions.RetakePhoto(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, s)
	})

	r.POST("/v1/sessions/:id/submit", func(c *gin.Context) {
		s, err := sessions.Get(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		receipt, err := sessions.Submit(c.Request.Context(), c.Param("id"))
		if err != nil {
			switch {
			case errors.Is(err, event.ErrDuplicateRegistration):
				m.RecordSubmission("rejected_duplicate")
			case errors.Is(err, event.ErrValidation):
				m.RecordSubmission("rejected_validation")
			}
			respondErr(c, err)
			return
		}
		m.RecordSubmission("accepted")

		notice := queue.CheckinNotice{
			EventID:     s.EventID,
			EventName:   receipt.EventName,
			RegNumber:   receipt.Record.RegNumber,
			ArrivalTime: receipt.Record.ArrivalTime,
		}
		if err := q.Publish(ctx, notice); err != nil {
			log.Printf("queue publish failed: %v", err)
		}

		c.JSON(http.StatusCreated, receipt)
	})

	r.DELETE("/v1/sessions/:id", func(c *gin.Context) {
		sessions.Acknowledge(c.Param("id"))
		c.Status(http.StatusNoContent)
	})

	// ---- public share links ----

	r.GET("/v1/public/:eventID", func(c *gin.Context) {
		evt, err := events.Find(c.Param("eventID"))
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "invalid link"})
			return
		}
		c.JSON(http.StatusOK, views.Public(evt))
	})

	// ---- admin ----

	r.POST("/v1/admin/login", func(c *gin.Context) {
		var req struct {
			Username string `json:"username" binding:"required"`
			Password string `json:"password" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		token, exp, err := gate.Login(req.Username, req.Password)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"access_token": token, "expires_at": exp.Unix()})
	})

	admin := r.Group("/v1/admin", auth.AdminAuth(gate))

	admin.POST("/events", func(c *gin.Context) {
		var draft event.Draft
		if err := c.ShouldBindJSON(&draft); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		evt, err := events.Create(c.Request.Context(), draft)
		if err != nil {
			respondErr(c, err)
			return
		}
		m.EventsCreatedTotal.Inc()
		c.JSON(http.StatusCreated, evt)
	})

	admin.GET("/events", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"events": events.List()})
	})

	admin.POST("/events/:id/active", func(c *gin.Context) {
		var req struct {
			Active *bool `json:"active" binding:"required"`
		}
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		if err := events.SetActive(c.Request.Context(), c.Param("id"), *req.Active); err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"id": c.Param("id"), "active": *req.Active})
	})

	admin.GET("/events/:id/log", func(c *gin.Context) {
		evt, err := events.Find(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		records := views.SearchLog(evt.AttendanceLog, c.Query("search"))
		if records == nil {
			records = []event.AttendanceRecord{}
		}
		c.JSON(http.StatusOK, gin.H{"event": evt.Name, "records": records})
	})

	admin.GET("/events/:id/export", func(c *gin.Context) {
		evt, err := events.Find(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		if len(evt.AttendanceLog) == 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no attendance data to export for this event"})
			return
		}
		data, err := views.ExportCSV(evt)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
			return
		}
		m.CSVExportsTotal.Inc()
		c.Header("Content-Disposition", `attachment; filename="`+views.CSVFilename(evt.Name)+`"`)
		c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
	})

	admin.GET("/events/:id/share", func(c *gin.Context) {
		evt, err := events.Find(c.Param("id"))
		if err != nil {
			respondErr(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"url": views.ShareLink(cfg.PublicBaseURL, evt.ID)})
	})

	// Graceful shutdown
	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced shutdown: %v", err)
	}

	log.Println("Server exited")
	return nil
}

// respondErr maps domain errors to HTTP statuses. Everything here is
// user-facing and transient; the process stays up.
func respondErr(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, event.ErrNotFound), errors.Is(err, checkin.ErrSessionNotFound):
		status = http.StatusNotFound
	case errors.Is(err, event.ErrValidation):
		status = http.StatusBadRequest
	case errors.Is(err, event.ErrDuplicateRegistration):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// CORS middleware for browser requests
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin == "" {
			origin = "*"
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Max-Age", "86400")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// Security headers middleware
func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-XSS-Protection", "1; mode=block")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

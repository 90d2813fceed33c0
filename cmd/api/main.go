package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"timetrack/internal/auth"
	"timetrack/internal/config"
	"timetrack/internal/employee"
	"timetrack/internal/httpapi"
	"timetrack/internal/httpmiddleware"
	"timetrack/internal/mailer"
	"timetrack/internal/metrics"
	"timetrack/internal/notify"
	"timetrack/internal/policy"
	"timetrack/internal/queue"
	"timetrack/internal/store"
	"timetrack/internal/timesheet"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}

	if cfg.Production() {
		gin.SetMode(gin.ReleaseMode)
	}

	if err := runHTTP(cfg); err != nil {
		log.Fatalf("http server failed: %v", err)
	}
}

func runHTTP(cfg config.App) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		db         *store.DB
		people     employee.Store
		sheetStore timesheet.Store
	)
	if cfg.StorageBackend == "memory" {
		log.Println("storage: in-memory, data is lost on restart")
		mem := employee.NewMemoryStore()
		people = mem
		sheetStore = timesheet.NewMemoryStore(mem)
	} else {
		connectCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
		var err error
		db, err = store.NewDB(connectCtx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			return err
		}
		defer db.Close()
		people = employee.NewRepository(db.Client)
		sheetStore = timesheet.NewRepository(db.Client)
	}

	var redisClient *store.Redis
	if cfg.QueueBackend == "redis" || cfg.RevocationBackend == "redis" || cfg.RateLimitBackend == "redis" {
		redisClient = store.NewRedis(cfg.RedisAddr)
		defer redisClient.Close()
		if !redisClient.Healthy(ctx) {
			log.Printf("warning: redis at %s not reachable", cfg.RedisAddr)
		}
	}

	var q queue.Queue
	if cfg.QueueBackend == "memory" {
		mem := queue.NewInMemory(64)
		q = mem
		// no separate worker can see an in-process queue, so dispatch here
		go func() {
			if err := notify.NewDispatcher(mem, newSender(cfg)).Run(ctx); err != nil {
				log.Printf("notification dispatcher stopped: %v", err)
			}
		}()
	} else {
		q = queue.NewRedisQueue(redisClient.Client, queue.DefaultKey)
	}
	publisher := notify.NewPublisher(q, cfg.ResetURL)
	defer publisher.Wait()

	var revocations auth.Revocations
	if cfg.RevocationBackend == "memory" {
		revocations = auth.NewMemoryRevocations(nil)
	} else {
		revocations = store.NewRedisRevocations(redisClient.Client, "")
	}

	pol := policy.New(nil)
	authn := auth.NewAuthenticator(people, auth.TokenConfig{
		Issuer:     cfg.JWTIssuer,
		SigningKey: cfg.JWTSigningKey,
		SessionTTL: cfg.SessionTTL,
		ResetTTL:   cfg.ResetTTL,
	}, auth.WithRevocations(revocations), auth.WithResetNotifier(publisher))
	employees := employee.NewService(people, pol)
	if cfg.BootstrapAdminEmail != "" {
		admin, created, err := employees.EnsureAdmin(ctx, employee.CreateInput{
			Email:    cfg.BootstrapAdminEmail,
			Password: cfg.BootstrapAdminPassword,
			Name:     "Admin",
			Surname:  "User",
		})
		if err != nil {
			return fmt.Errorf("bootstrap administrator: %w", err)
		}
		if created {
			log.Printf("bootstrap administrator %s <%s> created", admin.ID, admin.Email)
		}
	} else if cfg.StorageBackend == "memory" {
		log.Println("warning: in-memory storage without BOOTSTRAP_ADMIN_EMAIL, nobody can log in")
	}
	timesheets := timesheet.NewService(timesheet.NewLedger(sheetStore), people, pol, publisher)

	globalLimit, loginLimit := limiters(cfg, redisClient)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(gin.LoggerWithConfig(gin.LoggerConfig{
		SkipPaths: []string{"/healthz", "/metrics"},
	}))
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORSAllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           24 * time.Hour,
	}))
	r.Use(securityHeaders())
	r.Use(metrics.GinMiddleware())

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/healthz", func(c *gin.Context) {
		dbHealthy := cfg.StorageBackend == "memory" || db.Healthy(c.Request.Context())
		redisHealthy := redisClient == nil || redisClient.Healthy(c.Request.Context())
		status := http.StatusOK
		if !redisHealthy || !dbHealthy {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{"status": http.StatusText(status), "redis": redisHealthy, "db": dbHealthy})
	})

	api := r.Group("", httpmiddleware.RateLimit(globalLimit, "global"))
	httpapi.New(authn, employees, timesheets).Register(api, httpmiddleware.RateLimit(loginLimit, "login"))

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("starting server on :%s", cfg.HTTPPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("server forced shutdown: %v", err)
	}
	log.Println("server exited")
	return nil
}

func limiters(cfg config.App, redisClient *store.Redis) (global, login httpmiddleware.Limiter) {
	if cfg.RateLimitBackend == "redis" {
		return httpmiddleware.NewRedisWindow(redisClient.Client, "", cfg.RateLimitPerMin),
			httpmiddleware.NewRedisWindow(redisClient.Client, "", cfg.LoginRateLimitPerMin)
	}
	return httpmiddleware.NewTokenBucket(cfg.RateLimitPerMin, cfg.RateLimitPerMin),
		httpmiddleware.NewTokenBucket(cfg.LoginRateLimitPerMin, cfg.LoginRateLimitPerMin)
}

func newSender(cfg config.App) mailer.Sender {
	return mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		User:     cfg.SMTPUser,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
}

func securityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("X-Frame-Options", "DENY")
		c.Header("Referrer-Policy", "strict-origin-when-cross-origin")

		if gin.Mode() == gin.ReleaseMode {
			c.Header("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		}

		c.Next()
	}
}

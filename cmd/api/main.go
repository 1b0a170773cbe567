package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"repairdesk/internal/authz"
	"repairdesk/internal/config"
	"repairdesk/internal/database"
	"repairdesk/internal/middleware"
	"repairdesk/internal/modules/auth"
	"repairdesk/internal/modules/billing"
	"repairdesk/internal/modules/customer"
	"repairdesk/internal/modules/inventory"
	"repairdesk/internal/modules/notification"
	"repairdesk/internal/modules/payment"
	"repairdesk/internal/modules/repair"
	jwtsvc "repairdesk/internal/pkg/jwt"
	"repairdesk/internal/pkg/response"
	"repairdesk/internal/pkg/upload"
	"repairdesk/internal/repository"
)

func main() {
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	db, err := database.Connect(cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal(err)
	}

	userRepo := repository.NewUserRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	repairRepo := repository.NewRepairRepository(db)
	paymentRepo := repository.NewPaymentRepository(db)

	j := jwtsvc.New(cfg.JWTSecret, cfg.JWTTTL)
	policy := authz.NewPolicy(customerRepo)
	saver := upload.NewSaver(cfg.UploadsDir)

	hub := notification.NewHub()
	dispatcher := notification.NewDispatcher(hub, log)
	wsHandler := notification.NewWSHandler(hub, j, log)

	mailer := &auth.LogMailer{Log: log}
	authService := auth.NewService(userRepo, j, mailer, cfg.OTPTTL)
	authHandler := auth.NewHandler(authService)

	inventoryService := inventory.NewService(inventoryRepo)
	inventoryHandler := inventory.NewHandler(inventoryService)

	repairService := repair.NewService(repairRepo, userRepo, customerRepo, policy, dispatcher, saver)
	repairHandler := repair.NewHandler(repairService)

	billingService := billing.NewService(repairRepo, paymentRepo, customerRepo, userRepo, policy)
	billingHandler := billing.NewHandler(billingService)

	paymentService := payment.NewService(paymentRepo, repairRepo, policy)
	paymentHandler := payment.NewHandler(paymentService)

	customerService := customer.NewService(customerRepo, userRepo)
	customerHandler := customer.NewHandler(customerService)

	if cfg.AppEnv == "prod" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(log))
	r.Use(cors.New(corsConfig(cfg)))

	r.Static(upload.StaticURLBase, saver.BaseDir())
	r.GET("/healthz", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	wsHandler.RegisterRoutes(r)

	api := r.Group("/api")
	{
		authHandler.RegisterPublicRoutes(api)

		protected := api.Group("/")
		protected.Use(middleware.Auth(j, userRepo))

		staff := protected.Group("/")
		staff.Use(middleware.StaffOnly())

		admin := protected.Group("/")
		admin.Use(middleware.AdminOnly())

		authHandler.RegisterProtectedRoutes(protected, admin)
		inventoryHandler.RegisterRoutes(staff)
		repairHandler.RegisterRoutes(protected, staff, admin)
		billingHandler.RegisterRoutes(protected)
		paymentHandler.RegisterRoutes(protected, staff)
		customerHandler.RegisterRoutes(admin)
	}

	srv := &http.Server{
		Addr:    cfg.ListenAddr,
		Handler: r,
	}

	go func() {
		log.WithField("addr", cfg.ListenAddr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	// The hub's lifecycle belongs here: it is constructed before the
	// first request and torn down after the server drains.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("server shutdown")
	}
	hub.Close()
}

func corsConfig(cfg *config.Config) cors.Config {
	c := cors.DefaultConfig()
	c.AllowOrigins = append([]string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
	}, cfg.CORSOrigins...)
	c.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	c.AllowCredentials = true
	return c
}

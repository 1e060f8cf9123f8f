package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"slicecraft/internal/handler"
	"slicecraft/internal/middleware"
	"slicecraft/internal/notify"
	"slicecraft/internal/repositories"
	"slicecraft/internal/router"
	"slicecraft/internal/service"
	"slicecraft/internal/token"
	"slicecraft/internal/uploads"
	"slicecraft/pkg/database"
	"slicecraft/pkg/envconfig"
	"slicecraft/pkg/flags"
	"slicecraft/pkg/logger"
	"slicecraft/pkg/shutdownsetup"
)

func main() {
	flagConfig := flags.Parse()

	if err := flagConfig.Validate(); err != nil {
		fmt.Printf("Configuration error: %v\n", err)
		return
	}

	envErr := envconfig.LoadEnvFile(".env")

	loggerConfig := logger.Config{
		Level:        envconfig.GetLogLevel(),
		Format:       envconfig.GetEnv("LOG_FORMAT", "json"),
		Output:       envconfig.GetEnv("LOG_OUTPUT", "stdout"),
		EnableCaller: envconfig.GetEnv("LOG_ENABLE_CALLER", "true") == "true",
		Environment:  envconfig.GetEnv("ENVIRONMENT", "development"),
	}

	appLogger := logger.New(loggerConfig)

	if envErr != nil {
		appLogger.Warn("Failed to load .env file", "error", envErr)
	} else {
		appLogger.Debug(".env file loaded successfully")
	}

	appLogger.Info("Starting SliceCraft application",
		"environment", loggerConfig.Environment,
		"log_level", loggerConfig.Level)

	handler.Configure(loggerConfig.Environment)

	db, err := database.NewConnection(envconfig.LoadDatabaseConfig(), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to establish database connection", "error", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			appLogger.Error("Failed to close database connection", "error", err)
		}
	}()

	if err := db.HealthCheck(); err != nil {
		appLogger.Error("Database health check failed", "error", err)
	}
	if err := db.Migrate(); err != nil {
		appLogger.Fatal("Failed to apply database migrations", "error", err)
	}

	uploadStore, err := uploads.NewStore(envconfig.GetEnv("UPLOAD_DIR", "uploads"), appLogger)
	if err != nil {
		appLogger.Fatal("Failed to prepare upload directory", "error", err)
	}

	smtpPort := 587
	if parsed, err := strconv.Atoi(envconfig.GetEnv("SMTP_PORT", "587")); err == nil {
		smtpPort = parsed
	}
	mailer := notify.NewSMTPMailer(notify.SMTPConfig{
		Host:       envconfig.GetEnv("SMTP_HOST", "smtp.gmail.com"),
		Port:       smtpPort,
		User:       envconfig.GetEnv("SMTP_USER", ""),
		Password:   envconfig.GetEnv("SMTP_PASSWORD", ""),
		AdminEmail: envconfig.GetEnv("ADMIN_EMAIL", ""),
	}, appLogger)

	tokens := token.NewManager(envconfig.GetEnv("JWT_SECRET", "slicecraft-dev-secret"))

	paymentConfig := service.PaymentConfig{
		KeyID:     envconfig.GetEnv("PAYMENT_KEY_ID", ""),
		KeySecret: envconfig.GetEnv("PAYMENT_KEY_SECRET", ""),
		TestMode:  envconfig.GetEnv("PAYMENT_TEST_MODE", "true") == "true",
	}

	userRepo := repositories.NewUserRepository(appLogger, db)
	pizzaRepo := repositories.NewPizzaRepository(appLogger, db)
	inventoryRepo := repositories.NewInventoryRepository(appLogger, db)
	orderRepo := repositories.NewOrderRepository(appLogger, db)
	subscriptionRepo := repositories.NewSubscriptionRepository(appLogger, db)

	authService := service.NewAuthService(userRepo, tokens, mailer, appLogger)
	userService := service.NewUserService(userRepo, appLogger)
	pizzaService := service.NewPizzaService(pizzaRepo, appLogger)
	orderService := service.NewOrderService(orderRepo, mailer, appLogger)
	paymentService := service.NewPaymentService(paymentConfig, orderRepo, pizzaRepo, inventoryRepo, mailer, appLogger)
	inventoryService := service.NewInventoryService(inventoryRepo, mailer, appLogger)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, appLogger)

	frontendURL := envconfig.GetEnv("FRONTEND_URL", "http://localhost:5173")

	handlers := router.Handlers{
		Auth:         handler.NewAuthHandler(authService, userService, uploadStore, frontendURL, appLogger),
		Pizza:        handler.NewPizzaHandler(pizzaService, appLogger),
		Order:        handler.NewOrderHandler(orderService, uploadStore, appLogger),
		Payment:      handler.NewPaymentHandler(paymentService, appLogger),
		Inventory:    handler.NewInventoryHandler(inventoryService, appLogger),
		Subscription: handler.NewSubscriptionHandler(subscriptionService, appLogger),
	}

	auth := middleware.NewAuth(tokens, userRepo, appLogger)
	mux := router.New(handlers, auth, uploadStore, appLogger)

	initialPort := flagConfig.Port
	if initialPort == "" {
		initialPort = envconfig.GetEnv("PORT", "8080")
	}
	host := envconfig.GetEnv("HOST", "localhost")

	port := initialPort

	server := &http.Server{
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErrors := make(chan error, 1)

	maxRetries := 3
	for i := 0; i < maxRetries; i++ {
		server.Addr = host + ":" + port

		go func() {
			appLogger.Info("Starting HTTP server",
				"host", host,
				"port", port,
				"address", server.Addr)

			if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				appLogger.Error("Server error", "error", err)
				serverErrors <- err
			}
		}()

		select {
		case err := <-serverErrors:
			if strings.Contains(err.Error(), "address already in use") && i < maxRetries-1 {
				portNum := 8080 + i + 1
				port = fmt.Sprintf("%d", portNum)
				appLogger.Warn("Port already in use, trying alternative port",
					"current_port", server.Addr,
					"next_port", port)
				continue
			} else {
				appLogger.Error("Failed to start server after retries", "error", err)
				return
			}
		case <-time.After(200 * time.Millisecond):
			appLogger.Info("Server started successfully", "port", port)
		}

		break
	}

	select {
	case err := <-serverErrors:
		appLogger.Error("Could not start server", "error", err)
		return
	default:
		shutdownsetup.SetupGracefulShutdown(server, appLogger)
	}
}

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Yaroslav326/TaskManagement/internal"
	"github.com/Yaroslav326/TaskManagement/internal/auth"
	authstore "github.com/Yaroslav326/TaskManagement/internal/auth/postgres"
	"github.com/Yaroslav326/TaskManagement/internal/chat"
	chatstore "github.com/Yaroslav326/TaskManagement/internal/chat/postgres"
	"github.com/Yaroslav326/TaskManagement/internal/company"
	companystore "github.com/Yaroslav326/TaskManagement/internal/company/postgres"
	"github.com/Yaroslav326/TaskManagement/internal/core/events"
	"github.com/Yaroslav326/TaskManagement/internal/notification"
	notificationstore "github.com/Yaroslav326/TaskManagement/internal/notification/postgres"
	"github.com/Yaroslav326/TaskManagement/internal/task"
	taskstore "github.com/Yaroslav326/TaskManagement/internal/task/postgres"
	"github.com/Yaroslav326/TaskManagement/internal/transport/rest"
	"github.com/Yaroslav326/TaskManagement/internal/transport/swagger"
	"github.com/Yaroslav326/TaskManagement/internal/user"
	userstore "github.com/Yaroslav326/TaskManagement/internal/user/postgres"
	"github.com/Yaroslav326/TaskManagement/pkg/logger"

	"github.com/go-chi/chi"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"
	gormpg "gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var httpServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start HTTP server",
	Long:  `Start the HTTP server to handle API requests and chat websockets`,
	Run: func(cmd *cobra.Command, args []string) {
		startHTTPServer()
	},
}

type Dependencies struct {
	Config *internal.Config
	DB     *sqlx.DB
	Router *chi.Mux
	Logger *slog.Logger
}

func startHTTPServer() {
	deps, err := initializeDependencies()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize dependencies: %v\n", err)
		os.Exit(1)
	}

	addr := fmt.Sprintf(":%d", deps.Config.Server.Port)
	slog.Info("Starting HTTP server", "address", addr)

	server := &http.Server{
		Addr:         addr,
		Handler:      deps.Router,
		ReadTimeout:  deps.Config.Server.ReadTimeout,
		WriteTimeout: deps.Config.Server.WriteTimeout,
		IdleTimeout:  deps.Config.Server.IdleTimeout,
	}

	// Signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	serverErrChan := make(chan error, 1)
	go func() {
		serverErrChan <- server.ListenAndServe()
	}()

	select {
	case sig := <-sigChan:
		slog.Info("Received signal, shutting down...", "signal", sig)
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}
		if err := deps.DB.Close(); err != nil {
			slog.Error("Database close error", "error", err)
		}
	case err := <-serverErrChan:
		if err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}

	slog.Info("Server stopped")
}

func initializeDependencies() (*Dependencies, error) {
	config, err := loadConfig(".")
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	logger.Init(config.Observability.Logging.Level, config.Observability.Logging.Format)
	appLogger := logger.LoggerWrapper()

	db, err := initDB(config.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	gormDB, err := gorm.Open(gormpg.New(gormpg.Config{Conn: db.DB}), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize orm: %w", err)
	}

	if _, err := swagger.LoadSpec(context.Background(), "./api/openapi.yml"); err != nil {
		return nil, err
	}

	bus := events.NewEventBus(appLogger)

	tokenGen := auth.NewJWTTokenGenerator(config.Security.JWTSecret, config.Security.TokenDuration)
	authService := auth.NewService(authstore.NewRepository(gormDB), tokenGen, config.Security.BCryptCost)
	authHandler := auth.NewHandler(authService)

	userService := user.NewService(userstore.NewUserRepository(gormDB), config.Security.BCryptCost)
	userHandler := user.NewHandler(userService)

	companyService := company.NewService(companystore.NewCompanyRepository(gormDB), appLogger)
	companyHandler := company.NewHandler(companyService)

	taskService := task.NewService(taskstore.NewTaskRepository(gormDB), bus, appLogger)
	taskHandler := task.NewHandler(taskService)

	mailer := notification.NewMailer(config.Mailer, appLogger)
	notifier := notification.NewService(mailer, notificationstore.NewDirectory(gormDB), appLogger)
	notifier.Register(bus)

	registry := chat.NewRegistry(appLogger)
	chatService := chat.NewService(
		chatstore.NewMessageStore(gormDB),
		registry,
		config.Chat.HistoryLimit,
		config.Chat.MaxMessageLength,
		appLogger,
	)
	gateway := chat.NewGateway(
		authService,
		chat.NewResolver(companyService),
		registry,
		chatService,
		chat.GatewayConfig{
			SendBufferSize:   config.Chat.SendBufferSize,
			WriteTimeout:     config.Chat.WriteTimeout,
			PongTimeout:      config.Chat.PongTimeout,
			AuthTimeout:      config.Chat.AuthTimeout,
			MaxMessageLength: config.Chat.MaxMessageLength,
			CheckOrigin:      chat.OriginChecker(config.Server.AllowedOrigins),
		},
		appLogger,
	)

	router := chi.NewRouter()
	rest.RegisterAllRoutes(router, db.DB,
		authHandler, userHandler, companyHandler, taskHandler, gateway,
		config.Server.AllowedOrigins, appLogger)

	return &Dependencies{
		Config: config,
		Logger: appLogger,
		DB:     db,
		Router: router,
	}, nil
}

// initDB initializes the database connection
func initDB(cfg internal.DatabaseConfig) (*sqlx.DB, error) {
	const driver = "pgx"

	dbConn, err := sqlx.Connect(driver, cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("failed to open db connection: %w", err)
	}

	dbConn.SetMaxIdleConns(cfg.MaxIdleConns)
	dbConn.SetMaxOpenConns(cfg.MaxOpenConns)
	dbConn.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	dbConn.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	// verify connection; close underlying *sql.DB on failure
	if err := dbConn.Ping(); err != nil {
		_ = dbConn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return dbConn, nil
}

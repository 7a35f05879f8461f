package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/ashmitsharp/payledger-api/internal/config"
	"github.com/ashmitsharp/payledger-api/internal/database"
	"github.com/ashmitsharp/payledger-api/internal/database/memory"
	"github.com/ashmitsharp/payledger-api/internal/handlers"
	"github.com/ashmitsharp/payledger-api/internal/middleware"
	"github.com/ashmitsharp/payledger-api/internal/services"
	"github.com/ashmitsharp/payledger-api/internal/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	cfg, err := config.LoadFromEnv()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Select the store
	var store services.Store
	switch cfg.StoreDriver {
	case config.DriverMemory:
		store = memory.New()
		log.Println("✓ Using in-memory store (data is lost on exit)")
	default:
		if err := database.Migrate(cfg.DatabaseURL); err != nil {
			log.Fatalf("Failed to migrate database: %v", err)
		}
		log.Println("✓ Database migrations applied")

		pool, err := database.Connect(ctx, database.PoolConfig{
			DatabaseURL:    cfg.DatabaseURL,
			MaxConnections: cfg.DBMaxConnections,
			ConnectTimeout: cfg.DBConnectionTimeout,
		})
		if err != nil {
			log.Fatalf("Failed to connect to database: %v", err)
		}
		defer pool.Close()
		store = database.NewStore(pool)
		log.Println("✓ Connected to database successfully")
	}

	// Initialize services
	lookups := services.NewLookupResolver(store)
	ledger := services.NewLedger(store, lookups)
	scheduler := services.NewScheduler(store)
	bills := services.NewBillService(store, ledger, lookups)
	summaries := services.NewSummaryService(ledger.Balances(), scheduler, bills)
	exporter := services.NewExporter(ledger)
	log.Println("✓ Ledger services initialized successfully")

	exportHandler := handlers.NewExportHandler(exporter)
	if cfg.ExportsEnabled() {
		archive, err := services.NewArchiveStorage(cfg.ExportBucket, cfg.S3Region, cfg.AWSEndpoint)
		if err != nil {
			log.Fatalf("Failed to initialize archive storage: %v", err)
		}
		exportHandler = handlers.NewExportHandlerWithArchive(exporter, archive, cfg.ExportURLExpiryMinutes)
		log.Println("✓ Export archive initialized successfully")
	}

	h := &handlers.Handlers{
		Accounts:     handlers.NewAccountHandler(ledger, cfg.CurrencySymbol),
		Transactions: handlers.NewTransactionHandler(ledger, lookups),
		Lookups:      handlers.NewLookupHandler(lookups),
		Schedule:     handlers.NewScheduleHandler(scheduler),
		Bills:        handlers.NewBillHandler(bills, scheduler),
		Summary:      handlers.NewSummaryHandler(summaries, cfg.CurrencySymbol),
		Export:       exportHandler,
	}

	app := fiber.New(fiber.Config{
		AppName:      "payledger API v1.0",
		ErrorHandler: utils.ErrorHandler,
	})

	// Apply global middleware
	app.Use(middleware.Recover(!cfg.IsProduction()))
	app.Use(middleware.RequestLogger())
	app.Use(middleware.CORS())

	// Health check endpoint
	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "payledger-api",
			"store":   cfg.StoreDriver,
		})
	})

	// API v1 routes
	h.Register(app.Group("/v1"))
	log.Println("✓ All routes configured successfully")

	go func() {
		<-ctx.Done()
		log.Println("Shutting down...")
		if err := app.ShutdownWithTimeout(cfg.ShutdownTimeout); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.Port)
	log.Println("")
	log.Printf("🚀 payledger API is running on %s", addr)
	log.Printf("   Health check: http://localhost%s/health", addr)
	log.Printf("   API base: http://localhost%s/v1", addr)
	if err := app.Listen(addr); err != nil {
		log.Fatal(err)
	}
}

package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"party-snap-system/handlers"
	"party-snap-system/models"
	"party-snap-system/services"
	"party-snap-system/store"
	"party-snap-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, reading environment variables directly")
	}

	app := fiber.New(fiber.Config{
		BodyLimit: 16 * 1024 * 1024, // 16MB — photos only, compressed client-side
	})

	app.Use(recover.New())
	app.Use(logger.New())

	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		log.Println("⚠️  ALLOWED_ORIGINS not set, using default: http://localhost:3000")
		allowedOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS,PATCH",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, X-Device-ID",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		log.Fatal("DATABASE_URL environment variable not set")
	}

	if err := utils.InitR2(); err != nil {
		log.Fatal("failed to initialize R2 client:", err)
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		log.Fatal("failed to connect to database:", err)
	}

	if err := db.AutoMigrate(
		&models.Event{},
		&models.Challenge{},
		&models.Participant{},
		&models.Submission{},
		&models.AccessCode{},
	); err != nil {
		log.Fatal("failed to migrate database:", err)
	}

	st := store.NewPostgres(db)

	gameService := services.NewGameService(st, utils.R2Storage{})
	eventService := services.NewEventService(st)
	codeService := services.NewAccessCodeService(st)

	// Testing escape hatch for the license gate; leave unset in production.
	if prefix := os.Getenv("LICENSE_BYPASS_PREFIX"); prefix != "" {
		eventService.BypassPrefix = strings.ToUpper(prefix)
		log.Printf("⚠️  License bypass prefix enabled: %s", eventService.BypassPrefix)
	}

	eventService.StartLifecycleScheduler()

	// Guest routes must register before the secured groups: fiber matches in
	// registration order and the host group mounts its auth at "/".
	handlers.SetupGameRoutes(app, gameService, eventService)
	handlers.SetupEventRoutes(app, eventService, gameService)
	handlers.SetupAdminRoutes(app, codeService)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	port := os.Getenv("PORT")
	if port == "" {
		port = "5300"
	}

	go func() {
		if err := app.Listen(":" + port); err != nil {
			log.Printf("Server error: %v", err)
		}
	}()

	log.Printf("✅ Server running on http://localhost:%s", port)
	log.Println("✅ Event lifecycle scheduler running (every 1m)")

	<-ctx.Done()
	log.Println("Shutting down server...")
	_ = app.Shutdown()
}

package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"

	"gosynth/adapters/masking"
	"gosynth/adapters/postgres"
	"gosynth/adapters/tabular"
	"gosynth/app"
	"gosynth/internal"
	"gosynth/internal/config"
	"gosynth/internal/errors"
	"gosynth/internal/testkit"
	"gosynth/ports"
	"gosynth/ui"
)

// initDatabase initializes the PostgreSQL database connection
func initDatabase(appConfig *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}

	// Test the connection
	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load application configuration
	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if appConfig.Server.GinMode != "" {
		gin.SetMode(appConfig.Server.GinMode)
	}

	logger := internal.DefaultLogger

	kit, err := testkit.NewTestKit()
	if err != nil {
		log.Fatalf("Failed to initialize test kit: %v", err)
	}

	// Pattern sets live in Postgres when configured, in memory otherwise
	var repository ports.PatternSetRepository = kit.PatternSetRepository()
	if appConfig.Database.URL != "" {
		db, err := initDatabase(appConfig)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()

		pgRepo := postgres.NewPatternSetRepository(db)
		if err := pgRepo.InitSchema(context.Background()); err != nil {
			log.Fatalf("Failed to initialize database schema: %v", err)
		}
		repository = pgRepo
		log.Println("Using PostgreSQL pattern set storage")
	} else {
		log.Println("No DATABASE_URL configured, storing pattern sets in memory")
	}

	synthesisService := app.NewSynthesisService(
		tabular.NewReader(),
		repository,
		kit.RNGAdapter(),
		masking.NewHashMasker(appConfig.Synth.MaskLength),
		app.SynthesisDefaults{
			BaseSeed: appConfig.Synth.BaseSeed,
			BinSize:  appConfig.Synth.BinSize,
		},
		logger,
	)
	qualityService := app.NewQualityService(tabular.NewReader(), logger)

	server := ui.NewServer(synthesisService, qualityService, logger)

	// Start the server
	log.Printf("🚀 Starting GoSynth server on port %s", appConfig.Server.Port)
	log.Fatal(server.Start(":" + appConfig.Server.Port))
}

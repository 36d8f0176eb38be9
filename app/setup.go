package app

import (
	"fmt"
	"os"

	"github.com/sahilchouksey/attendance-api/api"
	"github.com/sahilchouksey/attendance-api/config"
	"github.com/sahilchouksey/attendance-api/database"
	"github.com/sahilchouksey/attendance-api/router"
	"github.com/sahilchouksey/attendance-api/services"
	"github.com/sahilchouksey/attendance-api/services/cron"
	"github.com/sahilchouksey/attendance-api/utils/auth"
	"gorm.io/gorm"
)

func SetupAndRunServer() error {

	// Load ENV
	if err := config.LoadENV(); err != nil {
		return err
	}

	getEnv, err := config.Get()
	if err != nil {
		return err
	}

	// Initialize GORM database connection
	store, err := database.StartGORM()
	if err != nil {
		print("Check whether the Postgres is running or not\n")
		return err
	}

	if err := store.Init(); err != nil {
		print("Failed to initialize database tables\n")
		return err
	}

	if err := store.SeedAdmin(); err != nil {
		print("Failed to seed admin account\n")
		return err
	}

	// Initialize Cron Manager (only if enabled via environment variable)
	var cronManager *cron.CronManager
	if os.Getenv("CRON_ENABLED") != "false" { // Default to enabled
		db, ok := store.GetDB().(*gorm.DB)
		if !ok {
			print("Warning: Failed to get database connection for cron jobs\n")
		} else {
			aggregation := services.NewAggregationService(db)
			notifications := services.NewNotificationService(db, aggregation)
			blacklist := auth.NewBlacklistService(db)
			cronManager = cron.NewCronManager(db, getEnv.DEFAULTER_THRESHOLD, notifications, blacklist)
			if err := cronManager.Start(); err != nil {
				print("Warning: Failed to start cron jobs\n")
				print("Error: ", err.Error(), "\n")
				// Don't fail the app, just log the warning
			}
		}
	}

	// Defer Closing DB and stopping cron jobs
	defer func() {
		if cronManager != nil {
			cronManager.Stop()
		}
		store.Close()
	}()

	// Init API
	var server *api.APIServer = api.NewAPIServer(fmt.Sprintf(":%d", getEnv.PORT))
	app := server.GetEngine()

	// Setup Routes (middleware is attached inside)
	router.SetupRoutes(app, store)

	// Get the PORT & Start the Server
	return server.Run()
}

package main

import (
	"fmt"
	"log"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sahilchouksey/attendance-api/database"
)

// Runs GORM auto-migration, then applies the constraints AutoMigrate
// cannot express (partial indexes, check constraints) through the raw
// lib/pq store.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	separator := strings.Repeat("=", 60)
	fmt.Println(separator)
	fmt.Println("Attendance API - Database Migration")
	fmt.Println(separator)

	gormStore, err := database.StartGORM()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer gormStore.Close()

	if err := gormStore.Init(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	fmt.Println("Schema migration completed")

	pqStore, err := database.Start()
	if err != nil {
		log.Fatalf("Failed to open raw connection: %v", err)
	}
	defer pqStore.Close()

	if err := pqStore.ApplyConstraints(); err != nil {
		log.Fatalf("Failed to apply constraints: %v", err)
	}
	fmt.Println("Constraints applied")

	if err := gormStore.HealthCheck(); err != nil {
		log.Fatalf("Database health check failed: %v", err)
	}

	fmt.Println(separator)
	fmt.Println("Migration completed successfully")
	fmt.Println(separator)
}

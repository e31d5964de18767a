// Seed tool: fills a domain with demo sessions and conversions.
package main

import (
	"flag"
	"log"

	"github.com/karloscodes/cartridge"

	"attrify/internal/config"
	"attrify/internal/database"
	"attrify/internal/seeder"
)

func main() {
	domain := flag.String("domain", "demo.attrify.local", "domain to seed (registered if missing)")
	sessions := flag.Int("sessions", 2000, "number of sessions to generate")
	flag.Parse()

	cfg := config.GetConfig()
	if cfg.IsProduction() {
		log.Fatal("Refusing to seed a production database")
	}

	logger := cartridge.NewLogger(cfg, nil)

	dbManager := database.NewDBManager(cfg, logger)
	if err := dbManager.Init(); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	if err := dbManager.MigrateDatabase(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	s := seeder.NewSeeder(dbManager, logger, *sessions)
	if err := s.SeedDemoWebsite(*domain); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

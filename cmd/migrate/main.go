package main

import (
	"flag"
	"log"

	migrate "github.com/rubenv/sql-migrate"

	"github.com/johnquangdev/meeting-notes/internal/infrastructure/database"
	"github.com/johnquangdev/meeting-notes/pkg/config"
)

// Usage: migrate [-dir migrations] [-steps n] up|down
// down rolls back one migration unless -steps says otherwise.
func main() {
	dir := flag.String("dir", "", "migrations directory (default DB_MIGRATIONS_DIR)")
	steps := flag.Int("steps", 0, "number of migrations to run, 0 for all (down defaults to 1)")
	flag.Parse()

	direction := migrate.Up
	switch flag.Arg(0) {
	case "", "up":
	case "down":
		direction = migrate.Down
		if *steps == 0 {
			*steps = 1
		}
	default:
		log.Fatalf("Unknown command %q, expected up or down", flag.Arg(0))
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if *dir == "" {
		*dir = cfg.Database.MigrationsDir
	}

	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	log.Println("✅ Database connected successfully")
	log.Printf("🔄 Running %s migrations from %s/ ...", flag.Arg(0), *dir)

	n, err := database.Migrate(db, *dir, direction, *steps)
	if err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Printf("✅ Successfully ran %d migration(s)!", n)
}

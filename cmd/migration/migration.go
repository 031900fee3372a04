package main

import (
	"database/sql"
	"flag"
	"medbridge-service/internal/app/config"
	"medbridge-service/internal/app/drivers/database"
	"medbridge-service/internal/app/drivers/logger"

	_ "github.com/lib/pq"
	migrate "github.com/rubenv/sql-migrate"
)

func main() {
	dir := flag.String("dir", "internal/migration", "directory holding the migration files")
	down := flag.Bool("down", false, "roll back instead of applying")
	steps := flag.Int("steps", 0, "maximum number of migrations to run, 0 runs all")
	flag.Parse()

	driverConfig := config.NewDriverConfig()
	internalConfig := config.NewInternalConfig()
	log := logger.NewLogrusLogger(internalConfig.App.Env)

	db, err := sql.Open("postgres", database.PostgresDSN(driverConfig))
	if err != nil {
		log.Fatalf("Error opening postgres connection: %v", err)
	}
	defer db.Close()

	direction := migrate.Up
	if *down {
		direction = migrate.Down
	}

	migrations := &migrate.FileMigrationSource{Dir: *dir}
	n, err := migrate.ExecMax(db, "postgres", migrations, direction, *steps)
	if err != nil {
		log.Fatalf("Error executing migration: %v", err)
	}

	log.WithField("direction", directionName(direction)).Infof("Applied %d migrations!", n)
}

func directionName(direction migrate.MigrationDirection) string {
	if direction == migrate.Down {
		return "down"
	}
	return "up"
}

package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"misterfit_platform/cmd/migration/versions"
	"misterfit_platform/misterfit/schema"
	"net/url"
	"os"
	"strings"

	"github.com/go-gormigrate/gormigrate/v2"
	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func postgresDsn(databaseUri string) string {
	parts, err := url.Parse(databaseUri)
	if err != nil {
		log.Fatalf("error parsing db uri: %v", err)
	}
	pwd, _ := parts.User.Password()
	dbname := strings.TrimPrefix(parts.Path, "/")
	return fmt.Sprintf("host=%v user=%v password=%v dbname=%v port=%v", parts.Hostname(), parts.User.Username(), pwd, dbname, parts.Port())
}

func main() {
	envFile := flag.String("env", "", "File to load env variables from. If not specified will just load them from the environment variables already defined.")
	flag.Parse()

	if *envFile != "" {
		err := godotenv.Load(*envFile)
		if err != nil {
			log.Fatalf("error loading .env file '%v': %v", *envFile, err)
		}
	}

	databaseUri := os.Getenv("DATABASE_URI")
	if databaseUri == "" {
		log.Fatal("DATABASE_URI env var must be specified")
	}

	db, err := gorm.Open(postgres.Open(postgresDsn(databaseUri)), &gorm.Config{})
	if err != nil {
		log.Fatalf("error opening database connection: %v", err)
	}

	m := gormigrate.New(db, gormigrate.DefaultOptions, []*gormigrate.Migration{
		{
			ID:      "0_initial_migration",
			Migrate: versions.Migration_0_initial_migration,
		},
	})

	// Fresh databases skip the migration list and create the schema directly.
	m.InitSchema(func(txn *gorm.DB) error {
		return txn.AutoMigrate(schema.AllModels()...)
	})

	if err := m.Migrate(); err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	slog.Info("migration completed successfully")
}

package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"
	"github.com/lac-hong-legacy/learnhub/seed/seeders"
	"github.com/lac-hong-legacy/learnhub/services"
	"gorm.io/gorm"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Parse command line flags
	var (
		seedType = flag.String("type", "all", "Type of seeding: all, catalog, problems, users")
		driver   = flag.String("driver", "", "Database driver: sqlite or postgres (overrides DB_DRIVER)")
		dbPath   = flag.String("db", "", "Database path or DSN (overrides SQLITE_PATH / DATABASE_URL)")
		help     = flag.Bool("help", false, "Show help message")
	)
	flag.Parse()

	if *help {
		showHelp()
		return
	}

	db, err := openDatabase(*driver, *dbPath)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	mainSeeder := seeders.NewMainSeeder(db)

	// Run seeding based on type
	var users []seeders.SeededUser
	switch *seedType {
	case "all":
		log.Println("Running complete database seeding...")
		users, err = mainSeeder.SeedAll()
	case "catalog":
		log.Println("Seeding courses only...")
		err = mainSeeder.SeedCatalogOnly()
	case "problems":
		log.Println("Seeding practice problems only...")
		err = mainSeeder.SeedProblemsOnly()
	case "users":
		log.Println("Seeding demo users only...")
		users, err = mainSeeder.SeedUsersOnly()
	default:
		log.Fatalf("Unknown seed type: %s. Use 'all', 'catalog', 'problems', or 'users'", *seedType)
	}
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	printTokens(users)
	log.Println("Seeding operation completed successfully!")
}

func openDatabase(driver, dsn string) (*gorm.DB, error) {
	if driver == "" {
		driver = os.Getenv("DB_DRIVER")
	}

	switch driver {
	case "postgres":
		if dsn == "" {
			dsn = os.Getenv("DATABASE_URL")
		}
		log.Println("Connecting to postgres")
		return services.OpenPostgres(dsn, 0)
	default:
		if dsn == "" {
			dsn = os.Getenv("SQLITE_PATH")
		}
		if dsn == "" {
			dsn = "learnhub.db"
		}
		log.Printf("Opening database: %s", dsn)
		return services.OpenSqlite(dsn)
	}
}

// printTokens mints a bearer token per demo user when JWT_SECRET is set.
func printTokens(users []seeders.SeededUser) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" || len(users) == 0 {
		return
	}

	jwtSvc := services.NewJWTService(secret)
	for _, u := range users {
		pair, err := jwtSvc.GenerateTokenPair(u.ID)
		if err != nil {
			log.Printf("Failed to mint token for %s: %v", u.Username, err)
			continue
		}
		log.Printf("%s (%s, expires in %ds): Bearer %s", u.Username, u.ID, pair.ExpiresIn, pair.AccessToken)
	}
}

func showHelp() {
	log.Println(`
Database Seeding Tool for learnhub

Usage: go run ./seed [flags]

Flags:
  -type string
        Type of seeding to perform (default "all")
        Options: all, catalog, problems, users
  -driver string
        sqlite or postgres (default DB_DRIVER, then sqlite)
  -db string
        Database path or DSN
  -help
        Show this help message

Examples:
  # Seed everything into ./learnhub.db
  go run ./seed

  # Seed only problems into postgres
  go run ./seed -driver=postgres -type=problems

Environment Variables:
  DB_DRIVER    - sqlite or postgres
  SQLITE_PATH  - Default sqlite path (default: learnhub.db)
  DATABASE_URL - Postgres DSN
  JWT_SECRET   - When set, a token is printed for every demo user
`)
}

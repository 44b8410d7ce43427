package seeders

import (
	"log"

	"gorm.io/gorm"
)

// MainSeeder coordinates all seeding operations
type MainSeeder struct {
	db *gorm.DB
}

// NewMainSeeder creates a new main seeder
func NewMainSeeder(db *gorm.DB) *MainSeeder {
	return &MainSeeder{db: db}
}

// SeedAll runs all seeders in the correct order
func (s *MainSeeder) SeedAll() ([]SeededUser, error) {
	log.Println("Starting database seeding...")

	// 1. Courses, sections and lessons
	if err := s.SeedCatalogOnly(); err != nil {
		log.Printf("Catalog seeding failed: %v", err)
		return nil, err
	}

	// 2. Practice problems
	if err := s.SeedProblemsOnly(); err != nil {
		log.Printf("Problem seeding failed: %v", err)
		return nil, err
	}

	// 3. Demo users
	users, err := s.SeedUsersOnly()
	if err != nil {
		log.Printf("User seeding failed: %v", err)
		return nil, err
	}

	log.Println("Database seeding completed successfully!")
	return users, nil
}

func (s *MainSeeder) SeedCatalogOnly() error {
	return NewCatalogSeeder(s.db).SeedCatalog()
}

func (s *MainSeeder) SeedProblemsOnly() error {
	return NewProblemSeeder(s.db).SeedProblems()
}

func (s *MainSeeder) SeedUsersOnly() ([]SeededUser, error) {
	return NewUserSeeder(s.db).SeedUsers()
}

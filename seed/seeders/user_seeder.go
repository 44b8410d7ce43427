package seeders

import (
	"log"

	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"gorm.io/gorm"
)

// SeededUser is a demo account the caller can mint tokens for.
type SeededUser struct {
	ID       string
	Username string
}

// UserSeeder creates demo learners
type UserSeeder struct {
	db *gorm.DB
}

func NewUserSeeder(db *gorm.DB) *UserSeeder {
	return &UserSeeder{db: db}
}

func (s *UserSeeder) SeedUsers() ([]SeededUser, error) {
	repo := repositories.NewUserRepository(s.db)

	var seeded []SeededUser
	for _, u := range demoUsers() {
		existing, err := repo.GetUserByUsername(u.Username)
		if err == nil {
			log.Printf("User %s already exists, skipping", u.Username)
			seeded = append(seeded, SeededUser{ID: existing.ID, Username: existing.Username})
			continue
		}
		if !repositories.IsNotFound(err) {
			return nil, err
		}

		user := u
		if _, err := repo.CreateUser(&user); err != nil {
			log.Printf("Error creating user %s: %v", u.Username, err)
			return nil, err
		}
		log.Printf("Created user: %s", user.Username)
		seeded = append(seeded, SeededUser{ID: user.ID, Username: user.Username})
	}
	return seeded, nil
}

func demoUsers() []model.User {
	return []model.User{
		{Email: "ada@learnhub.dev", Username: "ada", DisplayName: "Ada"},
		{Email: "linus@learnhub.dev", Username: "linus", DisplayName: "Linus"},
		{Email: "grace@learnhub.dev", Username: "grace", DisplayName: "Grace"},
	}
}

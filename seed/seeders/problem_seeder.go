package seeders

import (
	"fmt"
	"log"

	"github.com/lac-hong-legacy/learnhub/dto"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"gorm.io/gorm"
)

// ProblemSeeder upserts the practice problem set
type ProblemSeeder struct {
	db *gorm.DB
}

func NewProblemSeeder(db *gorm.DB) *ProblemSeeder {
	return &ProblemSeeder{db: db}
}

func (s *ProblemSeeder) SeedProblems() error {
	repo := repositories.NewContentRepository(s.db)

	for _, req := range demoProblems() {
		if errs := dto.Validate(req); errs != nil {
			return fmt.Errorf("invalid problem %q: %s", req.Title, errs[0].Message)
		}
		difficulty, err := model.ParseDifficulty(req.Difficulty)
		if err != nil {
			return err
		}

		problem, err := repo.UpsertProblem(&model.PracticeProblem{
			Title:      req.Title,
			Difficulty: difficulty,
			TestCount:  req.TestCount,
		})
		if err != nil {
			log.Printf("Error upserting problem %s: %v", req.Title, err)
			return err
		}
		log.Printf("Seeded problem: %s (%s)", problem.Slug, problem.Difficulty)
	}

	log.Println("Problem seeding completed successfully")
	return nil
}

func demoProblems() []dto.CreateProblemRequest {
	return []dto.CreateProblemRequest{
		{Title: "Two Sum", Difficulty: "easy", TestCount: 12},
		{Title: "Reverse a String", Difficulty: "EASY", TestCount: 8},
		{Title: "Valid Parentheses", Difficulty: "Easy", TestCount: 15},
		{Title: "Group Anagrams", Difficulty: "medium", TestCount: 20},
		{Title: "LRU Cache", Difficulty: "MEDIUM", TestCount: 25},
		{Title: "Merge K Sorted Lists", Difficulty: "hard", TestCount: 30},
		{Title: "Word Ladder", Difficulty: "HARD", TestCount: 22},
	}
}

package seeders

import (
	"log"

	"github.com/gosimple/slug"
	"github.com/lac-hong-legacy/learnhub/model"
	"github.com/lac-hong-legacy/learnhub/services/repositories"
	"gorm.io/gorm"
)

type courseSeed struct {
	Title       string
	Description string
	Sections    []sectionSeed
}

type sectionSeed struct {
	Title   string
	Lessons []string
}

// CatalogSeeder creates demo courses with their sections and lessons
type CatalogSeeder struct {
	db *gorm.DB
}

func NewCatalogSeeder(db *gorm.DB) *CatalogSeeder {
	return &CatalogSeeder{db: db}
}

// SeedCatalog creates each course that does not exist yet. Courses are keyed by slug.
func (s *CatalogSeeder) SeedCatalog() error {
	for _, course := range demoCourses() {
		created, err := s.seedCourse(course)
		if err != nil {
			log.Printf("Error creating course %s: %v", course.Title, err)
			return err
		}
		if created {
			log.Printf("Created course: %s", course.Title)
		} else {
			log.Printf("Course %s already exists, skipping", course.Title)
		}
	}

	log.Println("Catalog seeding completed successfully")
	return nil
}

func (s *CatalogSeeder) seedCourse(seed courseSeed) (bool, error) {
	created := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		repo := repositories.NewContentRepository(tx)

		_, err := repo.GetCourseBySlug(slug.Make(seed.Title))
		if err == nil {
			return nil
		}
		if !repositories.IsNotFound(err) {
			return err
		}

		course, err := repo.CreateCourse(&model.Course{
			Title:       seed.Title,
			Description: seed.Description,
			IsPublished: true,
		})
		if err != nil {
			return err
		}

		for i, sec := range seed.Sections {
			section, err := repo.CreateSection(&model.Section{
				CourseID: course.ID,
				Title:    sec.Title,
				Order:    i + 1,
			})
			if err != nil {
				return err
			}

			for j, title := range sec.Lessons {
				if _, err := repo.CreateLesson(&model.Lesson{
					CourseID:  course.ID,
					SectionID: section.ID,
					Title:     title,
					Order:     j + 1,
				}); err != nil {
					return err
				}
			}
		}
		created = true
		return nil
	})
	return created, err
}

func demoCourses() []courseSeed {
	return []courseSeed{
		{
			Title:       "Go Fundamentals",
			Description: "Types, control flow, functions and the standard toolchain.",
			Sections: []sectionSeed{
				{Title: "Getting Started", Lessons: []string{"Installing Go", "Hello, World", "Modules and Packages"}},
				{Title: "Core Language", Lessons: []string{"Variables and Types", "Control Flow", "Functions", "Errors as Values"}},
				{Title: "Composite Types", Lessons: []string{"Slices", "Maps", "Structs and Methods"}},
			},
		},
		{
			Title:       "Concurrency in Go",
			Description: "Goroutines, channels and the sync package.",
			Sections: []sectionSeed{
				{Title: "Goroutines", Lessons: []string{"Starting Goroutines", "WaitGroups"}},
				{Title: "Channels", Lessons: []string{"Unbuffered Channels", "Buffered Channels", "Select"}},
				{Title: "Patterns", Lessons: []string{"Worker Pools", "Cancellation with Context"}},
			},
		},
		{
			Title:       "SQL Basics",
			Description: "Querying and modelling relational data.",
			Sections: []sectionSeed{
				{Title: "Queries", Lessons: []string{"SELECT and WHERE", "JOINs", "GROUP BY"}},
				{Title: "Schema", Lessons: []string{"Tables and Keys", "Indexes"}},
			},
		},
	}
}

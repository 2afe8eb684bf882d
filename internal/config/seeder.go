package config

import (
	"log"

	"gorm.io/gorm"

	"github.com/Franklin-Andres-Rodriguez/biblioteca-sistema/internal/adapters/persistence/models"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders. Development only; each seeder is a no-op when
// its table already has rows.
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedBooks(); err != nil {
		log.Printf("⚠️ Book seeder skipped: %v", err)
	}
	if err := s.seedBorrowers(); err != nil {
		log.Printf("⚠️ Borrower seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

func (s *Seeder) seedBooks() error {
	var count int64
	s.db.Model(&models.Book{}).Count(&count)
	if count > 0 {
		return nil
	}

	books := []models.Book{
		{Title: "Cien años de soledad", Author: "Gabriel García Márquez", Genre: "Novela", Available: true},
		{Title: "El Aleph", Author: "Jorge Luis Borges", Genre: "Cuento", Available: true},
		{Title: "La ciudad y los perros", Author: "Mario Vargas Llosa", Genre: "Novela", Available: true},
		{Title: "Rayuela", Author: "Julio Cortázar", Genre: "Novela", Available: true},
		{Title: "Pedro Páramo", Author: "Juan Rulfo", Genre: "Novela", Available: true},
	}
	if err := s.db.Create(&books).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d books", len(books))
	return nil
}

func (s *Seeder) seedBorrowers() error {
	var count int64
	s.db.Model(&models.Borrower{}).Count(&count)
	if count > 0 {
		return nil
	}

	borrowers := []models.Borrower{
		{Name: "María Fernández", Email: "maria.fernandez@example.com", Phone: "555-0101"},
		{Name: "Carlos Jiménez", Email: "carlos.jimenez@example.com", Phone: "555-0102"},
		{Name: "Lucía Ortega", Email: "lucia.ortega@example.com"},
	}
	if err := s.db.Create(&borrowers).Error; err != nil {
		return err
	}

	log.Printf("✅ Seeded %d borrowers", len(borrowers))
	return nil
}

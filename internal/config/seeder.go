package config

import (
	"log"

	"xcr-courtage/internal/adapters/persistence/models"
	"xcr-courtage/internal/pkg/password"

	"gorm.io/gorm"
)

// Seeder handles database seeding
type Seeder struct {
	db *gorm.DB
}

// NewSeeder creates a new seeder instance
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{db: db}
}

// Run executes all seeders
func (s *Seeder) Run() error {
	log.Println("🌱 Running database seeders...")

	if err := s.seedAdminAdvisor(); err != nil {
		log.Printf("⚠️ Admin seeder skipped: %v", err)
	}

	log.Println("✅ Database seeding completed")
	return nil
}

// seedAdminAdvisor seeds the default admin advisor.
// For development only; in production, create the admin through a secure
// process and change this password immediately.
func (s *Seeder) seedAdminAdvisor() error {
	var count int64
	s.db.Model(&models.Advisor{}).Where("role = ?", "ADMIN").Count(&count)
	if count > 0 {
		return nil // Admin already exists
	}

	hashedPassword, err := password.Hash("admin123456")
	if err != nil {
		return err
	}

	admin := &models.Advisor{
		FullName: "Administrateur",
		Email:    "admin@xcr-courtage.fr",
		Password: hashedPassword,
		Role:     "ADMIN",
		IsActive: true,
	}

	if err := s.db.Create(admin).Error; err != nil {
		return err
	}

	log.Printf("✅ Admin advisor created: %s", admin.Email)
	return nil
}

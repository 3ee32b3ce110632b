package main

import (
	"log"

	"github.com/physiohub/clinic-assistant/internal/domain/entities"
	"github.com/physiohub/clinic-assistant/internal/infrastructure/database"
	"github.com/physiohub/clinic-assistant/pkg/config"
)

func main() {
	log.Println("🚀 Starting clinic seed data creation...")

	// Load configuration from .env
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize database
	log.Println("📦 Connecting to database...")
	db, err := database.NewPostgresDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer database.CloseDB(db)

	doctors := []entities.Doctor{
		{Name: "Dr. Anita Rao", Specialty: "Orthopedic Physiotherapy", IsActive: true},
		{Name: "Dr. Marcus Webb", Specialty: "Sports Rehabilitation", IsActive: true},
		{Name: "Dr. Priya Nair", Specialty: "Pediatric Physiotherapy", IsActive: true},
	}
	for i := range doctors {
		if err := db.Create(&doctors[i]).Error; err != nil {
			log.Fatalf("Failed to create doctor %q: %v", doctors[i].Name, err)
		}
		log.Printf("✅ Created doctor: %s (id=%d)", doctors[i].Name, doctors[i].ID)
	}

	patients := []entities.Patient{
		{ID: "PT-1001", Name: "Jordan Lee", Age: 34, Gender: "male", Contact: "+1-555-0101"},
		{ID: "PT-1002", Name: "Sofia Mendes", Age: 52, Gender: "female", Contact: "+1-555-0102"},
		{ID: "PT-1003", Name: "Arjun Patel", Age: 9, Gender: "male", Contact: "+1-555-0103"},
	}
	for i := range patients {
		if err := db.Create(&patients[i]).Error; err != nil {
			log.Fatalf("Failed to create patient %q: %v", patients[i].Name, err)
		}
		log.Printf("✅ Created patient: %s (id=%s)", patients[i].Name, patients[i].ID)
	}

	log.Println("🎉 Seed data created successfully")
}

package database

import (
	"log"

	"mandi-app/internal/models"
)

// SeedBaseData ensures the bill number sequence row exists and loads a
// starter product catalog so a fresh yard can record lots immediately.
func SeedBaseData() {
	// Bill number sequence (single row, id=1)
	var seq models.BillSequence
	if err := DB.FirstOrCreate(&seq, models.BillSequence{ID: 1}).Error; err != nil {
		log.Printf("Failed to seed bill sequence: %v", err)
	}

	// Common produce traded at the yard
	products := []models.Product{
		{Name: "Tomato", Unit: "kg"},
		{Name: "Onion", Unit: "kg"},
		{Name: "Potato", Unit: "kg"},
		{Name: "Brinjal", Unit: "kg"},
		{Name: "Green Chilli", Unit: "kg"},
		{Name: "Banana", Unit: "dozen"},
	}
	for _, p := range products {
		var product models.Product
		if err := DB.FirstOrCreate(&product, models.Product{Name: p.Name}).Error; err != nil {
			log.Printf("Failed to seed product %s: %v", p.Name, err)
			continue
		}
		if product.Unit == "" {
			DB.Model(&product).Update("unit", p.Unit)
		}
	}

	log.Println("Base data seeded successfully.")
}

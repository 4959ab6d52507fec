package main

import (
	"log"
	"os"

	"construction-docs-be/internal/model"
	"construction-docs-be/pkg/database"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// Fixed demo account so the frontend can sign a matching JWT locally.
const demoAccountID = "11111111-1111-1111-1111-111111111111"

func main() {
	// Load Environment Variables
	if err := godotenv.Load(); err != nil {
		log.Println("Info: No .env file found, using system env")
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Fatal("Error: DB_CONNECTION_STRING is not set")
	}

	db, err := database.NewGormDB(dsn)
	if err != nil {
		log.Fatal("Error: Failed to connect to database:", err)
	}

	color.Cyan("Seeding demo workspace...")

	accountID := uuid.MustParse(demoAccountID)

	desc := "Sample workspace with a contract and a specification for trying out chat and analysis"
	project := model.Project{
		AccountId:   accountID,
		Name:        "Riverside Office Tower",
		Description: &desc,
	}

	var existing model.Project
	if err := db.Where("account_id = ? AND name = ?", accountID, project.Name).First(&existing).Error; err == nil {
		color.Yellow("Project '%s' already exists, skipping...", project.Name)
		return
	}

	if err := db.Create(&project).Error; err != nil {
		color.Red("Error creating project: %v", err)
		os.Exit(1)
	}
	color.Green("Created project: %s (%s)", project.Name, project.Id)

	documents := []model.Document{
		{
			ProjectId:        project.Id,
			OriginalFilename: "general-contract.txt",
			StoredPath:       "seeded/general-contract.txt",
			ExtractedText:    "AGREEMENT between Owner and Contractor. The Contractor shall complete all work within 540 calendar days of the notice to proceed. Liquidated damages of $2,500 per calendar day apply beyond the completion date. Concrete shall achieve a compressive strength of 4,000 psi at 28 days.",
			DocumentType:     "contract",
			SizeBytes:        276,
		},
		{
			ProjectId:        project.Id,
			OriginalFilename: "structural-spec-031000.txt",
			StoredPath:       "seeded/structural-spec-031000.txt",
			ExtractedText:    "SECTION 03 10 00 CONCRETE FORMING. Structural concrete shall achieve a minimum compressive strength of 5,000 psi at 28 days. Formwork shall remain in place a minimum of 7 days after placement.",
			DocumentType:     "specification",
			SizeBytes:        198,
		},
	}

	for _, d := range documents {
		if err := db.Create(&d).Error; err != nil {
			color.Red("Error creating document '%s': %v", d.OriginalFilename, err)
			continue
		}
		color.Green("Created document: %s", d.OriginalFilename)
	}

	color.Cyan("Seeding completed. Trigger a conflict analysis to see the strength mismatch found.")
}

// Command main runs the database seeder for Plotshare.
package main

import (
	"flag"
	"log"

	"plotshare/internal/config"
	"plotshare/internal/database"
	"plotshare/internal/seed"
)

func main() {
	numUsers := flag.Int("users", 25, "Number of users to create")
	numPlots := flag.Int("plots", 60, "Number of plots to create")
	shouldClean := flag.Bool("clean", true, "Clean database before seeding")
	flag.Parse()

	log.Println("Database Seeder")
	log.Printf("Target: %d users, %d plots, clean=%v\n", *numUsers, *numPlots, *shouldClean)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := seed.Seed(db, seed.Options{
		NumUsers:    *numUsers,
		NumPlots:    *numPlots,
		ShouldClean: *shouldClean,
	}); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}

	log.Println("All done! Test users have the password: password123")
}

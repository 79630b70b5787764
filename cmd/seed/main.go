package main

import (
	"database/sql"
	"log"

	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	"golang.org/x/crypto/bcrypt"

	"taskflow/config"
)

// seed inserts a demo account with a few tasks for local development.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	db, err := sql.Open("pgx", cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer func() { _ = db.Close() }()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	var userID string
	err = db.QueryRow(`
		INSERT INTO users (email, password_hash, name, bio)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (email) DO UPDATE SET name = EXCLUDED.name
		RETURNING id`,
		"demo@taskflow.dev", string(hash), "Demo User", "Just trying things out.",
	).Scan(&userID)
	if err != nil {
		log.Fatalf("failed to seed user: %v", err)
	}

	tasks := []struct {
		title, description, status, priority string
	}{
		{"Buy milk", "Semi-skimmed, two liters", "pending", "low"},
		{"Write weekly report", "Summarize sprint progress for the team", "in-progress", "high"},
		{"Renew gym membership", "", "completed", "medium"},
	}
	for _, t := range tasks {
		_, err := db.Exec(`
			INSERT INTO tasks (user_id, title, description, status, priority)
			SELECT $1, $2, $3, $4, $5
			WHERE NOT EXISTS (
				SELECT 1 FROM tasks WHERE user_id = $1 AND title = $2
			)`,
			userID, t.title, t.description, t.status, t.priority,
		)
		if err != nil {
			log.Fatalf("failed to seed task %q: %v", t.title, err)
		}
	}

	log.Printf("seeded demo user %s (demo@taskflow.dev / password123) with %d tasks", userID, len(tasks))
}

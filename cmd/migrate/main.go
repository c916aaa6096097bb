package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found")
	}

	// Get database URL
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is not set")
	}

	// Get command
	if len(os.Args) < 2 {
		fmt.Println("Usage: go run main.go [up|drop]")
		os.Exit(1)
	}

	command := os.Args[1]

	// Connect to database
	ctx := context.Background()
	conn, err := pgx.Connect(ctx, dbURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer conn.Close(ctx)

	switch command {
	case "up":
		if err := createTables(ctx, conn); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		fmt.Println("✅ All tables created successfully")

	case "drop":
		if err := dropTables(ctx, conn); err != nil {
			log.Fatalf("Failed to drop tables: %v", err)
		}
		fmt.Println("✅ All tables dropped successfully")

	default:
		fmt.Printf("Unknown command: %s\n", command)
		fmt.Println("Usage: go run main.go [up|drop]")
		os.Exit(1)
	}
}

func createTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS contact_submissions (
			id UUID PRIMARY KEY,
			name VARCHAR(100) NOT NULL,
			email VARCHAR(254) NOT NULL,
			subject VARCHAR(200),
			message TEXT NOT NULL,
			ip_address INET,
			user_agent TEXT,
			status VARCHAR(20) NOT NULL DEFAULT 'new',
			notes TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_submissions_email ON contact_submissions(email)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_submissions_created_at ON contact_submissions(created_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_submissions_status ON contact_submissions(status)`,

		`CREATE TABLE IF NOT EXISTS contact_analytics (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			date DATE NOT NULL UNIQUE,
			total_submissions INTEGER NOT NULL DEFAULT 0,
			unique_visitors INTEGER NOT NULL DEFAULT 0,
			honeypot_catches INTEGER NOT NULL DEFAULT 0,
			rate_limit_hits INTEGER NOT NULL DEFAULT 0,
			avg_response_time_ms INTEGER,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,

		`CREATE TABLE IF NOT EXISTS contact_audit_log (
			id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
			submission_id UUID REFERENCES contact_submissions(id) ON DELETE CASCADE,
			event_type VARCHAR(50) NOT NULL,
			event_data JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_audit_log_submission_id ON contact_audit_log(submission_id)`,
		`CREATE INDEX IF NOT EXISTS idx_contact_audit_log_created_at ON contact_audit_log(created_at DESC)`,

		`CREATE TABLE IF NOT EXISTS contact_daily_ips (
			date DATE NOT NULL,
			ip_address INET NOT NULL,
			PRIMARY KEY (date, ip_address)
		)`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
	}
	fmt.Println("  Created: contact_submissions, contact_analytics, contact_audit_log, contact_daily_ips")

	return nil
}

func dropTables(ctx context.Context, conn *pgx.Conn) error {
	queries := []string{
		`DROP TABLE IF EXISTS contact_audit_log CASCADE`,
		`DROP TABLE IF EXISTS contact_daily_ips CASCADE`,
		`DROP TABLE IF EXISTS contact_analytics CASCADE`,
		`DROP TABLE IF EXISTS contact_submissions CASCADE`,
	}

	for _, query := range queries {
		if _, err := conn.Exec(ctx, query); err != nil {
			return fmt.Errorf("failed to execute query: %w", err)
		}
		fmt.Printf("  Dropped: %s\n", query)
	}

	return nil
}

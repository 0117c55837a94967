package postgres

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/prakida/festival-backend/config"

	_ "github.com/lib/pq"
)

func NewPostgresDB(cfg *config.DatabaseConfig) (*sql.DB, error) {
	connStr := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
	)

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to PostgreSQL")
	return db, nil
}

func RunMigrations(db *sql.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS registrations (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			team_name VARCHAR(255) NOT NULL,
			sport VARCHAR(100) NOT NULL,
			category VARCHAR(100) NOT NULL,
			team_unique_id VARCHAR(64) UNIQUE NOT NULL,
			payment_status VARCHAR(32) DEFAULT 'pending',
			payment_amount NUMERIC(10,2) DEFAULT 0,
			ticket_pdf_url TEXT,
			tiqr_booking_uid VARCHAR(128),
			tiqr_booking_id VARCHAR(128),
			created_via_tiqr BOOLEAN DEFAULT FALSE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS team_members (
			id SERIAL PRIMARY KEY,
			registration_id VARCHAR(64) REFERENCES registrations(id),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(32),
			gender VARCHAR(8),
			role VARCHAR(64),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS tickets (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			price NUMERIC(10,2) NOT NULL,
			payment_status VARCHAR(32) DEFAULT 'pending',
			qr_code_url TEXT,
			tiqr_booking_uid VARCHAR(128),
			tiqr_booking_id VARCHAR(128),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS accommodation_bookings (
			id VARCHAR(64) PRIMARY KEY,
			user_id VARCHAR(128) NOT NULL,
			college VARCHAR(255),
			team_name VARCHAR(255),
			preferences TEXT,
			payment_status VARCHAR(32) DEFAULT '',
			payment_url TEXT,
			provider_order_id VARCHAR(128),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE TABLE IF NOT EXISTS accommodation_members (
			id SERIAL PRIMARY KEY,
			booking_id VARCHAR(64) REFERENCES accommodation_bookings(id),
			name VARCHAR(255) NOT NULL,
			email VARCHAR(255) NOT NULL,
			phone VARCHAR(32),
			gender VARCHAR(8),
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		// Indexes
		`CREATE INDEX IF NOT EXISTS idx_registrations_user_id ON registrations(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_registrations_booking_uid ON registrations(tiqr_booking_uid)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_registration_id ON team_members(registration_id)`,
		`CREATE INDEX IF NOT EXISTS idx_team_members_email ON team_members(LOWER(email))`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_user_id ON tickets(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tickets_booking_uid ON tickets(tiqr_booking_uid)`,
		`CREATE INDEX IF NOT EXISTS idx_accommodation_user_id ON accommodation_bookings(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_accommodation_status ON accommodation_bookings(payment_status)`,
	}

	for _, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("failed to execute migration: %v", err)
		}
	}

	log.Println("Database migrations completed successfully")
	return nil
}

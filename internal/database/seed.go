package database

import (
	"database/sql"
	"fmt"
	"log/slog"

	"golang.org/x/crypto/bcrypt"
)

// seedCategories is the fixed browsing taxonomy for published advertorials.
var seedCategories = []struct {
	name, slug, description string
}{
	{"Home & Cleaning", "home", "Household helpers and cleaning gear."},
	{"Beauty & Care", "beauty", "Personal care and beauty finds."},
	{"Health & Wellness", "health", "Everyday wellness products."},
	{"Kitchen", "kitchen", "Cooking and kitchen gadgets."},
	{"Gadgets", "gadgets", "Tech and gadgets for daily life."},
}

// Seed populates the database with initial development data: a default
// admin user and the category taxonomy. The admin will be prompted to set
// up 2FA on first login (totp_enabled = false).
func Seed(db *sql.DB) error {
	// Check if any users exist already.
	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM users").Scan(&count); err != nil {
		return fmt.Errorf("seed check users: %w", err)
	}

	if count > 0 {
		slog.Info("database already seeded, skipping")
		return nil
	}

	// Hash the default admin password.
	hash, err := bcrypt.GenerateFromPassword([]byte("admin"), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("seed bcrypt: %w", err)
	}

	// Insert default admin user. 2FA is not enabled — they must set it up
	// on first login.
	_, err = db.Exec(`
		INSERT INTO users (email, password_hash, display_name, role, totp_enabled)
		VALUES ($1, $2, $3, $4, $5)
	`, "admin@adverpress.local", string(hash), "Admin", "admin", false)
	if err != nil {
		return fmt.Errorf("seed insert admin: %w", err)
	}

	for i, c := range seedCategories {
		_, err = db.Exec(`
			INSERT INTO categories (name, slug, description, sort_order)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (slug) DO NOTHING
		`, c.name, c.slug, c.description, i)
		if err != nil {
			return fmt.Errorf("seed category %s: %w", c.slug, err)
		}
	}

	slog.Info("database seeded with default admin user and categories",
		"email", "admin@adverpress.local",
		"password", "admin",
	)

	return nil
}

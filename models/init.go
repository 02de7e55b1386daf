package models

import (
	"os"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// CreateDefaultAdmin seeds the bootstrap admin account so a fresh deploy
// can log in and register the rest of the staff. Runs on every startup;
// FirstOrCreate keeps it idempotent.
func CreateDefaultAdmin(db *gorm.DB) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@vpcrm.local"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "changeme"
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Employee{
		Email:        email,
		PasswordHash: string(hash),
		Name:         "Administrator",
		Role:         RoleAdmin,
		IsActive:     true,
	}
	return db.FirstOrCreate(&admin, "email = ?", admin.Email).Error
}

// user.go - Defines the User model for the database

package models // Declares the package name

type User struct { // User struct represents a registered user in the database
	ID       uint   `gorm:"primaryKey" json:"id"`              // Unique user ID (primary key)
	Username string `gorm:"unique;not null" json:"username"`   // Login name (must be unique, cannot be null)
	Email    string `gorm:"unique;not null" json:"email"`      // User's email (must be unique, cannot be null)
	Password string `gorm:"column:password;not null" json:"-"` // bcrypt hash, never the raw password
}

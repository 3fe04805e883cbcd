// users.go - Credential store: registration, password checks, lookups

package repository

import (
	"context"
	"errors"
	"fmt"

	"go-forecast-backend/models"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UserRepository struct {
	db     *gorm.DB
	writer Writer
	cost   int // bcrypt work factor
}

func NewUserRepository(db *gorm.DB, writer Writer, bcryptCost int) *UserRepository {
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &UserRepository{db: db, writer: writer, cost: bcryptCost}
}

// Register hashes the password once and inserts the user. A taken username
// or email yields models.ErrDuplicateIdentity and no row is written.
func (r *UserRepository) Register(ctx context.Context, username, email, rawPassword string) (uint, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(rawPassword), r.cost)
	if err != nil {
		return 0, fmt.Errorf("hash password: %w", err)
	}

	user := models.User{Username: username, Email: email, Password: string(hash)}
	err = r.writer.Do(ctx, func() error {
		return r.db.WithContext(ctx).Create(&user).Error
	})
	if err != nil {
		if isDuplicate(err) {
			return 0, fmt.Errorf("register %q: %w", username, models.ErrDuplicateIdentity)
		}
		return 0, fmt.Errorf("register %q: %w", username, err)
	}
	return user.ID, nil
}

// Verify returns the user only when the password matches the stored hash.
// Unknown users and wrong passwords both yield models.ErrInvalidCredentials.
func (r *UserRepository) Verify(ctx context.Context, username, rawPassword string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrInvalidCredentials
	}
	if err != nil {
		return nil, fmt.Errorf("find user %q: %w", username, err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(rawPassword)); err != nil {
		return nil, models.ErrInvalidCredentials
	}
	return &user, nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user %d: %w", id, err)
	}
	return &user, nil
}

// UsernameTaken is the pre-insert check the register form uses to show a
// friendly message; the unique index remains the real guard.
func (r *UserRepository) UsernameTaken(ctx context.Context, username string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", username).Count(&count).Error; err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	return count > 0, nil
}

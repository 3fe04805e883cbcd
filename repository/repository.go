// Package repository holds the credential and forecast stores. Every write
// goes through a Writer so that lock contention is retried in one place.
package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

// Writer runs a single write, retrying it while the store is locked.
// database.LockRetrier is the production implementation.
type Writer interface {
	Do(ctx context.Context, write func() error) error
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

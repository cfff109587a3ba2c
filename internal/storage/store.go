package storage

import (
	"context"
	"errors"

	"CareerPortal_ResultsProject/internal/models"
)

var (
	ErrNotFound   = errors.New("record not found")
	ErrCodeExists = errors.New("access code already exists")
	ErrDuplicate  = errors.New("record already exists")
)

// ProfilePatch lists the fields to overwrite; nil fields are left untouched.
type ProfilePatch struct {
	TokenBalance *int
	Additional   *models.AdditionalProfile
}

// ProfileStore is the external record store holding one row per access code.
type ProfileStore interface {
	// FindByCode returns ErrNotFound when no record carries the code.
	FindByCode(ctx context.Context, code string) (*models.UserProfile, error)
	Get(ctx context.Context, id string) (*models.UserProfile, error)
	Update(ctx context.Context, id string, patch ProfilePatch) (*models.UserProfile, error)
}

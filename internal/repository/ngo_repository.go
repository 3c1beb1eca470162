package repository

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"sharebite/internal/model"
)

// NgoRepository defines NGO persistence operations.
type NgoRepository interface {
	Create(ctx context.Context, ngo *model.Ngo) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Ngo, error)
	FindByEmail(ctx context.Context, email string) (*model.Ngo, error)
}

type ngoRepository struct {
	db *gorm.DB
}

// NewNgoRepository creates a new NGO repository.
func NewNgoRepository(db *gorm.DB) NgoRepository {
	return &ngoRepository{db: db}
}

// Create creates a new NGO.
func (r *ngoRepository) Create(ctx context.Context, ngo *model.Ngo) error {
	ngo.Email = strings.ToLower(ngo.Email)
	return r.db.WithContext(ctx).Create(ngo).Error
}

// FindByID finds an NGO by ID.
func (r *ngoRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Ngo, error) {
	var ngo model.Ngo
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&ngo).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

// FindByEmail finds an NGO by email. Emails are stored and matched lowercase.
func (r *ngoRepository) FindByEmail(ctx context.Context, email string) (*model.Ngo, error) {
	var ngo model.Ngo
	if err := r.db.WithContext(ctx).Where("email = ?", strings.ToLower(email)).First(&ngo).Error; err != nil {
		return nil, err
	}
	return &ngo, nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wardrobeapi/models"
)

type TryOnRepository struct {
	db *gorm.DB
}

func NewTryOnRepository(db *gorm.DB) *TryOnRepository {
	return &TryOnRepository{db: db}
}

func (r *TryOnRepository) Create(ctx context.Context, generation *models.TryOnGeneration) error {
	if err := r.db.WithContext(ctx).Create(generation).Error; err != nil {
		return fmt.Errorf("create try-on generation: %w", err)
	}
	return nil
}

// Find loads a generation, restricted to its owner when userID is non-zero.
func (r *TryOnRepository) Find(ctx context.Context, id uint, userID uint) (*models.TryOnGeneration, error) {
	query := r.db.WithContext(ctx)
	if userID != 0 {
		query = query.Where("user_account_id = ?", userID)
	}
	var generation models.TryOnGeneration
	err := query.First(&generation, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find try-on generation %d: %w", id, err)
	}
	return &generation, nil
}

func (r *TryOnRepository) Save(ctx context.Context, generation *models.TryOnGeneration) error {
	if err := r.db.WithContext(ctx).Save(generation).Error; err != nil {
		return fmt.Errorf("save try-on generation %d: %w", generation.ID, err)
	}
	return nil
}

package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"wardrobeapi/models"
)

var ErrNotFound = errors.New("record not found")

// ClosetRepository persists clothing items and outfits. It only inserts and
// selects; item and outfit edits stay in the request-scoped store.
type ClosetRepository interface {
	ListItems(ctx context.Context) ([]models.ClothingItem, error)
	InsertItem(ctx context.Context, item *models.ClothingItem) error
	GetItem(ctx context.Context, id string) (*models.ClothingItem, error)
	ListOutfits(ctx context.Context) ([]models.Outfit, error)
	InsertOutfit(ctx context.Context, outfit *models.Outfit) error
}

type GormClosetRepository struct {
	db *gorm.DB

	// ownerID scopes reads and writes to one user, nil means the shared closet.
	ownerID *uint
}

func NewClosetRepository(db *gorm.DB, ownerID *uint) *GormClosetRepository {
	return &GormClosetRepository{db: db, ownerID: ownerID}
}

func (r *GormClosetRepository) scoped(ctx context.Context) *gorm.DB {
	query := r.db.WithContext(ctx)
	if r.ownerID != nil {
		query = query.Where("owner_id = ?", *r.ownerID)
	}
	return query
}

func (r *GormClosetRepository) ListItems(ctx context.Context) ([]models.ClothingItem, error) {
	var items []models.ClothingItem
	if err := r.scoped(ctx).Order("created_at DESC, id DESC").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list clothing items: %w", err)
	}
	for i := range items {
		items[i].NormalizeTags()
	}
	return items, nil
}

func (r *GormClosetRepository) InsertItem(ctx context.Context, item *models.ClothingItem) error {
	if item.ID == "" {
		return errors.New("insert clothing item: missing id")
	}
	item.NormalizeTags()
	item.OwnerID = r.ownerID
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("insert clothing item: %w", err)
	}
	return nil
}

func (r *GormClosetRepository) GetItem(ctx context.Context, id string) (*models.ClothingItem, error) {
	var item models.ClothingItem
	err := r.scoped(ctx).Where("id = ?", id).First(&item).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get clothing item %s: %w", id, err)
	}
	item.NormalizeTags()
	return &item, nil
}

func (r *GormClosetRepository) ListOutfits(ctx context.Context) ([]models.Outfit, error) {
	var outfits []models.Outfit
	if err := r.scoped(ctx).Order("created_at DESC, id DESC").Find(&outfits).Error; err != nil {
		return nil, fmt.Errorf("list outfits: %w", err)
	}
	for i := range outfits {
		normalizeOutfit(&outfits[i])
	}
	return outfits, nil
}

func (r *GormClosetRepository) InsertOutfit(ctx context.Context, outfit *models.Outfit) error {
	if outfit.ID == "" {
		return errors.New("insert outfit: missing id")
	}
	normalizeOutfit(outfit)
	outfit.OwnerID = r.ownerID
	if err := r.db.WithContext(ctx).Create(outfit).Error; err != nil {
		return fmt.Errorf("insert outfit: %w", err)
	}
	return nil
}

func normalizeOutfit(outfit *models.Outfit) {
	if outfit.Items == nil {
		outfit.Items = outfit.CloneItems()
	}
	for i := range outfit.Items {
		if outfit.Items[i].StyleTags == nil {
			outfit.Items[i].StyleTags = []string{}
		}
		if outfit.Items[i].MoodTags == nil {
			outfit.Items[i].MoodTags = []string{}
		}
	}
}

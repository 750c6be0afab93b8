package models

import (
	"time"

	"gorm.io/datatypes"
)

type ClothingItem struct {
	ID         string                      `gorm:"primaryKey;size:26" json:"id"`
	Name       string                      `gorm:"not null" json:"name"`
	Category   Category                    `gorm:"not null;index" json:"category"`
	Color      string                      `json:"color"`
	Brand      string                      `json:"brand"`
	Season     Season                      `json:"season"`
	Fabric     string                      `json:"fabric"`
	Occasion   Occasion                    `json:"occasion"`
	ImageURL   string                      `gorm:"type:text" json:"image_url"`
	DataAIHint *string                     `json:"data_ai_hint"`
	StyleTags  datatypes.JSONSlice[string] `json:"style_tags"`
	MoodTags   datatypes.JSONSlice[string] `json:"mood_tags"`
	Pinned     bool                        `gorm:"default:false" json:"pinned"`
	OwnerID    *uint                       `gorm:"index" json:"-"`
	CreatedAt  time.Time                   `gorm:"index" json:"created_at"`
	UpdatedAt  time.Time                   `json:"updated_at"`
}

func (ClothingItem) TableName() string {
	return "clothing_items"
}

// Snapshot copies every attribute by value, tags included, so later edits to the
// item never reach outfits built from it.
func (item ClothingItem) Snapshot() ClothingItemSnapshot {
	snapshot := ClothingItemSnapshot{
		ID:        item.ID,
		Name:      item.Name,
		Category:  item.Category,
		Color:     item.Color,
		Brand:     item.Brand,
		Season:    item.Season,
		Fabric:    item.Fabric,
		Occasion:  item.Occasion,
		ImageURL:  item.ImageURL,
		StyleTags: append([]string{}, item.StyleTags...),
		MoodTags:  append([]string{}, item.MoodTags...),
		Pinned:    item.Pinned,
		CreatedAt: item.CreatedAt,
	}
	if item.DataAIHint != nil {
		hint := *item.DataAIHint
		snapshot.DataAIHint = &hint
	}
	return snapshot
}

// NormalizeTags replaces missing tag lists with empty ones.
func (item *ClothingItem) NormalizeTags() {
	if item.StyleTags == nil {
		item.StyleTags = datatypes.JSONSlice[string]{}
	}
	if item.MoodTags == nil {
		item.MoodTags = datatypes.JSONSlice[string]{}
	}
}

type ClothingItemSnapshot struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Category   Category  `json:"category"`
	Color      string    `json:"color"`
	Brand      string    `json:"brand"`
	Season     Season    `json:"season"`
	Fabric     string    `json:"fabric"`
	Occasion   Occasion  `json:"occasion"`
	ImageURL   string    `json:"image_url"`
	DataAIHint *string   `json:"data_ai_hint"`
	StyleTags  []string  `json:"style_tags"`
	MoodTags   []string  `json:"mood_tags"`
	Pinned     bool      `json:"pinned"`
	CreatedAt  time.Time `json:"created_at"`
}

func (s ClothingItemSnapshot) clone() ClothingItemSnapshot {
	out := s
	out.StyleTags = append([]string{}, s.StyleTags...)
	out.MoodTags = append([]string{}, s.MoodTags...)
	if s.DataAIHint != nil {
		hint := *s.DataAIHint
		out.DataAIHint = &hint
	}
	return out
}

type Outfit struct {
	ID        string                                    `gorm:"primaryKey;size:26" json:"id"`
	Name      string                                    `gorm:"not null" json:"name"`
	Occasion  Occasion                                  `json:"occasion"`
	Items     datatypes.JSONSlice[ClothingItemSnapshot] `json:"items"`
	Pinned    bool                                      `gorm:"default:false" json:"pinned"`
	OwnerID   *uint                                     `gorm:"index" json:"-"`
	CreatedAt time.Time                                 `gorm:"index" json:"created_at"`
	UpdatedAt time.Time                                 `json:"updated_at"`
}

// CloneItems returns a deep copy of the outfit's snapshots.
func (o Outfit) CloneItems() datatypes.JSONSlice[ClothingItemSnapshot] {
	items := make(datatypes.JSONSlice[ClothingItemSnapshot], 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, item.clone())
	}
	return items
}

package wardrobe

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"gorm.io/datatypes"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/repository"
	"wardrobeapi/services"
)

var (
	ErrItemNotFound   = errors.New("clothing item not found")
	ErrOutfitNotFound = errors.New("outfit not found")
)

// CategoryAll disables category filtering.
const CategoryAll = "All"

// Store is the request-scoped view of one closet. It is the only place items
// and outfits are created; persistence goes through the repository.
type Store struct {
	repo repository.ClosetRepository

	mu        sync.RWMutex
	items     []models.ClothingItem
	outfits   []models.Outfit
	styleTags []string
	moodTags  []string
	entropy   *ulid.MonotonicEntropy
}

func NewStore(repo repository.ClosetRepository) *Store {
	return &Store{
		repo:    repo,
		entropy: ulid.Monotonic(rand.Reader, 0),
	}
}

// Load fetches items and outfits concurrently. A failed fetch is logged and
// leaves that collection empty; the joined fetch errors are returned for callers
// that cannot serve a partial closet.
func (s *Store) Load(ctx context.Context) error {
	logger := logging.FromContext(ctx)

	var (
		wg         sync.WaitGroup
		items      []models.ClothingItem
		outfits    []models.Outfit
		itemsErr   error
		outfitsErr error
	)
	wg.Add(2)
	go func() {
		defer wg.Done()
		items, itemsErr = s.repo.ListItems(ctx)
	}()
	go func() {
		defer wg.Done()
		outfits, outfitsErr = s.repo.ListOutfits(ctx)
	}()
	wg.Wait()

	if itemsErr != nil {
		logger.Error("failed to load clothing items", "error", itemsErr)
		items = nil
	}
	if outfitsErr != nil {
		logger.Error("failed to load outfits", "error", outfitsErr)
		outfits = nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.outfits = outfits
	s.recomputeTags()
	return errors.Join(itemsErr, outfitsErr)
}

func (s *Store) newID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(time.Now()), s.entropy).String()
}

// AddClothingItem assigns an id, persists the draft and prepends the stored record.
func (s *Store) AddClothingItem(ctx context.Context, draft models.ClothingItem) (models.ClothingItem, error) {
	item := draft
	item.ID = s.newID()
	item.Pinned = false
	item.StyleTags = datatypes.JSONSlice[string](dedupeTags(draft.StyleTags))
	item.MoodTags = datatypes.JSONSlice[string](dedupeTags(draft.MoodTags))

	if err := s.repo.InsertItem(ctx, &item); err != nil {
		return models.ClothingItem{}, err
	}
	confirmed, err := s.repo.GetItem(ctx, item.ID)
	if err != nil {
		logging.FromContext(ctx).Warn("re-read of inserted item failed, using local copy", "id", item.ID, "error", err)
		confirmed = &item
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]models.ClothingItem{*confirmed}, s.items...)
	s.recomputeTags()
	return *confirmed, nil
}

// dedupeTags keeps caller tags as sent, dropping blank and exact duplicates.
func dedupeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		if strings.TrimSpace(tag) == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// UpdateClothingItem replaces an item by id in memory only.
func (s *Store) UpdateClothingItem(item models.ClothingItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == item.ID {
			item.StyleTags = datatypes.JSONSlice[string](dedupeTags(item.StyleTags))
			item.MoodTags = datatypes.JSONSlice[string](dedupeTags(item.MoodTags))
			s.items[i] = item
			s.recomputeTags()
			return nil
		}
	}
	return ErrItemNotFound
}

// RemoveClothingItem drops an item in memory only. Outfits keep their snapshots.
func (s *Store) RemoveClothingItem(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items = append(s.items[:i], s.items[i+1:]...)
			s.recomputeTags()
			return nil
		}
	}
	return ErrItemNotFound
}

// CreateOutfit snapshots the given items by value and persists the outfit.
func (s *Store) CreateOutfit(ctx context.Context, name string, occasion models.Occasion, items []models.ClothingItemSnapshot) (models.Outfit, error) {
	draft := models.Outfit{Items: items}
	outfit := models.Outfit{
		ID:       s.newID(),
		Name:     name,
		Occasion: occasion,
		Items:    draft.CloneItems(),
		Pinned:   false,
	}
	if err := s.repo.InsertOutfit(ctx, &outfit); err != nil {
		return models.Outfit{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.outfits = append([]models.Outfit{outfit}, s.outfits...)
	return outfit, nil
}

// CreateOutfitFromItems resolves closet item ids and snapshots them in order.
func (s *Store) CreateOutfitFromItems(ctx context.Context, name string, occasion models.Occasion, itemIDs []string) (models.Outfit, error) {
	snapshots := make([]models.ClothingItemSnapshot, 0, len(itemIDs))
	for _, id := range itemIDs {
		item, ok := s.GetClothingItem(id)
		if !ok {
			return models.Outfit{}, fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		snapshots = append(snapshots, item.Snapshot())
	}
	return s.CreateOutfit(ctx, name, occasion, snapshots)
}

// UpdateOutfit replaces an outfit by id in memory only.
func (s *Store) UpdateOutfit(outfit models.Outfit) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.outfits {
		if s.outfits[i].ID == outfit.ID {
			s.outfits[i] = outfit
			return nil
		}
	}
	return ErrOutfitNotFound
}

// ClothingItems returns items newest first.
func (s *Store) ClothingItems() []models.ClothingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.ClothingItem{}, s.items...)
}

func (s *Store) Outfits() []models.Outfit {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.Outfit{}, s.outfits...)
}

func (s *Store) GetClothingItem(id string) (models.ClothingItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if item.ID == id {
			return item, true
		}
	}
	return models.ClothingItem{}, false
}

func (s *Store) GetOutfit(id string) (models.Outfit, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, outfit := range s.outfits {
		if outfit.ID == id {
			return outfit, true
		}
	}
	return models.Outfit{}, false
}

// AllStyleTags is the de-duplicated union of every item's style tags.
func (s *Store) AllStyleTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.styleTags...)
}

// AllMoodTags is the de-duplicated union of every item's mood tags.
func (s *Store) AllMoodTags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.moodTags...)
}

// ItemNames lists item names in closet order, as sent to the stylist prompt.
func (s *Store) ItemNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.items))
	for _, item := range s.items {
		names = append(names, item.Name)
	}
	return names
}

// FilterItems narrows the closet by category and a case-insensitive search over
// name, brand and color. An empty category or CategoryAll matches everything.
func (s *Store) FilterItems(category string, search string) []models.ClothingItem {
	search = strings.ToLower(strings.TrimSpace(search))
	s.mu.RLock()
	defer s.mu.RUnlock()

	filtered := []models.ClothingItem{}
	for _, item := range s.items {
		if category != "" && category != CategoryAll && string(item.Category) != category {
			continue
		}
		if search != "" &&
			!strings.Contains(strings.ToLower(item.Name), search) &&
			!strings.Contains(strings.ToLower(item.Brand), search) &&
			!strings.Contains(strings.ToLower(item.Color), search) {
			continue
		}
		filtered = append(filtered, item)
	}
	return filtered
}

// MatchSuggestion returns the closet items whose names appear in the suggestion.
func (s *Store) MatchSuggestion(suggestion string) []models.ClothingItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, len(s.items))
	for i, item := range s.items {
		names[i] = item.Name
	}
	matched := []models.ClothingItem{}
	for _, i := range services.MatchItems(suggestion, names) {
		matched = append(matched, s.items[i])
	}
	return matched
}

// recomputeTags must be called with mu held.
func (s *Store) recomputeTags() {
	s.styleTags = unionTags(s.items, func(item models.ClothingItem) []string { return item.StyleTags })
	s.moodTags = unionTags(s.items, func(item models.ClothingItem) []string { return item.MoodTags })
}

func unionTags(items []models.ClothingItem, tags func(models.ClothingItem) []string) []string {
	seen := make(map[string]struct{})
	union := []string{}
	for _, item := range items {
		for _, tag := range tags(item) {
			if _, ok := seen[tag]; ok {
				continue
			}
			seen[tag] = struct{}{}
			union = append(union, tag)
		}
	}
	return union
}

package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/dbhelper"
	"wardrobeapi/models"
)

func TestInsertAndListItemsNewestFirst(t *testing.T) {
	db := dbhelper.SetupTestDB()
	repo := NewClosetRepository(db, nil)
	ctx := context.Background()

	older := &models.ClothingItem{ID: "01J00000000000000000000001", Name: "Jeans", Category: models.CategoryBottoms, CreatedAt: time.Now().Add(-time.Hour)}
	newer := &models.ClothingItem{ID: "01J00000000000000000000002", Name: "Red Scarf", Category: models.CategoryAccessories, StyleTags: []string{"bohemian"}}
	require.NoError(t, repo.InsertItem(ctx, older))
	require.NoError(t, repo.InsertItem(ctx, newer))

	items, err := repo.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Red Scarf", items[0].Name)
	assert.Equal(t, []string{"bohemian"}, []string(items[0].StyleTags))
	// missing tags come back as empty lists
	assert.NotNil(t, items[1].StyleTags)
	assert.Len(t, items[1].MoodTags, 0)
}

func TestInsertItemRequiresID(t *testing.T) {
	repo := NewClosetRepository(dbhelper.SetupTestDB(), nil)
	err := repo.InsertItem(context.Background(), &models.ClothingItem{Name: "No id"})
	assert.Error(t, err)
}

func TestOwnerScope(t *testing.T) {
	db := dbhelper.SetupTestDB()
	ctx := context.Background()
	alice, bob := uint(1), uint(2)

	require.NoError(t, NewClosetRepository(db, &alice).InsertItem(ctx, &models.ClothingItem{ID: "01J00000000000000000000010", Name: "Blazer", Category: models.CategoryOuterwear}))
	require.NoError(t, NewClosetRepository(db, &bob).InsertItem(ctx, &models.ClothingItem{ID: "01J00000000000000000000011", Name: "Sneakers", Category: models.CategoryFootwear}))

	aliceItems, err := NewClosetRepository(db, &alice).ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, aliceItems, 1)
	assert.Equal(t, "Blazer", aliceItems[0].Name)

	_, err = NewClosetRepository(db, &alice).GetItem(ctx, "01J00000000000000000000011")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := NewClosetRepository(db, nil).ListItems(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestOutfitItemsRoundTrip(t *testing.T) {
	db := dbhelper.SetupTestDB()
	repo := NewClosetRepository(db, nil)
	ctx := context.Background()

	itemA := models.ClothingItem{ID: "01J00000000000000000000020", Name: "Linen Shirt", Category: models.CategoryTops, StyleTags: []string{"minimalist"}}
	itemB := models.ClothingItem{ID: "01J00000000000000000000021", Name: "Chinos", Category: models.CategoryBottoms, MoodTags: []string{"relaxed"}}
	outfit := &models.Outfit{
		ID:       "01J00000000000000000000022",
		Name:     "Brunch",
		Occasion: models.OccasionCasual,
		Items:    []models.ClothingItemSnapshot{itemA.Snapshot(), itemB.Snapshot()},
	}
	require.NoError(t, repo.InsertOutfit(ctx, outfit))

	var raw string
	require.NoError(t, db.Raw("SELECT items FROM outfits WHERE id = ?", outfit.ID).Scan(&raw).Error)
	assert.Contains(t, raw, `"name":"Linen Shirt"`)

	outfits, err := repo.ListOutfits(ctx)
	require.NoError(t, err)
	require.Len(t, outfits, 1)
	got := outfits[0]
	assert.Equal(t, "Brunch", got.Name)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "Linen Shirt", got.Items[0].Name)
	assert.Equal(t, []string{"minimalist"}, got.Items[0].StyleTags)
	assert.Equal(t, "Chinos", got.Items[1].Name)
	assert.Equal(t, []string{"relaxed"}, got.Items[1].MoodTags)
	assert.Equal(t, []string{}, got.Items[1].StyleTags)
}

package dbhelper

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
)

func TestSetupTestDBIsolated(t *testing.T) {
	first := SetupTestDB()
	second := SetupTestDB()

	require.NoError(t, first.Create(&models.UserAccount{Name: "a", Email: "a@example.com", PasswordHash: "x"}).Error)

	var count int64
	require.NoError(t, second.Model(&models.UserAccount{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestCleanerEmptiesTables(t *testing.T) {
	db := SetupTestDB()
	cleaner := SetupCleaner(db)

	require.NoError(t, db.Create(&models.ClothingItem{ID: "01HZX0000000000000000000AA", Name: "Scarf", Category: models.CategoryAccessories}).Error)
	require.NoError(t, db.Create(&models.Outfit{ID: "01HZX0000000000000000000AB", Name: "Brunch"}).Error)

	cleaner()

	var items, outfits int64
	db.Model(&models.ClothingItem{}).Count(&items)
	db.Model(&models.Outfit{}).Count(&outfits)
	assert.Equal(t, int64(0), items)
	assert.Equal(t, int64(0), outfits)
}

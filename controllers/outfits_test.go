package controllers

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/models"
	"wardrobeapi/test"
)

func TestCreateOutfitWithSnapshots(t *testing.T) {
	s := setupTestServer(t)
	in := models.OutfitIn{
		Name:     "Weekend",
		Occasion: models.OccasionCasual,
		Items: []models.ClothingItemSnapshot{
			{ID: "01HZX", Name: "Blue Jeans", Category: models.CategoryBottoms, StyleTags: []string{"casual"}},
		},
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.OutfitOut](t, rec)
	assert.NotEmpty(t, out.ID)
	assert.False(t, out.Outfit.Pinned)
	require.Len(t, out.Outfit.Items, 1)
	assert.Equal(t, "Blue Jeans", out.Outfit.Items[0].Name)

	rec = s.do(test.NewJSONRequest(http.MethodGet, "/api/outfits", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	outfits := decode[[]models.Outfit](t, rec)
	require.Len(t, outfits, 1)
	assert.Equal(t, "Weekend", outfits[0].Name)
	assert.Equal(t, []string{"casual"}, outfits[0].Items[0].StyleTags)
}

func TestCreateOutfitEmptyItemsIsAllowed(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", map[string]interface{}{
		"name":  "Capsule",
		"items": []interface{}{},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Empty(t, decode[models.OutfitOut](t, rec).Outfit.Items)
}

func TestCreateOutfitMissingFields(t *testing.T) {
	s := setupTestServer(t)
	for _, body := range []map[string]interface{}{
		{"name": "No items"},
		{"items": []interface{}{}},
	} {
		rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", body))
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "Missing required fields: name, items(array)", decode[map[string]string](t, rec)["error"])
	}
}

func TestCreateOutfitFromClosetItems(t *testing.T) {
	s := setupTestServer(t)
	jeans := decode[models.ClothingItemOut](t, s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", jeansIn())))
	tee := decode[models.ClothingItemOut](t, s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items",
		models.ClothingItemIn{Name: "White Tee", Category: models.CategoryTops})))

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", models.OutfitIn{
		Name:    "Errands",
		ItemIDs: []string{tee.ID, jeans.ID},
	}))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.OutfitOut](t, rec)
	require.Len(t, out.Outfit.Items, 2)
	assert.Equal(t, "White Tee", out.Outfit.Items[0].Name)
	assert.Equal(t, "Blue Jeans", out.Outfit.Items[1].Name)
	assert.Equal(t, "Denim", out.Outfit.Items[1].Fabric)
}

func TestCreateOutfitUnknownItemID(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", models.OutfitIn{
		Name:    "Ghost",
		ItemIDs: []string{"does-not-exist"},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateOutfitInvalidOccasion(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/outfits", map[string]interface{}{
		"name":     "Gala",
		"occasion": "Black Tie",
		"items":    []interface{}{},
	}))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

package controllers

import (
	"errors"
	"image/color"
	"net/http"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/services"
	"wardrobeapi/test"
)

func jeansIn() models.ClothingItemIn {
	return models.ClothingItemIn{
		Name:      "Blue Jeans",
		Category:  models.CategoryBottoms,
		Color:     "Blue",
		Brand:     "Levi's",
		Season:    models.SeasonAllSeason,
		Fabric:    "Denim",
		Occasion:  models.OccasionCasual,
		ImageURL:  "https://example.com/jeans.png",
		StyleTags: []string{"casual"},
		MoodTags:  []string{"relaxed"},
	}
}

func TestCreateItemOk(t *testing.T) {
	s := setupTestServer(t)

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", jeansIn()))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.ClothingItemOut](t, rec)

	assert.NotEmpty(t, out.ID)
	assert.Equal(t, out.ID, out.Item.ID)
	assert.Equal(t, "Blue Jeans", out.Item.Name)
	assert.Equal(t, models.CategoryBottoms, out.Item.Category)
	assert.False(t, out.Item.Pinned)
	assert.Equal(t, []string{"casual"}, []string(out.Item.StyleTags))

	var stored models.ClothingItem
	require.NoError(t, s.db.First(&stored, "id = ?", out.ID).Error)
	assert.Nil(t, stored.OwnerID)
	assert.Equal(t, "Denim", stored.Fabric)
}

func TestCreateItemKeepsTagsAsSent(t *testing.T) {
	s := setupTestServer(t)
	in := jeansIn()
	in.StyleTags = []string{"Boho", "Street  Wear", "", "Boho"}
	in.MoodTags = []string{"Relaxed"}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.ClothingItemOut](t, rec)
	assert.Equal(t, []string{"Boho", "Street  Wear"}, []string(out.Item.StyleTags))
	assert.Equal(t, []string{"Relaxed"}, []string(out.Item.MoodTags))

	var stored models.ClothingItem
	require.NoError(t, s.db.First(&stored, "id = ?", out.ID).Error)
	assert.Equal(t, []string{"Boho", "Street  Wear"}, []string(stored.StyleTags))
	assert.Equal(t, []string{"Relaxed"}, []string(stored.MoodTags))
}

func TestCreateItemRejectsUnsafeImageURL(t *testing.T) {
	s := setupTestServer(t)
	for _, ref := range []string{
		"http://169.254.169.254/latest/meta-data/iam",
		"file:///etc/passwd",
		"/img/x.png",
		"gopher://internal:70/",
	} {
		in := jeansIn()
		in.ImageURL = ref
		rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", in))
		assert.Equal(t, http.StatusBadRequest, rec.Code, ref)
	}

	for _, ref := range []string{"https://example.com/a.png", "clothes/01hzx.png", test.PNGDataURI(color.White), ""} {
		in := jeansIn()
		in.ImageURL = ref
		rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", in))
		assert.Equal(t, http.StatusCreated, rec.Code, ref)
	}

	var count int64
	require.NoError(t, s.db.Model(&models.ClothingItem{}).Count(&count).Error)
	assert.Equal(t, int64(4), count)
}

func TestCreateItemMissingFields(t *testing.T) {
	s := setupTestServer(t)
	in := jeansIn()
	in.Category = ""

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", in))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing required fields: name, category", decode[map[string]string](t, rec)["error"])

	var count int64
	s.db.Model(&models.ClothingItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestCreateItemInvalidEnum(t *testing.T) {
	s := setupTestServer(t)
	in := jeansIn()
	in.Season = "Monsoon"

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", in))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[map[string]string](t, rec)["error"], "Season")
}

func TestListItemsNewestFirstWithFilters(t *testing.T) {
	s := setupTestServer(t)

	first := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", jeansIn()))
	require.Equal(t, http.StatusCreated, first.Code)
	tee := models.ClothingItemIn{Name: "White Tee", Category: models.CategoryTops, Color: "White"}
	second := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", tee))
	require.Equal(t, http.StatusCreated, second.Code)

	rec := s.do(test.NewJSONRequest(http.MethodGet, "/api/closet/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	items := decode[[]models.ClothingItem](t, rec)
	require.Len(t, items, 2)
	assert.Equal(t, "White Tee", items[0].Name)
	assert.Equal(t, "Blue Jeans", items[1].Name)
	assert.NotNil(t, items[0].StyleTags)

	rec = s.do(test.NewJSONRequest(http.MethodGet, "/api/closet/items?category=Bottoms", nil))
	items = decode[[]models.ClothingItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "Blue Jeans", items[0].Name)

	rec = s.do(test.NewJSONRequest(http.MethodGet, "/api/closet/items?category=All&q=white", nil))
	items = decode[[]models.ClothingItem](t, rec)
	require.Len(t, items, 1)
	assert.Equal(t, "White Tee", items[0].Name)
}

func TestListItemsEmpty(t *testing.T) {
	s := setupTestServer(t)
	rec := s.do(test.NewJSONRequest(http.MethodGet, "/api/closet/items", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "[]", strings.TrimSpace(rec.Body.String()))
}

func TestClosetIsScopedToTheUser(t *testing.T) {
	s := setupTestServer(t)
	user := test.FakeUser(s.db)
	other := test.FakeUserV2(s.db, "Other", "other@example.com")
	userPk := strconv.FormatUint(uint64(user.ID), 10)

	rec := s.do(test.NewJSONAuthRequest(http.MethodPost, "/api/closet/items", userPk, jeansIn()))
	require.Equal(t, http.StatusCreated, rec.Code)
	created := decode[models.ClothingItemOut](t, rec)

	var stored models.ClothingItem
	require.NoError(t, s.db.First(&stored, "id = ?", created.ID).Error)
	require.NotNil(t, stored.OwnerID)
	assert.Equal(t, user.ID, *stored.OwnerID)

	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/api/closet/items", strconv.FormatUint(uint64(other.ID), 10), nil))
	assert.Empty(t, decode[[]models.ClothingItem](t, rec))

	rec = s.do(test.NewJSONAuthRequest(http.MethodGet, "/api/closet/items", userPk, nil))
	assert.Len(t, decode[[]models.ClothingItem](t, rec), 1)
}

func TestIngestItemOk(t *testing.T) {
	s := setupTestServer(t)
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{
			Name:      "Red Scarf",
			Category:  models.CategoryAccessories,
			StyleTags: []string{"Vintage"},
		},
		PhotoDataURI: test.PNGDataURI(color.RGBA{R: 200, A: 255}),
		Description:  "a wool scarf",
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.IngestClothingOut](t, rec)

	assert.True(t, out.BackgroundRemoved)
	assert.Equal(t, []string{"Vintage", "casual", "minimalist"}, []string(out.Item.StyleTags))
	assert.Equal(t, []string{"relaxed"}, []string(out.Item.MoodTags))
	assert.True(t, strings.HasPrefix(out.Item.ImageURL, "data:image/png;base64,"))
	assert.NotEqual(t, in.PhotoDataURI, out.Item.ImageURL)
	assert.Equal(t, 1, s.llm.CallCount("RemoveBackground"))
	assert.Equal(t, 1, s.llm.CallCount("TagClothing"))
}

func TestIngestItemFallsBackToOriginalPhoto(t *testing.T) {
	s := setupTestServer(t)
	s.llm.BackgroundErr = &services.ProcessingError{Step: services.StepBackgroundRemoval, Message: "blocked"}
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{Name: "Red Scarf", Category: models.CategoryAccessories},
		PhotoDataURI:   test.PNGDataURI(color.RGBA{R: 200, A: 255}),
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.IngestClothingOut](t, rec)
	assert.False(t, out.BackgroundRemoved)
	assert.Equal(t, in.PhotoDataURI, out.Item.ImageURL)
	assert.Equal(t, 1, s.llm.CallCount("RemoveBackground"))
}

func TestIngestItemRetriesUnavailableProvider(t *testing.T) {
	s := setupTestServer(t)
	s.llm.BackgroundErr = &services.ProviderUnavailableError{Step: services.StepBackgroundRemoval, Err: errors.New("503")}
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{Name: "Red Scarf", Category: models.CategoryAccessories},
		PhotoDataURI:   test.PNGDataURI(color.RGBA{R: 200, A: 255}),
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.False(t, decode[models.IngestClothingOut](t, rec).BackgroundRemoved)
	assert.Equal(t, s.cfg.RetryAttempts, s.llm.CallCount("RemoveBackground"))
}

func TestIngestItemTaggingFailureSavesNothing(t *testing.T) {
	s := setupTestServer(t)
	s.llm.TagResponse = `{"styleTags": ["casual"]}`
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{Name: "Red Scarf", Category: models.CategoryAccessories},
		PhotoDataURI:   test.PNGDataURI(color.White),
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	assert.Equal(t, http.StatusBadGateway, rec.Code)

	var count int64
	s.db.Model(&models.ClothingItem{}).Count(&count)
	assert.Zero(t, count)
}

func TestIngestItemInvalidDataURI(t *testing.T) {
	s := setupTestServer(t)
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{Name: "Red Scarf", Category: models.CategoryAccessories},
		PhotoDataURI:   "https://example.com/scarf.png",
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, s.llm.CallCount("RemoveBackground"))
}

func TestIngestItemStoresPhotoInBucket(t *testing.T) {
	s := setupTestServer(t, func(cfg *config.Config) {
		cfg.R2AccountID = "account"
		cfg.R2AccessKeyID = "key"
		cfg.R2AccessKeySecret = "secret"
		cfg.R2BucketName = "wardrobe"
	})
	in := models.IngestClothingIn{
		ClothingItemIn: models.ClothingItemIn{Name: "Red Scarf", Category: models.CategoryAccessories},
		PhotoDataURI:   test.PNGDataURI(color.White),
	}

	rec := s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items/ingest", in))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	out := decode[models.IngestClothingOut](t, rec)
	assert.True(t, strings.HasPrefix(out.Item.ImageURL, "https://cached.example.com/clothes/"))
	assert.Len(t, s.aws.Uploads, 1)

	var stored models.ClothingItem
	require.NoError(t, s.db.First(&stored, "id = ?", out.ID).Error)
	assert.True(t, strings.HasPrefix(stored.ImageURL, "clothes/"))
	assert.True(t, strings.HasSuffix(stored.ImageURL, ".png"))
}

func TestListTags(t *testing.T) {
	s := setupTestServer(t)
	require.Equal(t, http.StatusCreated, s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", jeansIn())).Code)
	tee := models.ClothingItemIn{Name: "White Tee", Category: models.CategoryTops, StyleTags: []string{"casual", "streetwear"}}
	require.Equal(t, http.StatusCreated, s.do(test.NewJSONRequest(http.MethodPost, "/api/closet/items", tee)).Code)

	rec := s.do(test.NewJSONRequest(http.MethodGet, "/api/closet/tags", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	out := decode[models.TagVocabularyOut](t, rec)
	assert.ElementsMatch(t, []string{"casual", "streetwear"}, out.StyleTags)
	assert.Equal(t, []string{"relaxed"}, out.MoodTags)
}

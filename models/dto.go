package models

type ClothingItemIn struct {
	Name       string   `json:"name"`
	Category   Category `json:"category" validate:"omitempty,category"`
	Color      string   `json:"color"`
	Brand      string   `json:"brand"`
	Season     Season   `json:"season" validate:"omitempty,season"`
	Fabric     string   `json:"fabric"`
	Occasion   Occasion `json:"occasion" validate:"omitempty,occasion"`
	ImageURL   string   `json:"imageUrl"`
	DataAIHint *string  `json:"data-ai-hint"`
	StyleTags  []string `json:"styleTags"`
	MoodTags   []string `json:"moodTags"`
}

// Draft converts the request body into an unsaved item.
func (in ClothingItemIn) Draft() ClothingItem {
	item := ClothingItem{
		Name:       in.Name,
		Category:   in.Category,
		Color:      in.Color,
		Brand:      in.Brand,
		Season:     in.Season,
		Fabric:     in.Fabric,
		Occasion:   in.Occasion,
		ImageURL:   in.ImageURL,
		DataAIHint: in.DataAIHint,
		StyleTags:  in.StyleTags,
		MoodTags:   in.MoodTags,
	}
	item.NormalizeTags()
	return item
}

type ClothingItemOut struct {
	ID   string       `json:"id"`
	Item ClothingItem `json:"item"`
}

type IngestClothingIn struct {
	ClothingItemIn
	PhotoDataURI string `json:"photoDataUri" validate:"required"`
	Description  string `json:"description"`
}

type IngestClothingOut struct {
	ID                string       `json:"id"`
	Item              ClothingItem `json:"item"`
	BackgroundRemoved bool         `json:"backgroundRemoved"`
}

type TagVocabularyOut struct {
	StyleTags []string `json:"styleTags"`
	MoodTags  []string `json:"moodTags"`
}

type OutfitIn struct {
	Name     string                 `json:"name"`
	Occasion Occasion               `json:"occasion" validate:"omitempty,occasion"`
	Items    []ClothingItemSnapshot `json:"items"`

	// ItemIDs lets callers reference closet items instead of sending snapshots.
	ItemIDs []string `json:"itemIds"`
}

type OutfitOut struct {
	ID     string `json:"id"`
	Outfit Outfit `json:"outfit"`
}

type PhotoIn struct {
	PhotoDataURI string `json:"photoDataUri" validate:"required"`
	Description  string `json:"description"`
}

type BackgroundRemovalOut struct {
	ProcessedPhotoDataURI string `json:"processedPhotoDataUri"`
}

type SuggestionIn struct {
	Occasion  string   `json:"occasion" validate:"required"`
	Weather   string   `json:"weather"`
	Lat       *float64 `json:"lat"`
	Lon       *float64 `json:"lon"`
	UserStyle string   `json:"userStyle"`
	StyleTags []string `json:"styleTags"`
	MoodTags  []string `json:"moodTags"`
}

type SuggestionMatch struct {
	Suggestion string         `json:"suggestion"`
	Items      []ClothingItem `json:"items"`
}

type SuggestionOut struct {
	OutfitSuggestions []string          `json:"outfitSuggestions"`
	Reasoning         string            `json:"reasoning"`
	Weather           string            `json:"weather"`
	Matches           []SuggestionMatch `json:"matches"`
}

type AcceptSuggestionIn struct {
	Suggestion string   `json:"suggestion" validate:"required"`
	Occasion   Occasion `json:"occasion" validate:"omitempty,occasion"`
}

package controllers

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

type AIController struct {
	Config      *config.Config
	Pipeline    *services.IngestionPipeline
	Suggestions *services.SuggestionService
	Weather     services.WeatherProvider
	Images      *ImageResolver
}

func (controller *AIController) AIRoutes(g *echo.Group) {
	g.POST("/background-removal", controller.RemoveBackground)
	g.POST("/tags", controller.TagPhoto)
	g.POST("/suggestions", controller.Suggest)
	g.POST("/suggestions/accept", controller.AcceptSuggestion)
}

func bindPhoto(c echo.Context) (*models.PhotoIn, services.DataURI, string) {
	var req models.PhotoIn
	if err := c.Bind(&req); err != nil {
		return nil, services.DataURI{}, "Invalid request body"
	}
	if err := c.Validate(&req); err != nil {
		return nil, services.DataURI{}, validationMessage(err)
	}
	photo, err := services.ParseDataURI(req.PhotoDataURI)
	if err != nil {
		return nil, services.DataURI{}, err.Error()
	}
	return &req, photo, ""
}

// RemoveBackground exposes the first ingestion step on its own. Unlike Ingest it
// reports the failure so the client can keep the original photo.
func (controller *AIController) RemoveBackground(c echo.Context) error {
	_, photo, message := bindPhoto(c)
	if message != "" {
		return badRequest(c, message)
	}
	ctx := c.Request().Context()
	processed, err := controller.Pipeline.RemoveBackground(ctx, services.NormalizeImage(photo, services.MaxImageEdge))
	if err != nil {
		return providerError(c, "Failed to remove the background, please try again", err)
	}
	return c.JSON(http.StatusOK, models.BackgroundRemovalOut{ProcessedPhotoDataURI: processed.String()})
}

func (controller *AIController) TagPhoto(c echo.Context) error {
	req, photo, message := bindPhoto(c)
	if message != "" {
		return badRequest(c, message)
	}
	ctx := c.Request().Context()
	styleTags, moodTags, err := controller.Pipeline.Tag(ctx, services.NormalizeImage(photo, services.MaxImageEdge), req.Description)
	if err != nil {
		return providerError(c, "Failed to tag the clothing photo, please try again", err)
	}
	return c.JSON(http.StatusOK, models.TagVocabularyOut{StyleTags: styleTags, MoodTags: moodTags})
}

// currentWeather degrades to an empty description when no provider answers.
func (controller *AIController) currentWeather(c echo.Context, lat, lon *float64) string {
	if controller.Weather == nil {
		return ""
	}
	latitude, longitude := services.DefaultLatitude, services.DefaultLongitude
	if lat != nil && lon != nil {
		latitude, longitude = *lat, *lon
	}
	info, err := controller.Weather.Current(c.Request().Context(), latitude, longitude)
	if err != nil {
		logging.FromContext(c.Request().Context()).Warn("weather lookup failed", "error", err)
		return ""
	}
	return services.FormatWeather(info.Weather, info.Temperature)
}

func (controller *AIController) Suggest(c echo.Context) error {
	var req models.SuggestionIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx := c.Request().Context()
	closet := closetFrom(c)
	// the closet is optional context for the stylist
	_ = closet.Load(ctx)

	weather := strings.TrimSpace(req.Weather)
	if weather == "" {
		weather = controller.currentWeather(c, req.Lat, req.Lon)
	}

	result, err := controller.Suggestions.Suggest(ctx, services.SuggestionRequest{
		Occasion:    req.Occasion,
		Weather:     weather,
		ClosetItems: closet.ItemNames(),
		UserStyle:   req.UserStyle,
		StyleTags:   req.StyleTags,
		MoodTags:    req.MoodTags,
	})
	if err != nil {
		return providerError(c, "Failed to get outfit suggestions, please try again", err)
	}

	matches := make([]models.SuggestionMatch, 0, len(result.OutfitSuggestions))
	for _, suggestion := range result.OutfitSuggestions {
		matches = append(matches, models.SuggestionMatch{
			Suggestion: suggestion,
			Items:      controller.Images.Items(ctx, closet.MatchSuggestion(suggestion)),
		})
	}
	return c.JSON(http.StatusOK, models.SuggestionOut{
		OutfitSuggestions: result.OutfitSuggestions,
		Reasoning:         result.Reasoning,
		Weather:           weather,
		Matches:           matches,
	})
}

// AcceptSuggestion saves a suggestion as an outfit made of the closet items it mentions.
func (controller *AIController) AcceptSuggestion(c echo.Context) error {
	var req models.AcceptSuggestionIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	ctx := c.Request().Context()
	closet := closetFrom(c)
	if err := closet.Load(ctx); err != nil {
		return internalError(c, "Failed to fetch items", err)
	}
	occasion := req.Occasion
	if occasion == "" {
		occasion = models.OccasionCasual
	}

	matched := closet.MatchSuggestion(req.Suggestion)
	snapshots := make([]models.ClothingItemSnapshot, 0, len(matched))
	for _, item := range matched {
		snapshots = append(snapshots, item.Snapshot())
	}
	outfit, err := closet.CreateOutfit(ctx, strings.TrimSpace(req.Suggestion), occasion, snapshots)
	if err != nil {
		return internalError(c, "Failed to create outfit", err)
	}
	resolved := controller.Images.Outfits(ctx, []models.Outfit{outfit})[0]
	return c.JSON(http.StatusCreated, models.OutfitOut{ID: outfit.ID, Outfit: resolved})
}

func (controller *AIController) CurrentWeather(c echo.Context) error {
	lat, lon := services.DefaultLatitude, services.DefaultLongitude
	err := echo.QueryParamsBinder(c).
		Float64("lat", &lat).
		Float64("lon", &lon).
		BindError()
	if err != nil {
		return badRequest(c, "lat and lon must be numbers")
	}
	if controller.Weather == nil {
		return c.JSON(http.StatusBadGateway, map[string]string{"error": "Weather service is not configured"})
	}
	info, err := controller.Weather.Current(c.Request().Context(), lat, lon)
	if err != nil {
		return providerError(c, "Failed to fetch the weather, please try again", err)
	}
	return c.JSON(http.StatusOK, info)
}

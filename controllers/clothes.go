package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

type ClothesController struct {
	Config     *config.Config
	Pipeline   *services.IngestionPipeline
	AWSService services.AWSServiceProvider
	Images     *ImageResolver
}

func (controller *ClothesController) ClothingRoutes(g *echo.Group) {
	g.GET("/items", controller.ListItems)
	g.POST("/items", controller.CreateItem)
	g.POST("/items/ingest", controller.IngestItem)
	g.GET("/tags", controller.ListTags)
}

func (controller *ClothesController) ListItems(c echo.Context) error {
	closet := closetFrom(c)
	ctx := c.Request().Context()
	if err := closet.Load(ctx); err != nil {
		return internalError(c, "Failed to fetch items", err)
	}
	items := closet.FilterItems(c.QueryParam("category"), c.QueryParam("q"))
	return c.JSON(http.StatusOK, controller.Images.Items(ctx, items))
}

// validationMessage returns the user-facing reason a request failed validation.
func validationMessage(err error) string {
	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return fmt.Sprint(httpErr.Message)
	}
	return err.Error()
}

func validateItemInput(c echo.Context, req *models.ClothingItemIn) string {
	if strings.TrimSpace(req.Name) == "" || req.Category == "" {
		return "Missing required fields: name, category"
	}
	if err := c.Validate(req); err != nil {
		return validationMessage(err)
	}
	if !services.IsAllowedImageRef(req.ImageURL) {
		return "imageUrl must be an https URL, a data URI or a stored image key"
	}
	return ""
}

func (controller *ClothesController) CreateItem(c echo.Context) error {
	var req models.ClothingItemIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if message := validateItemInput(c, &req); message != "" {
		return badRequest(c, message)
	}

	ctx := c.Request().Context()
	item, err := closetFrom(c).AddClothingItem(ctx, req.Draft())
	if err != nil {
		return internalError(c, "Failed to create item", err)
	}
	item.ImageURL = controller.Images.Resolve(ctx, item.ImageURL)
	return c.JSON(http.StatusCreated, models.ClothingItemOut{ID: item.ID, Item: item})
}

// IngestItem runs the photo through background removal and tagging before the
// item is saved. A tagging failure saves nothing.
func (controller *ClothesController) IngestItem(c echo.Context) error {
	var req models.IngestClothingIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if message := validateItemInput(c, &req.ClothingItemIn); message != "" {
		return badRequest(c, message)
	}
	photo, err := services.ParseDataURI(req.PhotoDataURI)
	if err != nil {
		return badRequest(c, err.Error())
	}

	ctx := c.Request().Context()
	logger := logging.FromContext(ctx).With("item", req.Name)
	result, err := controller.Pipeline.Ingest(ctx, photo, req.Description)
	if err != nil {
		return providerError(c, "Failed to analyze the clothing photo, please try again", err)
	}

	imageRef := result.Image.String()
	if controller.Config.StorageEnabled() && controller.AWSService != nil {
		key, err := services.StoreImage(ctx, controller.AWSService, controller.Config.R2BucketName, services.PrefixClothes, result.Image)
		if err != nil {
			return internalError(c, "Failed to store the clothing photo", err)
		}
		imageRef = key
	}

	draft := req.Draft()
	draft.ImageURL = imageRef
	draft.StyleTags = append(draft.StyleTags, result.StyleTags...)
	draft.MoodTags = append(draft.MoodTags, result.MoodTags...)

	item, err := closetFrom(c).AddClothingItem(ctx, draft)
	if err != nil {
		return internalError(c, "Failed to create item", err)
	}
	logger.Info("clothing item ingested", "id", item.ID, "background_removed", result.BackgroundRemoved)

	item.ImageURL = controller.Images.Resolve(ctx, item.ImageURL)
	return c.JSON(http.StatusCreated, models.IngestClothingOut{
		ID:                item.ID,
		Item:              item,
		BackgroundRemoved: result.BackgroundRemoved,
	})
}

func (controller *ClothesController) ListTags(c echo.Context) error {
	closet := closetFrom(c)
	if err := closet.Load(c.Request().Context()); err != nil {
		return internalError(c, "Failed to fetch items", err)
	}
	return c.JSON(http.StatusOK, models.TagVocabularyOut{
		StyleTags: closet.AllStyleTags(),
		MoodTags:  closet.AllMoodTags(),
	})
}

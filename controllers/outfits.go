package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/wardrobe"
)

type OutfitsController struct {
	Config *config.Config
	Images *ImageResolver
}

func (controller *OutfitsController) OutfitRoutes(g *echo.Group) {
	g.GET("", controller.ListOutfits)
	g.POST("", controller.CreateOutfit)
}

func (controller *OutfitsController) ListOutfits(c echo.Context) error {
	closet := closetFrom(c)
	ctx := c.Request().Context()
	if err := closet.Load(ctx); err != nil {
		return internalError(c, "Failed to fetch outfits", err)
	}
	return c.JSON(http.StatusOK, controller.Images.Outfits(ctx, closet.Outfits()))
}

// CreateOutfit accepts either full item snapshots or ids of closet items.
func (controller *OutfitsController) CreateOutfit(c echo.Context) error {
	var req models.OutfitIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if strings.TrimSpace(req.Name) == "" || (req.Items == nil && len(req.ItemIDs) == 0) {
		return badRequest(c, "Missing required fields: name, items(array)")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}

	closet := closetFrom(c)
	ctx := c.Request().Context()
	var (
		outfit models.Outfit
		err    error
	)
	if len(req.ItemIDs) > 0 {
		if loadErr := closet.Load(ctx); loadErr != nil {
			return internalError(c, "Failed to fetch items", loadErr)
		}
		outfit, err = closet.CreateOutfitFromItems(ctx, req.Name, req.Occasion, req.ItemIDs)
		if errors.Is(err, wardrobe.ErrItemNotFound) {
			return badRequest(c, err.Error())
		}
	} else {
		outfit, err = closet.CreateOutfit(ctx, req.Name, req.Occasion, req.Items)
	}
	if err != nil {
		return internalError(c, "Failed to create outfit", err)
	}

	resolved := controller.Images.Outfits(ctx, []models.Outfit{outfit})[0]
	return c.JSON(http.StatusCreated, models.OutfitOut{ID: outfit.ID, Outfit: resolved})
}

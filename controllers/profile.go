package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wardrobeapi/logging"
	"wardrobeapi/models"
)

type ProfileController struct{}

func (controller *ProfileController) ProfileRoutes(g *echo.Group) {
	g.GET("/me", controller.Me)
	g.POST("/push-token", controller.RegisterPush)
	g.DELETE("/push-token", controller.DeletePush)
}

func (controller *ProfileController) Me(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	return c.JSON(http.StatusOK, models.UserInfoOut{ID: user.ID, Email: user.Email, Name: user.Name})
}

func (controller *ProfileController) RegisterPush(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	var tokenRequest models.UserPushIn
	if err := c.Bind(&tokenRequest); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&tokenRequest); err != nil {
		return badRequest(c, validationMessage(err))
	}

	pushData := models.UserPushToken{
		Platform:      tokenRequest.Platform,
		Token:         tokenRequest.Token,
		UserAccountID: user.ID,
		Active:        true,
	}
	// same device can sign in to different accounts and still receive pushes
	result := db.WithContext(c.Request().Context()).
		Where("token = ? and user_account_id = ?", tokenRequest.Token, user.ID).
		FirstOrCreate(&pushData)
	if result.Error != nil {
		return internalError(c, "Failed to register push token", result.Error)
	}
	if result.RowsAffected >= 1 {
		logging.FromContext(c.Request().Context()).Info("push token created", "user_id", user.ID, "platform", tokenRequest.Platform)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "registered",
		"push_id": pushData.ID,
	})
}

func (controller *ProfileController) DeletePush(c echo.Context) error {
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	var tokenRequest models.UserPushIn
	if err := c.Bind(&tokenRequest); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&tokenRequest); err != nil {
		return badRequest(c, validationMessage(err))
	}

	result := db.WithContext(c.Request().Context()).
		Where("token = ? and user_account_id = ? and platform = ?", tokenRequest.Token, user.ID, tokenRequest.Platform).
		Delete(&models.UserPushToken{})
	if result.Error != nil {
		return internalError(c, "Failed to delete push token", result.Error)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"message": "deleted",
		"deleted": result.RowsAffected > 0,
	})
}

package controllers

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/repository"
	"wardrobeapi/wardrobe"
)

func tokenUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, errors.New("missing token")
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, errors.New("unexpected claims type")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return 0, errors.New("token has no subject")
	}
	id, err := strconv.ParseUint(sub, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("token subject %q: %w", sub, err)
	}
	return uint(id), nil
}

func loadCurrentUser(c echo.Context) error {
	db := c.Get("__db").(*gorm.DB)
	logger := logging.FromContext(c.Request().Context())

	userID, err := tokenUserID(c)
	if err != nil {
		logger.Warn("error while getting the token information", "error", err)
		return echo.ErrUnauthorized
	}
	user, err := repository.NewUserRepository(db).FindByID(c.Request().Context(), userID)
	if errors.Is(err, repository.ErrNotFound) {
		return echo.ErrUnauthorized
	}
	if err != nil {
		logger.Error("failed to fetch user", "user_id", userID, "error", err)
		return echo.ErrInternalServerError
	}
	if user.Banned {
		return echo.ErrForbidden
	}
	c.Set("currentUser", *user)
	return nil
}

// UserMiddleware requires a valid token that belongs to an existing user.
func UserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Get("user") == nil {
			return echo.ErrUnauthorized
		}
		if err := loadCurrentUser(c); err != nil {
			return err
		}
		return next(c)
	}
}

// OptionalUserMiddleware resolves the user only when a token was presented.
func OptionalUserMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if c.Get("user") == nil {
			return next(c)
		}
		if err := loadCurrentUser(c); err != nil {
			return err
		}
		return next(c)
	}
}

// ClosetMiddleware builds the request-scoped wardrobe store. It is not loaded
// here; handlers that read the closet call Load themselves.
func ClosetMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		db := c.Get("__db").(*gorm.DB)
		var ownerID *uint
		if user, ok := c.Get("currentUser").(models.UserAccount); ok {
			id := user.ID
			ownerID = &id
		}
		c.Set("__closet", wardrobe.NewStore(repository.NewClosetRepository(db, ownerID)))
		return next(c)
	}
}

func closetFrom(c echo.Context) *wardrobe.Store {
	return c.Get("__closet").(*wardrobe.Store)
}

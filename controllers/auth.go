package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/repository"
)

const passwordHashCost = 12

type AuthController struct {
	Config *config.Config
}

func (m *AuthController) AuthRoutes(g *echo.Group) {
	g.POST("/signup", m.SignUp)
	g.POST("/login", m.LogIn)
}

func authError(c echo.Context, status int, message string, err error) error {
	body := echo.Map{"message": message}
	if err != nil {
		logging.FromContext(c.Request().Context()).Error(message, "error", err)
		sentry.CaptureException(err)
		if !isProduction(c) {
			body["error"] = err.Error()
		}
	}
	return c.JSON(status, body)
}

func (m *AuthController) SignUp(c echo.Context) error {
	var req models.SignUpIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	email := repository.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required."})
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), passwordHashCost)
	if err != nil {
		return authError(c, http.StatusInternalServerError, "Internal server error.", err)
	}

	db := c.Get("__db").(*gorm.DB)
	user := models.UserAccount{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: string(hash),
	}
	err = repository.NewUserRepository(db).Create(c.Request().Context(), &user)
	if errors.Is(err, repository.ErrDuplicateEmail) {
		return c.JSON(http.StatusConflict, echo.Map{"message": "Email already registered."})
	}
	if err != nil {
		return authError(c, http.StatusInternalServerError, "Database error inserting user.", err)
	}

	logging.FromContext(c.Request().Context()).Info("user signed up", "user_id", user.ID)
	return c.JSON(http.StatusCreated, models.SignUpOut{Message: "User created", UserID: user.ID})
}

func (m *AuthController) LogIn(c echo.Context) error {
	var req models.LogInIn
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Invalid request body"})
	}
	email := repository.NormalizeEmail(req.Email)
	if email == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "Email and password are required."})
	}

	db := c.Get("__db").(*gorm.DB)
	user, err := repository.NewUserRepository(db).FindByEmail(c.Request().Context(), email)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
	}
	if err != nil {
		return authError(c, http.StatusInternalServerError, "Internal server error.", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "Invalid credentials."})
	}
	if user.Banned {
		return c.JSON(http.StatusForbidden, echo.Map{"message": "Sorry, your access is blocked"})
	}

	token, err := GenerateUserToken(strconv.FormatUint(uint64(user.ID), 10), m.Config.JWTSecret)
	if err != nil {
		return authError(c, http.StatusInternalServerError, "Internal server error.", err)
	}
	return c.JSON(http.StatusOK, models.LogInOut{
		Message: "Login successful",
		User:    models.UserInfoOut{ID: user.ID, Email: user.Email, Name: user.Name},
		Token:   token,
	})
}

package controllers

import (
	"net/http"

	"github.com/go-playground/validator"
	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	echojwt "github.com/labstack/echo-jwt"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

type CustomValidator struct {
	validator *validator.Validate
}

func (cv *CustomValidator) Validate(i interface{}) error {
	if err := cv.validator.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return nil
}

func NewValidator() *CustomValidator {
	v := validator.New()
	v.RegisterValidation("platform", models.ValidatePlatform)
	v.RegisterValidation("category", models.ValidateCategory)
	v.RegisterValidation("season", models.ValidateSeason)
	v.RegisterValidation("occasion", models.ValidateOccasion)
	return &CustomValidator{validator: v}
}

// SetupServer wires every route. awsService, urlCache, weather and asynqClient
// may be nil when the matching backend is not configured.
func SetupServer(
	cfg *config.Config,
	db *gorm.DB,
	llm services.LLMProcessor,
	awsService services.AWSServiceProvider,
	urlCache services.URLCacheServiceProvider,
	weather services.WeatherProvider,
	asynqClient *asynq.Client,
) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = NewValidator()

	e.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{
		Generator: uuid.NewString,
		RequestIDHandler: func(c echo.Context, requestID string) {
			ctx := logging.WithRequestID(c.Request().Context(), requestID)
			c.SetRequest(c.Request().WithContext(ctx))
		},
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logging.Logger().Info("request",
				"request_id", v.RequestID,
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency_ms", v.Latency.Milliseconds(),
			)
			return nil
		},
	}))
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			c.Set("__db", db)
			c.Set("__config", cfg)
			return next(c)
		}
	})
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	e.GET("/healthz", func(c echo.Context) error {
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})

	images := &ImageResolver{AWSService: awsService, URLCache: urlCache, BucketName: cfg.R2BucketName}
	retry := services.NewRetryPolicy(cfg.RetryAttempts, cfg.RetryBaseDelay, cfg.RetryMaxDelay)
	pipeline := services.NewIngestionPipeline(llm, retry, cfg.ProviderTimeout)

	// closet, outfit and AI routes work anonymously; a bearer token scopes them to the user
	jwtError := func(c echo.Context, err error) error {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	}
	optionalJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:   []byte(cfg.JWTSecret),
		ErrorHandler: jwtError,
		Skipper: func(c echo.Context) bool {
			return c.Request().Header.Get(echo.HeaderAuthorization) == ""
		},
	})
	requiredJWT := echojwt.WithConfig(echojwt.Config{
		SigningKey:   []byte(cfg.JWTSecret),
		ErrorHandler: jwtError,
	})

	api := e.Group("/api")

	authController := AuthController{Config: cfg}
	authController.AuthRoutes(api.Group("/auth"))

	closetGroup := api.Group("", optionalJWT, OptionalUserMiddleware, ClosetMiddleware)

	clothesController := ClothesController{
		Config:     cfg,
		Pipeline:   pipeline,
		AWSService: awsService,
		Images:     images,
	}
	clothesController.ClothingRoutes(closetGroup.Group("/closet"))

	outfitsController := OutfitsController{Config: cfg, Images: images}
	outfitsController.OutfitRoutes(closetGroup.Group("/outfits"))

	aiController := AIController{
		Config:      cfg,
		Pipeline:    pipeline,
		Suggestions: services.NewSuggestionService(llm, cfg.ProviderTimeout),
		Weather:     weather,
		Images:      images,
	}
	aiController.AIRoutes(closetGroup.Group("/ai"))
	closetGroup.GET("/weather", aiController.CurrentWeather)

	userGroup := api.Group("", requiredJWT, UserMiddleware)

	tryOnController := TryOnController{
		Config:      cfg,
		AWSService:  awsService,
		Images:      images,
		AsynqClient: asynqClient,
	}
	tryOnController.TryOnRoutes(userGroup.Group("/tryon", ClosetMiddleware))

	profileController := ProfileController{}
	profileController.ProfileRoutes(userGroup.Group("/profile"))

	return e
}

package controllers

import (
	"errors"
	"net/http"

	"github.com/hibiken/asynq"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/repository"
	"wardrobeapi/services"
	"wardrobeapi/tasks"
)

type TryOnController struct {
	Config      *config.Config
	AWSService  services.AWSServiceProvider
	Images      *ImageResolver
	AsynqClient *asynq.Client
}

func (controller *TryOnController) TryOnRoutes(g *echo.Group) {
	g.POST("", controller.CreateTryOn)
	g.GET("/:id", controller.GetTryOn)
}

func (controller *TryOnController) CreateTryOn(c echo.Context) error {
	var req models.TryOnIn
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return badRequest(c, validationMessage(err))
	}
	avatar, err := services.ParseDataURI(req.AvatarDataURI)
	if err != nil {
		return badRequest(c, err.Error())
	}

	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	ctx := c.Request().Context()
	logger := logging.FromContext(ctx).With("user_id", user.ID)

	if controller.AsynqClient == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"error": "Service is not available, please try again a bit later"})
	}

	closet := closetFrom(c)
	if err := closet.Load(ctx); err != nil {
		return internalError(c, "Failed to fetch items", err)
	}
	for _, id := range []string{req.TopItemID, req.BottomItemID} {
		if _, ok := closet.GetClothingItem(id); !ok {
			return c.JSON(http.StatusNotFound, map[string]string{"error": "Clothing item " + id + " was not found in your closet"})
		}
	}

	avatar = services.NormalizeImage(avatar, services.MaxImageEdge)
	avatarRef := avatar.String()
	if controller.Config.StorageEnabled() && controller.AWSService != nil {
		key, err := services.StoreImage(ctx, controller.AWSService, controller.Config.R2BucketName, services.PrefixAvatars, avatar)
		if err != nil {
			return internalError(c, "Failed to store the avatar", err)
		}
		avatarRef = key
	}

	generation := models.TryOnGeneration{
		UserAccountID:  user.ID,
		TopItemID:      req.TopItemID,
		BottomItemID:   req.BottomItemID,
		AvatarImageURL: avatarRef,
		Status:         models.TryOnPending,
	}
	if err := repository.NewTryOnRepository(db).Create(ctx, &generation); err != nil {
		return internalError(c, "Failed to generate try-on, please try again", err)
	}

	task, err := tasks.NewTryOnGenerationTask(user.ID, generation.ID)
	if err != nil {
		return internalError(c, "Sorry, could not start generation, please try again", err)
	}
	info, err := controller.AsynqClient.EnqueueContext(ctx, task, asynq.MaxRetry(tasks.TryOnMaxRetry), asynq.Queue(tasks.QueueGenerate))
	if err != nil {
		return internalError(c, "Sorry, could not start generation, please try again", err)
	}
	logger.Info("try-on generation task submitted", "try_on_id", generation.ID, "task_id", info.ID)

	return c.JSON(http.StatusAccepted, models.TryOnOut{TryOnID: generation.ID, Status: generation.Status})
}

func (controller *TryOnController) GetTryOn(c echo.Context) error {
	var id uint
	if err := echo.PathParamsBinder(c).Uint("id", &id).BindError(); err != nil {
		return badRequest(c, "Invalid try-on id")
	}
	user := c.Get("currentUser").(models.UserAccount)
	db := c.Get("__db").(*gorm.DB)
	ctx := c.Request().Context()

	generation, err := repository.NewTryOnRepository(db).Find(ctx, id, user.ID)
	if errors.Is(err, repository.ErrNotFound) {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "Try-on not found"})
	}
	if err != nil {
		return internalError(c, "Failed to fetch try-on", err)
	}
	if generation.ResultImageURL != nil {
		url := controller.Images.Resolve(ctx, *generation.ResultImageURL)
		generation.ResultImageURL = &url
	}
	return c.JSON(http.StatusOK, generation)
}

package tasks

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"

	"wardrobeapi/logging"
	"wardrobeapi/models"
	"wardrobeapi/repository"
	"wardrobeapi/services"
)

const (
	QueueGenerate = "generate"

	TypeTryOnGeneration  = "generate:tryon"
	TypeExpireStaleTryOn = "generate:expire_stale_tryon"

	TryOnMaxRetry = 3

	// pending generations older than this are given up on
	staleTryOnAge = time.Hour
)

type TryOnGenerationPayload struct {
	UserID  uint `json:"user_id"`
	TryOnID uint `json:"try_on_id"`
}

func NewTryOnGenerationTask(userID uint, tryOnID uint) (*asynq.Task, error) {
	payload, err := json.Marshal(TryOnGenerationPayload{UserID: userID, TryOnID: tryOnID})
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TypeTryOnGeneration, payload), nil
}

func NewExpireStaleTryOnTask() *asynq.Task {
	return asynq.NewTask(TypeExpireStaleTryOn, nil)
}

// TryOnHandler renders an avatar wearing two closet items and stores the result.
type TryOnHandler struct {
	DB         *gorm.DB
	LLM        services.LLMProcessor
	Storage    services.AWSServiceProvider
	BucketName string
	Notifier   services.Notifier
	Timeout    time.Duration
}

// errUnsafeImage marks image references the worker refuses to fetch.
var errUnsafeImage = errors.New("image reference is not allowed")

// loadImage resolves an image reference: inline data, a bucket key or a public
// https URL. URLs are fetched through a client that cannot reach internal addresses.
func (h *TryOnHandler) loadImage(ctx context.Context, ref string) (services.DataURI, error) {
	if services.IsDataURI(ref) {
		return services.ParseDataURI(ref)
	}

	var (
		content []byte
		err     error
	)
	if services.IsStorageKey(ref) {
		if h.Storage == nil {
			return services.DataURI{}, fmt.Errorf("image %s is in storage but storage is not configured", ref)
		}
		presigned, presignErr := h.Storage.GetPresignedR2FileReadURL(ctx, h.BucketName, ref)
		if presignErr != nil {
			return services.DataURI{}, fmt.Errorf("presign %s: %w", ref, presignErr)
		}
		content, err = services.ReadFileFromUrl(ctx, presigned)
	} else {
		if !services.IsAllowedImageRef(ref) {
			return services.DataURI{}, errUnsafeImage
		}
		content, err = services.ReadPublicFileFromUrl(ctx, ref)
		if errors.Is(err, services.ErrBlockedAddress) {
			return services.DataURI{}, fmt.Errorf("%w: %v", errUnsafeImage, err)
		}
	}
	if err != nil {
		return services.DataURI{}, err
	}
	return services.NewDataURI(content, ""), nil
}

func (h *TryOnHandler) ProcessTask(ctx context.Context, t *asynq.Task) error {
	var payload TryOnGenerationPayload
	if err := json.Unmarshal(t.Payload(), &payload); err != nil {
		return fmt.Errorf("unmarshal try-on payload: %v: %w", err, asynq.SkipRetry)
	}
	logger := logging.FromContext(ctx).With("try_on_id", payload.TryOnID, "user_id", payload.UserID)
	tryOns := repository.NewTryOnRepository(h.DB)

	generation, err := tryOns.Find(ctx, payload.TryOnID, payload.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("try-on %d: %w", payload.TryOnID, asynq.SkipRetry)
	}
	if err != nil {
		return err
	}
	if generation.Status != models.TryOnPending {
		logger.Info("try-on already processed", "status", generation.Status)
		return nil
	}

	startTime := time.Now()
	ownerID := payload.UserID
	closet := repository.NewClosetRepository(h.DB, &ownerID)

	garments := make([]services.DataURI, 0, 2)
	for _, itemID := range []string{generation.TopItemID, generation.BottomItemID} {
		item, err := closet.GetItem(ctx, itemID)
		if err != nil {
			return h.saveFailure(ctx, tryOns, generation, fmt.Sprintf("clothing item %s is not available: %v", itemID, err), false)
		}
		image, err := h.loadImage(ctx, item.ImageURL)
		if err != nil {
			return h.saveFailure(ctx, tryOns, generation, fmt.Sprintf("failed to load image of %s: %v", itemID, err), !errors.Is(err, errUnsafeImage))
		}
		garments = append(garments, image)
	}
	avatar, err := h.loadImage(ctx, generation.AvatarImageURL)
	if err != nil {
		return h.saveFailure(ctx, tryOns, generation, fmt.Sprintf("failed to load avatar: %v", err), !errors.Is(err, errUnsafeImage))
	}

	callCtx, cancel := context.WithTimeout(ctx, h.Timeout)
	defer cancel()
	response, err := h.LLM.GenerateTryOn(callCtx, avatar, garments)
	if err != nil {
		return h.saveFailure(ctx, tryOns, generation, err.Error(), services.IsProviderUnavailable(err))
	}
	if len(response.Images) == 0 {
		return h.saveFailure(ctx, tryOns, generation, "provider returned no image", true)
	}

	result := services.NewDataURI(response.Images[0], "")
	resultRef := result.String()
	if h.Storage != nil && h.BucketName != "" {
		key, err := services.StoreImage(ctx, h.Storage, h.BucketName, services.PrefixTryOn, result)
		if err != nil {
			return h.saveFailure(ctx, tryOns, generation, fmt.Sprintf("failed to store result: %v", err), true)
		}
		resultRef = key
	}

	duration := time.Since(startTime).Seconds()
	generation.Status = models.TryOnCompleted
	generation.ResultImageURL = &resultRef
	generation.Duration = &duration
	generation.LLMModel = services.StrPointer(response.Model)
	generation.LLMInputTokenCount = services.Int32Pointer(response.InputTokenCount)
	generation.LLMOutputTokenCount = services.Int32Pointer(response.OutputTokenCount)
	generation.LLMTotalTokenCount = services.Int32Pointer(response.TotalTokenCount)
	generation.GenerationErrorMessage = nil
	if err := tryOns.Save(ctx, generation); err != nil {
		sentry.CaptureException(err)
		return err
	}
	logger.Info("try-on generated", "duration_s", duration)

	if h.Notifier != nil {
		h.Notifier.SendNotification(ctx, payload.UserID, "Your try-on is ready", "Open the app to see your new look.", map[string]string{
			"try_on_id": fmt.Sprint(generation.ID),
		})
	}
	return nil
}

// saveFailure records the attempt. The task is retried while the generation is
// still pending, otherwise it is marked failed and asynq stops retrying.
func (h *TryOnHandler) saveFailure(ctx context.Context, tryOns *repository.TryOnRepository, generation *models.TryOnGeneration, message string, shouldRetry bool) error {
	logger := logging.FromContext(ctx).With("try_on_id", generation.ID)
	generation.GenerationRetryTimes++
	generation.GenerationErrorMessage = &message
	if !shouldRetry || generation.GenerationRetryTimes > TryOnMaxRetry {
		generation.Status = models.TryOnFailed
	}
	if err := tryOns.Save(ctx, generation); err != nil {
		sentry.CaptureException(fmt.Errorf("saving failed try-on %d: %w", generation.ID, err))
		return err
	}

	if generation.Status == models.TryOnFailed {
		logger.Error("try-on generation failed", "error", message, "attempts", generation.GenerationRetryTimes)
		sentry.CaptureMessage(fmt.Sprintf("try-on %d failed: %s", generation.ID, message))
		return fmt.Errorf("try-on %d: %s: %w", generation.ID, message, asynq.SkipRetry)
	}
	logger.Warn("try-on attempt failed, retrying", "error", message, "attempts", generation.GenerationRetryTimes)
	return errors.New(message)
}

// ExpireStaleTryOns fails generations that have been pending for too long,
// for example because their task was lost.
func ExpireStaleTryOns(ctx context.Context, db *gorm.DB, now time.Time) (int64, error) {
	message := "generation timed out"
	result := db.WithContext(ctx).Model(&models.TryOnGeneration{}).
		Where("status = ? AND created_at < ?", models.TryOnPending, now.Add(-staleTryOnAge)).
		Updates(map[string]interface{}{
			"status":                   models.TryOnFailed,
			"generation_error_message": message,
		})
	if result.Error != nil {
		return 0, fmt.Errorf("expire stale try-ons: %w", result.Error)
	}
	if result.RowsAffected > 0 {
		logging.FromContext(ctx).Info("expired stale try-ons", "count", result.RowsAffected)
	}
	return result.RowsAffected, nil
}

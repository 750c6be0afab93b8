package models

type TryOnStatus string

const (
	TryOnPending   TryOnStatus = "pending"
	TryOnCompleted TryOnStatus = "completed"
	TryOnFailed    TryOnStatus = "failed"
)

type TryOnGeneration struct {
	JsonModel
	UserAccountID uint        `gorm:"index" json:"-"`
	UserAccount   UserAccount `json:"-"`
	TopItemID     string      `json:"top_item_id"`
	BottomItemID  string      `json:"bottom_item_id"`

	// avatar at the point of generation
	AvatarImageURL string `gorm:"type:text" json:"-"`

	ResultImageURL         *string     `gorm:"type:text" json:"result_image_url"`
	Status                 TryOnStatus `json:"status"`
	Duration               *float64    `json:"duration"` // in seconds
	LLMModel               *string     `json:"llm_model"`
	LLMInputTokenCount     *int32      `json:"llm_input_token_usage"`
	LLMOutputTokenCount    *int32      `json:"llm_output_token_usage"`
	LLMTotalTokenCount     *int32      `json:"llm_total_token_usage"`
	GenerationRetryTimes   int         `json:"generation_retry_times"`
	GenerationErrorMessage *string     `json:"generation_error_message"`
}

type TryOnIn struct {
	AvatarDataURI string `json:"avatarDataUri" validate:"required"`
	TopItemID     string `json:"topItemId" validate:"required"`
	BottomItemID  string `json:"bottomItemId" validate:"required"`
}

type TryOnOut struct {
	TryOnID uint        `json:"tryOnId"`
	Status  TryOnStatus `json:"status"`
}

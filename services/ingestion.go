package services

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"wardrobeapi/logging"
)

const DefaultItemDescription = "a piece of clothing"

type IngestionResult struct {
	// Image is the processed photo, or the original when background removal failed.
	Image             DataURI
	BackgroundRemoved bool

	// BackgroundError is the reason background removal was skipped.
	BackgroundError error

	StyleTags []string
	MoodTags  []string
}

// IngestionPipeline prepares an uploaded photo for the closet: background removal
// followed by tagging, strictly in that order.
type IngestionPipeline struct {
	llm     LLMProcessor
	retry   RetryPolicy
	timeout time.Duration
}

func NewIngestionPipeline(llm LLMProcessor, retry RetryPolicy, timeout time.Duration) *IngestionPipeline {
	return &IngestionPipeline{llm: llm, retry: retry, timeout: timeout}
}

// Ingest never fails on background removal, it degrades to the original image.
// A tagging failure is returned and nothing should be persisted by the caller.
func (p *IngestionPipeline) Ingest(ctx context.Context, photo DataURI, description string) (*IngestionResult, error) {
	logger := logging.FromContext(ctx)
	photo = NormalizeImage(photo, MaxImageEdge)

	result := &IngestionResult{Image: photo}
	processed, err := p.RemoveBackground(ctx, photo)
	if err != nil {
		logger.Warn("background removal failed, using original image", "error", err)
		result.BackgroundError = err
	} else {
		result.Image = processed
		result.BackgroundRemoved = true
	}

	styleTags, moodTags, err := p.Tag(ctx, result.Image, description)
	if err != nil {
		return nil, err
	}
	result.StyleTags = styleTags
	result.MoodTags = moodTags
	return result, nil
}

func (p *IngestionPipeline) RemoveBackground(ctx context.Context, photo DataURI) (DataURI, error) {
	var response *LLMResponse
	err := p.retry.Do(ctx, StepBackgroundRemoval, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		var err error
		response, err = p.llm.RemoveBackground(callCtx, photo)
		return err
	})
	if err != nil {
		return DataURI{}, err
	}
	if len(response.Images) == 0 {
		return DataURI{}, newProcessingError(StepBackgroundRemoval, "response has no processed image")
	}

	image := response.Images[0]
	if whitened, err := WhitenBackgroundFeathered(image, 235, 250, 0.6); err == nil {
		image = whitened
	} else {
		logging.FromContext(ctx).Debug("background whitening skipped", "error", err)
	}
	return NewDataURI(image, ""), nil
}

type tagResponse struct {
	StyleTags []string `json:"styleTags"`
	MoodTags  []string `json:"moodTags"`
}

func (p *IngestionPipeline) Tag(ctx context.Context, photo DataURI, description string) ([]string, []string, error) {
	if strings.TrimSpace(description) == "" {
		description = DefaultItemDescription
	}
	var response *LLMResponse
	err := p.retry.Do(ctx, StepTagging, func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, p.timeout)
		defer cancel()
		var err error
		response, err = p.llm.TagClothing(callCtx, photo, description)
		return err
	})
	if err != nil {
		return nil, nil, err
	}

	var tags tagResponse
	if err := json.Unmarshal([]byte(stripCodeFence(response.Response)), &tags); err != nil {
		return nil, nil, newProcessingError(StepTagging, "malformed tagging response: %v", err)
	}
	if tags.StyleTags == nil || tags.MoodTags == nil {
		return nil, nil, newProcessingError(StepTagging, "tagging response is missing styleTags or moodTags")
	}
	return NormalizeTags(tags.StyleTags), NormalizeTags(tags.MoodTags), nil
}

// NormalizeTags trims, lower-cases and de-duplicates tags, keeping first-seen order.
func NormalizeTags(tags []string) []string {
	lower := cases.Lower(language.Und)
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = lower.String(strings.Join(strings.Fields(tag), " "))
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// stripCodeFence tolerates models that wrap JSON in a markdown fence.
func stripCodeFence(text string) string {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

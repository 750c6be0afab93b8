package services

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"wardrobeapi/logging"
)

type LLMResponse struct {
	Response           string   `json:"response"`
	Images             [][]byte `json:"images,omitempty"`
	Model              string   `json:"model"`
	InputTokenCount    int32    `json:"input_token_count"`
	Thoughts           string   `json:"thoughts"`
	ThoughtsTokenCount int32    `json:"thoughts_token_count"`
	OutputTokenCount   int32    `json:"output_token_count"`
	TotalTokenCount    int32    `json:"total_token_count"`
}

// LLMProcessor is the generative AI provider. Callers own timeouts through ctx.
type LLMProcessor interface {
	RemoveBackground(ctx context.Context, photo DataURI) (*LLMResponse, error)
	TagClothing(ctx context.Context, photo DataURI, description string) (*LLMResponse, error)
	SuggestOutfits(ctx context.Context, prompt string) (*LLMResponse, error)
	GenerateTryOn(ctx context.Context, avatar DataURI, garments []DataURI) (*LLMResponse, error)
}

type GoogleLLMProcessor struct {
	client     *genai.Client
	imageModel string
	textModel  string
}

func NewGoogleLLMProcessor(ctx context.Context, apiKey, imageModel, textModel string) (*GoogleLLMProcessor, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GoogleLLMProcessor{client: client, imageModel: imageModel, textModel: textModel}, nil
}

func floatPointer(f float32) *float32 {
	return &f
}

func Int32Pointer(i int32) *int32 {
	return &i
}

func inlinePart(image DataURI) *genai.Part {
	return &genai.Part{InlineData: &genai.Blob{MIMEType: image.MIMEType, Data: image.Data}}
}

const backgroundRemovalPrompt = "Remove the background from this image of a clothing item. " +
	"Keep the garment exactly as it is and place it on a solid, flat, pure white background. " +
	"Return only the edited image."

func (p *GoogleLLMProcessor) RemoveBackground(ctx context.Context, photo DataURI) (*LLMResponse, error) {
	parts := []*genai.Part{inlinePart(photo), {Text: backgroundRemovalPrompt}}
	response, err := p.generate(ctx, StepBackgroundRemoval, p.imageModel, parts, &genai.GenerateContentConfig{
		CandidateCount:     1,
		Temperature:        floatPointer(0.4),
		ResponseModalities: []string{"TEXT", "IMAGE"},
	})
	if err != nil {
		return nil, err
	}
	if len(response.Images) == 0 {
		return nil, newProcessingError(StepBackgroundRemoval, "response has no processed image")
	}
	return response, nil
}

var tagSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"styleTags": {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
		"moodTags":  {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
	},
	Required: []string{"styleTags", "moodTags"},
}

func (p *GoogleLLMProcessor) TagClothing(ctx context.Context, photo DataURI, description string) (*LLMResponse, error) {
	prompt := "Description: " + description + "\n\nProvide the style and mood tags applicable to the item in the photo as arrays of strings."
	parts := []*genai.Part{inlinePart(photo), {Text: prompt}}
	response, err := p.generate(ctx, StepTagging, p.textModel, parts, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   tagSchema,
		CandidateCount:   1,
		Temperature:      floatPointer(0.7),
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `You are an AI fashion assistant. You will receive a description and a photo of a clothing item. Based on these, you will provide style and mood tags applicable to the item. Example: {"styleTags": ["casual", "streetwear"], "moodTags": ["relaxed", "confident"]}`},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(response.Response) == "" {
		return nil, newProcessingError(StepTagging, "empty tagging response")
	}
	return response, nil
}

var suggestionSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"outfitSuggestions": {
			Type:        genai.TypeArray,
			Items:       &genai.Schema{Type: genai.TypeString},
			Description: "A list of outfit suggestions based on the provided inputs.",
		},
		"reasoning": {
			Type:        genai.TypeString,
			Description: "The AI's reasoning for the outfit suggestions.",
		},
	},
	Required: []string{"outfitSuggestions", "reasoning"},
}

func (p *GoogleLLMProcessor) SuggestOutfits(ctx context.Context, prompt string) (*LLMResponse, error) {
	response, err := p.generate(ctx, StepSuggestion, p.textModel, []*genai.Part{{Text: prompt}}, &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema:   suggestionSchema,
		CandidateCount:   1,
		MaxOutputTokens:  8192,
		Temperature:      floatPointer(1),
	})
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(response.Response) == "" {
		return nil, newProcessingError(StepSuggestion, "empty suggestion response")
	}
	return response, nil
}

func (p *GoogleLLMProcessor) GenerateTryOn(ctx context.Context, avatar DataURI, garments []DataURI) (*LLMResponse, error) {
	parts := []*genai.Part{inlinePart(avatar)}
	for _, garment := range garments {
		parts = append(parts, inlinePart(garment))
	}
	parts = append(parts, &genai.Part{Text: "Generate an image of the person from the first image wearing the clothing items from the following images."})

	response, err := p.generate(ctx, StepTryOn, p.imageModel, parts, &genai.GenerateContentConfig{
		CandidateCount:     1,
		MaxOutputTokens:    50000,
		Temperature:        floatPointer(1),
		ResponseModalities: []string{"TEXT", "IMAGE"},
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{
				{Text: `Ensure the generated image realistically depicts the outfit on the avatar, maintaining the avatar's likeness, pose and body proportions and the clothing's details. For missing clothing items keep the ones the person already wears. If no person detected return NO_PERSON as response.`},
			},
		},
	})
	if err != nil {
		return nil, err
	}
	if len(response.Images) == 0 {
		if strings.Contains(response.Response, "NO_PERSON") {
			return nil, newProcessingError(StepTryOn, "no person detected on avatar")
		}
		return nil, newProcessingError(StepTryOn, "response has no generated image")
	}
	return response, nil
}

func (p *GoogleLLMProcessor) generate(ctx context.Context, step, model string, parts []*genai.Part, config *genai.GenerateContentConfig) (*LLMResponse, error) {
	logger := logging.FromContext(ctx).With("step", step, "model", model)

	result, err := p.client.Models.GenerateContent(ctx, model, []*genai.Content{{Role: "user", Parts: parts}}, config)
	if err != nil {
		logger.Error("GenerateContent failed", "error", err)
		return nil, classifyProviderError(step, err)
	}

	response := &LLMResponse{Model: model}
	if result.UsageMetadata != nil {
		response.InputTokenCount = result.UsageMetadata.PromptTokenCount
		response.ThoughtsTokenCount = result.UsageMetadata.ThoughtsTokenCount
		response.OutputTokenCount = result.UsageMetadata.CandidatesTokenCount
		response.TotalTokenCount = result.UsageMetadata.TotalTokenCount
	}
	logger.Info("GenerateContent finished",
		"candidates", len(result.Candidates),
		"input_tokens", response.InputTokenCount,
		"output_tokens", response.OutputTokenCount,
		"total_tokens", response.TotalTokenCount)

	if result.PromptFeedback != nil && result.PromptFeedback.BlockReason != "" {
		return nil, newProcessingError(step, "prompt blocked: %s %s", result.PromptFeedback.BlockReason, result.PromptFeedback.BlockReasonMessage)
	}
	if len(result.Candidates) == 0 {
		return nil, newProcessingError(step, "provider returned no candidates")
	}

	images, err := GetAllInlineImages(result)
	if err != nil {
		return nil, newProcessingError(step, "%v", err)
	}
	text, err := GetFirstCandidateTextWithThoughts(result)
	if err != nil {
		return nil, newProcessingError(step, "%v", err)
	}
	response.Images = images
	response.Response = text.Text
	response.Thoughts = text.Thoughts
	return response, nil
}

// classifyProviderError separates retryable transport failures from rejected requests.
func classifyProviderError(step string, err error) error {
	if errors.Is(err, context.Canceled) {
		return &ProviderUnavailableError{Step: step, Err: err}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &ProviderUnavailableError{Step: step, Err: err}
	}
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return classifyStatus(step, apiErr.Code, err)
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) {
		return classifyStatus(step, apiErrPtr.Code, err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return &ProviderUnavailableError{Step: step, Err: err}
	}
	return &ProviderUnavailableError{Step: step, Err: err}
}

func classifyStatus(step string, code int, err error) error {
	if code == http.StatusTooManyRequests || code == http.StatusRequestTimeout || code >= 500 {
		return &ProviderUnavailableError{Step: step, Err: err}
	}
	return newProcessingError(step, "provider rejected request: %v", err)
}

type ResponseWithThoughts struct {
	Thoughts string `json:"thoughts"`
	Text     string `json:"text"`
}

func GetAllInlineImages(result *genai.GenerateContentResponse) ([][]byte, error) {
	if result == nil {
		return nil, errors.New("empty response")
	}

	var allImageData [][]byte
	for _, cand := range result.Candidates {
		for _, rating := range cand.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content blocked by safety setting: %s", rating.Category)
			}
		}
		if cand.Content == nil {
			continue
		}
		for _, part := range cand.Content.Parts {
			if part.InlineData == nil || !strings.HasPrefix(part.InlineData.MIMEType, "image/") {
				continue
			}
			if len(part.InlineData.Data) > 0 {
				allImageData = append(allImageData, part.InlineData.Data)
			}
		}
	}
	return allImageData, nil
}

func GetFirstCandidateTextWithThoughts(result *genai.GenerateContentResponse) (*ResponseWithThoughts, error) {
	var thinkingContent string
	var text strings.Builder
	for _, c := range result.Candidates {
		for _, rating := range c.SafetyRatings {
			if rating.Blocked {
				return nil, fmt.Errorf("content violation: blocked for %s", rating.Category)
			}
		}
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if part.Thought {
				thinkingContent = part.Text
				continue
			}
			text.WriteString(part.Text)
		}
		// first candidate only
		break
	}
	return &ResponseWithThoughts{
		Thoughts: thinkingContent,
		Text:     text.String(),
	}, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/genai"
)

func TestClassifyProviderError(t *testing.T) {
	rateLimited := genai.APIError{Code: 429, Message: "quota"}
	assert.True(t, IsProviderUnavailable(classifyProviderError(StepTagging, rateLimited)))

	serverError := genai.APIError{Code: 503, Message: "overloaded"}
	assert.True(t, IsProviderUnavailable(classifyProviderError(StepTagging, fmt.Errorf("call: %w", serverError))))

	badRequest := genai.APIError{Code: 400, Message: "invalid image"}
	assert.True(t, IsProcessingError(classifyProviderError(StepTagging, badRequest)))

	assert.True(t, IsProviderUnavailable(classifyProviderError(StepTagging, context.DeadlineExceeded)))
	assert.True(t, IsProviderUnavailable(classifyProviderError(StepTagging, errors.New("dial tcp: connection refused"))))
}

func TestGetAllInlineImages(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []*genai.Part{
				{Text: "here you go"},
				{InlineData: &genai.Blob{MIMEType: "image/png", Data: []byte{1, 2}}},
				{InlineData: &genai.Blob{MIMEType: "text/plain", Data: []byte{3}}},
			}},
		}},
	}
	images, err := GetAllInlineImages(result)
	assert.NoError(t, err)
	assert.Equal(t, [][]byte{{1, 2}}, images)

	text, err := GetFirstCandidateTextWithThoughts(result)
	assert.NoError(t, err)
	assert.Equal(t, "here you go", text.Text)
}

func TestGetAllInlineImagesBlocked(t *testing.T) {
	result := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			SafetyRatings: []*genai.SafetyRating{{Blocked: true, Category: genai.HarmCategoryHarassment}},
		}},
	}
	_, err := GetAllInlineImages(result)
	assert.Error(t, err)
}

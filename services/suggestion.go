package services

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

const DefaultUserStyle = "chic and modern"

type SuggestionRequest struct {
	Occasion    string
	Weather     string
	ClosetItems []string
	UserStyle   string
	StyleTags   []string
	MoodTags    []string
}

type SuggestionResult struct {
	OutfitSuggestions []string `json:"outfitSuggestions"`
	Reasoning         string   `json:"reasoning"`
}

// SuggestionService asks the provider for outfit ideas. Every call is a fresh
// round-trip: no retry and no caching.
type SuggestionService struct {
	llm     LLMProcessor
	timeout time.Duration
}

func NewSuggestionService(llm LLMProcessor, timeout time.Duration) *SuggestionService {
	return &SuggestionService{llm: llm, timeout: timeout}
}

func (s *SuggestionService) Suggest(ctx context.Context, request SuggestionRequest) (*SuggestionResult, error) {
	callCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	response, err := s.llm.SuggestOutfits(callCtx, BuildSuggestionPrompt(request))
	if err != nil {
		return nil, err
	}

	var result SuggestionResult
	if err := json.Unmarshal([]byte(stripCodeFence(response.Response)), &result); err != nil {
		return nil, newProcessingError(StepSuggestion, "malformed suggestion response: %v", err)
	}
	if result.OutfitSuggestions == nil {
		return nil, newProcessingError(StepSuggestion, "suggestion response is missing outfitSuggestions")
	}
	return &result, nil
}

// BuildSuggestionPrompt renders every input; tag lines only appear when the
// corresponding list is non-empty.
func BuildSuggestionPrompt(request SuggestionRequest) string {
	userStyle := strings.TrimSpace(request.UserStyle)
	if userStyle == "" {
		userStyle = DefaultUserStyle
	}

	var b strings.Builder
	b.WriteString("You are a personal stylist helping users choose outfits from their closet.\n\n")
	b.WriteString("Given the following occasion: " + request.Occasion + ",\n")
	b.WriteString("and the following weather conditions: " + request.Weather + ",\n")
	b.WriteString("and the following items in the user's closet:\n")
	for _, item := range request.ClosetItems {
		b.WriteString("- " + item + "\n")
	}
	b.WriteString("and knowing that the user has the following style: " + userStyle + ",\n")
	if len(request.StyleTags) > 0 {
		b.WriteString("and wants to incorporate these styles: " + strings.Join(request.StyleTags, ", ") + ",\n")
	}
	if len(request.MoodTags) > 0 {
		b.WriteString("and wants to feel these moods: " + strings.Join(request.MoodTags, ", ") + ",\n")
	}
	b.WriteString("\nSuggest several appropriate outfit combinations using the closet item names exactly as listed. ")
	b.WriteString("Explain your reasoning for the suggestions.\n\n")
	b.WriteString("Format your output as a JSON object conforming to the schema.")
	return b.String()
}

// MatchItems returns the indexes of names that appear inside the suggestion text,
// compared case-insensitively as plain substrings.
func MatchItems(suggestion string, names []string) []int {
	lowered := strings.ToLower(suggestion)
	var matched []int
	for i, name := range names {
		name = strings.ToLower(name)
		if name == "" {
			continue
		}
		if strings.Contains(lowered, name) {
			matched = append(matched, i)
		}
	}
	return matched
}

// FormatWeather renders weather the way the prompt expects it.
func FormatWeather(condition string, temperatureF float64) string {
	return condition + ", " + strconv.FormatFloat(temperatureF, 'f', -1, 64) + "°F"
}

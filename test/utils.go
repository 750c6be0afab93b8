package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"wardrobeapi/config"
	"wardrobeapi/models"
	"wardrobeapi/services"
)

const (
	JWTSecret    = "test-secret"
	UserPassword = "correct horse battery staple"
)

// Config is the configuration every controller test runs with.
func Config() *config.Config {
	cfg := config.DefaultConfig()
	cfg.DBDriver = "sqlite"
	cfg.JWTSecret = JWTSecret
	cfg.RetryBaseDelay = time.Millisecond
	cfg.RetryMaxDelay = time.Millisecond
	cfg.ProviderTimeout = 5 * time.Second
	return cfg
}

func JsonString(model interface{}) string {
	bytes, _ := json.Marshal(model)
	return string(bytes)
}

func NewJSONRequest(method string, target string, param interface{}) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(JsonString(param)))
	req.Header.Add("Content-Type", "application/json")
	req.Header.Add("Accept", "application/json")
	return req
}

func GenerateUserToken(userPk string) string {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   userPk,
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
		IssuedAt:  jwt.NewNumericDate(time.Now()),
	})
	t, err := token.SignedString([]byte(JWTSecret))
	if err != nil {
		panic(fmt.Sprintf("signing user token for %s: %v", userPk, err))
	}
	return t
}

func NewJSONAuthRequest(method string, target string, userPk string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", fmt.Sprintf("Bearer %s", GenerateUserToken(userPk)))
	return req
}

func NewJSONAuthRequestCustomAuth(method string, target string, authorizationString string, param interface{}) *http.Request {
	req := NewJSONRequest(method, target, param)
	req.Header.Add("Authorization", authorizationString)
	return req
}

func FakeUser(db *gorm.DB) *models.UserAccount {
	return FakeUserV2(db, "OurName", "email@example.com")
}

func FakeUserV2(db *gorm.DB, userName string, email string) *models.UserAccount {
	hash, err := bcrypt.GenerateFromPassword([]byte(UserPassword), bcrypt.MinCost)
	if err != nil {
		panic(err)
	}
	user := &models.UserAccount{
		Name:                 userName,
		Email:                email,
		PasswordHash:         string(hash),
		ReceiveNotifications: true,
	}
	if err := db.Create(user).Error; err != nil {
		panic(err)
	}
	tokenDb := models.UserPushToken{
		UserAccountID: user.ID,
		Platform:      models.PlatformAndroid,
		Token:         "cX-UZ3zwQEiPt-2GJkG2gA:APA91bGqRflaGrJrnynhRwZ442HdgUjVcO7mWMFnx6IwAdJ9RRKopvSP4QU7hbvTmk1XAp8XGvtHZLvo5JmOPTVKBbGqqvhfbZWKlXA9csEjx1hgpNvrWepU",
		Active:        true,
	}
	db.Save(&tokenDb)
	return user
}

// PNG returns an encoded solid-color image.
func PNG(w, h int, c color.Color) []byte {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		panic(err)
	}
	return buf.Bytes()
}

func PNGDataURI(c color.Color) string {
	return services.NewDataURI(PNG(4, 4, c), "image/png").String()
}

// LLMProcessorMock answers every provider call with canned data. Set an Err
// field to make that call fail.
type LLMProcessorMock struct {
	mu sync.Mutex

	BackgroundImage []byte
	BackgroundErr   error

	TagResponse string
	TagErr      error

	SuggestionResponse string
	SuggestionErr      error
	LastPrompt         string

	TryOnImage []byte
	TryOnErr   error

	Calls map[string]int
}

func (m *LLMProcessorMock) record(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Calls == nil {
		m.Calls = map[string]int{}
	}
	m.Calls[name]++
}

func (m *LLMProcessorMock) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[name]
}

func (m *LLMProcessorMock) RemoveBackground(ctx context.Context, photo services.DataURI) (*services.LLMResponse, error) {
	m.record("RemoveBackground")
	if m.BackgroundErr != nil {
		return nil, m.BackgroundErr
	}
	image := m.BackgroundImage
	if image == nil {
		image = PNG(4, 4, color.White)
	}
	return &services.LLMResponse{Images: [][]byte{image}, Model: "mock-image"}, nil
}

func (m *LLMProcessorMock) TagClothing(ctx context.Context, photo services.DataURI, description string) (*services.LLMResponse, error) {
	m.record("TagClothing")
	if m.TagErr != nil {
		return nil, m.TagErr
	}
	response := m.TagResponse
	if response == "" {
		response = `{"styleTags": ["Casual", "minimalist"], "moodTags": ["relaxed"]}`
	}
	return &services.LLMResponse{Response: response, Model: "mock-text"}, nil
}

func (m *LLMProcessorMock) SuggestOutfits(ctx context.Context, prompt string) (*services.LLMResponse, error) {
	m.record("SuggestOutfits")
	m.mu.Lock()
	m.LastPrompt = prompt
	m.mu.Unlock()
	if m.SuggestionErr != nil {
		return nil, m.SuggestionErr
	}
	response := m.SuggestionResponse
	if response == "" {
		response = `{"outfitSuggestions": ["Pair the White Tee with the Blue Jeans"], "reasoning": "Easy and relaxed."}`
	}
	return &services.LLMResponse{Response: response, Model: "mock-text"}, nil
}

func (m *LLMProcessorMock) GenerateTryOn(ctx context.Context, avatar services.DataURI, garments []services.DataURI) (*services.LLMResponse, error) {
	m.record("GenerateTryOn")
	if m.TryOnErr != nil {
		return nil, m.TryOnErr
	}
	image := m.TryOnImage
	if image == nil {
		image = PNG(4, 4, color.Black)
	}
	return &services.LLMResponse{
		Images:           [][]byte{image},
		Model:            "mock-image",
		InputTokenCount:  10,
		OutputTokenCount: 13,
		TotalTokenCount:  23,
	}, nil
}

// AWSProviderMock keeps uploaded objects in memory.
type AWSProviderMock struct {
	MockUrl string

	mu      sync.Mutex
	Uploads map[string][]byte
}

func (awsService *AWSProviderMock) PresignLink(ctx context.Context, bucketName string, fileName string) (string, error) {
	return fmt.Sprintf("https://fakebucketurl.com/%s", fileName), nil
}

func (awsService *AWSProviderMock) GetPresignedR2FileReadURL(ctx context.Context, bucketName, fileKey string) (string, error) {
	if awsService.MockUrl != "" {
		return awsService.MockUrl, nil
	}
	return fmt.Sprintf("https://fakebucketurl.com/%s?signed=1", fileKey), nil
}

func (awsService *AWSProviderMock) UploadToPresignedURL(ctx context.Context, url string, fileContent []byte) (int, error) {
	awsService.mu.Lock()
	defer awsService.mu.Unlock()
	if awsService.Uploads == nil {
		awsService.Uploads = map[string][]byte{}
	}
	awsService.Uploads[url] = fileContent
	return http.StatusOK, nil
}

type URLCacheMock struct {
	Err error
}

func (m *URLCacheMock) GetReadURL(ctx context.Context, objectKey string) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	return "https://cached.example.com/" + objectKey, nil
}

type WeatherMock struct {
	Info *models.WeatherInfo
	Err  error
}

func (m *WeatherMock) Current(ctx context.Context, lat, lon float64) (*models.WeatherInfo, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	if m.Info != nil {
		return m.Info, nil
	}
	return &models.WeatherInfo{Location: "New York, New York", Weather: "Sunny", Temperature: 72}, nil
}

type SentNotification struct {
	UserID uint
	Title  string
	Data   map[string]string
}

type NotifierMock struct {
	mu   sync.Mutex
	Sent []SentNotification
}

func (m *NotifierMock) SendNotification(ctx context.Context, userID uint, title string, message string, customData map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, SentNotification{UserID: userID, Title: title, Data: customData})
}

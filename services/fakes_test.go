package services

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"sync"
	"time"
)

type fakeLLM struct {
	mu sync.Mutex

	removeErrs    []error
	removeImage   []byte
	tagErrs       []error
	tagResponse   string
	suggestErr    error
	suggestText   string
	tryOnResponse *LLMResponse

	removeCalls  int
	tagCalls     int
	suggestCalls int
	taggedPhoto  DataURI
	lastPrompt   string
	description  string
}

func (f *fakeLLM) RemoveBackground(ctx context.Context, photo DataURI) (*LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removeCalls++
	if len(f.removeErrs) > 0 {
		err := f.removeErrs[0]
		f.removeErrs = f.removeErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &LLMResponse{Images: [][]byte{f.removeImage}}, nil
}

func (f *fakeLLM) TagClothing(ctx context.Context, photo DataURI, description string) (*LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tagCalls++
	f.taggedPhoto = photo
	f.description = description
	if len(f.tagErrs) > 0 {
		err := f.tagErrs[0]
		f.tagErrs = f.tagErrs[1:]
		if err != nil {
			return nil, err
		}
	}
	return &LLMResponse{Response: f.tagResponse}, nil
}

func (f *fakeLLM) SuggestOutfits(ctx context.Context, prompt string) (*LLMResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestCalls++
	f.lastPrompt = prompt
	if f.suggestErr != nil {
		return nil, f.suggestErr
	}
	return &LLMResponse{Response: f.suggestText}, nil
}

func (f *fakeLLM) GenerateTryOn(ctx context.Context, avatar DataURI, garments []DataURI) (*LLMResponse, error) {
	return f.tryOnResponse, nil
}

// testPNG renders a w x h image filled with c.
func testPNG(w, h int, c color.Color) []byte {
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

func noSleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}

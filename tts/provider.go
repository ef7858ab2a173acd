package tts

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// ProviderError reports a speech-synthesis failure (missing credentials or a
// non-2xx response). The synthesizer fails fast on it; substituting silent
// audio is the caller's call, not this package's.
type ProviderError struct {
	Status int
	Reason string
}

func (e *ProviderError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("speech provider: status %d: %s", e.Status, e.Reason)
	}
	return fmt.Sprintf("speech provider: %s", e.Reason)
}

// Provider turns one narration segment into an audio file.
type Provider interface {
	Speak(text, voice, outPath string) error
}

// OpenAIProvider calls an OpenAI-compatible /audio/speech endpoint and
// streams the response straight to disk.
type OpenAIProvider struct {
	APIKey  string
	BaseURL string
	Model   string
	client  *http.Client
}

// NewOpenAIProvider builds a provider with a bounded request timeout.
func NewOpenAIProvider(apiKey, baseURL, model string) *OpenAIProvider {
	return &OpenAIProvider{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Model:   model,
		client:  &http.Client{Timeout: 120 * time.Second},
	}
}

type speechRequest struct {
	Model  string `json:"model"`
	Input  string `json:"input"`
	Voice  string `json:"voice"`
	Format string `json:"format"`
}

// Speak synthesizes one segment. Any transport or HTTP failure surfaces as a
// *ProviderError.
func (p *OpenAIProvider) Speak(text, voice, outPath string) error {
	if p.APIKey == "" {
		return &ProviderError{Reason: "OPENAI_API_KEY missing"}
	}

	body, err := json.Marshal(speechRequest{
		Model:  p.Model,
		Input:  text,
		Voice:  voice,
		Format: "mp3",
	})
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, p.BaseURL+"/audio/speech", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+p.APIKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "audio/mpeg")

	resp, err := p.client.Do(req)
	if err != nil {
		return &ProviderError{Reason: err.Error()}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &ProviderError{Status: resp.StatusCode, Reason: string(snippet)}
	}

	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create %s: %w", outPath, err)
	}
	defer out.Close()

	if _, err := io.Copy(out, resp.Body); err != nil {
		os.Remove(outPath)
		return &ProviderError{Reason: fmt.Sprintf("stream audio: %v", err)}
	}
	return nil
}

package genai

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"os"

	"github.com/sashabaranov/go-openai"

	"podify/internal/voice"
)

// speechBitrateKbps is the constant bitrate of the mp3 stream returned by the
// speech endpoint. Duration is estimated from it rather than decoded.
const speechBitrateKbps = 32

// Client wraps the AI generation endpoints. Errors from the provider are
// opaque; callers surface them as a generic generation failure.
type Client struct {
	client *openai.Client
}

// NewClientFromEnv creates a Client configured from OPENAI_* environment
// variables.
func NewClientFromEnv() *Client {
	cfg := openai.DefaultConfig(os.Getenv("OPENAI_API_KEY"))
	if baseURL := os.Getenv("OPENAI_BASE_URL"); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &Client{client: openai.NewClientWithConfig(cfg)}
}

// Speech synthesizes narration audio for the prompt in the given voice.
// It returns the mp3 bytes and the estimated duration in seconds.
func (c *Client) Speech(ctx context.Context, prompt string, v voice.ID) ([]byte, float64, error) {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.TTSModel1,
		Input:          prompt,
		Voice:          voice.SpeechVoice(v),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("speech generation failed: %w", err)
	}
	defer resp.Close()

	data, err := io.ReadAll(resp)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to read speech response: %w", err)
	}

	duration := float64(len(data)) * 8 / (speechBitrateKbps * 1000)
	return data, duration, nil
}

// Image generates cover art for the prompt and returns the png bytes.
func (c *Client) Image(ctx context.Context, prompt string) ([]byte, error) {
	resp, err := c.client.CreateImage(ctx, openai.ImageRequest{
		Model:          openai.CreateImageModelDallE3,
		Prompt:         prompt,
		N:              1,
		Size:           openai.CreateImageSize1024x1024,
		ResponseFormat: openai.CreateImageResponseFormatB64JSON,
	})
	if err != nil {
		return nil, fmt.Errorf("image generation failed: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("image generation returned no data")
	}

	data, err := base64.StdEncoding.DecodeString(resp.Data[0].B64JSON)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image response: %w", err)
	}
	return data, nil
}

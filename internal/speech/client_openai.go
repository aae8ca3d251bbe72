package speech

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// OpenAIClient serves both directions: tts-1 speech and Whisper transcription.
type OpenAIClient struct {
	client   *openai.Client
	ttsModel string
	sttModel string
	language string
}

func NewOpenAIClient(apiKey, baseURL, ttsModel, sttModel, language string) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIClient{
		client:   openai.NewClientWithConfig(cfg),
		ttsModel: ttsModel,
		sttModel: sttModel,
		language: language,
	}
}

func (c *OpenAIClient) Synthesize(ctx context.Context, text, voice, outPath string) error {
	resp, err := c.client.CreateSpeech(ctx, openai.CreateSpeechRequest{
		Model:          openai.SpeechModel(c.ttsModel),
		Input:          text,
		Voice:          openai.SpeechVoice(voice),
		ResponseFormat: openai.SpeechResponseFormatMp3,
	})
	if err != nil {
		return fmt.Errorf("openai speech: %w", err)
	}
	defer resp.Close()

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, resp)
	return err
}

func (c *OpenAIClient) Transcribe(ctx context.Context, filePath string) ([]Segment, error) {
	resp, err := c.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    c.sttModel,
		FilePath: filePath,
		Format:   openai.AudioResponseFormatVerboseJSON,
		Language: c.language,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	if len(resp.Segments) == 0 {
		if resp.Text == "" {
			return nil, nil
		}
		return []Segment{{Text: strings.TrimSpace(resp.Text), End: resp.Duration}}, nil
	}

	segments := make([]Segment, 0, len(resp.Segments))
	for _, s := range resp.Segments {
		segments = append(segments, Segment{Text: strings.TrimSpace(s.Text), Start: s.Start, End: s.End})
	}
	return segments, nil
}

package speech

import (
	"context"
	"fmt"

	"github.com/Vovarama1992/speech_gateway/internal/config"
)

const (
	EngineEdge       = "edge"
	EngineElevenLabs = "elevenlabs"
	EngineOpenAI     = "openai"
	EngineDeepgram   = "deepgram"
	EngineGoogle     = "google"
)

// NewSynthesizer returns the synthesis engine selected by cfg.TTS.Engine.
func NewSynthesizer(cfg *config.Config) (Synthesizer, error) {
	switch cfg.TTS.Engine {
	case EngineEdge:
		return NewEdgeClient(cfg.TTS.EdgeCommand), nil
	case EngineElevenLabs:
		return NewElevenLabsClient(cfg.TTS.ElevenLabsAPIKey, cfg.TTS.ElevenLabsModel), nil
	case EngineOpenAI:
		return NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, cfg.TTS.OpenAIModel, "", ""), nil
	default:
		return nil, fmt.Errorf("unsupported TTS engine %q", cfg.TTS.Engine)
	}
}

// NewTranscriber builds the transcription engine once for the whole process
// and wraps it with a concurrency guard.
func NewTranscriber(ctx context.Context, cfg *config.Config) (*Guarded, error) {
	var (
		t   Transcriber
		err error
	)

	switch cfg.STT.Engine {
	case EngineOpenAI:
		t = NewOpenAIClient(cfg.OpenAI.APIKey, cfg.OpenAI.BaseURL, "", cfg.STT.OpenAIModel, cfg.STT.Language)
	case EngineDeepgram:
		t = NewDeepgramClient(cfg.STT.DeepgramAPIKey, cfg.STT.DeepgramModel, cfg.STT.Language)
	case EngineGoogle:
		t, err = NewGoogleClient(ctx, cfg.STT.GoogleCredentials, cfg.STT.Language, cfg.STT.GoogleSampleRate)
	default:
		err = fmt.Errorf("unsupported STT engine %q", cfg.STT.Engine)
	}
	if err != nil {
		return nil, err
	}

	return NewGuarded(t, cfg.STT.MaxConcurrent), nil
}
